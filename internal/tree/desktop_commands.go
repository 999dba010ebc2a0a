package tree

import (
	"log/slog"

	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
)

func (d *Desktop) HandleNewWindow(h Handle) Node {
	return d.AddWindow(h)
}

func (d *Desktop) HandleResize(delta int, dir TransferDirection) {
	if focus := d.FocusNode(); focus != nil {
		focus.Resize(delta, dir)
	}
}

func (d *Desktop) HandleVerticalDirection() {
	d.changeDirectionOnChild(d.FocusNode(), mosaic.Vertical)
}

func (d *Desktop) HandleHorizontalDirection() {
	d.changeDirectionOnChild(d.FocusNode(), mosaic.Horizontal)
}

// changeDirectionOnChild changes the axis of a container, or wraps a leaf
// in a new container with that axis.
func (d *Desktop) changeDirectionOnChild(child Node, dir mosaic.Direction) {
	if child == nil {
		return
	}
	if child.CanHaveChildren() {
		child.ChangeDirection(dir)
		return
	}

	parent := child.Parent()
	if parent == nil {
		return
	}
	c := d.factory.NewContainer(child.Rect(), dir)
	if !parent.ReplaceNode(child, c) {
		slog.Warn("Failed to wrap node in container", "package", "tree", "node", child)
		c.Dispose()
		return
	}
	c.AddNodes(child)
	d.tracker.UpdateFocusTree()
}

// HandleLayoutToggleSplit flips the axis of the container nearest to the focus.
func (d *Desktop) HandleLayoutToggleSplit() {
	for n := d.FocusNode(); n != nil && n != Node(d); n = n.Parent() {
		if n.CanHaveChildren() {
			n.ChangeDirection(n.Direction().Toggle())
			return
		}
	}
}

func (d *Desktop) HandleFullscreen() {
	focus := d.FocusNode()
	if focus == nil || focus.Parent() == Node(d) {
		return
	}

	switch focus.Style() {
	case Tile:
		focus.SetStyle(FullscreenOne)
	case FullscreenOne:
		focus.SetStyle(Tile)
	}
}

func (d *Desktop) HandleSwitchFloating() {
	focus := d.FocusNode()
	if focus == nil {
		return
	}
	if d.isFloating(focus) {
		d.MakeNodeNonFloating(focus)
		return
	}
	if focus.Parent() == Node(d) {
		return
	}
	d.MakeNodeFloating(focus)
}

// MakeNodeFloating takes n out of the tiling tree.
func (d *Desktop) MakeNodeFloating(n Node) bool {
	if n.Style() == FullscreenOne {
		n.SetStyle(Tile)
	}
	parent := n.Parent()
	if parent == nil || !parent.DisconnectChild(n) {
		slog.Warn("Could not take over node", "package", "tree", "node", n)
		return false
	}

	d.addFloatingNode(n)
	n.UpdateRect(n.Rect())
	d.tracker.UpdateFocusTree()
	d.raiseChanged()
	return true
}

// MakeNodeNonFloating puts n back into the screen it overlaps the most. It
// stays floating when no screen takes it.
func (d *Desktop) MakeNodeNonFloating(n Node) bool {
	if !d.DisconnectChild(n) {
		return false
	}

	var best *Screen
	var bestArea int64 = -1
	for _, s := range d.Screens() {
		if area := s.Rect().Intersect(n.Rect()).Area(); area > bestArea {
			best, bestArea = s, area
		}
	}

	n.SetStyle(Tile)
	n.SetFixedRect(false)
	if best == nil || !best.AddNodes(n) {
		slog.Warn("Failed to tile node, keeping it floating", "package", "tree", "node", n)
		d.addFloatingNode(n)
		return false
	}

	d.tracker.UpdateFocusTree()
	d.raiseChanged()
	return true
}

// HandleMoveNode moves the focus node and reports whether it is floating.
func (d *Desktop) HandleMoveNode(dir TransferDirection) bool {
	focus := d.FocusNode()
	if focus == nil {
		return false
	}
	focus.Move(dir)
	return focus.Style() == Floating
}

func (d *Desktop) HandleMoveFocus(dir TransferDirection) bool {
	focus := d.FocusNode()
	if focus == nil {
		return false
	}
	return focus.FocusNodeInDirection(focus, dir)
}

func (d *Desktop) QuitFocusNode() bool {
	focus := d.FocusNode()
	if focus == nil || (focus.Parent() == Node(d) && !d.isFloating(focus)) {
		return false
	}
	return focus.Quit()
}

// TransferFocusNodeToDesktop moves the focus node to dst.
func (d *Desktop) TransferFocusNodeToDesktop(dst *Desktop) bool {
	if dst == nil || dst == d {
		return false
	}

	focus := d.FocusNode()
	if focus == nil {
		slog.Warn("No focus node to transfer", "package", "tree", "desktop", d)
		return false
	}
	parent := focus.Parent()
	if parent == nil || (parent == Node(d) && !d.isFloating(focus)) {
		return false
	}

	if d.isFloating(focus) {
		if !d.DisconnectChild(focus) {
			return false
		}
		if !dst.AddNodes(focus) {
			slog.Warn("Destination refused floating node", "package", "tree", "node", focus, "desktop", dst)
			d.addFloatingNode(focus)
			return false
		}
		d.tracker.Untrack(focus)
	} else {
		if !parent.TransferNodeToDesktop(focus, dst) {
			return false
		}
		d.tracker.Untrack(focus)
	}

	if d.tracker.FocusNode() == nil && len(d.children) > 0 {
		d.children[0].SetFocus(0)
	}
	d.raiseChanged()
	return true
}

// ScreensChanged resizes, removes and creates screens to match rects.
func (d *Desktop) ScreensChanged(rects []mosaic.Rect, dir mosaic.Direction) {
	if len(rects) == 0 {
		slog.Warn("Ignoring screen change without screens", "package", "tree", "desktop", d)
		return
	}

	for i := len(d.children) - 1; i >= len(rects); i-- {
		s, ok := d.Screen(i)
		if !ok {
			continue
		}
		first, _ := d.Screen(0)
		s.TransferAllChildren(first, Left)
		d.removeChildAt(i, true, false)
	}

	for i, r := range rects {
		if i < len(d.children) {
			if d.children[i].Rect() != r {
				d.children[i].UpdateRect(r)
			}
			continue
		}
		d.insertChildAt(d.factory.NewScreen(screenName(i), r, dir), -1)
	}

	d.rect = mosaic.Rect{}
	for _, r := range rects {
		d.rect = d.rect.Union(r)
	}

	if d.tracker.FocusNode() == nil {
		d.children[0].SetFocus(0)
	}
	d.raiseChanged()
}
