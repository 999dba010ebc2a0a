package tree

import (
	"log/slog"
	"slices"

	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
)

type ChangedEvent struct {
	Desktop *Desktop
	// HasWindows is true when any screen holds a node.
	HasWindows bool
}

// Desktop is a virtual desktop. Its children are screens, which it never
// lays out itself, and it owns the floating nodes outside the tiling tree.
type Desktop struct {
	Container

	index    int
	tracker  *FocusTracker
	floating []Node

	changed Signal[ChangedEvent]
}

var _ Node = (*Desktop)(nil)

func (d *Desktop) Index() int { return d.index }

func (d *Desktop) Desktop() *Desktop { return d }

func (d *Desktop) FocusTracker() *FocusTracker { return d.tracker }

// FocusNode returns the focused node of the desktop.
func (d *Desktop) FocusNode() Node { return d.tracker.FocusNode() }

func (d *Desktop) FloatingNodes() []Node {
	return slices.Clone(d.floating)
}

func (d *Desktop) OnChanged(fn func(ChangedEvent)) func() {
	return d.changed.Subscribe(fn)
}

func (d *Desktop) Screens() []*Screen {
	screens := make([]*Screen, 0, len(d.children))
	for _, child := range d.children {
		if s, ok := child.(*Screen); ok {
			screens = append(screens, s)
		}
	}
	return screens
}

func (d *Desktop) Screen(index int) (*Screen, bool) {
	if index < 0 || index >= len(d.children) {
		return nil, false
	}
	s, ok := d.children[index].(*Screen)
	return s, ok
}

func (d *Desktop) GetScreenRect(index int) (mosaic.Rect, bool) {
	s, ok := d.Screen(index)
	if !ok {
		return mosaic.Rect{}, false
	}
	return s.Rect(), true
}

// ActiveScreenIndex returns the screen holding the focus, or 0.
func (d *Desktop) ActiveScreenIndex() int {
	if i := d.IndexOf(d.tracker.MyLastFocusNode(d)); i >= 0 {
		return i
	}
	return 0
}

func (d *Desktop) isFloating(n Node) bool {
	return slices.Contains(d.floating, n)
}

// directChild returns the screen or floating node n lives under.
func (d *Desktop) directChild(n Node) Node {
	for ; n != nil; n = n.Parent() {
		if n.Parent() == Node(d) {
			return n
		}
	}
	return nil
}

func (d *Desktop) raiseChanged() {
	has := false
	for _, s := range d.children {
		has = has || len(s.Children()) > 0
	}
	d.changed.Emit(ChangedEvent{Desktop: d, HasWindows: has || len(d.floating) > 0})
}

// UpdateRect refuses every rect but the current one. Screens change through ScreensChanged.
func (d *Desktop) UpdateRect(r mosaic.Rect) bool {
	return r == d.rect
}

func (d *Desktop) ChangeDirection(dir mosaic.Direction) {
	slog.Warn("Desktop direction is fixed", "package", "tree", "node", d)
}

func (d *Desktop) SetFocus(dir TransferDirection) {
	if last := d.tracker.MyLastFocusNode(d); last != nil && d.isFloating(last) {
		last.SetFocus(dir)
		return
	}
	d.Container.SetFocus(dir)
}

func (d *Desktop) activeScreen() *Screen {
	s, _ := d.Screen(d.ActiveScreenIndex())
	return s
}

func (d *Desktop) AddWindow(h Handle) Node {
	focus := d.tracker.MyLastFocusNode(d)
	if focus == nil || d.isFloating(focus) || !focus.CanHaveChildren() {
		focus = d.activeScreen()
	}
	if focus == nil {
		slog.Warn("Desktop has no screen to add window to", "package", "tree", "node", d, "handle", h)
		return nil
	}

	n := focus.AddWindow(h)
	if n != nil {
		d.raiseChanged()
	}
	return n
}

// AddNodes keeps floating nodes on the desktop and gives the rest to the active screen.
func (d *Desktop) AddNodes(nodes ...Node) bool {
	if len(nodes) == 0 {
		return false
	}

	var tiled []Node
	for _, n := range nodes {
		if n.Style() == Floating {
			d.addFloatingNode(n)
		} else {
			tiled = append(tiled, n)
		}
	}

	ok := true
	if len(tiled) > 0 {
		s := d.activeScreen()
		ok = s != nil && s.AddNodes(tiled...)
	}

	d.raiseChanged()
	return ok
}

func (d *Desktop) addFloatingNode(n Node) {
	d.takeOver(n)
	d.floating = append(d.floating, n)
	n.SetStyle(Floating)
	if d.visible {
		n.Show()
	} else {
		n.Hide()
	}
}

func (d *Desktop) RemoveChild(child Node) bool {
	if !d.isFloating(child) {
		return false
	}
	if !d.DisconnectChild(child) {
		return false
	}
	child.Dispose()
	d.raiseChanged()
	return true
}

// DisconnectChild detaches a floating node. Screens cannot be detached.
func (d *Desktop) DisconnectChild(child Node) bool {
	i := slices.Index(d.floating, child)
	if i < 0 {
		return false
	}

	hadFocus := d.tracker.MyLastFocusNode(d) == child
	d.floating = slices.Delete(d.floating, i, i+1)
	d.release(child)
	if child.Parent() == Node(d) {
		child.base().parent = nil
	}

	if hadFocus && len(d.children) > 0 {
		d.tracker.ExplicitSetMyFocusNode(d, d.children[0])
	}
	return true
}

func (d *Desktop) ReplaceNode(old, n Node) bool {
	return false
}

// TransferNode passes n from one screen to its neighbour in dir.
func (d *Desktop) TransferNode(child, n Node, dir TransferDirection, focused bool) bool {
	i := d.IndexOf(child)
	if i < 0 || !dir.Along(d.direction) {
		return false
	}

	j := i + 1
	if dir.Backward() {
		j = i - 1
	}
	if j < 0 || j >= len(d.children) || !d.children[j].CanHaveChildren() {
		return false
	}
	return d.children[j].TransferNode(nil, n, dir, focused)
}

func (d *Desktop) ChildWantMove(child Node, dir TransferDirection) {
	if !d.isFloating(child) {
		slog.Warn("Screens cannot move", "package", "tree", "node", child)
		return
	}

	step := d.factory.FloatingStep
	r := child.Rect()
	switch dir {
	case Left:
		r = r.Translate(-step, 0)
	case Up:
		r = r.Translate(0, -step)
	case Right:
		r = r.Translate(step, 0)
	case Down:
		r = r.Translate(0, step)
	}
	child.UpdateRect(r)
}

func (d *Desktop) FocusNodeInDirection(focus Node, dir TransferDirection) bool {
	if focus == nil {
		return false
	}
	if focus.Style() == FullscreenOne && d.IndexOf(focus) < 0 {
		focus = d.directChild(focus)
		if focus == nil || d.isFloating(focus) {
			return false
		}
	}

	i := d.IndexOf(focus)
	if i < 0 || !dir.Along(d.direction) || len(d.children) == 1 {
		return false
	}

	if dir.Backward() {
		if i == 0 {
			return false
		}
		d.children[i-1].SetFocus(dir)
	} else {
		if i == len(d.children)-1 {
			return false
		}
		d.children[i+1].SetFocus(dir)
	}
	return true
}

func (d *Desktop) FindNodeWithID(id int64) Node {
	if n := d.Container.FindNodeWithID(id); n != nil {
		return n
	}
	for _, n := range d.floating {
		if found := n.FindNodeWithID(id); found != nil {
			return found
		}
	}
	return nil
}

// Show makes the desktop visible and restores its focus.
func (d *Desktop) Show() bool {
	ok := d.Container.Show()
	for _, n := range d.floating {
		ok = n.Show() && ok
	}

	if focus := d.tracker.FocusNode(); focus != nil {
		focus.SetFocus(0)
	} else if len(d.children) > 0 {
		d.children[0].SetFocus(0)
	}
	return ok
}

func (d *Desktop) Hide() bool {
	ok := d.Container.Hide()
	for _, n := range d.floating {
		ok = n.Hide() && ok
	}
	return ok
}

func (d *Desktop) Dispose() {
	if d.disposed {
		return
	}
	for _, n := range slices.Clone(d.floating) {
		d.release(n)
		n.Dispose()
	}
	d.floating = nil
	d.Container.Dispose()
}

func (d *Desktop) childStyleChanged(ev StyleChangedEvent) {
	n := ev.Node
	if n.Style() == Floating && !d.isFloating(n) && n.Parent() != Node(d) {
		d.MakeNodeFloating(n)
		return
	}
	d.styleChanged.Emit(ev)
}

// childRequestRectChange leaves floating nodes where they asked to be. A
// screen that outgrew its display keeps the display rect and the request
// is passed on.
func (d *Desktop) childRequestRectChange(ev RequestRectChangeEvent) {
	if d.isFloating(ev.Requester) {
		ev.Requester.UpdateRect(ev.Requester.Rect())
		return
	}
	if d.IndexOf(ev.Requester) < 0 {
		return
	}

	slog.Warn("Screen cannot fit its nodes", "package", "tree", "screen", ev.Requester, "want", ev.New)
	ev.Requester.base().rect = ev.Old
	d.requestRectChange.Emit(ev)
}
