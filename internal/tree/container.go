package tree

import (
	"log/slog"
	"slices"

	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
)

// parentHooks receives notifications from children. Screen and Desktop
// override parts of the Container behaviour.
type parentHooks interface {
	childStyleChanged(ev StyleChangedEvent)
	childRequestRectChange(ev RequestRectChangeEvent)
}

// Container lays out an ordered list of children along its direction.
type Container struct {
	node

	children []Node
	ignored  []int
	visible  bool
	tiler    mosaic.Tiler
	childSub map[Node][]func()
}

var _ Node = (*Container)(nil)

func (c *Container) initContainer(self Node, f *Factory, name string, rect mosaic.Rect, dir mosaic.Direction) {
	c.init(self, f, name, rect, dir)
	c.visible = true
	c.childSub = make(map[Node][]func())
}

func (c *Container) CanHaveChildren() bool { return true }

// Children returns a copy of the children.
func (c *Container) Children() []Node {
	return slices.Clone(c.children)
}

func (c *Container) ChildCount() int {
	return len(c.children)
}

func (c *Container) IndexOf(n Node) int {
	return slices.Index(c.children, n)
}

func (c *Container) Visible() bool {
	return c.visible
}

// Allocatable returns the share each flexible child got in the last layout.
func (c *Container) Allocatable() (width, height int) {
	return c.tiler.Allocatable()
}

// takeOver makes c the parent of n and wires n's notifications to c.
func (c *Container) takeOver(n Node) {
	n.base().setParent(c.self, c.depth+1)

	hooks := c.self.(parentHooks)
	c.childSub[n] = []func(){
		n.OnStyleChanged(hooks.childStyleChanged),
		n.OnRequestRectChange(hooks.childRequestRectChange),
	}

	if t := c.focusTracker(); t != nil {
		walk(n, func(n Node) { t.Track(n) })
	}
}

func (c *Container) release(n Node) {
	for _, unsub := range c.childSub[n] {
		unsub()
	}
	delete(c.childSub, n)
}

// insertChildAt inserts n at index, or appends it when index is out of range.
func (c *Container) insertChildAt(n Node, index int) {
	c.takeOver(n)
	if index < 0 || index > len(c.children) {
		c.children = append(c.children, n)
	} else {
		c.children = slices.Insert(c.children, index, n)
	}

	if c.visible {
		n.Show()
	} else {
		n.Hide()
	}
}

// removeChildAt detaches the child at index. The remembered focus of c moves
// to a sibling. An emptied container removes itself from its parent.
func (c *Container) removeChildAt(index int, dispose, relayout bool) Node {
	n := c.children[index]

	if t := c.focusTracker(); t != nil && t.MyLastFocusNode(c.self) == n {
		var sibling Node
		if index+1 < len(c.children) {
			sibling = c.children[index+1]
		} else if index > 0 {
			sibling = c.children[index-1]
		}
		t.ExplicitSetMyFocusNode(c.self, sibling)
	}

	c.children = slices.Delete(c.children, index, index+1)
	c.release(n)

	if dispose {
		n.Dispose()
	}
	if n.Parent() == c.self {
		n.base().parent = nil
	}

	if len(c.children) == 0 {
		if t := c.focusTracker(); t != nil {
			t.ExplicitSetMyFocusNode(c.self, nil)
		}
		if c.parent != nil {
			c.parent.RemoveChild(c.self)
		}
		return n
	}

	if relayout {
		c.relayout(0, true)
	}
	return n
}

func (c *Container) ignore(index int) {
	c.ignored = append(c.ignored, index)
}

func (c *Container) unignore(index int) {
	if i := slices.Index(c.ignored, index); i >= 0 {
		c.ignored = slices.Delete(c.ignored, i, i+1)
	}
}

func (c *Container) ignoredAt(index int) bool {
	return slices.Contains(c.ignored, index)
}

// layout runs the rect negotiation over the children starting at from.
func (c *Container) layout(from int) (mosaic.Rect, bool) {
	tiles := make([]mosaic.Tile, len(c.children))
	for i, child := range c.children {
		tiles[i] = child
	}
	c.tiler.Retries = c.factory.Retries
	return c.tiler.Layout(c.rect, c.direction, tiles, from, c.ignoredAt)
}

// relayout lays out the children and, when they do not fit and escalate is
// set, grows c and asks the parent for the bigger rect.
func (c *Container) relayout(from int, escalate bool) bool {
	r, ok := c.layout(from)
	if ok {
		return true
	}
	if escalate {
		c.requestRect(r)
	}
	return false
}

func (c *Container) requestRect(r mosaic.Rect) {
	old := c.rect
	c.rect = r
	slog.Debug("Container needs more room", "package", "tree", "node", c.self, "old", old, "new", r)
	c.requestRectChange.Emit(RequestRectChangeEvent{Requester: c.self, Old: old, New: r})
}

func (c *Container) UpdateRect(r mosaic.Rect) bool {
	c.rect = r
	_, ok := c.layout(0)
	return ok
}

func (c *Container) ChangeDirection(dir mosaic.Direction) {
	if c.direction == dir {
		return
	}
	c.direction = dir
	c.relayout(0, true)
}

func (c *Container) SetFocus(dir TransferDirection) {
	if len(c.children) == 0 {
		c.node.SetFocus(dir)
		return
	}

	switch dir {
	case Left, Up:
		c.children[len(c.children)-1].SetFocus(dir)
	case Right, Down:
		c.children[0].SetFocus(dir)
	default:
		if last := c.myFocusNode(); last != nil && c.IndexOf(last) >= 0 {
			last.SetFocus(dir)
			return
		}
		c.children[0].SetFocus(dir)
	}
}

func (c *Container) FocusNodeInDirection(focus Node, dir TransferDirection) bool {
	if focus == nil {
		return false
	}
	if focus.Style() == FullscreenOne || focus == c.self {
		if c.parent == nil {
			return false
		}
		return c.parent.FocusNodeInDirection(focus, dir)
	}

	i := c.IndexOf(focus)
	if i < 0 {
		return false
	}

	if !dir.Along(c.direction) || len(c.children) == 1 ||
		(dir.Backward() && i == 0) || (!dir.Backward() && i == len(c.children)-1) {
		if c.parent == nil {
			return false
		}
		return c.parent.FocusNodeInDirection(c.self, dir)
	}

	if dir.Backward() {
		c.children[i-1].SetFocus(dir)
	} else {
		c.children[i+1].SetFocus(dir)
	}
	return true
}

// AddWindow adds a leaf for h next to the remembered focus, or inside it
// when the focus is a container.
func (c *Container) AddWindow(h Handle) Node {
	index := -1
	if focus := c.myFocusNode(); focus != nil {
		if focus.CanHaveChildren() && focus.Parent() == c.self {
			return focus.AddWindow(h)
		}
		if i := c.IndexOf(focus); i >= 0 {
			index = i + 1
		}
	}

	leaf := c.factory.CreateWindowLeaf(h)
	if leaf == nil {
		return nil
	}

	if leaf.Style() == Floating {
		if c.parent == nil || !c.parent.AddNodes(leaf) {
			leaf.Dispose()
			return nil
		}
		return leaf
	}

	c.insertChildAt(leaf, index)
	c.relayout(0, true)
	return leaf
}

func (c *Container) AddNodes(nodes ...Node) bool {
	if len(nodes) == 0 {
		slog.Warn("No nodes to add", "package", "tree", "node", c.self)
		return false
	}

	index := -1
	if focus := c.myFocusNode(); focus != nil {
		index = c.IndexOf(focus)
	}

	var floating []Node
	for _, n := range nodes {
		if n.Style() == Floating {
			floating = append(floating, n)
			continue
		}
		c.insertChildAt(n, index)
		if index >= 0 {
			index++
		}
	}

	if len(floating) > 0 && c.parent != nil {
		c.parent.AddNodes(floating...)
	}

	c.relayout(0, true)
	return true
}

func (c *Container) RemoveChild(child Node) bool {
	i := c.IndexOf(child)
	if i < 0 {
		slog.Warn("Cannot remove node that is not a child", "package", "tree", "node", c.self, "child", child)
		return false
	}
	c.removeChildAt(i, true, true)
	return true
}

func (c *Container) DisconnectChild(child Node) bool {
	i := c.IndexOf(child)
	if i < 0 {
		slog.Warn("Cannot disconnect node that is not a child", "package", "tree", "node", c.self, "child", child)
		return false
	}
	c.removeChildAt(i, false, true)
	return true
}

// ReplaceNode puts n where old is. old is detached but not disposed.
func (c *Container) ReplaceNode(old, n Node) bool {
	i := c.IndexOf(old)
	if i < 0 {
		return false
	}
	n.SetFixedRect(old.FixedRect())
	n.base().rect = old.Rect()
	c.insertChildAt(n, i)
	c.removeChildAt(i+1, false, true)
	return true
}

// TransferNode inserts n next to child, or at the edge facing the mover when
// child is nil.
func (c *Container) TransferNode(child, n Node, dir TransferDirection, focused bool) bool {
	i := len(c.children)
	if child != nil {
		i = c.IndexOf(child)
		if i < 0 {
			return false
		}
		if !dir.Along(c.direction) {
			if c.parent == nil {
				return false
			}
			return c.parent.TransferNode(c.self, n, dir, focused)
		}
	}

	index := i
	if !dir.Backward() {
		if child == nil {
			index = 0
		} else {
			index = min(len(c.children), i+1)
		}
	}

	n.SetFixedRect(false)
	c.insertChildAt(n, index)
	c.relayout(0, child != nil)

	if focused {
		if t := c.focusTracker(); t != nil {
			t.UpdateFocusTree()
		}
	}
	return true
}

// TransferNodeToDesktop hands child to dst. Nothing changes when dst refuses it.
func (c *Container) TransferNodeToDesktop(child Node, dst *Desktop) bool {
	i := c.IndexOf(child)
	if i < 0 || dst == nil {
		return false
	}

	c.ignore(i)
	ok := dst.AddNodes(child)
	c.unignore(i)
	if !ok {
		return false
	}

	if t := c.focusTracker(); t != nil {
		walk(child, func(n Node) { t.Untrack(n) })
	}
	c.removeChildAt(i, false, true)

	if len(c.children) > 0 {
		c.children[max(0, i-1)].SetFocus(0)
	}
	return true
}

func (c *Container) ChildWantMove(child Node, dir TransferDirection) {
	i := c.IndexOf(child)
	if i < 0 {
		return
	}

	focused := false
	if t := c.focusTracker(); t != nil {
		focused = t.MyLastFocusNode(c.self) == child
	}

	boundary := (dir.Backward() && i == 0) || (!dir.Backward() && i == len(c.children)-1)
	if boundary || !dir.Along(c.direction) {
		if c.parent == nil {
			return
		}
		c.ignore(i)
		ok := c.parent.TransferNode(c.self, child, dir, focused)
		c.unignore(i)
		if ok {
			c.removeChildAt(i, false, true)
		}
		return
	}

	j := i + 1
	if dir.Backward() {
		j = i - 1
	}

	if sibling := c.children[j]; sibling.CanHaveChildren() {
		c.ignore(i)
		ok := sibling.TransferNode(nil, child, dir, focused)
		c.unignore(i)
		if ok {
			c.removeChildAt(i, false, true)
			return
		}
	}

	c.children[i], c.children[j] = c.children[j], c.children[i]
	c.relayout(min(i, j), true)
}

func (c *Container) FindNodeWithID(id int64) Node {
	if c.id == id {
		return c.self
	}
	for _, child := range c.children {
		if n := child.FindNodeWithID(id); n != nil {
			return n
		}
	}
	return nil
}

func (c *Container) Show() bool {
	c.visible = true
	ok := true
	for _, child := range c.children {
		ok = child.Show() && ok
	}
	return ok
}

func (c *Container) Hide() bool {
	c.visible = false
	ok := true
	for _, child := range c.children {
		ok = child.Hide() && ok
	}
	return ok
}

func (c *Container) Restore() bool {
	ok := true
	for _, child := range c.children {
		ok = child.Restore() && ok
	}
	return ok
}

func (c *Container) Dispose() {
	if c.disposed {
		return
	}
	for _, child := range slices.Clone(c.children) {
		c.release(child)
		child.Dispose()
	}
	c.children = nil
	c.node.Dispose()
}

func (c *Container) childStyleChanged(ev StyleChangedEvent) {
	c.styleChanged.Emit(ev)
}

func (c *Container) childRequestRectChange(ev RequestRectChangeEvent) {
	if c.IndexOf(ev.Requester) < 0 {
		return
	}
	ev.Requester.SetFixedRect(true)
	c.relayout(0, true)
}
