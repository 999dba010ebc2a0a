// Package tree holds the window tree: leaves, containers, screens and
// desktops, the rect negotiation between them and the focus memory.
//
// The tree is not safe for concurrent use. Every call is expected to come
// from the single goroutine that owns it.
package tree

import (
	"fmt"
	"log/slog"

	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
)

type Style int

const (
	Tile Style = iota
	FullscreenOne
	// FullscreenAll is reserved. Nothing transitions into it.
	FullscreenAll
	Floating
)

func (s Style) String() string {
	switch s {
	case Tile:
		return "tile"
	case FullscreenOne:
		return "fullscreen"
	case FullscreenAll:
		return "fullscreen-all"
	case Floating:
		return "floating"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// TransferDirection is both where focus moves and where a node is moved to.
// The zero value means no direction.
type TransferDirection int

const (
	Left TransferDirection = iota + 1
	Up
	Right
	Down
)

func (d TransferDirection) String() string {
	switch d {
	case Left:
		return "left"
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	default:
		return "none"
	}
}

// Backward reports whether d points towards lower child indexes.
func (d TransferDirection) Backward() bool {
	return d == Left || d == Up
}

// Along reports whether d runs along the axis dir.
func (d TransferDirection) Along(dir mosaic.Direction) bool {
	switch d {
	case Left, Right:
		return dir == mosaic.Horizontal
	case Up, Down:
		return dir == mosaic.Vertical
	default:
		return false
	}
}

type (
	StyleChangedEvent struct {
		Node Node
		Prev Style
	}

	RequestRectChangeEvent struct {
		Requester Node
		Old       mosaic.Rect
		New       mosaic.Rect
	}
)

// Node is a leaf, container, screen or desktop.
type Node interface {
	mosaic.Tile

	ID() int64
	Name() string
	Style() Style
	SetStyle(style Style)
	Direction() mosaic.Direction
	Depth() int
	Parent() Node
	Desktop() *Desktop
	CanHaveChildren() bool
	Disposed() bool

	OnStyleChanged(fn func(StyleChangedEvent)) func()
	OnRequestRectChange(fn func(RequestRectChangeEvent)) func()
	OnWantFocus(fn func(Node)) func()
	OnDeleted(fn func(Node)) func()
	OnMyFocusChanged(fn func(Node)) func()

	SetFocus(dir TransferDirection)
	FocusNodeInDirection(focus Node, dir TransferDirection) bool
	Resize(delta int, dir TransferDirection)
	Move(dir TransferDirection)
	SetFullscreenRect(r mosaic.Rect)

	AddWindow(h Handle) Node
	AddNodes(nodes ...Node) bool
	RemoveChild(child Node) bool
	DisconnectChild(child Node) bool
	ReplaceNode(old, n Node) bool
	TransferNode(child, n Node, dir TransferDirection, focused bool) bool
	TransferNodeToDesktop(child Node, dst *Desktop) bool
	ChildWantMove(child Node, dir TransferDirection)
	ChangeDirection(dir mosaic.Direction)
	FindNodeWithID(id int64) Node
	Children() []Node

	Show() bool
	Hide() bool
	Restore() bool
	Quit() bool
	Dispose()

	base() *node
}

// node carries the state every variant shares. self is the outer value so
// shared methods can hand the right Node to parents and subscribers.
type node struct {
	self    Node
	factory *Factory

	id        int64
	name      string
	rect      mosaic.Rect
	fixedRect bool
	style     Style
	direction mosaic.Direction
	depth     int
	parent    Node
	disposed  bool

	styleChanged      Signal[StyleChangedEvent]
	requestRectChange Signal[RequestRectChangeEvent]
	wantFocus         Signal[Node]
	deleted           Signal[Node]
	myFocusChanged    Signal[Node]
}

func (n *node) init(self Node, f *Factory, name string, rect mosaic.Rect, dir mosaic.Direction) {
	n.self = self
	n.factory = f
	n.id = f.nextID()
	n.name = name
	n.rect = rect
	n.direction = dir
}

func (n *node) base() *node { return n }

func (n *node) ID() int64 { return n.id }

func (n *node) Name() string { return n.name }

func (n *node) Rect() mosaic.Rect { return n.rect }

func (n *node) FixedRect() bool { return n.fixedRect }

func (n *node) SetFixedRect(fixed bool) { n.fixedRect = fixed }

func (n *node) Style() Style { return n.style }

// SetStyle changes the style and emits style-changed when it differs.
func (n *node) SetStyle(style Style) {
	prev := n.style
	if prev == style {
		return
	}
	n.style = style
	n.styleChanged.Emit(StyleChangedEvent{Node: n.self, Prev: prev})
}

func (n *node) Direction() mosaic.Direction { return n.direction }

func (n *node) Depth() int { return n.depth }

func (n *node) Parent() Node { return n.parent }

func (n *node) Disposed() bool { return n.disposed }

func (n *node) Desktop() *Desktop {
	if n.parent == nil {
		return nil
	}
	return n.parent.Desktop()
}

func (n *node) CanHaveChildren() bool { return false }

func (n *node) Children() []Node { return nil }

func (n *node) OnStyleChanged(fn func(StyleChangedEvent)) func() {
	return n.styleChanged.Subscribe(fn)
}

func (n *node) OnRequestRectChange(fn func(RequestRectChangeEvent)) func() {
	return n.requestRectChange.Subscribe(fn)
}

func (n *node) OnWantFocus(fn func(Node)) func() {
	return n.wantFocus.Subscribe(fn)
}

func (n *node) OnDeleted(fn func(Node)) func() {
	return n.deleted.Subscribe(fn)
}

func (n *node) OnMyFocusChanged(fn func(Node)) func() {
	return n.myFocusChanged.Subscribe(fn)
}

func (n *node) UpdateRect(r mosaic.Rect) bool {
	n.rect = r
	return true
}

func (n *node) SetFocus(dir TransferDirection) {
	n.wantFocus.Emit(n.self)
}

func (n *node) FocusNodeInDirection(focus Node, dir TransferDirection) bool {
	if n.parent == nil {
		return false
	}
	return n.parent.FocusNodeInDirection(n.self, dir)
}

// Resize moves one edge of the node by delta and asks the parent for the new rect.
func (n *node) Resize(delta int, dir TransferDirection) {
	old := n.rect
	r := n.rect
	switch dir {
	case Left:
		r.Left -= delta
	case Up:
		r.Top -= delta
	case Right:
		r.Right += delta
	case Down:
		r.Bottom += delta
	default:
		return
	}
	if r.Empty() {
		slog.Warn("Refusing to resize node to nothing", "node", n.self, "rect", r)
		return
	}

	n.rect = r
	n.fixedRect = true
	n.requestRectChange.Emit(RequestRectChangeEvent{Requester: n.self, Old: old, New: r})
}

// Move asks the parent to move the node one step in dir.
func (n *node) Move(dir TransferDirection) {
	if n.style == FullscreenOne || n.parent == nil {
		return
	}
	n.parent.ChildWantMove(n.self, dir)
}

func (n *node) SetFullscreenRect(r mosaic.Rect) {}

func (n *node) AddWindow(h Handle) Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.AddWindow(h)
}

func (n *node) AddNodes(nodes ...Node) bool {
	if n.parent == nil {
		return false
	}
	return n.parent.AddNodes(nodes...)
}

func (n *node) RemoveChild(child Node) bool { return false }

func (n *node) DisconnectChild(child Node) bool { return false }

func (n *node) ReplaceNode(old, nn Node) bool { return false }

func (n *node) TransferNode(child, nn Node, dir TransferDirection, focused bool) bool {
	return false
}

func (n *node) TransferNodeToDesktop(child Node, dst *Desktop) bool { return false }

func (n *node) ChildWantMove(child Node, dir TransferDirection) {}

func (n *node) ChangeDirection(dir mosaic.Direction) {
	n.direction = dir
}

func (n *node) FindNodeWithID(id int64) Node {
	if n.id == id {
		return n.self
	}
	return nil
}

func (n *node) Show() bool { return true }

func (n *node) Hide() bool { return true }

func (n *node) Restore() bool { return true }

func (n *node) Quit() bool {
	slog.Warn("Node cannot quit", "node", n.self)
	return false
}

// Dispose emits deleted once and drops every subscriber.
func (n *node) Dispose() {
	if n.disposed {
		return
	}
	n.disposed = true
	n.deleted.Emit(n.self)

	n.styleChanged.reset()
	n.requestRectChange.reset()
	n.wantFocus.reset()
	n.deleted.reset()
	n.myFocusChanged.reset()
}

func (n *node) String() string {
	return fmt.Sprintf("%s#%d", n.name, n.id)
}

func (n *node) setParent(parent Node, depth int) {
	n.parent = parent
	n.setDepth(depth)
}

func (n *node) setDepth(depth int) {
	n.depth = depth
	for _, child := range n.self.Children() {
		child.base().setDepth(depth + 1)
	}
}

// myFocusNode is the child the node's desktop remembers as focused inside it.
func (n *node) myFocusNode() Node {
	d := n.self.Desktop()
	if d == nil {
		return nil
	}
	return d.tracker.MyLastFocusNode(n.self)
}

func (n *node) focusTracker() *FocusTracker {
	d := n.self.Desktop()
	if d == nil {
		return nil
	}
	return d.tracker
}

// walk calls fn for n and every node below it.
func walk(n Node, fn func(Node)) {
	fn(n)
	for _, child := range n.Children() {
		walk(child, fn)
	}
}
