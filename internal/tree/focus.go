package tree

import (
	"log/slog"
	"slices"
)

type FocusChangedEvent struct {
	Old Node
	New Node
}

// FocusTracker remembers, per node, the child that last held focus inside
// it, and the single focused node of a desktop. Remembered values are
// hints: a remembered child may have moved away since.
type FocusTracker struct {
	lastFocus map[Node]Node
	unsubs    map[Node][]func()
	focus     Node

	focusChanged Signal[FocusChangedEvent]
}

func NewFocusTracker() *FocusTracker {
	return &FocusTracker{
		lastFocus: make(map[Node]Node),
		unsubs:    make(map[Node][]func()),
	}
}

// FocusNode returns the focused node or nil.
func (t *FocusTracker) FocusNode() Node {
	return t.focus
}

func (t *FocusTracker) OnFocusChanged(fn func(FocusChangedEvent)) func() {
	return t.focusChanged.Subscribe(fn)
}

func (t *FocusTracker) Tracked(n Node) bool {
	_, ok := t.lastFocus[n]
	return ok
}

// Track starts listening to n's want-focus and deleted notifications.
func (t *FocusTracker) Track(n Node) bool {
	if n == nil {
		return false
	}
	if _, ok := t.lastFocus[n]; ok {
		return false
	}

	t.lastFocus[n] = nil
	t.unsubs[n] = []func(){
		n.OnWantFocus(t.onWantFocus),
		n.OnDeleted(func(n Node) { t.Untrack(n) }),
	}
	return true
}

// Untrack forgets n, including every place n is remembered as focus.
func (t *FocusTracker) Untrack(n Node) bool {
	if n == nil {
		return false
	}

	if t.focus == n {
		t.focus = nil
	}

	for k, v := range t.lastFocus {
		if v == n {
			t.lastFocus[k] = nil
		}
	}

	if _, ok := t.lastFocus[n]; !ok {
		return false
	}
	delete(t.lastFocus, n)

	for _, unsub := range t.unsubs[n] {
		unsub()
	}
	delete(t.unsubs, n)

	return true
}

// MyLastFocusNode returns the child remembered as focused inside n.
func (t *FocusTracker) MyLastFocusNode(n Node) Node {
	return t.lastFocus[n]
}

// ExplicitSetMyFocusNode overrides the remembered focus of a tracked node.
func (t *FocusTracker) ExplicitSetMyFocusNode(n, focus Node) bool {
	if _, ok := t.lastFocus[n]; !ok {
		return false
	}

	t.lastFocus[n] = focus
	n.base().myFocusChanged.Emit(focus)
	return true
}

// UpdateFocusTree records the focus path from the focused node up to the root.
func (t *FocusTracker) UpdateFocusTree() {
	var prev Node
	for p := t.focus; p != nil; p = p.Parent() {
		last, ok := t.lastFocus[p]
		if !ok {
			slog.Warn("Node on the focus path is not tracked", "package", "tree", "node", p)
		} else if last != prev {
			t.lastFocus[p] = prev
			p.base().myFocusChanged.Emit(prev)
		}
		prev = p
	}
}

// TraceToFocusNode returns the path from n down to the focused node, or nil
// when the focus is not below n.
func (t *FocusTracker) TraceToFocusNode(n Node) []Node {
	var path []Node
	for p := t.focus; p != nil; p = p.Parent() {
		path = append(path, p)
		if p == n {
			slices.Reverse(path)
			return path
		}
	}
	return nil
}

func (t *FocusTracker) onWantFocus(n Node) {
	if n == nil || n == t.focus {
		return
	}

	old := t.focus
	t.focus = n
	t.UpdateFocusTree()

	t.focusChanged.Emit(FocusChangedEvent{Old: old, New: n})
}
