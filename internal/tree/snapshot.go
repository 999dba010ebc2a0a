package tree

import "github.com/ItsNotGoodName/x-tilewm/internal/mosaic"

// Snapshot is a plain copy of a subtree.
type Snapshot struct {
	ID        int64       `json:"id"`
	Kind      string      `json:"kind"`
	Name      string      `json:"name"`
	Title     string      `json:"title,omitempty"`
	Handle    Handle      `json:"handle,omitempty"`
	Rect      mosaic.Rect `json:"rect"`
	FixedRect bool        `json:"fixed_rect,omitempty"`
	Style     string      `json:"style"`
	Direction string      `json:"direction"`
	Depth     int         `json:"depth"`
	Focused   bool        `json:"focused,omitempty"`
	Children  []Snapshot  `json:"children,omitempty"`
	Floating  []Snapshot  `json:"floating,omitempty"`
}

func TakeSnapshot(n Node) Snapshot {
	var focus Node
	if d := n.Desktop(); d != nil {
		focus = d.FocusNode()
	}
	return takeSnapshot(n, focus)
}

func takeSnapshot(n Node, focus Node) Snapshot {
	s := Snapshot{
		ID:        n.ID(),
		Name:      n.Name(),
		Rect:      n.Rect(),
		FixedRect: n.FixedRect(),
		Style:     n.Style().String(),
		Direction: n.Direction().String(),
		Depth:     n.Depth(),
		Focused:   n == focus,
	}

	switch v := n.(type) {
	case *Leaf:
		s.Kind = "leaf"
		s.Title = v.Title()
		s.Handle = v.Handle()
	case *Screen:
		s.Kind = "screen"
	case *Desktop:
		s.Kind = "desktop"
		for _, f := range v.floating {
			s.Floating = append(s.Floating, takeSnapshot(f, focus))
		}
	default:
		s.Kind = "container"
	}

	for _, child := range n.Children() {
		s.Children = append(s.Children, takeSnapshot(child, focus))
	}
	return s
}
