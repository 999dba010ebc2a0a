package tree

import (
	"log/slog"
	"slices"

	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
)

// Screen is the root container of one display. At most one node below it
// is FullscreenOne.
type Screen struct {
	Container

	fullscreen Node
}

var _ Node = (*Screen)(nil)

// FullscreenNode returns the node covering the screen, if it is still below s.
func (s *Screen) FullscreenNode() Node {
	if s.fullscreen == nil {
		return nil
	}
	for p := s.fullscreen.Parent(); p != nil; p = p.Parent() {
		if p == Node(s) {
			return s.fullscreen
		}
	}
	s.fullscreen = nil
	return nil
}

func (s *Screen) UpdateRect(r mosaic.Rect) bool {
	ok := s.Container.UpdateRect(r)
	if fs := s.FullscreenNode(); fs != nil {
		fs.SetFullscreenRect(r)
	}
	return ok
}

func (s *Screen) SetFocus(dir TransferDirection) {
	if fs := s.FullscreenNode(); fs != nil {
		fs.SetFocus(dir)
		return
	}
	s.Container.SetFocus(dir)
}

func (s *Screen) TransferNode(child, n Node, dir TransferDirection, focused bool) bool {
	if !s.Container.TransferNode(child, n, dir, focused) {
		return false
	}
	if fs := s.FullscreenNode(); fs != nil {
		fs.SetFocus(dir)
	}
	return true
}

// TransferAllChildren moves every child of s to dst, dropping fullscreen on the way.
func (s *Screen) TransferAllChildren(dst *Screen, dir TransferDirection) {
	var focus Node
	if t := s.focusTracker(); t != nil {
		focus = t.FocusNode()
	}

	for _, child := range slices.Clone(s.children) {
		if child.Style() == FullscreenOne {
			child.SetStyle(Tile)
		}

		inFocus := false
		walk(child, func(n Node) { inFocus = inFocus || n == focus })

		if !dst.TransferNode(nil, child, dir, inFocus) {
			slog.Error("Failed to transfer node to screen", "package", "tree", "node", child, "screen", dst)
			continue
		}
		s.DisconnectChild(child)
	}
	s.fullscreen = nil
}

func (s *Screen) childStyleChanged(ev StyleChangedEvent) {
	n := ev.Node
	switch {
	case n.Style() == FullscreenOne:
		if prev := s.FullscreenNode(); prev != nil && prev != n && prev.Style() == FullscreenOne {
			prev.SetStyle(Tile)
		}
		n.SetFullscreenRect(s.rect)
		s.fullscreen = n
	case n.Style() == Tile && ev.Prev == FullscreenOne:
		if s.fullscreen == n {
			s.fullscreen = nil
		}
		n.UpdateRect(n.Rect())
	case s.fullscreen == n:
		s.fullscreen = nil
	}

	s.styleChanged.Emit(ev)
}
