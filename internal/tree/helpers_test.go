package tree

import (
	"testing"

	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
)

type testWindow struct {
	handle    Handle
	rect      mosaic.Rect
	minWidth  int
	minHeight int
	moves     int
	visible   bool
	focused   bool
	above     bool
	closed    bool
	gone      bool
}

func (w *testWindow) Handle() Handle { return w.handle }

func (w *testWindow) Move(r mosaic.Rect) (mosaic.Rect, error) {
	if w.gone {
		return mosaic.Rect{}, ErrWindowGone
	}
	w.moves++
	w.rect = mosaic.XYWH(r.Left, r.Top, max(r.Width(), w.minWidth), max(r.Height(), w.minHeight))
	return w.rect, nil
}

func (w *testWindow) Show() error { w.visible = true; return nil }

func (w *testWindow) Hide() error { w.visible = false; return nil }

func (w *testWindow) Focus() error {
	if w.gone {
		return ErrWindowGone
	}
	w.focused = true
	return nil
}

func (w *testWindow) Raise(above bool) error { w.above = above; return nil }

func (w *testWindow) Restore() error { return nil }

func (w *testWindow) Close() error { w.closed = true; return nil }

type testSource struct {
	windows  map[Handle]*testWindow
	floating map[Handle]bool
}

func newTestSource() *testSource {
	return &testSource{
		windows:  make(map[Handle]*testWindow),
		floating: make(map[Handle]bool),
	}
}

func (s *testSource) OpenWindow(h Handle) (WindowInfo, error) {
	if h == 0 {
		return WindowInfo{}, ErrWindowGone
	}
	w, ok := s.windows[h]
	if !ok {
		w = &testWindow{handle: h, rect: mosaic.XYWH(100, 100, 200, 150)}
		s.windows[h] = w
	}
	return WindowInfo{
		Window:   w,
		Title:    "test",
		Rect:     w.rect,
		Floating: s.floating[h],
	}, nil
}

var fullHD = mosaic.NewRect(0, 0, 1920, 1080)

func newTestDesktop(t *testing.T, rects ...mosaic.Rect) (*Desktop, *testSource) {
	t.Helper()
	if len(rects) == 0 {
		rects = []mosaic.Rect{fullHD}
	}
	src := newTestSource()
	d := NewFactory(src).NewDesktop(0, rects, mosaic.Horizontal)
	if d == nil {
		t.Fatal("NewDesktop() = nil")
	}
	return d, src
}

func mustScreen(t *testing.T, d *Desktop, i int) *Screen {
	t.Helper()
	s, ok := d.Screen(i)
	if !ok {
		t.Fatalf("Screen(%d) not found", i)
	}
	return s
}

func addWindows(t *testing.T, d *Desktop, handles ...Handle) []*Leaf {
	t.Helper()
	leaves := make([]*Leaf, 0, len(handles))
	for _, h := range handles {
		n := d.AddWindow(h)
		if n == nil {
			t.Fatalf("AddWindow(%d) = nil", h)
		}
		leaves = append(leaves, n.(*Leaf))
	}
	return leaves
}

func rects(nodes ...Node) []mosaic.Rect {
	out := make([]mosaic.Rect, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Rect())
	}
	return out
}

// occurrences counts how many child lists below n hold target.
func occurrences(n Node, target Node) int {
	count := 0
	for _, child := range n.Children() {
		if child == target {
			count++
		}
		count += occurrences(child, target)
	}
	return count
}

func ids(nodes ...Node) []int64 {
	out := make([]int64, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID())
	}
	return out
}
