package wm

import (
	"context"
	"errors"
	"testing"

	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
	"github.com/ItsNotGoodName/x-tilewm/internal/tree"
	"github.com/google/go-cmp/cmp"
)

type fakeWindow struct {
	handle  tree.Handle
	visible bool
	closed  bool
}

func (w *fakeWindow) Handle() tree.Handle { return w.handle }

func (w *fakeWindow) Move(r mosaic.Rect) (mosaic.Rect, error) { return r, nil }

func (w *fakeWindow) Show() error { w.visible = true; return nil }

func (w *fakeWindow) Hide() error { w.visible = false; return nil }

func (w *fakeWindow) Focus() error { return nil }

func (w *fakeWindow) Raise(above bool) error { return nil }

func (w *fakeWindow) Restore() error { return nil }

func (w *fakeWindow) Close() error { w.closed = true; return nil }

type fakeSource map[tree.Handle]*fakeWindow

func (s fakeSource) OpenWindow(h tree.Handle) (tree.WindowInfo, error) {
	w := &fakeWindow{handle: h}
	s[h] = w
	return tree.WindowInfo{Window: w, Title: "fake"}, nil
}

var fullHD = mosaic.NewRect(0, 0, 1920, 1080)

func newTestManager(t *testing.T, loader Loader) (*Manager, fakeSource) {
	t.Helper()

	src := make(fakeSource)
	c, err := tree.NewCollection(tree.NewFactory(src), 3, []mosaic.Rect{fullHD}, mosaic.Horizontal)
	if err != nil {
		t.Fatalf("NewCollection() error = %v", err)
	}
	m := New(c, Settings{}, loader)

	ctx, cancel := context.WithCancel(context.Background())
	errC := make(chan error, 1)
	go func() { errC <- m.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-errC
	})

	return m, src
}

func enqueue(t *testing.T, m *Manager, cmds ...any) {
	t.Helper()
	for _, cmd := range cmds {
		if _, err := m.Enqueue(context.Background(), cmd); err != nil {
			t.Fatalf("Enqueue(%T) error = %v", cmd, err)
		}
	}
}

func enqueueLines(t *testing.T, m *Manager, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if _, err := m.EnqueueLine(context.Background(), line); err != nil {
			t.Fatalf("EnqueueLine(%q) error = %v", line, err)
		}
	}
}

func snapshot(t *testing.T, m *Manager) tree.Snapshot {
	t.Helper()
	s, err := m.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	return s
}

// leaves returns the handles below the first screen of s, marking the focused one.
func leaves(s tree.Snapshot) []string {
	var out []string
	var walk func(tree.Snapshot)
	walk = func(n tree.Snapshot) {
		if n.Kind == "leaf" {
			name := n.Name
			if n.Focused {
				name = "*" + name
			}
			out = append(out, name+"/"+n.Rect.String())
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(s)
	return out
}

func TestManager_Windows(t *testing.T) {
	m, _ := newTestManager(t, nil)

	enqueue(t, m, CommandNewWindow{Handle: 1}, CommandNewWindow{Handle: 2}, CommandNewWindow{Handle: 2})

	want := []string{"Window/(0,0,960,1080)", "*Window/(960,0,1920,1080)"}
	if diff := cmp.Diff(want, leaves(snapshot(t, m))); diff != "" {
		t.Errorf("leaves mismatch (-want +got):\n%s", diff)
	}

	enqueueLines(t, m, "focus left")
	want = []string{"*Window/(0,0,960,1080)", "Window/(960,0,1920,1080)"}
	if diff := cmp.Diff(want, leaves(snapshot(t, m))); diff != "" {
		t.Errorf("leaves after focus mismatch (-want +got):\n%s", diff)
	}

	enqueue(t, m, CommandDestroyWindow{Handle: 1})
	want = []string{"*Window/(0,0,1920,1080)"}
	if diff := cmp.Diff(want, leaves(snapshot(t, m))); diff != "" {
		t.Errorf("leaves after destroy mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_DestroyFocusedWindow(t *testing.T) {
	m, src := newTestManager(t, nil)

	enqueue(t, m, CommandNewWindow{Handle: 1}, CommandNewWindow{Handle: 2}, CommandDestroyWindow{Handle: 2})
	enqueueLines(t, m, "kill")
	snapshot(t, m)

	if !src[1].closed {
		t.Errorf("remaining window not closed by kill")
	}
}

func TestManager_UnmapWindow(t *testing.T) {
	m, src := newTestManager(t, nil)

	enqueue(t, m, CommandNewWindow{Handle: 1}, CommandNewWindow{Handle: 2}, CommandUnmapWindow{Handle: 2})

	want := []string{"*Window/(0,0,1920,1080)"}
	if diff := cmp.Diff(want, leaves(snapshot(t, m))); diff != "" {
		t.Errorf("leaves after unmap mismatch (-want +got):\n%s", diff)
	}

	enqueue(t, m, CommandNewWindow{Handle: 2})
	want = []string{"Window/(0,0,960,1080)", "*Window/(960,0,1920,1080)"}
	if diff := cmp.Diff(want, leaves(snapshot(t, m))); diff != "" {
		t.Errorf("leaves after map mismatch (-want +got):\n%s", diff)
	}
	if !src[2].visible {
		t.Errorf("window not visible after map")
	}
}

func TestManager_MapKnownWindow(t *testing.T) {
	m, src := newTestManager(t, nil)

	enqueue(t, m, CommandNewWindow{Handle: 1}, CommandNewWindow{Handle: 2})
	snapshot(t, m)
	src[2].visible = false

	enqueue(t, m, CommandNewWindow{Handle: 2})
	snapshot(t, m)
	if !src[2].visible {
		t.Errorf("window not visible after map")
	}

	enqueueLines(t, m, "move workspace number 1")
	snapshot(t, m)
	enqueue(t, m, CommandNewWindow{Handle: 2})
	snapshot(t, m)
	if src[2].visible {
		t.Errorf("window on hidden workspace visible after map")
	}
}

func TestManager_ResizeStep(t *testing.T) {
	m, _ := newTestManager(t, nil)

	enqueue(t, m, CommandNewWindow{Handle: 1}, CommandNewWindow{Handle: 2})
	enqueueLines(t, m, "focus left", "resize grow right")

	want := []string{"*Window/(0,0,980,1080)", "Window/(980,0,1920,1080)"}
	if diff := cmp.Diff(want, leaves(snapshot(t, m))); diff != "" {
		t.Errorf("leaves mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_Workspaces(t *testing.T) {
	m, src := newTestManager(t, nil)

	enqueue(t, m, CommandNewWindow{Handle: 1}, CommandNewWindow{Handle: 2})
	enqueueLines(t, m, "move workspace number 1")

	if got := len(leaves(snapshot(t, m))); got != 1 {
		t.Fatalf("len(leaves) = %d, want 1", got)
	}
	if src[2].visible {
		t.Errorf("moved window is visible")
	}

	enqueueLines(t, m, "workspace number 1")
	s := snapshot(t, m)
	if s.Name != "Desktop1" {
		t.Errorf("Name = %q, want %q", s.Name, "Desktop1")
	}
	if got := len(leaves(s)); got != 1 {
		t.Errorf("len(leaves) = %d, want 1", got)
	}
	if !src[2].visible || src[1].visible {
		t.Errorf("visible = %v %v, want false true", src[1].visible, src[2].visible)
	}

	enqueueLines(t, m, "workspace number 9")
	if s := snapshot(t, m); s.Name != "Desktop1" {
		t.Errorf("Name = %q after unknown workspace, want %q", s.Name, "Desktop1")
	}
}

func TestManager_Kill(t *testing.T) {
	m, src := newTestManager(t, nil)

	enqueue(t, m, CommandNewWindow{Handle: 1})
	enqueueLines(t, m, "kill")
	snapshot(t, m)

	if !src[1].closed {
		t.Errorf("window not closed")
	}
}

func TestManager_ScreensChanged(t *testing.T) {
	m, _ := newTestManager(t, nil)

	enqueue(t, m, CommandScreensChanged{Rects: []mosaic.Rect{fullHD, mosaic.NewRect(1920, 0, 3840, 1080)}})

	if got := len(snapshot(t, m).Children); got != 2 {
		t.Errorf("len(Children) = %d, want 2", got)
	}
}

func TestManager_UnknownCommand(t *testing.T) {
	m, _ := newTestManager(t, nil)

	enqueue(t, m, struct{}{}, CommandDebugGraph{})

	if s := snapshot(t, m); s.Kind != "desktop" {
		t.Errorf("Kind = %q, want %q", s.Kind, "desktop")
	}
}

func TestManager_Reload(t *testing.T) {
	reloadedC := make(chan Reloaded, 1)
	bus.Subscribe("wm.TestManager_Reload", func(ctx context.Context, event Reloaded) error {
		select {
		case reloadedC <- event:
		default:
		}
		return nil
	})

	m, _ := newTestManager(t, func() (Settings, error) {
		return Settings{FloatingStep: 50, Retries: 4}, nil
	})

	enqueueLines(t, m, "reload")
	snapshot(t, m)

	f := m.collection.Factory()
	if f.FloatingStep != 50 || f.Retries != 4 {
		t.Errorf("FloatingStep, Retries = %d, %d, want 50, 4", f.FloatingStep, f.Retries)
	}

	select {
	case ev := <-reloadedC:
		if ev.Settings.ResizeStep != DefaultResizeStep {
			t.Errorf("ResizeStep = %d, want %d", ev.Settings.ResizeStep, DefaultResizeStep)
		}
	default:
		t.Errorf("Reloaded not published")
	}
}

func TestManager_ReloadError(t *testing.T) {
	m, _ := newTestManager(t, func() (Settings, error) {
		return Settings{}, errors.New("boom")
	})

	enqueueLines(t, m, "reload")
	snapshot(t, m)

	if got := m.collection.Factory().Retries; got != mosaic.DefaultRetries {
		t.Errorf("Retries = %d, want %d", got, mosaic.DefaultRetries)
	}
}

func TestManager_Closed(t *testing.T) {
	src := make(fakeSource)
	c, err := tree.NewCollection(tree.NewFactory(src), 1, []mosaic.Rect{fullHD}, mosaic.Horizontal)
	if err != nil {
		t.Fatal(err)
	}
	m := New(c, Settings{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Serve() error = %v, want %v", err, context.Canceled)
	}

	if _, err := m.Enqueue(context.Background(), CommandKill{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Enqueue() error = %v, want %v", err, ErrClosed)
	}
	if _, err := m.EnqueueLine(context.Background(), "nope"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("EnqueueLine() error = %v, want %v", err, ErrUnknownCommand)
	}
}

func TestManager_FocusChangedPublished(t *testing.T) {
	focusC := make(chan FocusChanged, 8)
	bus.Subscribe("wm.TestManager_FocusChangedPublished", func(ctx context.Context, event FocusChanged) error {
		select {
		case focusC <- event:
		default:
		}
		return nil
	})

	m, _ := newTestManager(t, nil)
	enqueue(t, m, CommandNewWindow{Handle: 7})
	snapshot(t, m)

	for {
		select {
		case ev := <-focusC:
			if ev.Handle == 7 {
				return
			}
		default:
			t.Fatal("no focus change for the new window was published")
		}
	}
}
