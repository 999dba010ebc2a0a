package tree

import (
	"testing"

	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
)

func newTestCollection(t *testing.T, count int) (*Collection, *testSource) {
	t.Helper()
	src := newTestSource()
	c, err := NewCollection(NewFactory(src), count, []mosaic.Rect{fullHD}, mosaic.Horizontal)
	if err != nil {
		t.Fatalf("NewCollection() error = %v", err)
	}
	return c, src
}

func TestNewCollection(t *testing.T) {
	if _, err := NewCollection(NewFactory(nil), 0, []mosaic.Rect{fullHD}, mosaic.Horizontal); err == nil {
		t.Errorf("NewCollection() without desktops error = nil")
	}
	if _, err := NewCollection(NewFactory(nil), 2, nil, mosaic.Horizontal); err == nil {
		t.Errorf("NewCollection() without screens error = nil")
	}

	c, _ := newTestCollection(t, 3)
	if got := c.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
	if got := c.ActiveIndex(); got != 0 {
		t.Errorf("ActiveIndex() = %d, want 0", got)
	}
	for i, d := range c.Desktops() {
		if d.Index() != i {
			t.Errorf("Desktops()[%d].Index() = %d", i, d.Index())
		}
		if visible := mustScreen(t, d, 0).Visible(); visible != (i == 0) {
			t.Errorf("desktop %d visible = %v", i, visible)
		}
	}
}

func TestCollection_Activate(t *testing.T) {
	c, src := newTestCollection(t, 3)
	addWindows(t, c.Active(), 1)

	var events []DesktopChangedEvent
	c.OnDesktopChanged(func(ev DesktopChangedEvent) { events = append(events, ev) })

	if c.Activate(0) {
		t.Errorf("Activate(active) = true, want false")
	}
	if c.Activate(3) {
		t.Errorf("Activate(out of range) = true, want false")
	}

	d0 := c.Active()
	if !c.Activate(1) {
		t.Fatal("Activate(1) = false, want true")
	}
	if src.windows[1].visible {
		t.Errorf("window on hidden desktop is visible")
	}
	if len(events) != 1 || events[0].Old != d0 || events[0].New != c.Active() {
		t.Errorf("events = %v, want one change from desktop 0 to 1", events)
	}

	c.Activate(0)
	if !src.windows[1].visible {
		t.Errorf("window on shown desktop is hidden")
	}
}

func TestCollection_MoveFocusNodeTo(t *testing.T) {
	c, src := newTestCollection(t, 2)
	d0 := c.Active()
	leaves := addWindows(t, d0, 1)
	leaves[0].SetFocus(0)
	d1, _ := c.Desktop(1)

	if !c.MoveFocusNodeTo(1) {
		t.Fatal("MoveFocusNodeTo(1) = false, want true")
	}

	if got := leaves[0].Desktop(); got != d1 {
		t.Errorf("Desktop() = %v, want %v", got, d1)
	}
	if src.windows[1].visible {
		t.Errorf("window moved to hidden desktop is visible")
	}
	if got := mustScreen(t, d0, 0).ChildCount(); got != 0 {
		t.Errorf("source ChildCount() = %d, want 0", got)
	}
	if got := d0.FocusNode(); got != Node(mustScreen(t, d0, 0)) {
		t.Errorf("source FocusNode() = %v, want its screen", got)
	}
	if d0.FocusTracker().Tracked(leaves[0]) {
		t.Errorf("source desktop still tracks moved leaf")
	}
	if !d1.FocusTracker().Tracked(leaves[0]) {
		t.Errorf("destination desktop does not track moved leaf")
	}

	if c.MoveFocusNodeTo(7) {
		t.Errorf("MoveFocusNodeTo(7) = true, want false")
	}
}

func TestCollection_FindAndRemoveWindow(t *testing.T) {
	c, _ := newTestCollection(t, 2)
	leaves := addWindows(t, c.Active(), 1)

	l, d, ok := c.FindLeaf(1)
	if !ok || l != leaves[0] || d != c.Active() {
		t.Fatalf("FindLeaf(1) = %v, %v, %v", l, d, ok)
	}
	if got := c.FindNodeWithID(leaves[0].ID()); got != Node(leaves[0]) {
		t.Errorf("FindNodeWithID() = %v, want %v", got, leaves[0])
	}

	if !c.RemoveWindow(1) {
		t.Fatal("RemoveWindow(1) = false, want true")
	}
	if _, _, ok := c.FindLeaf(1); ok {
		t.Errorf("FindLeaf(1) after removal ok = true")
	}
	if c.RemoveWindow(99) {
		t.Errorf("RemoveWindow(99) = true, want false")
	}
}

func TestCollection_ScreensChanged(t *testing.T) {
	c, _ := newTestCollection(t, 2)
	c.ScreensChanged(dualHD, mosaic.Horizontal)

	for _, d := range c.Desktops() {
		if got := len(d.Screens()); got != 2 {
			t.Errorf("desktop %d len(Screens()) = %d, want 2", d.Index(), got)
		}
	}
}
