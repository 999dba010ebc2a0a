package tree

import (
	"errors"

	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
)

type DesktopChangedEvent struct {
	Old *Desktop
	New *Desktop
}

// Collection is the fixed set of virtual desktops. Exactly one is active.
type Collection struct {
	factory  *Factory
	desktops []*Desktop
	active   int

	desktopChanged Signal[DesktopChangedEvent]
}

func NewCollection(f *Factory, count int, rects []mosaic.Rect, dir mosaic.Direction) (*Collection, error) {
	if count <= 0 {
		return nil, errors.New("no desktops")
	}
	if len(rects) == 0 {
		return nil, errors.New("no screens")
	}

	c := &Collection{factory: f}
	for i := range count {
		d := f.NewDesktop(i, rects, dir)
		if i != 0 {
			d.Hide()
		}
		c.desktops = append(c.desktops, d)
	}
	return c, nil
}

func (c *Collection) Factory() *Factory { return c.factory }

func (c *Collection) Len() int { return len(c.desktops) }

func (c *Collection) ActiveIndex() int { return c.active }

func (c *Collection) Active() *Desktop { return c.desktops[c.active] }

func (c *Collection) Desktop(index int) (*Desktop, bool) {
	if index < 0 || index >= len(c.desktops) {
		return nil, false
	}
	return c.desktops[index], true
}

func (c *Collection) Desktops() []*Desktop {
	return append([]*Desktop(nil), c.desktops...)
}

func (c *Collection) OnDesktopChanged(fn func(DesktopChangedEvent)) func() {
	return c.desktopChanged.Subscribe(fn)
}

// Activate hides the active desktop and shows the one at index.
func (c *Collection) Activate(index int) bool {
	if index == c.active || index < 0 || index >= len(c.desktops) {
		return false
	}

	old := c.desktops[c.active]
	old.Hide()
	c.active = index
	c.desktops[index].Show()

	c.desktopChanged.Emit(DesktopChangedEvent{Old: old, New: c.desktops[index]})
	old.raiseChanged()
	c.desktops[index].raiseChanged()
	return true
}

// MoveFocusNodeTo sends the focus node of the active desktop to the desktop at index.
func (c *Collection) MoveFocusNodeTo(index int) bool {
	dst, ok := c.Desktop(index)
	if !ok {
		return false
	}
	return c.Active().TransferFocusNodeToDesktop(dst)
}

// FindLeaf returns the leaf of h and the desktop it lives on.
func (c *Collection) FindLeaf(h Handle) (*Leaf, *Desktop, bool) {
	l, ok := c.factory.Leaf(h)
	if !ok {
		return nil, nil, false
	}
	d := l.Desktop()
	if d == nil {
		return l, nil, false
	}
	return l, d, true
}

// RemoveWindow drops the leaf of a window that no longer exists.
func (c *Collection) RemoveWindow(h Handle) bool {
	l, _, ok := c.FindLeaf(h)
	if !ok {
		if l != nil {
			l.Dispose()
		}
		return false
	}
	return l.Parent().RemoveChild(l)
}

func (c *Collection) ScreensChanged(rects []mosaic.Rect, dir mosaic.Direction) {
	for _, d := range c.desktops {
		d.ScreensChanged(rects, dir)
	}
}

func (c *Collection) FindNodeWithID(id int64) Node {
	for _, d := range c.desktops {
		if n := d.FindNodeWithID(id); n != nil {
			return n
		}
	}
	return nil
}
