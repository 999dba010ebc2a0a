package tree

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
)

// ErrWindowGone is returned by a Window whose platform window no longer exists.
var ErrWindowGone = errors.New("window gone")

// Handle identifies a platform window.
type Handle uint32

// Window is the platform side of a leaf.
type Window interface {
	Handle() Handle
	// Move places the window at r and returns the rect the window actually took.
	Move(r mosaic.Rect) (mosaic.Rect, error)
	Show() error
	Hide() error
	Focus() error
	// Raise keeps the window above tiled windows when above is true.
	Raise(above bool) error
	Restore() error
	Close() error
}

// WindowInfo describes a window a WindowSource agreed to manage.
type WindowInfo struct {
	Window   Window
	Title    string
	Rect     mosaic.Rect
	Floating bool
}

// WindowSource turns a handle into a manageable window.
type WindowSource interface {
	OpenWindow(h Handle) (WindowInfo, error)
}

// Factory creates nodes. It hands out node ids and remembers which leaf
// belongs to which handle.
type Factory struct {
	Source       WindowSource
	Retries      int
	FloatingStep int

	lastID int64
	leaves map[Handle]*Leaf
}

const DefaultFloatingStep = 20

func NewFactory(source WindowSource) *Factory {
	return &Factory{
		Source:       source,
		Retries:      mosaic.DefaultRetries,
		FloatingStep: DefaultFloatingStep,
		leaves:       make(map[Handle]*Leaf),
	}
}

func (f *Factory) nextID() int64 {
	f.lastID++
	return f.lastID
}

// Leaf returns the leaf managing h.
func (f *Factory) Leaf(h Handle) (*Leaf, bool) {
	l, ok := f.leaves[h]
	return l, ok
}

// CreateWindowLeaf asks the source for h and wraps it in a leaf. It returns
// nil when h cannot be managed.
func (f *Factory) CreateWindowLeaf(h Handle) *Leaf {
	if f.Source == nil {
		slog.Warn("No window source, cannot create leaf", "package", "tree", "handle", h)
		return nil
	}
	if _, ok := f.leaves[h]; ok {
		slog.Warn("Window is already managed", "package", "tree", "handle", h)
		return nil
	}

	info, err := f.Source.OpenWindow(h)
	if err != nil {
		slog.Warn("Failed to open window", "package", "tree", "handle", h, "error", err)
		return nil
	}

	return f.NewLeaf(info)
}

func (f *Factory) NewLeaf(info WindowInfo) *Leaf {
	l := &Leaf{
		window: info.Window,
		title:  info.Title,
	}
	l.init(l, f, "Window", info.Rect, mosaic.Horizontal)
	if info.Floating {
		l.style = Floating
	}
	if info.Window != nil {
		f.leaves[info.Window.Handle()] = l
	}
	return l
}

func (f *Factory) NewContainer(rect mosaic.Rect, dir mosaic.Direction) *Container {
	c := &Container{}
	c.initContainer(c, f, "Container", rect, dir)
	return c
}

func (f *Factory) NewScreen(name string, rect mosaic.Rect, dir mosaic.Direction) *Screen {
	s := &Screen{}
	s.initContainer(s, f, name, rect, dir)
	s.fixedRect = true
	return s
}

// NewDesktop creates a desktop with one screen per rect and focuses the first
// screen. It returns nil without rects.
func (f *Factory) NewDesktop(index int, rects []mosaic.Rect, dir mosaic.Direction) *Desktop {
	if len(rects) == 0 {
		slog.Warn("Desktop needs at least one screen", "package", "tree", "index", index)
		return nil
	}

	d := &Desktop{
		index:   index,
		tracker: NewFocusTracker(),
	}
	d.initContainer(d, f, fmt.Sprintf("Desktop%d", index), mosaic.Rect{}, mosaic.Horizontal)
	d.tracker.Track(d)

	for i, r := range rects {
		d.insertChildAt(f.NewScreen(screenName(i), r, dir), -1)
		d.rect = d.rect.Union(r)
	}

	d.children[0].SetFocus(0)
	return d
}

func screenName(i int) string {
	return fmt.Sprintf("Screen%d", i)
}
