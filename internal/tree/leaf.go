package tree

import (
	"errors"
	"log/slog"

	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
)

// Leaf is bound to one platform window and has no children.
type Leaf struct {
	node

	window         Window
	title          string
	fullscreenRect mosaic.Rect
}

var _ Node = (*Leaf)(nil)

func (l *Leaf) Window() Window {
	return l.window
}

func (l *Leaf) Handle() Handle {
	if l.window == nil {
		return 0
	}
	return l.window.Handle()
}

func (l *Leaf) Title() string {
	return l.title
}

func (l *Leaf) SetTitle(title string) {
	l.title = title
}

// UpdateRect moves the window. When the window comes back bigger than r the
// leaf keeps the bigger rect, becomes fixed and returns false.
func (l *Leaf) UpdateRect(r mosaic.Rect) bool {
	l.rect = r
	if l.window == nil || !(l.style == Tile || l.style == Floating) {
		return true
	}

	got, err := l.window.Move(r)
	if err != nil {
		slog.Warn("Failed to move window", "package", "tree", "node", l, "rect", r, "error", err)
		return true
	}
	if got.Width() <= r.Width() && got.Height() <= r.Height() {
		return true
	}

	l.rect = mosaic.XYWH(r.Left, r.Top, max(got.Width(), r.Width()), max(got.Height(), r.Height()))
	l.fixedRect = true
	return false
}

func (l *Leaf) SetStyle(style Style) {
	if l.window != nil && style != l.style {
		if err := l.window.Raise(style == Floating || style == FullscreenOne); err != nil {
			slog.Warn("Failed to restack window", "package", "tree", "node", l, "error", err)
		}
	}
	l.node.SetStyle(style)
}

func (l *Leaf) SetFullscreenRect(r mosaic.Rect) {
	l.fullscreenRect = r
	if l.window == nil || l.style != FullscreenOne {
		return
	}
	if _, err := l.window.Move(r); err != nil {
		slog.Warn("Failed to move window to fullscreen", "package", "tree", "node", l, "error", err)
	}
}

// SetFocus gives the window input focus and asks for tree focus. A window
// that is gone removes its leaf instead.
func (l *Leaf) SetFocus(dir TransferDirection) {
	if l.window != nil {
		if err := l.window.Focus(); err != nil {
			if errors.Is(err, ErrWindowGone) && l.parent != nil {
				l.parent.RemoveChild(l)
				return
			}
			slog.Warn("Failed to focus window", "package", "tree", "node", l, "error", err)
		}
	}
	l.wantFocus.Emit(l)
}

// Focused records that the platform already moved input focus to the window.
func (l *Leaf) Focused() {
	l.wantFocus.Emit(l)
}

func (l *Leaf) Show() bool {
	return l.call("show", Window.Show)
}

func (l *Leaf) Hide() bool {
	return l.call("hide", Window.Hide)
}

func (l *Leaf) Restore() bool {
	return l.call("restore", Window.Restore)
}

// Quit asks the window to close. The leaf goes away when the window does.
func (l *Leaf) Quit() bool {
	if l.window == nil {
		if l.parent != nil {
			return l.parent.RemoveChild(l)
		}
		return false
	}
	return l.call("close", Window.Close)
}

func (l *Leaf) Dispose() {
	if l.disposed {
		return
	}
	if l.window != nil {
		if cur, ok := l.factory.leaves[l.window.Handle()]; ok && cur == l {
			delete(l.factory.leaves, l.window.Handle())
		}
	}
	l.node.Dispose()
}

func (l *Leaf) call(op string, fn func(Window) error) bool {
	if l.window == nil {
		return true
	}
	if err := fn(l.window); err != nil {
		slog.Warn("Window operation failed", "package", "tree", "op", op, "node", l, "error", err)
		return false
	}
	return true
}
