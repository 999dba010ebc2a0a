package xwm

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
	"github.com/ItsNotGoodName/x-tilewm/internal/tree"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/icccm"
	"github.com/jezek/xgbutil/xevent"
	"github.com/jezek/xgbutil/xprop"
)

// Window is a client window managed through X.
type Window struct {
	x         *X
	wid       xproto.Window
	minWidth  int
	minHeight int
	mapped    bool
}

var _ tree.Window = (*Window)(nil)

func (w *Window) Handle() tree.Handle {
	return tree.Handle(w.wid)
}

// Move configures the window to r. Windows with a minimum size hint larger
// than r report the larger rect.
func (w *Window) Move(r mosaic.Rect) (mosaic.Rect, error) {
	r = mosaic.XYWH(r.Left, r.Top, max(r.Width(), w.minWidth, 1), max(r.Height(), w.minHeight, 1))

	err := xproto.ConfigureWindowChecked(w.x.Conn, w.wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowBorderWidth,
		[]uint32{uint32(int32(r.Left)), uint32(int32(r.Top)), uint32(r.Width()), uint32(r.Height()), 0},
	).Check()
	if err != nil {
		return mosaic.Rect{}, windowError(err)
	}
	return r, nil
}

func (w *Window) Show() error {
	if err := xproto.MapWindowChecked(w.x.Conn, w.wid).Check(); err != nil {
		return windowError(err)
	}
	w.mapped = true
	return nil
}

func (w *Window) Hide() error {
	if !w.mapped {
		return nil
	}
	w.x.expectUnmap(w.wid)
	if err := xproto.UnmapWindowChecked(w.x.Conn, w.wid).Check(); err != nil {
		w.x.consumeUnmap(w.wid)
		return windowError(err)
	}
	w.mapped = false
	return nil
}

func (w *Window) Focus() error {
	return windowError(xproto.SetInputFocusChecked(w.x.Conn, xproto.InputFocusPointerRoot, w.wid, xproto.TimeCurrentTime).Check())
}

func (w *Window) Raise(above bool) error {
	mode := uint32(xproto.StackModeBelow)
	if above {
		mode = xproto.StackModeAbove
	}
	return windowError(xproto.ConfigureWindowChecked(w.x.Conn, w.wid, xproto.ConfigWindowStackMode, []uint32{mode}).Check())
}

func (w *Window) Restore() error {
	return w.Show()
}

// Close asks the client to close the window with WM_DELETE_WINDOW, or
// kills the client when it does not support it.
func (w *Window) Close() error {
	protocols, err := icccm.WmProtocolsGet(w.x.XU, w.wid)
	if err != nil || !slices.Contains(protocols, "WM_DELETE_WINDOW") {
		slog.Debug("Window does not support WM_DELETE_WINDOW, killing client", "package", "xwm", "window", w.wid)
		return windowError(xproto.KillClientChecked(w.x.Conn, uint32(w.wid)).Check())
	}

	wmProtocols, err := xprop.Atm(w.x.XU, "WM_PROTOCOLS")
	if err != nil {
		return err
	}
	wmDeleteWindow, err := xprop.Atm(w.x.XU, "WM_DELETE_WINDOW")
	if err != nil {
		return err
	}

	ev, err := xevent.NewClientMessage(32, w.wid, wmProtocols, int(wmDeleteWindow), int(xproto.TimeCurrentTime))
	if err != nil {
		return err
	}
	return windowError(xproto.SendEventChecked(w.x.Conn, false, w.wid, xproto.EventMaskNoEvent, string(ev.Bytes())).Check())
}

// windowError maps BadWindow to tree.ErrWindowGone.
func windowError(err error) error {
	if err == nil {
		return nil
	}
	var bad xproto.WindowError
	if errors.As(err, &bad) {
		return errors.Join(tree.ErrWindowGone, err)
	}
	return err
}
