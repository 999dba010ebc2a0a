// Package xwm connects the window tree to an X11 display.
package xwm

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
	"github.com/ItsNotGoodName/x-tilewm/internal/xcursor"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil"
	"github.com/jezek/xgbutil/keybind"
	"github.com/jezek/xgbutil/xinerama"
)

var (
	ErrOtherWM          = errors.New("another window manager is running")
	ErrConnectionClosed = errors.New("connection closed")
)

// X is a connection to the display the window manager runs on.
type X struct {
	XU     *xgbutil.XUtil
	Conn   *xgb.Conn
	Screen *xproto.ScreenInfo
	Root   xproto.Window

	unmapsMu sync.Mutex
	unmaps   map[xproto.Window]int
}

// Connect opens display, or $DISPLAY when display is empty.
func Connect(display string) (*X, error) {
	xgbutil.Logger = slog.NewLogLogger(slog.Default().Handler().WithAttrs([]slog.Attr{slog.String("package", "xgbutil")}), slog.LevelWarn)

	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("connect to display: %w", err)
	}

	keybind.Initialize(xu)

	return &X{
		XU:     xu,
		Conn:   xu.Conn(),
		Screen: xu.Screen(),
		Root:   xu.RootWin(),
	}, nil
}

func (x *X) Close() {
	x.Conn.Close()
}

// BecomeWM redirects the root window's substructure to this connection.
func (x *X) BecomeWM() error {
	cursor, err := xcursor.CreateCursor(x.Conn, xcursor.LeftPtr)
	if err != nil {
		return err
	}

	if err := xproto.ChangeWindowAttributesChecked(x.Conn, x.Root,
		xproto.CwEventMask|xproto.CwCursor, // 1, 2
		[]uint32{
			xproto.EventMaskSubstructureRedirect |
				xproto.EventMaskSubstructureNotify |
				xproto.EventMaskStructureNotify |
				xproto.EventMaskFocusChange, // 1
			uint32(cursor), // 2
		}).Check(); err != nil {
		var access xproto.AccessError
		if errors.As(err, &access) {
			return ErrOtherWM
		}
		return err
	}

	return nil
}

// Screens returns one rect per physical screen.
func (x *X) Screens() []mosaic.Rect {
	if x.XU.ExtInitialized("XINERAMA") {
		heads, err := xinerama.PhysicalHeads(x.XU)
		if err != nil {
			slog.Warn("Failed to query screens", "package", "xwm", "error", err)
		} else if len(heads) > 0 {
			rects := make([]mosaic.Rect, 0, len(heads))
			for _, h := range heads {
				rects = append(rects, mosaic.XYWH(h.X(), h.Y(), h.Width(), h.Height()))
			}
			return rects
		}
	}

	geom, err := xproto.GetGeometry(x.Conn, xproto.Drawable(x.Root)).Reply()
	if err != nil {
		return []mosaic.Rect{mosaic.XYWH(0, 0, int(x.Screen.WidthInPixels), int(x.Screen.HeightInPixels))}
	}
	return []mosaic.Rect{mosaic.XYWH(0, 0, int(geom.Width), int(geom.Height))}
}

// Clients returns the visible top level windows that existed before the
// window manager started.
func (x *X) Clients() ([]xproto.Window, error) {
	reply, err := xproto.QueryTree(x.Conn, x.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("query tree: %w", err)
	}

	var clients []xproto.Window
	for _, wid := range reply.Children {
		attrs, err := xproto.GetWindowAttributes(x.Conn, wid).Reply()
		if err != nil {
			continue
		}
		if attrs.OverrideRedirect || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		clients = append(clients, wid)
	}
	return clients, nil
}

// expectUnmap records an unmap requested by the window manager so the
// UnmapNotify it causes is not taken for the client withdrawing the window.
func (x *X) expectUnmap(wid xproto.Window) {
	x.unmapsMu.Lock()
	defer x.unmapsMu.Unlock()
	if x.unmaps == nil {
		x.unmaps = make(map[xproto.Window]int)
	}
	x.unmaps[wid]++
}

// consumeUnmap reports whether an UnmapNotify for wid was caused by the window manager.
func (x *X) consumeUnmap(wid xproto.Window) bool {
	x.unmapsMu.Lock()
	defer x.unmapsMu.Unlock()
	n := x.unmaps[wid]
	if n == 0 {
		return false
	}
	if n == 1 {
		delete(x.unmaps, wid)
	} else {
		x.unmaps[wid] = n - 1
	}
	return true
}

// forgetUnmaps drops the unmaps expected for a destroyed window.
func (x *X) forgetUnmaps(wid xproto.Window) {
	x.unmapsMu.Lock()
	defer x.unmapsMu.Unlock()
	delete(x.unmaps, wid)
}
