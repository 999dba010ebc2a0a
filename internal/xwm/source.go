package xwm

import (
	"errors"
	"fmt"
	"math"

	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
	"github.com/ItsNotGoodName/x-tilewm/internal/tree"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/ewmh"
	"github.com/jezek/xgbutil/icccm"
)

var ErrUnmanaged = errors.New("window is not managed")

// Source opens client windows for the tree.
type Source struct {
	x *X
}

var _ tree.WindowSource = Source{}

func NewSource(x *X) Source {
	return Source{x: x}
}

func (s Source) OpenWindow(h tree.Handle) (tree.WindowInfo, error) {
	wid := xproto.Window(h)
	conn := s.x.Conn

	attrs, err := xproto.GetWindowAttributes(conn, wid).Reply()
	if err != nil {
		return tree.WindowInfo{}, windowError(err)
	}
	if attrs.OverrideRedirect {
		return tree.WindowInfo{}, fmt.Errorf("%w: override redirect", ErrUnmanaged)
	}

	geom, err := xproto.GetGeometry(conn, xproto.Drawable(wid)).Reply()
	if err != nil {
		return tree.WindowInfo{}, windowError(err)
	}

	if err := xproto.ChangeWindowAttributesChecked(conn, wid, xproto.CwEventMask,
		[]uint32{xproto.EventMaskFocusChange | xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify},
	).Check(); err != nil {
		return tree.WindowInfo{}, windowError(err)
	}

	w := &Window{x: s.x, wid: wid, mapped: attrs.MapState != xproto.MapStateUnmapped}
	if hints, err := icccm.WmNormalHintsGet(s.x.XU, wid); err == nil {
		w.minWidth, w.minHeight = minSize(hints)
	}

	return tree.WindowInfo{
		Window:   w,
		Title:    s.Title(wid),
		Rect:     mosaic.XYWH(int(geom.X), int(geom.Y), int(geom.Width), int(geom.Height)),
		Floating: s.transient(wid),
	}, nil
}

// Title returns _NET_WM_NAME, falling back to WM_NAME.
func (s Source) Title(wid xproto.Window) string {
	if title, err := ewmh.WmNameGet(s.x.XU, wid); err == nil && title != "" {
		return title
	}
	title, _ := icccm.WmNameGet(s.x.XU, wid)
	return title
}

// minSize returns the minimum size a client asks for in its normal hints.
func minSize(hints *icccm.NormalHints) (width, height int) {
	if hints == nil || hints.Flags&icccm.SizeHintPMinSize == 0 {
		return 0, 0
	}
	return hintSize(hints.MinWidth), hintSize(hints.MinHeight)
}

// hintSize drops sizes X cannot configure, such as negative values read as unsigned.
func hintSize(v uint) int {
	if v > math.MaxUint16 {
		return 0
	}
	return int(v)
}

func (s Source) transient(wid xproto.Window) bool {
	parent, err := icccm.WmTransientForGet(s.x.XU, wid)
	return err == nil && parent != 0
}
