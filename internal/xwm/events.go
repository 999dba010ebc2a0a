package xwm

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
	"github.com/ItsNotGoodName/x-tilewm/internal/tree"
	"github.com/ItsNotGoodName/x-tilewm/internal/wm"
	"github.com/google/uuid"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/thejerf/suture/v4"
)

// ReceiveEvents forwards X events to eventC until the connection closes.
// Errors from unchecked requests are logged and skipped.
func ReceiveEvents(ctx context.Context, conn *xgb.Conn, eventC chan<- xgb.Event) {
	defer close(eventC)
	slog := slog.With("func", "xwm.ReceiveEvents")

	for {
		ev, err := conn.WaitForEvent()
		if ev == nil && err == nil {
			slog.Debug("exit: connection closed")
			return
		}

		if err != nil {
			slog.Debug("request failed", "error", err)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case eventC <- ev:
		}
	}
}

type Enqueuer interface {
	Enqueue(ctx context.Context, cmd any) (uuid.UUID, error)
}

// Receiver turns X events into window manager commands.
type Receiver struct {
	x        *X
	keys     *Keymap
	screens  func() []mosaic.Rect
	enqueuer Enqueuer
}

func NewReceiver(x *X, keys *Keymap, enqueuer Enqueuer) *Receiver {
	return &Receiver{
		x:        x,
		keys:     keys,
		screens:  x.Screens,
		enqueuer: enqueuer,
	}
}

func (r *Receiver) String() string {
	return "xwm.Receiver"
}

func (r *Receiver) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eventC := make(chan xgb.Event)
	go ReceiveEvents(ctx, r.x.Conn, eventC)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-eventC:
			if !ok {
				return errors.Join(ErrConnectionClosed, suture.ErrTerminateSupervisorTree)
			}

			switch ev := ev.(type) {
			case xproto.ConfigureRequestEvent:
				r.configure(ev)
				continue
			case xproto.MappingNotifyEvent:
				if err := r.keys.Remap(r.x, ev); err != nil {
					slog.Error("Failed to grab keys after keyboard mapping changed", "package", "xwm", "error", err)
				}
				continue
			}

			for _, cmd := range r.translate(ev) {
				if _, err := r.enqueuer.Enqueue(ctx, cmd); err != nil {
					return err
				}
			}
		}
	}
}

// translate maps one event to the commands it causes.
func (r *Receiver) translate(ev xgb.Event) []any {
	switch ev := ev.(type) {
	case xproto.MapRequestEvent:
		return []any{wm.CommandNewWindow{Handle: tree.Handle(ev.Window)}}
	case xproto.UnmapNotifyEvent:
		// Every unmap also arrives from the client window itself. Only the root's copy counts.
		if ev.Event != r.rootWindow() || r.x.consumeUnmap(ev.Window) {
			return nil
		}
		return []any{wm.CommandUnmapWindow{Handle: tree.Handle(ev.Window)}}
	case xproto.DestroyNotifyEvent:
		r.x.forgetUnmaps(ev.Window)
		return []any{wm.CommandDestroyWindow{Handle: tree.Handle(ev.Window)}}
	case xproto.FocusInEvent:
		if ev.Mode != xproto.NotifyModeNormal || ev.Event == r.rootWindow() {
			return nil
		}
		return []any{wm.CommandFocusWindow{Handle: tree.Handle(ev.Event)}}
	case xproto.KeyPressEvent:
		line, ok := r.keys.Lookup(ev.State, ev.Detail)
		if !ok {
			slog.Debug("Unbound key", "package", "xwm", "code", ev.Detail, "state", ev.State)
			return nil
		}
		cmd, err := wm.Parse(line)
		if err != nil {
			slog.Warn("Bound command does not parse", "package", "xwm", "command", line, "error", err)
			return nil
		}
		return []any{cmd}
	case xproto.ConfigureNotifyEvent:
		if ev.Window != r.rootWindow() {
			return nil
		}
		return []any{wm.CommandScreensChanged{Rects: r.screens()}}
	default:
		slog.Debug("Ignoring event", "package", "xwm", "event", ev)
		return nil
	}
}

// Adopt enqueues the windows that were mapped before the receiver started.
func Adopt(ctx context.Context, x *X, enqueuer Enqueuer) error {
	clients, err := x.Clients()
	if err != nil {
		return err
	}
	for _, wid := range clients {
		if _, err := enqueuer.Enqueue(ctx, wm.CommandNewWindow{Handle: tree.Handle(wid)}); err != nil {
			return err
		}
	}
	slog.Info("Adopted existing windows", "package", "xwm", "count", len(clients))
	return nil
}

func (r *Receiver) rootWindow() xproto.Window {
	return r.x.Root
}

// configure grants a client's configure request as asked. Managed windows
// get their rect back on the next layout.
func (r *Receiver) configure(ev xproto.ConfigureRequestEvent) {
	var mask uint16
	var values []uint32
	add := func(bit uint16, v uint32) {
		if ev.ValueMask&bit != 0 {
			mask |= bit
			values = append(values, v)
		}
	}
	add(xproto.ConfigWindowX, uint32(int32(ev.X)))
	add(xproto.ConfigWindowY, uint32(int32(ev.Y)))
	add(xproto.ConfigWindowWidth, uint32(ev.Width))
	add(xproto.ConfigWindowHeight, uint32(ev.Height))
	add(xproto.ConfigWindowBorderWidth, uint32(ev.BorderWidth))
	add(xproto.ConfigWindowSibling, uint32(ev.Sibling))
	add(xproto.ConfigWindowStackMode, uint32(ev.StackMode))

	xproto.ConfigureWindow(r.x.Conn, ev.Window, mask, values)
}
