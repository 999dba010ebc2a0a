package xwm

import (
	"testing"

	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
	"github.com/ItsNotGoodName/x-tilewm/internal/tree"
	"github.com/ItsNotGoodName/x-tilewm/internal/wm"
	"github.com/google/go-cmp/cmp"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

func TestReceiver_translate(t *testing.T) {
	keys := NewKeymap()
	err := keys.Resolve([]wm.Binding{{Keys: "Mod4+f", Command: "fullscreen"}}, fakeParse(map[string][]xproto.Keycode{"f": {41}}))
	if err != nil {
		t.Fatal(err)
	}

	screens := []mosaic.Rect{mosaic.NewRect(0, 0, 1280, 720)}
	r := &Receiver{
		x:       &X{},
		keys:    keys,
		screens: func() []mosaic.Rect { return screens },
	}

	tests := []struct {
		name string
		ev   xgb.Event
		want []any
	}{
		{"map request", xproto.MapRequestEvent{Window: 5}, []any{wm.CommandNewWindow{Handle: 5}}},
		{"destroy", xproto.DestroyNotifyEvent{Window: 5}, []any{wm.CommandDestroyWindow{Handle: tree.Handle(5)}}},
		{"client unmap", xproto.UnmapNotifyEvent{Event: 0, Window: 5}, []any{wm.CommandUnmapWindow{Handle: 5}}},
		{"client unmap from window", xproto.UnmapNotifyEvent{Event: 5, Window: 5}, nil},
		{"focus in", xproto.FocusInEvent{Event: 5, Mode: xproto.NotifyModeNormal}, []any{wm.CommandFocusWindow{Handle: 5}}},
		{"focus in grab", xproto.FocusInEvent{Event: 5, Mode: xproto.NotifyModeGrab}, nil},
		{"bound key", xproto.KeyPressEvent{Detail: 41, State: xproto.ModMask4}, []any{wm.CommandFullscreen{}}},
		{"unbound key", xproto.KeyPressEvent{Detail: 42, State: xproto.ModMask4}, nil},
		{"root resized", xproto.ConfigureNotifyEvent{Window: 0}, []any{wm.CommandScreensChanged{Rects: screens}}},
		{"client configured", xproto.ConfigureNotifyEvent{Window: 9}, nil},
		{"other", xproto.ExposeEvent{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, r.translate(tt.ev)); diff != "" {
				t.Errorf("translate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReceiver_translateOwnUnmap(t *testing.T) {
	r := &Receiver{x: &X{Root: 1}}

	r.x.expectUnmap(5)
	if got := r.translate(xproto.UnmapNotifyEvent{Event: 1, Window: 5}); got != nil {
		t.Errorf("translate() = %v for an unmap the window manager asked for, want nil", got)
	}

	want := []any{wm.CommandUnmapWindow{Handle: 5}}
	if diff := cmp.Diff(want, r.translate(xproto.UnmapNotifyEvent{Event: 1, Window: 5})); diff != "" {
		t.Errorf("translate() mismatch (-want +got):\n%s", diff)
	}

	r.x.expectUnmap(5)
	r.translate(xproto.DestroyNotifyEvent{Event: 1, Window: 5})
	if r.x.consumeUnmap(5) {
		t.Errorf("expected unmap kept after destroy")
	}
}
