package xwm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/ItsNotGoodName/x-tilewm/internal/wm"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/keybind"
)

const (
	// ignoredMods are the lock modifiers a binding matches regardless of.
	ignoredMods = xproto.ModMaskLock | xproto.ModMask2
	// keyMods drops the pointer button bits of a key event state.
	keyMods = 0xff
)

// modifiers maps the modifier names accepted in bindings to the names keybind parses.
var modifiers = map[string]string{
	"shift":   "shift",
	"lock":    "lock",
	"control": "control",
	"ctrl":    "control",
	"mod1":    "mod1",
	"alt":     "mod1",
	"mod2":    "mod2",
	"mod3":    "mod3",
	"mod4":    "mod4",
	"super":   "mod4",
	"mod5":    "mod5",
}

// KeyString converts a plus separated binding such as Mod4+Shift+h into the
// dash separated form of keybind.ParseString.
func KeyString(s string) (string, error) {
	parts := strings.Split(s, "+")
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" || strings.Contains(name, "-") {
			return "", fmt.Errorf("invalid key %q", s)
		}

		if i == len(parts)-1 {
			out = append(out, name)
			break
		}

		mod, ok := modifiers[strings.ToLower(name)]
		if !ok {
			return "", fmt.Errorf("invalid modifier %q in %q", part, s)
		}
		out = append(out, mod)
	}
	return strings.Join(out, "-"), nil
}

// ParseFunc resolves a key string to its modifiers and keycodes.
type ParseFunc func(s string) (uint16, []xproto.Keycode, error)

type combo struct {
	mods uint16
	code xproto.Keycode
}

// Keymap maps grabbed key combinations to command lines.
type Keymap struct {
	mu       sync.RWMutex
	commands map[combo]string
	bindings []wm.Binding
}

func NewKeymap() *Keymap {
	return &Keymap{commands: make(map[combo]string)}
}

// Lookup returns the command bound to a key press.
func (k *Keymap) Lookup(state uint16, code xproto.Keycode) (string, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	cmd, ok := k.commands[combo{mods: state & keyMods &^ ignoredMods, code: code}]
	return cmd, ok
}

func (k *Keymap) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.commands)
}

// Resolve turns bindings into key combinations. Bindings whose keys or
// command do not parse are skipped and reported in the returned error.
func (k *Keymap) Resolve(bindings []wm.Binding, parse ParseFunc) error {
	commands := make(map[combo]string)
	var errs []error
	for _, b := range bindings {
		if _, err := wm.Parse(b.Command); err != nil {
			errs = append(errs, fmt.Errorf("binding %s: %w", b.Keys, err))
			continue
		}
		str, err := KeyString(b.Keys)
		if err != nil {
			errs = append(errs, fmt.Errorf("binding %s: %w", b.Keys, err))
			continue
		}
		mods, codes, err := parse(str)
		if err != nil {
			errs = append(errs, fmt.Errorf("binding %s: %w", b.Keys, err))
			continue
		}
		for _, code := range codes {
			commands[combo{mods: mods, code: code}] = b.Command
		}
	}

	k.mu.Lock()
	k.commands = commands
	k.bindings = bindings
	k.mu.Unlock()

	return errors.Join(errs...)
}

// Grab resolves bindings against the keyboard mapping of x and grabs them on
// the root window. Combinations that fail to grab are reported in the returned error.
func (k *Keymap) Grab(x *X, bindings []wm.Binding) error {
	k.mu.RLock()
	old := make([]combo, 0, len(k.commands))
	for c := range k.commands {
		old = append(old, c)
	}
	k.mu.RUnlock()
	for _, c := range old {
		keybind.Ungrab(x.XU, x.Root, c.mods, c.code)
	}

	err := k.Resolve(bindings, func(s string) (uint16, []xproto.Keycode, error) {
		return keybind.ParseString(x.XU, s)
	})
	if err != nil {
		slog.Warn("Some key bindings were skipped", "package", "xwm", "error", err)
	}

	k.mu.RLock()
	defer k.mu.RUnlock()
	var errs []error
	for c := range k.commands {
		if err := keybind.GrabChecked(x.XU, x.Root, c.mods, c.code); err != nil {
			errs = append(errs, fmt.Errorf("grab key %d with modifiers %#x: %w", c.code, c.mods, err))
		}
	}
	return errors.Join(errs...)
}

// Remap refreshes the keyboard mapping after a MappingNotify. A changed
// keyboard mapping moves keys to other keycodes, so the bindings are grabbed again.
func (k *Keymap) Remap(x *X, ev xproto.MappingNotifyEvent) error {
	keyMap, modMap := keybind.MapsGet(x.XU)
	keybind.KeyMapSet(x.XU, keyMap)
	keybind.ModMapSet(x.XU, modMap)

	if ev.Request != xproto.MappingKeyboard {
		return nil
	}

	k.mu.RLock()
	bindings := k.bindings
	k.mu.RUnlock()
	return k.Grab(x, bindings)
}

// GrabOnReload grabs the bindings again whenever the settings are reloaded.
func (k *Keymap) GrabOnReload(x *X) {
	bus.Subscribe("xwm.Keymap", func(ctx context.Context, event wm.Reloaded) error {
		return k.Grab(x, event.Settings.Bindings)
	})
}
