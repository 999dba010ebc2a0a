// Package wm runs the window tree on a single goroutine and feeds it commands.
package wm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
	"github.com/ItsNotGoodName/x-tilewm/internal/tree"
	"github.com/google/uuid"
	"github.com/k0kubun/pp"
)

var ErrClosed = errors.New("manager closed")

const queueSize = 64

const DefaultResizeStep = 20

type Binding struct {
	Keys    string `json:"keys"`
	Command string `json:"command"`
}

// Settings is the part of the configuration the manager applies.
type Settings struct {
	Retries      int
	FloatingStep int
	ResizeStep   int
	Direction    mosaic.Direction
	Bindings     []Binding
}

// Loader reads the settings again for the reload command.
type Loader func() (Settings, error)

// Envelope is a queued command.
type Envelope struct {
	ID      uuid.UUID
	Command any
}

// Manager owns the desktop collection. Every command runs to completion on
// the goroutine calling Serve before the next one starts.
type Manager struct {
	collection *tree.Collection
	loader     Loader
	settings   Settings

	commandC  chan Envelope
	doneC     chan struct{}
	closeOnce sync.Once
}

func New(collection *tree.Collection, settings Settings, loader Loader) *Manager {
	m := &Manager{
		collection: collection,
		loader:     loader,
		commandC:   make(chan Envelope, queueSize),
		doneC:      make(chan struct{}),
	}
	m.apply(settings)
	publishTree(collection)
	return m
}

func (m *Manager) String() string {
	return "wm.Manager"
}

// Enqueue queues cmd and returns its id. It does not wait for cmd to run.
func (m *Manager) Enqueue(ctx context.Context, cmd any) (uuid.UUID, error) {
	env := Envelope{ID: uuid.New(), Command: cmd}

	select {
	case <-m.doneC:
		return uuid.Nil, ErrClosed
	default:
	}

	select {
	case <-ctx.Done():
		return uuid.Nil, ctx.Err()
	case <-m.doneC:
		return uuid.Nil, ErrClosed
	case m.commandC <- env:
		return env.ID, nil
	}
}

// EnqueueLine parses line and queues the command.
func (m *Manager) EnqueueLine(ctx context.Context, line string) (uuid.UUID, error) {
	cmd, err := Parse(line)
	if err != nil {
		return uuid.Nil, err
	}
	return m.Enqueue(ctx, cmd)
}

// Snapshot returns a copy of the active desktop.
func (m *Manager) Snapshot(ctx context.Context) (tree.Snapshot, error) {
	replyC := make(chan tree.Snapshot, 1)
	if _, err := m.Enqueue(ctx, CommandSnapshot{replyC: replyC}); err != nil {
		return tree.Snapshot{}, err
	}

	select {
	case <-ctx.Done():
		return tree.Snapshot{}, ctx.Err()
	case <-m.doneC:
		return tree.Snapshot{}, ErrClosed
	case s := <-replyC:
		return s, nil
	}
}

func (m *Manager) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			m.closeOnce.Do(func() { close(m.doneC) })
			return ctx.Err()
		case env := <-m.commandC:
			m.execute(env)
		}
	}
}

func (m *Manager) execute(env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Command panicked", "package", "wm", "id", env.ID, "command", fmt.Sprintf("%T", env.Command), "panic", r, "stack", string(debug.Stack()))
		}
	}()

	slog.Debug("Executing command", "package", "wm", "id", env.ID, "command", fmt.Sprintf("%+v", env.Command))

	active := m.collection.Active()

	switch cmd := env.Command.(type) {
	case CommandNewWindow:
		if l, d, ok := m.collection.FindLeaf(cmd.Handle); ok {
			// Mapped again by the client. Windows on hidden desktops stay unmapped.
			if d == active {
				l.Show()
			}
			return
		}
		if n := active.HandleNewWindow(cmd.Handle); n != nil {
			n.SetFocus(0)
		}
	case CommandDestroyWindow:
		m.removeWindow(active, cmd.Handle)
	case CommandUnmapWindow:
		m.removeWindow(active, cmd.Handle)
	case CommandFocusWindow:
		l, d, ok := m.collection.FindLeaf(cmd.Handle)
		if !ok || d != active {
			return
		}
		l.Focused()
	case CommandScreensChanged:
		m.collection.ScreensChanged(cmd.Rects, m.settings.Direction)
	case CommandFocus:
		active.HandleMoveFocus(cmd.Direction)
	case CommandMove:
		active.HandleMoveNode(cmd.Direction)
	case CommandResize:
		delta := cmd.Delta
		if delta == 0 {
			delta = m.settings.ResizeStep
			if cmd.Shrink {
				delta = -delta
			}
		}
		active.HandleResize(delta, cmd.Direction)
	case CommandSplit:
		switch {
		case cmd.Toggle:
			active.HandleLayoutToggleSplit()
		case cmd.Direction == mosaic.Vertical:
			active.HandleVerticalDirection()
		default:
			active.HandleHorizontalDirection()
		}
	case CommandFullscreen:
		active.HandleFullscreen()
	case CommandFloatingToggle:
		active.HandleSwitchFloating()
	case CommandWorkspace:
		if _, ok := m.collection.Desktop(cmd.Index); !ok {
			slog.Warn("No such workspace", "package", "wm", "index", cmd.Index)
			return
		}
		m.collection.Activate(cmd.Index)
	case CommandMoveToWorkspace:
		if !m.collection.MoveFocusNodeTo(cmd.Index) {
			slog.Debug("Focus node not moved", "package", "wm", "index", cmd.Index)
		}
	case CommandKill:
		active.QuitFocusNode()
	case CommandDebugGraph:
		slog.Info("Debug graph", "package", "wm", "desktop", active.Index())
		fmt.Println(pp.Sprint(tree.TakeSnapshot(active)))
	case CommandReload:
		m.reload()
	case CommandSnapshot:
		cmd.replyC <- tree.TakeSnapshot(active)
	default:
		slog.Warn("Unknown command", "package", "wm", "id", env.ID, "command", fmt.Sprintf("%T", env.Command))
	}
}

// removeWindow drops the leaf of h and gives focus to a neighbour when the
// active desktop lost its focus node.
func (m *Manager) removeWindow(active *tree.Desktop, h tree.Handle) {
	if !m.collection.RemoveWindow(h) {
		return
	}
	if active.FocusNode() == nil {
		active.SetFocus(0)
	}
}

func (m *Manager) reload() {
	if m.loader == nil {
		slog.Warn("Nothing to reload from", "package", "wm")
		return
	}

	settings, err := m.loader()
	if err != nil {
		slog.Error("Failed to reload settings", "package", "wm", "error", err)
		return
	}

	m.apply(settings)
	slog.Info("Reloaded settings", "package", "wm")
	bus.Publish(Reloaded{Settings: m.settings})
}

func (m *Manager) apply(settings Settings) {
	if settings.Retries <= 0 {
		settings.Retries = mosaic.DefaultRetries
	}
	if settings.FloatingStep <= 0 {
		settings.FloatingStep = tree.DefaultFloatingStep
	}
	if settings.ResizeStep <= 0 {
		settings.ResizeStep = DefaultResizeStep
	}

	m.settings = settings
	f := m.collection.Factory()
	f.Retries = settings.Retries
	f.FloatingStep = settings.FloatingStep
}
