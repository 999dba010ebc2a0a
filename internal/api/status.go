package api

import (
	"context"
	"sync"

	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/ItsNotGoodName/x-tilewm/internal/wm"
)

type StatusBody struct {
	Desktop int              `json:"desktop"`
	Focus   *wm.FocusChanged `json:"focus,omitempty"`
}

// Status caches the last focus of every desktop from the bus.
type Status struct {
	mu      sync.RWMutex
	desktop int
	focus   map[int]wm.FocusChanged
}

func NewStatus() *Status {
	return &Status{focus: make(map[int]wm.FocusChanged)}
}

func (s *Status) Register() *Status {
	bus.Subscribe("api.Status", func(ctx context.Context, event wm.FocusChanged) error {
		s.mu.Lock()
		s.focus[event.Desktop] = event
		s.mu.Unlock()
		return nil
	})
	bus.Subscribe("api.Status", func(ctx context.Context, event wm.DesktopChanged) error {
		s.mu.Lock()
		s.desktop = event.New
		s.mu.Unlock()
		return nil
	})
	return s
}

func (s *Status) Get() StatusBody {
	s.mu.RLock()
	defer s.mu.RUnlock()

	body := StatusBody{Desktop: s.desktop}
	if focus, ok := s.focus[s.desktop]; ok && focus.NodeID != 0 {
		body.Focus = &focus
	}
	return body
}

// Events merges the bus events streamed to clients.
type Events struct {
	focus   *bus.Hub[wm.FocusChanged]
	desktop *bus.Hub[wm.DesktopChanged]
}

func NewEvents() *Events {
	return &Events{
		focus:   bus.NewHub[wm.FocusChanged](16).Register(),
		desktop: bus.NewHub[wm.DesktopChanged](16).Register(),
	}
}

// Subscribe returns a channel of wm.FocusChanged and wm.DesktopChanged values.
func (e *Events) Subscribe() (<-chan any, func()) {
	focusC, unsubscribeFocus := e.focus.Subscribe()
	desktopC, unsubscribeDesktop := e.desktop.Subscribe()

	eventC := make(chan any)
	doneC := make(chan struct{})
	go func() {
		for {
			var event any
			select {
			case <-doneC:
				return
			case event = <-focusC:
			case event = <-desktopC:
			}

			select {
			case <-doneC:
				return
			case eventC <- event:
			}
		}
	}()

	var once sync.Once
	return eventC, func() {
		once.Do(func() {
			unsubscribeFocus()
			unsubscribeDesktop()
			close(doneC)
		})
	}
}
