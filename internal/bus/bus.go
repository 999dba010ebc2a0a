// Package bus delivers events by type to subscribers registered at startup.
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ctxMu sync.RWMutex
	_ctx  = context.Background()
)

func SetContext(ctx context.Context) {
	ctxMu.Lock()
	_ctx = ctx
	ctxMu.Unlock()
}

func currentContext() context.Context {
	ctxMu.RLock()
	defer ctxMu.RUnlock()
	return _ctx
}

var (
	subsMu sync.RWMutex
	subs   = make(map[string][]func(ctx context.Context, event any))
)

func topic[T any]() string {
	return fmt.Sprintf("%T", *new(T))
}

// Subscribe calls fn for every published event of type T. Errors are logged.
func Subscribe[T any](name string, fn func(ctx context.Context, event T) error) {
	t := topic[T]()
	subsMu.Lock()
	subs[t] = append(subs[t], func(ctx context.Context, event any) {
		if err := fn(ctx, event.(T)); err != nil {
			slog.Error("Failed to handle event", "package", "bus", "name", name, "topic", t, "error", err)
		}
	})
	subsMu.Unlock()
}

// Publish calls the subscribers of T on the calling goroutine.
func Publish[T any](event T) {
	subsMu.RLock()
	fns := subs[topic[T]()]
	subsMu.RUnlock()

	ctx := currentContext()
	for _, fn := range fns {
		fn(ctx, event)
	}
}

// Hub fans events of type T out to channels.
type Hub[T any] struct {
	mu   sync.Mutex
	subs map[*chan T]struct{}
	size int
}

// NewHub creates a hub whose subscriber channels buffer size events.
func NewHub[T any](size int) *Hub[T] {
	return &Hub[T]{
		subs: make(map[*chan T]struct{}),
		size: size,
	}
}

// Broadcast sends event to every subscriber. A subscriber with a full buffer misses the event.
func (h *Hub[T]) Broadcast(ctx context.Context, event T) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case *sub <- event:
		default:
			slog.Debug("Dropped event for slow subscriber", "package", "bus", "event", fmt.Sprintf("%T", event))
		}
	}

	return nil
}

// Register subscribes the hub to published events of type T.
func (h *Hub[T]) Register() *Hub[T] {
	Subscribe("bus.Hub", h.Broadcast)
	return h
}

func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	c := make(chan T, h.size)
	key := &c

	h.mu.Lock()
	h.subs[key] = struct{}{}
	h.mu.Unlock()

	return c, func() {
		h.mu.Lock()
		delete(h.subs, key)
		h.mu.Unlock()
	}
}

func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
