package sutureext

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
)

const stopTimeout = 5 * time.Second

// NewSimple creates a supervisor that logs its events with slog.
func NewSimple(name string) *suture.Supervisor {
	return suture.New(name, suture.Spec{
		EventHook: EventHook(),
		Timeout:   stopTimeout,
	})
}

// NewChild creates a supervisor under parent. Its services restart and back
// off without touching the services of parent.
func NewChild(parent *suture.Supervisor, name string) *suture.Supervisor {
	child := NewSimple(name)
	parent.Add(child)
	return child
}

func EventHook() suture.EventHook {
	return func(ei suture.Event) {
		level, msg, attrs := describe(ei)
		slog.Log(context.Background(), level, msg, attrs...)
	}
}

// describe turns a supervisor event into a log record.
func describe(ei suture.Event) (slog.Level, string, []any) {
	switch e := ei.(type) {
	case suture.EventStopTimeout:
		return slog.LevelWarn, "Service did not stop in time",
			[]any{"supervisor", e.SupervisorName, "service", e.ServiceName}
	case suture.EventServicePanic:
		return slog.LevelError, "Service panicked",
			[]any{"supervisor", e.SupervisorName, "service", e.ServiceName, "panic", e.PanicMsg, "restarting", e.Restarting, "stack", e.Stacktrace}
	case suture.EventServiceTerminate:
		return slog.LevelError, "Service failed",
			[]any{"supervisor", e.SupervisorName, "service", e.ServiceName, "error", e.Err, "restarting", e.Restarting, "failures", e.CurrentFailures}
	case suture.EventBackoff:
		return slog.LevelWarn, "Too many service failures, backing off",
			[]any{"supervisor", e.SupervisorName}
	case suture.EventResume:
		return slog.LevelInfo, "Leaving backoff",
			[]any{"supervisor", e.SupervisorName}
	default:
		return slog.LevelWarn, "Unknown supervisor event",
			[]any{"type", int(e.Type()), "event", e.String()}
	}
}

// Service forces the use of the String method
type Service interface {
	String() string
	suture.Service
}

func Add(super *suture.Supervisor, service Service) suture.ServiceToken {
	return super.Add(sanitizeService{Service: service})
}

type sanitizeService struct {
	Service
}

func (s sanitizeService) Serve(ctx context.Context) error {
	return SanitizeError(ctx, s.Service.Serve(ctx))
}

// SanitizeError prevents the error from being interpreted as a context error unless it
// really is a context error because suture kills the service when it sees a context error.
func SanitizeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}

	var newErrs [3]error

	if errors.Is(err, suture.ErrDoNotRestart) {
		newErrs[0] = suture.ErrDoNotRestart
	}

	if errors.Is(err, suture.ErrTerminateSupervisorTree) {
		newErrs[1] = suture.ErrTerminateSupervisorTree
	}

	newErrs[2] = errors.New(err.Error())

	return errors.Join(newErrs[:]...)
}

type ServiceFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func NewServiceFunc(name string, fn func(ctx context.Context) error) ServiceFunc {
	return ServiceFunc{
		name: name,
		fn:   fn,
	}
}

// NewOnce creates a service that runs fn until it succeeds once.
func NewOnce(name string, fn func(ctx context.Context) error) ServiceFunc {
	return NewServiceFunc(name, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return suture.ErrDoNotRestart
	})
}

func (s ServiceFunc) String() string {
	return s.name
}

func (s ServiceFunc) Serve(ctx context.Context) error {
	return s.fn(ctx)
}
