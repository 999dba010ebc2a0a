// Package api exposes the window manager over HTTP.
package api

import (
	"context"
	"errors"

	"github.com/ItsNotGoodName/x-tilewm/internal/build"
	"github.com/ItsNotGoodName/x-tilewm/internal/tree"
	"github.com/ItsNotGoodName/x-tilewm/internal/wm"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/google/uuid"
)

// Manager is the part of wm.Manager the API drives.
type Manager interface {
	EnqueueLine(ctx context.Context, line string) (uuid.UUID, error)
	Snapshot(ctx context.Context) (tree.Snapshot, error)
}

type Handler struct {
	manager Manager
	status  *Status
	events  *Events
}

func NewHandler(manager Manager, status *Status, events *Events) Handler {
	return Handler{
		manager: manager,
		status:  status,
		events:  events,
	}
}

func NewConfig() huma.Config {
	return huma.DefaultConfig("x-tilewm", build.Current.Version)
}

type CommandInput struct {
	Body struct {
		Command string `json:"command" minLength:"1" example:"focus left" doc:"Command line such as 'workspace number 2'."`
	}
}

type CommandOutput struct {
	Body struct {
		ID uuid.UUID `json:"id"`
	}
}

type TreeOutput struct {
	Body tree.Snapshot
}

type StatusOutput struct {
	Body StatusBody
}

type VersionOutput struct {
	Body build.Build
}

// Register adds the routes of h to api.
func Register(api huma.API, h Handler) {
	huma.Register(api, huma.Operation{
		OperationID:   "post-command",
		Method:        "POST",
		Path:          "/api/commands",
		Summary:       "Run a command",
		DefaultStatus: 202,
	}, h.PostCommand)

	huma.Register(api, huma.Operation{
		OperationID: "get-tree",
		Method:      "GET",
		Path:        "/api/tree",
		Summary:     "Get the tree of the active desktop",
	}, h.GetTree)

	huma.Register(api, huma.Operation{
		OperationID: "get-status",
		Method:      "GET",
		Path:        "/api/status",
		Summary:     "Get the active desktop and focused node",
	}, h.GetStatus)

	huma.Register(api, huma.Operation{
		OperationID: "get-version",
		Method:      "GET",
		Path:        "/api/version",
		Summary:     "Get the build information",
	}, h.GetVersion)

	sse.Register(api, huma.Operation{
		OperationID: "get-events",
		Method:      "GET",
		Path:        "/api/events",
		Summary:     "Stream focus and desktop changes",
	}, map[string]any{
		"focus":   wm.FocusChanged{},
		"desktop": wm.DesktopChanged{},
	}, h.GetEvents)
}

func (h Handler) PostCommand(ctx context.Context, input *CommandInput) (*CommandOutput, error) {
	id, err := h.manager.EnqueueLine(ctx, input.Body.Command)
	if err != nil {
		if errors.Is(err, wm.ErrClosed) {
			return nil, huma.Error503ServiceUnavailable("window manager is not running", err)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, huma.Error422UnprocessableEntity(err.Error(), err)
	}

	out := &CommandOutput{}
	out.Body.ID = id
	return out, nil
}

func (h Handler) GetTree(ctx context.Context, input *struct{}) (*TreeOutput, error) {
	snapshot, err := h.manager.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, wm.ErrClosed) {
			return nil, huma.Error503ServiceUnavailable("window manager is not running", err)
		}
		return nil, err
	}
	return &TreeOutput{Body: snapshot}, nil
}

func (h Handler) GetStatus(ctx context.Context, input *struct{}) (*StatusOutput, error) {
	return &StatusOutput{Body: h.status.Get()}, nil
}

func (h Handler) GetVersion(ctx context.Context, input *struct{}) (*VersionOutput, error) {
	return &VersionOutput{Body: build.Current}, nil
}

func (h Handler) GetEvents(ctx context.Context, input *struct{}, send sse.Sender) {
	eventC, unsubscribe := h.events.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-eventC:
			if err := send.Data(event); err != nil {
				return
			}
		}
	}
}
