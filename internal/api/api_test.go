package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/ItsNotGoodName/x-tilewm/internal/tree"
	"github.com/ItsNotGoodName/x-tilewm/internal/wm"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

type fakeManager struct {
	lines    []string
	err      error
	snapshot tree.Snapshot
}

func (m *fakeManager) EnqueueLine(ctx context.Context, line string) (uuid.UUID, error) {
	if m.err != nil {
		return uuid.UUID{}, m.err
	}
	if _, err := wm.Parse(line); err != nil {
		return uuid.UUID{}, err
	}
	m.lines = append(m.lines, line)
	return uuid.New(), nil
}

func (m *fakeManager) Snapshot(ctx context.Context) (tree.Snapshot, error) {
	if m.err != nil {
		return tree.Snapshot{}, m.err
	}
	return m.snapshot, nil
}

func newTestAPI(t *testing.T, m *fakeManager) (humatest.TestAPI, *Status) {
	t.Helper()
	_, api := humatest.New(t, NewConfig())
	status := NewStatus().Register()
	Register(api, NewHandler(m, status, NewEvents()))
	return api, status
}

func TestPostCommand(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		command    string
		wantStatus int
	}{
		{"valid", nil, "focus left", http.StatusAccepted},
		{"unknown", nil, "dance", http.StatusUnprocessableEntity},
		{"empty", nil, "", http.StatusUnprocessableEntity},
		{"closed", wm.ErrClosed, "focus left", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeManager{err: tt.err}
			api, _ := newTestAPI(t, m)

			resp := api.Post("/api/commands", map[string]any{"command": tt.command})
			if resp.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", resp.Code, tt.wantStatus, resp.Body.String())
			}
			if tt.wantStatus != http.StatusAccepted {
				return
			}

			var body struct {
				ID uuid.UUID `json:"id"`
			}
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.ID == uuid.Nil {
				t.Errorf("id is nil")
			}
			if diff := cmp.Diff([]string{tt.command}, m.lines); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetTree(t *testing.T) {
	m := &fakeManager{snapshot: tree.Snapshot{
		ID:   1,
		Kind: "desktop",
		Name: "Desktop",
		Children: []tree.Snapshot{
			{ID: 2, Kind: "screen", Name: "Screen"},
		},
	}}
	api, _ := newTestAPI(t, m)

	resp := api.Get("/api/tree")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.Code, resp.Body.String())
	}

	var got tree.Snapshot
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(m.snapshot, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestGetTree_Closed(t *testing.T) {
	api, _ := newTestAPI(t, &fakeManager{err: wm.ErrClosed})

	if resp := api.Get("/api/tree"); resp.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", resp.Code, http.StatusServiceUnavailable)
	}
}

func TestGetStatus(t *testing.T) {
	api, status := newTestAPI(t, &fakeManager{})

	bus.Publish(wm.FocusChanged{Desktop: 0, NodeID: 4, Name: "Leaf", Title: "xterm", Handle: 9})
	bus.Publish(wm.FocusChanged{Desktop: 1, NodeID: 7, Name: "Leaf", Title: "firefox", Handle: 10})
	bus.Publish(wm.DesktopChanged{Old: 0, New: 1})

	want := StatusBody{
		Desktop: 1,
		Focus:   &wm.FocusChanged{Desktop: 1, NodeID: 7, Name: "Leaf", Title: "firefox", Handle: 10},
	}
	if diff := cmp.Diff(want, status.Get()); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	resp := api.Get("/api/status")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"firefox"`) {
		t.Errorf("body = %s, want focused title", resp.Body.String())
	}

	bus.Publish(wm.DesktopChanged{Old: 1, New: 2})
	if got := status.Get(); got.Desktop != 2 || got.Focus != nil {
		t.Errorf("Get() = %+v, want desktop 2 without focus", got)
	}
}

func TestGetVersion(t *testing.T) {
	api, _ := newTestAPI(t, &fakeManager{})

	if resp := api.Get("/api/version"); resp.Code != http.StatusOK {
		t.Errorf("status = %d: %s", resp.Code, resp.Body.String())
	}
}

func TestEvents(t *testing.T) {
	events := NewEvents()
	eventC, unsubscribe := events.Subscribe()
	defer unsubscribe()

	bus.Publish(wm.DesktopChanged{Old: 3, New: 4})

	select {
	case event := <-eventC:
		if diff := cmp.Diff(wm.DesktopChanged{Old: 3, New: 4}, event); diff != "" {
			t.Errorf("event mismatch (-want +got):\n%s", diff)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}
