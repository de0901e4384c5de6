package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ritzau/knowledge-graph/pkg/engine"
	"github.com/ritzau/knowledge-graph/pkg/model"
	"github.com/ritzau/knowledge-graph/pkg/pubsub"
	"github.com/ritzau/knowledge-graph/pkg/view"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func chain() *model.Dataset {
	return &model.Dataset{
		Topic: "graphs",
		Concepts: []model.ConceptRecord{
			{ID: "A", Name: "Vertices", Mastery: model.MasteryNotStarted, Difficulty: 1},
			{ID: "B", Name: "Edges", Mastery: model.MasteryNotStarted, Difficulty: 2},
			{ID: "C", Name: "Paths", Mastery: model.MasteryNotStarted, Difficulty: 3},
		},
		Edges: []model.Edge{{Source: "A", Target: "B"}, {Source: "B", Target: "C"}},
	}
}

func newTestServer(t *testing.T, ds *model.Dataset) (*Server, *pubsub.SSEPublisher) {
	t.Helper()
	var srv *Server
	v := view.New(view.DefaultConfig(), model.Viewport{Width: 800, Height: 600}, func(sel view.Selection) {
		if err := srv.PublishSelection(sel); err != nil {
			t.Errorf("PublishSelection: %v", err)
		}
	})
	if ds != nil {
		v.SetData(t0, ds)
	}

	loop := view.NewLoop(v, clockwork.NewFakeClockAt(t0), view.DefaultFPS)
	if err := loop.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(loop.Stop)

	pub := pubsub.NewGraphPublisher()
	t.Cleanup(func() { pub.Close() })
	srv = NewServer(loop, pub)
	return srv, pub
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestGraph(t *testing.T) {
	t.Run("NoData", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)
		rec := do(t, srv, "GET", "/api/graph", "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503 before data, got %d", rec.Code)
		}
	})

	t.Run("Snapshot", func(t *testing.T) {
		srv, _ := newTestServer(t, chain())
		rec := do(t, srv, "GET", "/api/graph", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var snap view.Snapshot
		if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
			t.Fatalf("Failed to decode snapshot: %v", err)
		}
		if len(snap.Nodes) != 3 || len(snap.Edges) != 2 {
			t.Errorf("Expected 3 nodes and 2 edges, got %d and %d", len(snap.Nodes), len(snap.Edges))
		}
		if snap.Suggested == nil || snap.Suggested.ID != "A" {
			t.Errorf("Expected A suggested, got %+v", snap.Suggested)
		}
	})
}

func TestFrame(t *testing.T) {
	srv, _ := newTestServer(t, chain())
	rec := do(t, srv, "GET", "/api/graph/frame.svg", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Expected SVG content type, got %q", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "<svg") || !strings.Contains(body, ">Vertices<") {
		t.Errorf("Expected a painted frame, got %.200s", body)
	}
}

func TestViewport(t *testing.T) {
	srv, _ := newTestServer(t, chain())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"Valid", `{"width": 1024, "height": 768}`, http.StatusNoContent},
		{"Malformed", `{"width":`, http.StatusBadRequest},
		{"UnknownField", `{"w": 10}`, http.StatusBadRequest},
		{"ZeroArea", `{"width": 0, "height": 768}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, "PUT", "/api/viewport", tt.body)
			if rec.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, rec.Code)
			}
		})
	}

	rec := do(t, srv, "GET", "/api/graph", "")
	var snap view.Snapshot
	json.NewDecoder(rec.Body).Decode(&snap)
	if snap.Viewport.Width != 1024 || snap.Viewport.Height != 768 {
		t.Errorf("Expected stored viewport 1024x768, got %+v", snap.Viewport)
	}
}

func TestNodeClick(t *testing.T) {
	srv, pub := newTestServer(t, chain())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := pub.Subscribe(ctx, pubsub.TopicSelection)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	tests := []struct {
		id       string
		code     int
		selected bool
	}{
		{"missing", http.StatusNotFound, false},
		{"C", http.StatusOK, false}, // locked
		{"A", http.StatusOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			rec := do(t, srv, "POST", "/api/nodes/"+tt.id+"/click", "")
			if rec.Code != tt.code {
				t.Fatalf("Expected %d, got %d", tt.code, rec.Code)
			}
			if tt.code != http.StatusOK {
				return
			}
			var resp map[string]bool
			json.NewDecoder(rec.Body).Decode(&resp)
			if resp["selected"] != tt.selected {
				t.Errorf("Expected selected=%v, got %v", tt.selected, resp["selected"])
			}
		})
	}

	select {
	case ev := <-sub.Events():
		var sel view.Selection
		if err := json.Unmarshal(ev.Data, &sel); err != nil {
			t.Fatalf("Failed to decode selection: %v", err)
		}
		if sel.Node.ID != "A" || sel.Via != view.ViaClick {
			t.Errorf("Expected A selected by click, got %+v", sel)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for selection event")
	}
	select {
	case ev := <-sub.Events():
		t.Errorf("Locked node must not publish a selection, got %+v", ev)
	default:
	}
}

func TestFocus(t *testing.T) {
	srv, _ := newTestServer(t, chain())

	rec := do(t, srv, "POST", "/api/focus", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", rec.Code)
	}
	var resp FocusResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.ID != "A" || !resp.Pending {
		t.Errorf("Expected pending focus on A, got %+v", resp)
	}

	rec = do(t, srv, "DELETE", "/api/focus", "")
	var cancelled map[string]bool
	json.NewDecoder(rec.Body).Decode(&cancelled)
	if !cancelled["cancelled"] {
		t.Error("Expected pending focus to be cancelled")
	}

	rec = do(t, srv, "DELETE", "/api/focus", "")
	cancelled = nil
	json.NewDecoder(rec.Body).Decode(&cancelled)
	if cancelled["cancelled"] {
		t.Error("Expected nothing left to cancel")
	}
}

func TestFocus_NothingSuggested(t *testing.T) {
	ds := chain()
	for i := range ds.Concepts {
		ds.Concepts[i].Mastery = model.MasteryMastered
	}
	srv, _ := newTestServer(t, ds)
	rec := do(t, srv, "POST", "/api/focus", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 with nothing to suggest, got %d", rec.Code)
	}
}

func TestPointer(t *testing.T) {
	srv, _ := newTestServer(t, chain())

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"Move", "/api/pointer/move", `{"x": 1, "y": 1}`, http.StatusOK},
		{"Wheel", "/api/pointer/wheel", `{"x": 400, "y": 300, "deltaY": -100}`, http.StatusOK},
		{"UnknownEvent", "/api/pointer/bogus", `{"x": 1, "y": 1}`, http.StatusNotFound},
		{"BadBody", "/api/pointer/down", `nope`, http.StatusBadRequest},
		{"HoverUnknown", "/api/hover", `{"id": "missing"}`, http.StatusNotFound},
		{"HoverKnown", "/api/hover", `{"id": "A"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, "POST", tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}

	rec := do(t, srv, "POST", "/api/hover", `{"id": "A"}`)
	var resp PointerResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Hovered != "A" || resp.Cursor != view.CursorPointer {
		t.Errorf("Expected pointer cursor over A, got %+v", resp)
	}
}

func TestSubscribe(t *testing.T) {
	srv, _ := newTestServer(t, chain())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	rec := do(t, srv, "GET", "/api/subscribe/bogus", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown topic, got %d", rec.Code)
	}

	if err := srv.PublishGraph(view.Snapshot{Topic: "graphs"}, &engine.Diff{FullGraph: true}); err != nil {
		t.Fatalf("PublishGraph: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", ts.URL+"/api/subscribe/graph", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Subscribe request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected event stream, got %q", ct)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if scanner.Text() == "event: "+pubsub.EventSnapshot {
			return
		}
	}
	t.Fatalf("Stream ended without a snapshot event: %v", scanner.Err())
}
