package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/ritzau/knowledge-graph/pkg/engine"
	"github.com/ritzau/knowledge-graph/pkg/logging"
	"github.com/ritzau/knowledge-graph/pkg/model"
	"github.com/ritzau/knowledge-graph/pkg/pubsub"
	"github.com/ritzau/knowledge-graph/pkg/render"
	"github.com/ritzau/knowledge-graph/pkg/view"
	"gonum.org/v1/gonum/spatial/r2"
)

//go:embed static/*
var staticFiles embed.FS

// ErrNoGraph is returned before the first dataset has been loaded
var ErrNoGraph = errors.New("no graph loaded")

const shutdownTimeout = 5 * time.Second

// PointerRequest is the body of the pointer endpoints, in screen pixels
type PointerRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaY float64 `json:"deltaY,omitempty"` // wheel only
}

// HoverRequest sets or clears (empty id) the hovered node
type HoverRequest struct {
	ID string `json:"id"`
}

// PointerResponse reports what a pointer event did
type PointerResponse struct {
	Hovered string `json:"hovered,omitempty"`
	Cursor  string `json:"cursor"`
	Clicked bool   `json:"clicked,omitempty"`
}

// FocusResponse names the node a suggested focus is heading to
type FocusResponse struct {
	ID      string `json:"id"`
	Pending bool   `json:"pending"`
}

// GraphUpdate is published on the graph topic after every recompute
type GraphUpdate struct {
	Topic     string           `json:"topic"`
	Diff      *engine.Diff     `json:"diff"`
	Summary   engine.Summary   `json:"summary"`
	Suggested *view.Suggestion `json:"suggested,omitempty"`
}

// Server exposes a view loop over HTTP
type Server struct {
	router    *mux.Router
	loop      *view.Loop
	publisher pubsub.Publisher
	log       *slog.Logger
}

// NewServer creates a server driving loop. Events go out through publisher.
func NewServer(loop *view.Loop, publisher pubsub.Publisher) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		loop:      loop,
		publisher: publisher,
		log:       logging.Logger("web"),
	}
	s.setupRoutes()
	return s
}

// Handler returns the router wrapped with request logging
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

// PublishGraph announces a recompute. A nil diff (unchanged data) is not published.
func (s *Server) PublishGraph(snap view.Snapshot, diff *engine.Diff) error {
	if diff == nil {
		return nil
	}
	eventType := pubsub.EventDiff
	if diff.FullGraph || diff.StructureMoved {
		eventType = pubsub.EventSnapshot
	}
	return s.publisher.Publish(pubsub.TopicGraph, eventType, GraphUpdate{
		Topic:     snap.Topic,
		Diff:      diff,
		Summary:   snap.Summary,
		Suggested: snap.Suggested,
	})
}

// PublishSelection hands a selected node to the detail presenter
func (s *Server) PublishSelection(sel view.Selection) error {
	return s.publisher.Publish(pubsub.TopicSelection, pubsub.EventSelected, sel)
}

// PublishReloadError reports a failed reload on the graph topic
func (s *Server) PublishReloadError(source string, err error) error {
	return s.publisher.Publish(pubsub.TopicGraph, pubsub.EventError, pubsub.ReloadError{
		Source:  source,
		Message: err.Error(),
	})
}

func (s *Server) setupRoutes() {
	// SSE subscription endpoint
	s.router.HandleFunc("/api/subscribe/{topic}", s.handleSubscribe).Methods("GET")

	// API routes - more specific routes must come first
	s.router.HandleFunc("/api/graph/frame.svg", s.handleFrame).Methods("GET")
	s.router.HandleFunc("/api/graph", s.handleGraph).Methods("GET")
	s.router.HandleFunc("/api/viewport", s.handleViewport).Methods("PUT")
	s.router.HandleFunc("/api/hover", s.handleHover).Methods("POST")
	s.router.HandleFunc("/api/pointer/{event}", s.handlePointer).Methods("POST")
	s.router.HandleFunc("/api/focus", s.handleFocus).Methods("POST")
	s.router.HandleFunc("/api/focus", s.handleCancelFocus).Methods("DELETE")
	s.router.HandleFunc("/api/nodes/{id}/click", s.handleNodeClick).Methods("POST")

	// Serve static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if topic != pubsub.TopicGraph && topic != pubsub.TopicSelection {
		http.Error(w, fmt.Sprintf("unknown topic %q", topic), http.StatusNotFound)
		return
	}

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	flush(w)

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				s.log.Warn("error writing SSE event", "topic", topic, "error", err)
				return
			}
			flush(w)
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var snap view.Snapshot
	err := s.loop.Do(r.Context(), func(v *view.View, _ time.Time) error {
		if v.Result() == nil {
			return ErrNoGraph
		}
		snap = v.Snapshot()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	var canvas *render.SVGCanvas
	err := s.loop.Do(r.Context(), func(v *view.View, _ time.Time) error {
		if v.Result() == nil {
			return ErrNoGraph
		}
		vp := v.Viewport()
		canvas = render.NewSVGCanvas(vp.Width, vp.Height, render.Background)
		v.Paint(canvas)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := canvas.WriteTo(w); err != nil {
		s.log.Debug("frame write aborted", "error", err)
	}
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var vp model.Viewport
	if !decodeBody(w, r, &vp) {
		return
	}
	if vp.Empty() {
		http.Error(w, "viewport must have a positive width and height", http.StatusBadRequest)
		return
	}
	err := s.loop.Do(r.Context(), func(v *view.View, _ time.Time) error {
		v.Resize(vp)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	var req HoverRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var resp PointerResponse
	err := s.loop.Do(r.Context(), func(v *view.View, _ time.Time) error {
		if err := v.Hover(req.ID); err != nil {
			return err
		}
		resp = PointerResponse{Hovered: v.Hovered(), Cursor: v.Cursor()}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	event := mux.Vars(r)["event"]
	var req PointerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	at := r2.Vec{X: req.X, Y: req.Y}

	var handle func(v *view.View, now time.Time) bool
	switch event {
	case "move":
		handle = func(v *view.View, now time.Time) bool { v.PointerMove(now, at); return false }
	case "down":
		handle = func(v *view.View, now time.Time) bool { v.PointerDown(now, at); return false }
	case "up":
		handle = func(v *view.View, now time.Time) bool { return v.PointerUp(now, at) }
	case "click":
		handle = func(v *view.View, _ time.Time) bool { return v.Click(at) }
	case "wheel":
		handle = func(v *view.View, _ time.Time) bool { v.Wheel(at, req.DeltaY); return false }
	default:
		http.Error(w, fmt.Sprintf("unknown pointer event %q", event), http.StatusNotFound)
		return
	}

	var resp PointerResponse
	err := s.loop.Do(r.Context(), func(v *view.View, now time.Time) error {
		resp.Clicked = handle(v, now)
		resp.Hovered = v.Hovered()
		resp.Cursor = v.Cursor()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	var resp FocusResponse
	err := s.loop.Do(r.Context(), func(v *view.View, now time.Time) error {
		id, err := v.FocusSuggested(now)
		if err != nil {
			return err
		}
		resp = FocusResponse{ID: id, Pending: v.FocusPending()}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleCancelFocus(w http.ResponseWriter, r *http.Request) {
	var cancelled bool
	err := s.loop.Do(r.Context(), func(v *view.View, _ time.Time) error {
		cancelled = v.CancelFocus()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}

func (s *Server) handleNodeClick(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var selected bool
	err := s.loop.Do(r.Context(), func(v *view.View, _ time.Time) error {
		var err error
		selected, err = v.ClickNode(id)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"selected": selected})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, view.ErrUnknownNode):
		status = http.StatusNotFound
	case errors.Is(err, view.ErrNoSuggestion):
		status = http.StatusConflict
	case errors.Is(err, ErrNoGraph), errors.Is(err, view.ErrLoopStopped):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	http.Error(w, err.Error(), status)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("response write failed", "error", err)
	}
}

func flush(w http.ResponseWriter) {
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Streams end with ctx so Shutdown is not held open by subscribers
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting web server", "url", "http://localhost"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web server shutdown: %w", err)
	}
	s.log.Info("web server stopped")
	return nil
}
