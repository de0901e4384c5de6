package view

import (
	"github.com/ritzau/knowledge-graph/pkg/engine"
	"github.com/ritzau/knowledge-graph/pkg/model"
	"github.com/ritzau/knowledge-graph/pkg/recommend"
	"github.com/ritzau/knowledge-graph/pkg/render"
)

// NodeSnapshot is one node as seen by a host
type NodeSnapshot struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Mastery     model.Mastery        `json:"mastery"`
	Score       float64              `json:"score"`
	Difficulty  int                  `json:"difficulty"`
	Description string               `json:"description"`
	State       model.ReadinessState `json:"state"`
	Depth       int                  `json:"depth"`
	X           float64              `json:"x"`
	Y           float64              `json:"y"`
	Radius      float64              `json:"radius"`
	Color       string               `json:"color"`
}

// Suggestion is the suggested-next control's content
type Suggestion struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Hint string `json:"hint"`
}

// Snapshot is a serializable copy of the view state
type Snapshot struct {
	Topic     string         `json:"topic"`
	Nodes     []NodeSnapshot `json:"nodes"`
	Edges     []model.Edge   `json:"edges"`
	Suggested *Suggestion    `json:"suggested,omitempty"`
	Summary   engine.Summary `json:"summary"`
	Cycles    [][]string     `json:"cycles,omitempty"`
	Dropped   int            `json:"droppedEdges"`
	Hovered   string         `json:"hovered,omitempty"`
	Cursor    string         `json:"cursor"`
	Camera    Camera         `json:"camera"`
	Viewport  model.Viewport `json:"viewport"`
	Running   bool           `json:"running"`
	Empty     bool           `json:"empty"`
}

// Snapshot copies the current state for a host
func (v *View) Snapshot() Snapshot {
	s := Snapshot{
		Nodes:    []NodeSnapshot{},
		Edges:    []model.Edge{},
		Hovered:  v.hovered,
		Cursor:   v.Cursor(),
		Camera:   v.camera,
		Viewport: v.viewport,
		Running:  v.sim != nil && v.sim.Running(),
		Empty:    v.result == nil || v.result.Empty(),
	}
	if v.result == nil {
		return s
	}

	r := v.result
	s.Topic = r.Topic
	s.Summary = r.Summary
	s.Dropped = r.Dropped
	s.Edges = append(s.Edges, r.Edges...)
	for i := range r.Nodes {
		n := &r.Nodes[i]
		p := v.position(n)
		s.Nodes = append(s.Nodes, NodeSnapshot{
			ID:          n.ID(),
			Name:        n.Record.Name,
			Mastery:     n.Record.Mastery,
			Score:       n.Record.Score,
			Difficulty:  n.Record.Difficulty,
			Description: n.Record.Description,
			State:       n.State,
			Depth:       n.Depth,
			X:           p.X,
			Y:           p.Y,
			Radius:      render.Radius(n.Record.Difficulty),
			Color:       render.NodeColor(n.State, n.Record.Mastery),
		})
	}
	if n, ok := r.SuggestedNode(); ok {
		s.Suggested = &Suggestion{ID: n.ID(), Name: n.Record.Name, Hint: recommend.Hint(n.State)}
	}
	for _, c := range r.Cycles {
		s.Cycles = append(s.Cycles, c.Concepts)
	}
	return s
}
