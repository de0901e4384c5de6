// Package engine runs the pure, synchronous part of the knowledge graph:
// adjacency, readiness, layering, initial placement and the next-step
// suggestion. It is recomputed in full whenever concepts or edges change.
package engine

import (
	"time"

	"github.com/ritzau/knowledge-graph/pkg/cycles"
	"github.com/ritzau/knowledge-graph/pkg/graph"
	"github.com/ritzau/knowledge-graph/pkg/layout"
	"github.com/ritzau/knowledge-graph/pkg/logging"
	"github.com/ritzau/knowledge-graph/pkg/model"
	"github.com/ritzau/knowledge-graph/pkg/readiness"
	"github.com/ritzau/knowledge-graph/pkg/recommend"
	"gonum.org/v1/gonum/spatial/r2"
)

// LayoutNode is the engine-owned view of one concept. Record is a copy of the
// supplier's data; everything else is derived.
type LayoutNode struct {
	Record        model.ConceptRecord  `json:"record"`
	Neighbors     graph.Set            `json:"-"`
	Prerequisites graph.Set            `json:"-"`
	Dependents    graph.Set            `json:"-"`
	Depth         int                  `json:"depth"`
	State         model.ReadinessState `json:"state"`
	Initial       r2.Vec               `json:"initial"`
}

// ID returns the concept ID
func (n *LayoutNode) ID() string {
	return n.Record.ID
}

// Result holds everything derived from one dataset
type Result struct {
	Topic     string
	Nodes     []LayoutNode
	Index     map[string]int // concept ID -> position in Nodes
	Edges     []model.Edge   // only edges whose endpoints exist
	Adjacency graph.Adjacency
	Layering  *layout.Layering
	Suggested string // empty when nothing is actionable
	Cycles    []cycles.Cycle
	Summary   Summary
	Viewport  model.Viewport
	Dropped   int // edges discarded for referencing unknown concepts
}

// Node looks up a node by concept ID
func (r *Result) Node(id string) (*LayoutNode, bool) {
	i, ok := r.Index[id]
	if !ok {
		return nil, false
	}
	return &r.Nodes[i], true
}

// SuggestedNode returns the recommended node, if any
func (r *Result) SuggestedNode() (*LayoutNode, bool) {
	if r.Suggested == "" {
		return nil, false
	}
	return r.Node(r.Suggested)
}

// Empty returns true when there is nothing to lay out
func (r *Result) Empty() bool {
	return len(r.Nodes) == 0
}

// Compute derives the layout result for a dataset. It never fails: malformed
// edges are dropped and degenerate graphs produce trivial layouts. The dataset
// is not modified.
func Compute(ds *model.Dataset, vp model.Viewport) *Result {
	start := time.Now()
	if vp.Empty() {
		vp = model.DefaultViewport
	}

	var topic string
	var records []model.ConceptRecord
	var edges []model.Edge
	if ds != nil {
		topic = ds.Topic
		records = uniqueRecords(ds.Concepts)
		edges = ds.Edges
	}

	adj := graph.BuildAdjacency(records, edges)
	valid := adj.ValidEdges(edges)
	states := readiness.Classify(records, adj)

	order := make([]string, len(records))
	for i, r := range records {
		order[i] = r.ID
	}
	layering := layout.AssignLayers(order, adj, valid)
	positions := layout.Place(layering, vp)

	result := &Result{
		Topic:     topic,
		Nodes:     make([]LayoutNode, len(records)),
		Index:     make(map[string]int, len(records)),
		Edges:     valid,
		Adjacency: adj,
		Layering:  layering,
		Viewport:  vp,
		Dropped:   len(edges) - len(valid),
	}

	for i, r := range records {
		result.Index[r.ID] = i
		result.Nodes[i] = LayoutNode{
			Record:        r,
			Neighbors:     adj.Undirected[r.ID],
			Prerequisites: adj.Prerequisites[r.ID],
			Dependents:    adj.Dependents[r.ID],
			Depth:         layering.Depth[r.ID],
			State:         states[r.ID],
			Initial:       positions[r.ID],
		}
	}

	if id, ok := recommend.Suggest(order, states); ok {
		result.Suggested = id
	}

	result.Cycles = cycles.FindConceptCycles(graph.BuildConceptGraph(records, valid))
	result.Summary = Summarize(result.Nodes)

	if result.Dropped > 0 {
		logging.Warn("dropped edges with unknown endpoints", "count", result.Dropped)
	}
	if len(result.Cycles) > 0 {
		logging.Warn("prerequisite cycles detected", "count", len(result.Cycles))
	}
	logging.Debug("computed layout",
		"nodes", len(result.Nodes),
		"edges", len(result.Edges),
		"layers", layering.Len(),
		"suggested", result.Suggested,
		"durationMs", time.Since(start).Milliseconds(),
	)

	return result
}

// uniqueRecords normalizes records and keeps the first occurrence of each ID
func uniqueRecords(in []model.ConceptRecord) []model.ConceptRecord {
	seen := make(map[string]bool, len(in))
	out := make([]model.ConceptRecord, 0, len(in))
	for _, c := range in {
		if c.ID == "" {
			logging.Warn("skipping concept without id", "name", c.Name)
			continue
		}
		if seen[c.ID] {
			logging.Warn("skipping duplicate concept id", "id", c.ID)
			continue
		}
		seen[c.ID] = true
		out = append(out, c.Normalize())
	}
	return out
}
