package graph

import (
	"fmt"
	"sort"

	"github.com/ritzau/knowledge-graph/pkg/model"
	"gonum.org/v1/gonum/graph/simple"
)

// ConceptGraph represents the prerequisite graph backed by a gonum directed graph
type ConceptGraph struct {
	graph  *simple.DirectedGraph
	ids    map[string]int64 // Map from concept ID to graph ID
	labels map[int64]string // Reverse of ids
	nextID int64
	loops  []string // Concepts with a self-prerequisite (gonum rejects self edges)
}

// NewConceptGraph creates a new empty concept graph
func NewConceptGraph() *ConceptGraph {
	return &ConceptGraph{
		graph:  simple.NewDirectedGraph(),
		ids:    make(map[string]int64),
		labels: make(map[int64]string),
	}
}

// AddConcept adds a concept node. Adding an existing ID is a no-op.
func (cg *ConceptGraph) AddConcept(id string) {
	if _, exists := cg.ids[id]; exists {
		return
	}

	cg.ids[id] = cg.nextID
	cg.labels[cg.nextID] = id
	cg.graph.AddNode(simple.Node(cg.nextID))
	cg.nextID++
}

// AddPrerequisite adds an edge from source to target.
// Returns error if either concept has not been added.
func (cg *ConceptGraph) AddPrerequisite(source, target string) error {
	sourceID, ok := cg.ids[source]
	if !ok {
		return fmt.Errorf("unknown prerequisite source %q", source)
	}
	targetID, ok := cg.ids[target]
	if !ok {
		return fmt.Errorf("unknown prerequisite target %q", target)
	}

	if sourceID == targetID {
		cg.loops = append(cg.loops, source)
		return nil
	}

	if !cg.graph.HasEdgeFromTo(sourceID, targetID) {
		cg.graph.SetEdge(cg.graph.NewEdge(cg.graph.Node(sourceID), cg.graph.Node(targetID)))
	}
	return nil
}

// Graph returns the underlying directed graph
func (cg *ConceptGraph) Graph() *simple.DirectedGraph {
	return cg.graph
}

// Label returns the concept ID for a gonum node ID
func (cg *ConceptGraph) Label(id int64) (string, bool) {
	label, ok := cg.labels[id]
	return label, ok
}

// SelfLoops returns the concepts that list themselves as a prerequisite
func (cg *ConceptGraph) SelfLoops() []string {
	return cg.loops
}

// Len returns the number of concepts
func (cg *ConceptGraph) Len() int {
	return len(cg.ids)
}

// InDegree returns the number of distinct prerequisites of a concept
func (cg *ConceptGraph) InDegree(id string) int {
	nid, ok := cg.ids[id]
	if !ok {
		return 0
	}
	return cg.graph.To(nid).Len()
}

// Dependents returns the concepts directly unlocked by id, sorted
func (cg *ConceptGraph) Dependents(id string) []string {
	nid, ok := cg.ids[id]
	if !ok {
		return nil
	}

	var deps []string
	iter := cg.graph.From(nid)
	for iter.Next() {
		deps = append(deps, cg.labels[iter.Node().ID()])
	}
	sort.Strings(deps)
	return deps
}

// BuildConceptGraph builds a concept graph from records and edges.
// Edges with unknown endpoints are skipped.
func BuildConceptGraph(nodes []model.ConceptRecord, edges []model.Edge) *ConceptGraph {
	cg := NewConceptGraph()
	for _, n := range nodes {
		cg.AddConcept(n.ID)
	}
	for _, e := range edges {
		_ = cg.AddPrerequisite(e.Source, e.Target)
	}
	return cg
}
