package graph

import (
	"sort"

	"github.com/ritzau/knowledge-graph/pkg/model"
)

// Set is an unordered set of node IDs
type Set map[string]struct{}

// Add inserts id into the set
func (s Set) Add(id string) {
	s[id] = struct{}{}
}

// Has returns true if id is in the set
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Adjacency holds the three neighbor maps derived from an edge list.
// Every known node ID has an entry (possibly empty) in each map.
type Adjacency struct {
	Undirected    map[string]Set
	Prerequisites map[string]Set // in-edges: nodes that must precede the key
	Dependents    map[string]Set // out-edges: nodes the key unlocks
}

// BuildAdjacency folds edges into undirected, prerequisite and dependent sets.
// Edges whose endpoints are not among nodes are skipped.
func BuildAdjacency(nodes []model.ConceptRecord, edges []model.Edge) Adjacency {
	adj := Adjacency{
		Undirected:    make(map[string]Set, len(nodes)),
		Prerequisites: make(map[string]Set, len(nodes)),
		Dependents:    make(map[string]Set, len(nodes)),
	}

	for _, n := range nodes {
		adj.Undirected[n.ID] = make(Set)
		adj.Prerequisites[n.ID] = make(Set)
		adj.Dependents[n.ID] = make(Set)
	}

	for _, e := range edges {
		if !adj.Known(e.Source) || !adj.Known(e.Target) {
			continue
		}
		adj.Undirected[e.Source].Add(e.Target)
		adj.Undirected[e.Target].Add(e.Source)
		adj.Prerequisites[e.Target].Add(e.Source)
		adj.Dependents[e.Source].Add(e.Target)
	}

	return adj
}

// Known returns true if id was among the nodes the adjacency was built from
func (a Adjacency) Known(id string) bool {
	_, ok := a.Undirected[id]
	return ok
}

// ValidEdges filters edges down to those whose endpoints are both known,
// preserving input order.
func (a Adjacency) ValidEdges(edges []model.Edge) []model.Edge {
	valid := make([]model.Edge, 0, len(edges))
	for _, e := range edges {
		if a.Known(e.Source) && a.Known(e.Target) {
			valid = append(valid, e)
		}
	}
	return valid
}
