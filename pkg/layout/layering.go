package layout

import (
	"sort"

	"github.com/ritzau/knowledge-graph/pkg/graph"
	"github.com/ritzau/knowledge-graph/pkg/model"
)

// Layering is the result of breadth-first topological layering
type Layering struct {
	Layers [][]string     // Layers[d] holds the node IDs at depth d, in placement order
	Depth  map[string]int // nodeID -> layer index
}

// Len returns the number of layers
func (l *Layering) Len() int {
	return len(l.Layers)
}

// AssignLayers layers nodes breadth-first from the roots (in-degree zero).
//
// order is the caller's node order and is used for every tie-break, which makes
// the result deterministic. A global visited set guarantees termination on
// cyclic input: each node is expanded at most once, so there are at most
// len(order) layers. If no root exists the first node is used as one, and any
// node the traversal never reaches is appended to the last layer.
func AssignLayers(order []string, adj graph.Adjacency, edges []model.Edge) *Layering {
	result := &Layering{Depth: make(map[string]int, len(order))}
	if len(order) == 0 {
		return result
	}

	position := make(map[string]int, len(order))
	for i, id := range order {
		position[id] = i
	}

	inDegree := make(map[string]int, len(order))
	for _, e := range edges {
		if adj.Known(e.Source) && adj.Known(e.Target) {
			inDegree[e.Target]++
		}
	}

	var roots []string
	for _, id := range order {
		if inDegree[id] == 0 {
			roots = append(roots, id)
		}
	}
	if len(roots) == 0 {
		roots = []string{order[0]}
	}

	visited := make(map[string]bool, len(order))
	for _, id := range roots {
		visited[id] = true
	}

	current := roots
	for len(current) > 0 {
		result.Layers = append(result.Layers, current)

		var next []string
		for _, id := range current {
			for _, dep := range byPosition(adj.Dependents[id], position) {
				if visited[dep] {
					continue
				}
				visited[dep] = true
				next = append(next, dep)
			}
		}
		current = next
	}

	last := len(result.Layers) - 1
	for _, id := range order {
		if !visited[id] {
			visited[id] = true
			result.Layers[last] = append(result.Layers[last], id)
		}
	}

	for depth, layer := range result.Layers {
		for _, id := range layer {
			result.Depth[id] = depth
		}
	}

	return result
}

// byPosition returns the members of s ordered by their position in the input
func byPosition(s graph.Set, position map[string]int) []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return position[ids[i]] < position[ids[j]]
	})
	return ids
}
