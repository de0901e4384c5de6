package engine

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/ritzau/knowledge-graph/pkg/model"
)

// StateChange records a node whose readiness moved between two results
type StateChange struct {
	ID   string               `json:"id"`
	From model.ReadinessState `json:"from"`
	To   model.ReadinessState `json:"to"`
}

// Diff describes how one result differs from the previous one
type Diff struct {
	AddedNodes     []string      `json:"addedNodes"`
	RemovedNodes   []string      `json:"removedNodes"`
	StateChanges   []StateChange `json:"stateChanges"`
	StructureMoved bool          `json:"structureMoved"` // node or edge identity changed
	FullGraph      bool          `json:"fullGraph"`      // true if there was no previous result
}

// Fingerprint hashes a dataset so identical reloads can be skipped
func Fingerprint(ds *model.Dataset) string {
	jsonData, err := json.Marshal(ds)
	if err != nil {
		return ""
	}
	return strconv.FormatUint(xxhash.Sum64(jsonData), 16)
}

// Identity hashes node IDs, difficulties and edges: everything the simulation
// is built from. Two results with the same identity can share a simulation
// even if mastery differs.
func (r *Result) Identity() string {
	type nodeKey struct {
		ID         string
		Difficulty int
	}
	data := struct {
		Nodes []nodeKey
		Edges []model.Edge
	}{
		Nodes: make([]nodeKey, len(r.Nodes)),
		Edges: r.Edges,
	}
	for i, n := range r.Nodes {
		data.Nodes[i] = nodeKey{ID: n.Record.ID, Difficulty: n.Record.Difficulty}
	}

	jsonData, _ := json.Marshal(data)
	return strconv.FormatUint(xxhash.Sum64(jsonData), 16)
}

// ComputeDiff compares a new result against the previous one
func ComputeDiff(old, cur *Result) *Diff {
	if old == nil {
		added := make([]string, len(cur.Nodes))
		for i, n := range cur.Nodes {
			added[i] = n.Record.ID
		}
		return &Diff{AddedNodes: added, StructureMoved: true, FullGraph: true}
	}

	diff := &Diff{
		AddedNodes:   make([]string, 0),
		RemovedNodes: make([]string, 0),
		StateChanges: make([]StateChange, 0),
	}

	for _, n := range cur.Nodes {
		prev, exists := old.Node(n.Record.ID)
		if !exists {
			diff.AddedNodes = append(diff.AddedNodes, n.Record.ID)
			continue
		}
		if prev.State != n.State {
			diff.StateChanges = append(diff.StateChanges, StateChange{
				ID:   n.Record.ID,
				From: prev.State,
				To:   n.State,
			})
		}
	}

	for _, n := range old.Nodes {
		if _, exists := cur.Index[n.Record.ID]; !exists {
			diff.RemovedNodes = append(diff.RemovedNodes, n.Record.ID)
		}
	}

	sort.Strings(diff.RemovedNodes)
	diff.StructureMoved = old.Identity() != cur.Identity()
	return diff
}
