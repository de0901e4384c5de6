package cycles

import (
	"sort"

	"github.com/ritzau/knowledge-graph/pkg/graph"
)

// Cycle is a set of concepts that are (transitively) prerequisites of each other
type Cycle struct {
	Concepts []string `json:"concepts"`
}

// FindConceptCycles finds all prerequisite cycles, including self-prerequisites.
// Concepts within a cycle are sorted and cycles are ordered by their first concept.
func FindConceptCycles(cg *graph.ConceptGraph) []Cycle {
	cycles := make([]Cycle, 0)

	for _, scc := range newTarjanSCC(cg.Graph()).findSCCs() {
		concepts := make([]string, 0, len(scc))
		for _, id := range scc {
			if label, ok := cg.Label(id); ok {
				concepts = append(concepts, label)
			}
		}
		sort.Strings(concepts)
		cycles = append(cycles, Cycle{Concepts: concepts})
	}

	for _, id := range cg.SelfLoops() {
		cycles = append(cycles, Cycle{Concepts: []string{id}})
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].Concepts[0] < cycles[j].Concepts[0]
	})
	return cycles
}
