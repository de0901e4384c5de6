package cycles

import (
	"testing"

	"github.com/ritzau/knowledge-graph/pkg/graph"
)

func buildGraph(ids []string, edges [][2]string) *graph.ConceptGraph {
	cg := graph.NewConceptGraph()
	for _, id := range ids {
		cg.AddConcept(id)
	}
	for _, e := range edges {
		cg.AddPrerequisite(e[0], e[1])
	}
	return cg
}

func TestFindConceptCycles_NoCycles(t *testing.T) {
	// A -> B -> C
	cg := buildGraph([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})

	if cycles := FindConceptCycles(cg); len(cycles) != 0 {
		t.Errorf("Expected no cycles, but found %d", len(cycles))
	}
}

func TestFindConceptCycles_SimpleCycle(t *testing.T) {
	// A -> B -> A
	cg := buildGraph([]string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}})

	cycles := FindConceptCycles(cg)
	if len(cycles) != 1 {
		t.Fatalf("Expected 1 cycle, but found %d", len(cycles))
	}

	got := cycles[0].Concepts
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Expected cycle [a b], got %v", got)
	}
}

func TestFindConceptCycles_MultipleCycles(t *testing.T) {
	cg := buildGraph(
		[]string{"a", "b", "c", "d", "e", "f"},
		[][2]string{
			{"a", "b"}, {"b", "a"}, // cycle 1
			{"c", "d"}, {"d", "e"}, {"e", "c"}, // cycle 2
			{"e", "f"}, // acyclic tail
		},
	)

	cycles := FindConceptCycles(cg)
	if len(cycles) != 2 {
		t.Fatalf("Expected 2 cycles, but found %d", len(cycles))
	}

	if len(cycles[0].Concepts) != 2 || len(cycles[1].Concepts) != 3 {
		t.Errorf("Expected a 2-cycle then a 3-cycle, got %v", cycles)
	}
}

func TestFindConceptCycles_SelfLoop(t *testing.T) {
	cg := buildGraph([]string{"a", "b"}, [][2]string{{"a", "a"}, {"a", "b"}})

	cycles := FindConceptCycles(cg)
	if len(cycles) != 1 || cycles[0].Concepts[0] != "a" {
		t.Errorf("Expected self loop on a, got %v", cycles)
	}
}
