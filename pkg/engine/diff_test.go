package engine

import (
	"testing"

	"github.com/ritzau/knowledge-graph/pkg/model"
)

func TestComputeDiff_NoPrevious(t *testing.T) {
	cur := Compute(&model.Dataset{Concepts: []model.ConceptRecord{node("A", model.MasteryNotStarted)}}, model.DefaultViewport)

	diff := ComputeDiff(nil, cur)
	if !diff.FullGraph || len(diff.AddedNodes) != 1 {
		t.Errorf("Expected full graph diff, got %+v", diff)
	}
}

func TestComputeDiff_MasteryChange(t *testing.T) {
	before := &model.Dataset{
		Concepts: []model.ConceptRecord{node("A", model.MasteryNotStarted), node("B", model.MasteryNotStarted)},
		Edges:    []model.Edge{edge("A", "B")},
	}
	after := &model.Dataset{
		Concepts: []model.ConceptRecord{node("A", model.MasteryMastered), node("B", model.MasteryNotStarted)},
		Edges:    []model.Edge{edge("A", "B")},
	}

	diff := ComputeDiff(Compute(before, model.DefaultViewport), Compute(after, model.DefaultViewport))

	if diff.StructureMoved {
		t.Error("Mastery-only change must not count as a structural change")
	}
	if len(diff.StateChanges) != 2 {
		t.Fatalf("Expected 2 state changes, got %+v", diff.StateChanges)
	}
	if diff.StateChanges[1].ID != "B" || diff.StateChanges[1].To != model.StateUnlocked {
		t.Errorf("Expected B to become unlocked, got %+v", diff.StateChanges[1])
	}
	if Fingerprint(before) == Fingerprint(after) {
		t.Error("Fingerprints should differ when mastery changes")
	}
}

func TestComputeDiff_Structure(t *testing.T) {
	before := Compute(&model.Dataset{Concepts: []model.ConceptRecord{node("A", model.MasteryNotStarted), node("B", model.MasteryNotStarted)}}, model.DefaultViewport)
	after := Compute(&model.Dataset{Concepts: []model.ConceptRecord{node("A", model.MasteryNotStarted), node("C", model.MasteryNotStarted)}}, model.DefaultViewport)

	diff := ComputeDiff(before, after)
	if !diff.StructureMoved {
		t.Error("Expected structural change")
	}
	if len(diff.AddedNodes) != 1 || diff.AddedNodes[0] != "C" {
		t.Errorf("Expected C added, got %v", diff.AddedNodes)
	}
	if len(diff.RemovedNodes) != 1 || diff.RemovedNodes[0] != "B" {
		t.Errorf("Expected B removed, got %v", diff.RemovedNodes)
	}
}
