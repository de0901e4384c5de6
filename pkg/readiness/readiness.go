// Package readiness derives a learner-facing state for each concept from its own
// mastery and the mastery of its prerequisites.
//
// The unlock rule is lenient on purpose: a prerequisite that is merely
// "learning" counts the same as "mastered". Product has not confirmed whether
// this should be tightened, so it is kept as-is.
package readiness

import (
	"github.com/ritzau/knowledge-graph/pkg/graph"
	"github.com/ritzau/knowledge-graph/pkg/model"
)

// State returns the readiness state for one concept.
// prereqMastery holds the mastery of each of its prerequisites.
func State(own model.Mastery, prereqMastery []model.Mastery) model.ReadinessState {
	switch own {
	case model.MasteryMastered:
		return model.StateCompleted
	case model.MasteryLearning, model.MasteryWeak:
		return model.StateInProgress
	}

	if len(prereqMastery) == 0 {
		return model.StateStartHere
	}

	for _, m := range prereqMastery {
		if !Unlocks(m) {
			return model.StateLocked
		}
	}
	return model.StateUnlocked
}

// Unlocks returns true if a prerequisite at mastery m opens its dependents
func Unlocks(m model.Mastery) bool {
	return m == model.MasteryMastered || m == model.MasteryLearning
}

// Classify assigns a state to every concept, keyed by ID.
// Prerequisites are taken from adj; unknown prerequisite IDs cannot occur because
// adjacency only holds known endpoints.
func Classify(concepts []model.ConceptRecord, adj graph.Adjacency) map[string]model.ReadinessState {
	mastery := make(map[string]model.Mastery, len(concepts))
	for _, c := range concepts {
		mastery[c.ID] = c.Mastery
	}

	states := make(map[string]model.ReadinessState, len(concepts))
	for _, c := range concepts {
		prereqs := adj.Prerequisites[c.ID]
		levels := make([]model.Mastery, 0, len(prereqs))
		for id := range prereqs {
			levels = append(levels, mastery[id])
		}
		states[c.ID] = State(c.Mastery, levels)
	}
	return states
}
