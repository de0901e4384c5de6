package recommend

import (
	"github.com/ritzau/knowledge-graph/pkg/model"
)

// priority lists the states eligible for a suggestion, most preferred first.
// Resuming reachable progress beats starting fresh, which beats nudging
// something already started.
var priority = []model.ReadinessState{
	model.StateUnlocked,
	model.StateStartHere,
	model.StateInProgress,
}

// Suggest returns the node to work on next, or false if nothing is actionable.
// Ties within a tier go to the earliest node in order.
func Suggest(order []string, states map[string]model.ReadinessState) (string, bool) {
	for _, want := range priority {
		for _, id := range order {
			if states[id] == want {
				return id, true
			}
		}
	}
	return "", false
}

// Hint returns the call-to-action label shown with a suggested node
func Hint(state model.ReadinessState) string {
	switch state {
	case model.StateStartHere:
		return "Start with"
	case model.StateUnlocked:
		return "Up next"
	case model.StateInProgress:
		return "Continue"
	}
	return ""
}
