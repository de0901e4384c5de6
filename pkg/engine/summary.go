package engine

import "github.com/ritzau/knowledge-graph/pkg/model"

// Summary reports learner progress over a topic
type Summary struct {
	Total    int                          `json:"total"`
	Mastered int                          `json:"mastered"`
	Percent  float64                      `json:"percent"`
	States   map[model.ReadinessState]int `json:"states"`
}

// Summarize counts mastered concepts and nodes per readiness state
func Summarize(nodes []LayoutNode) Summary {
	s := Summary{
		Total:  len(nodes),
		States: make(map[model.ReadinessState]int, len(model.AllStates)),
	}
	for _, state := range model.AllStates {
		s.States[state] = 0
	}
	for _, n := range nodes {
		if n.Record.Mastery == model.MasteryMastered {
			s.Mastered++
		}
		s.States[n.State]++
	}
	if s.Total > 0 {
		s.Percent = float64(s.Mastered) / float64(s.Total) * 100.0
	}
	return s
}
