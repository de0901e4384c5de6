package render

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/ritzau/knowledge-graph/pkg/model"
)

// Background is the surface color behind the graph
const Background = "#0a0a0a"

// MasteryColors is the raw mastery palette, used when no readiness state is known
var MasteryColors = map[model.Mastery]string{
	model.MasteryNotStarted: "#737373",
	model.MasteryWeak:       "#ef4444",
	model.MasteryLearning:   "#eab308",
	model.MasteryMastered:   "#22c55e",
}

// StateColors is the readiness palette
var StateColors = map[model.ReadinessState]string{
	model.StateStartHere:  "#38bdf8",
	model.StateUnlocked:   "#818cf8",
	model.StateInProgress: "#eab308",
	model.StateCompleted:  "#22c55e",
	model.StateLocked:     "#525252",
}

// NodeColor picks the readiness color, falling back to the mastery color
func NodeColor(state model.ReadinessState, mastery model.Mastery) string {
	if c, ok := StateColors[state]; ok {
		return c
	}
	if c, ok := MasteryColors[mastery]; ok {
		return c
	}
	return MasteryColors[model.MasteryNotStarted]
}

// ColorWithAlpha converts a hex color into an rgba() string. Unparseable input
// is returned unchanged.
func ColorWithAlpha(hex string, alpha float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	r, g, b := c.RGB255()
	return RGBA(r, g, b, alpha)
}

// RGBA formats an rgba() color string
func RGBA(r, g, b uint8, alpha float64) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", r, g, b, formatAlpha(alpha))
}

func formatAlpha(a float64) string {
	a = max(0, min(1, a))
	s := fmt.Sprintf("%.3f", a)
	for len(s) > 1 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
