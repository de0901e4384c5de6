package layout

import (
	"math"
	"testing"

	"github.com/ritzau/knowledge-graph/pkg/model"
)

func TestPlace_SingleLayerCentered(t *testing.T) {
	l := &Layering{Layers: [][]string{{"A"}}, Depth: map[string]int{"A": 0}}
	pos := Place(l, model.Viewport{Width: 1000, Height: 500})

	if pos["A"].X != 500 || pos["A"].Y != 250 {
		t.Errorf("Expected single node at center, got %v", pos["A"])
	}
}

func TestPlace_Bands(t *testing.T) {
	l := &Layering{
		Layers: [][]string{{"A"}, {"B", "C"}, {"D"}},
		Depth:  map[string]int{"A": 0, "B": 1, "C": 1, "D": 2},
	}
	vp := model.Viewport{Width: 1000, Height: 1000}
	pos := Place(l, vp)

	// Vertical band is 80% of height: 100..900
	if pos["A"].Y != 100 || pos["D"].Y != 900 {
		t.Errorf("Expected roots at top and leaves at bottom, got A=%v D=%v", pos["A"], pos["D"])
	}
	if pos["B"].Y != 500 || pos["C"].Y != 500 {
		t.Errorf("Expected middle layer at 500, got B=%v C=%v", pos["B"], pos["C"])
	}

	// Horizontal band is 70% of width: 150..850
	if math.Abs(pos["B"].X-150) > 1e-9 || math.Abs(pos["C"].X-850) > 1e-9 {
		t.Errorf("Expected layer spread across band, got B=%v C=%v", pos["B"], pos["C"])
	}
}

func TestPlace_EmptyViewportUsesDefault(t *testing.T) {
	l := &Layering{Layers: [][]string{{"A"}}, Depth: map[string]int{"A": 0}}
	pos := Place(l, model.Viewport{})

	if pos["A"].X != model.DefaultViewport.Width/2 {
		t.Errorf("Expected default viewport center, got %v", pos["A"])
	}
}
