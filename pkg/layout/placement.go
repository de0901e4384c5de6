package layout

import (
	"github.com/ritzau/knowledge-graph/pkg/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// Bands control how much of the viewport the initial layout occupies
const (
	HorizontalBand = 0.7
	VerticalBand   = 0.8
)

// Place assigns every layered node an initial position inside the viewport.
// Layers run top to bottom; nodes within a layer spread left to right.
// A lone layer or a lone node in a layer is centered on that axis.
func Place(l *Layering, vp model.Viewport) map[string]r2.Vec {
	if vp.Empty() {
		vp = model.DefaultViewport
	}

	positions := make(map[string]r2.Vec, len(l.Depth))
	center := r2.Vec{X: vp.Width / 2, Y: vp.Height / 2}
	bandW := vp.Width * HorizontalBand
	bandH := vp.Height * VerticalBand

	for depth, layer := range l.Layers {
		y := spread(center.Y, bandH, depth, len(l.Layers))
		for i, id := range layer {
			positions[id] = r2.Vec{X: spread(center.X, bandW, i, len(layer)), Y: y}
		}
	}

	return positions
}

// spread returns the i-th of n evenly spaced values across a band centered on c
func spread(c, band float64, i, n int) float64 {
	if n <= 1 {
		return c
	}
	return c - band/2 + float64(i)*band/float64(n-1)
}
