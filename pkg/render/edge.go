package render

import (
	"math"

	"github.com/ritzau/knowledge-graph/pkg/model"
)

const (
	arrowLength     = 6
	arrowGap        = 3
	verticalCurve   = 15
	unrelatedAlpha  = 0.3
	pathPulseBase   = 0.15
	pathPulseRange  = 0.2
	relatedAlpha    = 0.5
	defaultEdgeSize = 1
)

// EdgeStyle is the stroke used for one edge
type EdgeStyle struct {
	Color string
	Width float64
}

// StyleEdge encodes the relationship between the two endpoint states. An edge
// from finished work into an open node is the brightest and pulses.
func StyleEdge(src, tgt model.ReadinessState, related bool, pulse float64) EdgeStyle {
	pick := func(rel, plain float64) float64 {
		if related {
			return rel
		}
		return plain
	}

	switch {
	case src == model.StateCompleted && tgt == model.StateCompleted:
		return EdgeStyle{Color: RGBA(34, 197, 94, pick(0.5, 0.2)), Width: 1.5}
	case (src == model.StateCompleted || src == model.StateInProgress) &&
		(tgt == model.StateUnlocked || tgt == model.StateStartHere):
		return EdgeStyle{Color: RGBA(56, 189, 248, pick(relatedAlpha, pathPulseBase+pulse*pathPulseRange)), Width: 1.5}
	case tgt == model.StateLocked:
		return EdgeStyle{Color: RGBA(255, 255, 255, pick(0.1, 0.04)), Width: 0.5}
	default:
		return EdgeStyle{Color: RGBA(255, 255, 255, pick(0.25, 0.08)), Width: defaultEdgeSize}
	}
}

// EdgePaint is everything PaintEdge needs for one edge in one frame
type EdgePaint struct {
	SX, SY, TX, TY   float64
	SourceState      model.ReadinessState
	TargetState      model.ReadinessState
	TargetDifficulty int
	Hovering         bool // some node is hovered
	Related          bool // the hovered node is an endpoint
}

// PaintEdge draws a curved connector with an arrowhead at the target
func PaintEdge(c Canvas, e EdgePaint, t float64) {
	style := StyleEdge(e.SourceState, e.TargetState, e.Related, Pulse(t))

	if e.Hovering && !e.Related {
		c.SetGlobalAlpha(unrelatedAlpha)
	}

	mx, my := (e.SX+e.TX)/2, (e.SY+e.TY)/2
	offset := 0.0
	if e.TX-e.SX == 0 {
		offset = verticalCurve
	}

	c.BeginPath()
	c.MoveTo(e.SX, e.SY)
	c.QuadraticCurveTo(mx+offset, my, e.TX, e.TY)
	c.SetStrokeStyle(style.Color)
	c.SetLineWidth(style.Width)
	c.Stroke()

	a := ArrowHead(mx, my, e.TX, e.TY, Radius(e.TargetDifficulty))
	c.BeginPath()
	c.MoveTo(a[0][0], a[0][1])
	c.LineTo(a[1][0], a[1][1])
	c.LineTo(a[2][0], a[2][1])
	c.ClosePath()
	c.SetFillStyle(style.Color)
	c.Fill()

	c.SetGlobalAlpha(1)
}

// ArrowHead returns the three corners of the arrow pointing from the curve
// midpoint into the target, tip first, stopping short of the target circle.
func ArrowHead(mx, my, tx, ty, targetRadius float64) [3][2]float64 {
	angle := math.Atan2(ty-my, tx-mx)
	r := targetRadius + arrowGap
	ax := tx - math.Cos(angle)*r
	ay := ty - math.Sin(angle)*r
	return [3][2]float64{
		{ax, ay},
		{ax - arrowLength*math.Cos(angle-math.Pi/6), ay - arrowLength*math.Sin(angle-math.Pi/6)},
		{ax - arrowLength*math.Cos(angle+math.Pi/6), ay - arrowLength*math.Sin(angle+math.Pi/6)},
	}
}
