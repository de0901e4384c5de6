package render

import (
	"math"

	"github.com/ritzau/knowledge-graph/pkg/model"
)

// Node geometry
const (
	HoverScale       = 1.25
	PointerMargin    = 6
	glowMargin       = 8
	glowPulse        = 4
	haloMargin       = 4
	labelGap         = 6
	labelPadding     = 4
	startTagGap      = 10
	startTagPadding  = 3
	cornerRadius     = 3
	labelFontSize    = 10
	hoveredLabelSize = 12
)

// Radius returns the rendered node radius for a difficulty level
func Radius(difficulty int) float64 {
	return 4 + 2*float64(model.ClampDifficulty(difficulty))
}

// PointerRadius returns the radius of a node's hit area
func PointerRadius(difficulty int) float64 {
	return Radius(difficulty) + PointerMargin
}

// Pulse returns the glow pulse in 0..1 for a frame time in milliseconds
func Pulse(t float64) float64 {
	return math.Sin(t*0.004)*0.5 + 0.5
}

// SlowPulse drives the START tag
func SlowPulse(t float64) float64 {
	return math.Sin(t*0.003)*0.5 + 0.5
}

// NodePaint is everything PaintNode needs for one node in one frame
type NodePaint struct {
	X, Y       float64
	Label      string
	Difficulty int
	State      model.ReadinessState
	Mastery    model.Mastery
	Hovered    bool
	Neighbor   bool // adjacent to the hovered node
	Dimmed     bool // something else is hovered and this node is unrelated
}

// PaintNode draws one node. t is the frame time in milliseconds.
func PaintNode(c Canvas, n NodePaint, t float64) {
	radius := Radius(n.Difficulty)
	color := NodeColor(n.State, n.Mastery)
	pulse := Pulse(t)
	locked := n.State == model.StateLocked

	switch {
	case locked && n.Dimmed:
		c.SetGlobalAlpha(0.06)
	case locked:
		c.SetGlobalAlpha(0.35)
	case n.Dimmed:
		c.SetGlobalAlpha(0.12)
	default:
		c.SetGlobalAlpha(1)
	}

	if !n.Dimmed && (n.State == model.StateStartHere || n.State == model.StateUnlocked) {
		glow := radius + glowMargin + pulse*glowPulse
		c.SetRadialGradientFill(n.X, n.Y, radius, glow,
			GradientStop{Offset: 0, Color: ColorWithAlpha(color, 0.25+pulse*0.15)},
			GradientStop{Offset: 1, Color: ColorWithAlpha(color, 0)},
		)
		c.BeginPath()
		c.Arc(n.X, n.Y, glow, 0, 2*math.Pi)
		c.Fill()
	}

	if !n.Dimmed && n.State == model.StateCompleted {
		c.BeginPath()
		c.Arc(n.X, n.Y, radius+haloMargin, 0, 2*math.Pi)
		c.SetFillStyle(ColorWithAlpha(color, 0.15))
		c.Fill()
	}

	drawRadius := radius
	if n.Hovered {
		drawRadius = radius * HoverScale
	}
	c.BeginPath()
	c.Arc(n.X, n.Y, drawRadius, 0, 2*math.Pi)
	c.SetFillStyle(color)
	c.Fill()

	if locked && !n.Dimmed {
		c.SetLineDash([]float64{3, 3})
		c.SetStrokeStyle("rgba(255,255,255,0.15)")
		c.SetLineWidth(1)
		c.Stroke()
		c.SetLineDash(nil)
	}

	if n.Hovered {
		c.SetStrokeStyle("rgba(255,255,255,0.5)")
		c.SetLineWidth(1.5)
		c.Stroke()
	}

	if n.State == model.StateCompleted && !n.Dimmed {
		paintCheck(c, n.X, n.Y, radius)
	}

	if n.State == model.StateStartHere && !n.Dimmed {
		paintStartTag(c, n.X, n.Y-drawRadius-startTagGap, color, SlowPulse(t))
	}

	paintLabel(c, n, drawRadius)
	c.SetGlobalAlpha(1)
}

func paintCheck(c Canvas, x, y, radius float64) {
	s := radius * 0.35
	c.SetStrokeStyle("rgba(255,255,255,0.9)")
	c.SetLineWidth(1.8)
	c.SetLineCap("round")
	c.SetLineJoin("round")
	c.BeginPath()
	c.MoveTo(x-s*0.6, y+s*0.1)
	c.LineTo(x-s*0.1, y+s*0.55)
	c.LineTo(x+s*0.7, y-s*0.4)
	c.Stroke()
	c.SetLineCap("butt")
	c.SetLineJoin("miter")
}

func paintStartTag(c Canvas, x, tagY float64, color string, slowPulse float64) {
	const text = "START"
	c.SetFont(Font{Weight: 700, Size: 7})
	w := c.MeasureText(text)

	c.SetFillStyle(ColorWithAlpha(color, 0.7+slowPulse*0.3))
	c.BeginPath()
	c.RoundRect(x-w/2-startTagPadding, tagY-5, w+startTagPadding*2, 12, cornerRadius)
	c.Fill()

	c.SetFillStyle("rgba(0,0,0,0.85)")
	c.SetTextAlign("center")
	c.SetTextBaseline("middle")
	c.FillText(text, x, tagY+1)
}

func paintLabel(c Canvas, n NodePaint, drawRadius float64) {
	size := float64(labelFontSize)
	if n.Hovered {
		size = hoveredLabelSize
	}
	weight := 400
	if n.Hovered || n.Neighbor {
		weight = 600
	}
	c.SetFont(Font{Weight: weight, Size: size})

	w := c.MeasureText(n.Label)
	labelY := n.Y + drawRadius + labelGap
	c.SetGlobalAlpha(LabelAlpha(n.State, n.Dimmed))

	c.SetFillStyle("rgba(0,0,0,0.55)")
	c.BeginPath()
	c.RoundRect(n.X-w/2-labelPadding, labelY-1, w+labelPadding*2, size+4, cornerRadius)
	c.Fill()

	switch {
	case n.Hovered:
		c.SetFillStyle("rgba(255,255,255,0.95)")
	case n.State == model.StateLocked:
		c.SetFillStyle("rgba(255,255,255,0.5)")
	default:
		c.SetFillStyle("rgba(255,255,255,0.8)")
	}
	c.SetTextAlign("center")
	c.SetTextBaseline("top")
	c.FillText(n.Label, n.X, labelY+1)
}

// LabelAlpha returns the label opacity for a node
func LabelAlpha(state model.ReadinessState, dimmed bool) float64 {
	if state == model.StateLocked {
		if dimmed {
			return 0.04
		}
		return 0.3
	}
	if dimmed {
		return 0.08
	}
	return 1
}

// PaintPointerArea fills a node's hit area with a key color, for hosts that
// resolve pointer targets by sampling a shadow canvas.
func PaintPointerArea(c Canvas, x, y float64, difficulty int, key string) {
	c.BeginPath()
	c.Arc(x, y, PointerRadius(difficulty), 0, 2*math.Pi)
	c.SetFillStyle(key)
	c.Fill()
}
