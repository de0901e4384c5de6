// Package render paints the knowledge graph onto an abstract 2D canvas. The
// paint functions only issue draw calls; they hold no state between frames.
package render

import "fmt"

// Font describes a canvas font
type Font struct {
	Weight int
	Size   float64
	Family string
}

// DefaultFamily is used for all labels
const DefaultFamily = "Inter, system-ui, sans-serif"

// String formats the font as a CSS font shorthand
func (f Font) String() string {
	family := f.Family
	if family == "" {
		family = DefaultFamily
	}
	return fmt.Sprintf("%d %gpx %s", f.Weight, f.Size, family)
}

// GradientStop is one color stop of a gradient
type GradientStop struct {
	Offset float64
	Color  string
}

// Canvas is the draw-call boundary with the host. Its shape mirrors the
// browser 2D context so a host can forward calls one to one.
type Canvas interface {
	Save()
	Restore()
	SetTransform(scale, tx, ty float64)

	SetGlobalAlpha(a float64)
	SetFillStyle(color string)
	SetRadialGradientFill(cx, cy, r0, r1 float64, stops ...GradientStop)
	SetStrokeStyle(color string)
	SetLineWidth(w float64)
	SetLineDash(segments []float64)
	SetLineCap(lineCap string)
	SetLineJoin(join string)
	SetFont(f Font)
	SetTextAlign(align string)
	SetTextBaseline(baseline string)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticCurveTo(cx, cy, x, y float64)
	Arc(x, y, r, start, end float64)
	RoundRect(x, y, w, h, r float64)
	ClosePath()
	Fill()
	Stroke()

	FillText(text string, x, y float64)
	MeasureText(text string) float64
}
