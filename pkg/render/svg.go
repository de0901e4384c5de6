package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Approximate advance of one terminal cell relative to the font size
const (
	cellAdvance     = 0.55
	boldCellAdvance = 0.6
)

type svgStyle struct {
	alpha    float64
	fill     string
	stroke   string
	width    float64
	dash     []float64
	cap      string
	join     string
	font     Font
	align    string
	baseline string
}

// SVGCanvas records draw calls as an SVG document
type SVGCanvas struct {
	width, height float64
	background    string

	style svgStyle
	stack []svgStyle

	scale, tx, ty float64

	path      strings.Builder
	gradients strings.Builder
	body      strings.Builder
	nextID    int
}

// NewSVGCanvas creates a canvas of the given pixel size. An empty background
// leaves the document transparent.
func NewSVGCanvas(width, height float64, background string) *SVGCanvas {
	return &SVGCanvas{
		width:      width,
		height:     height,
		background: background,
		scale:      1,
		style: svgStyle{
			alpha:    1,
			fill:     "#000",
			stroke:   "#000",
			width:    1,
			cap:      "butt",
			join:     "miter",
			font:     Font{Weight: 400, Size: 10},
			align:    "start",
			baseline: "alphabetic",
		},
	}
}

func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (s *SVGCanvas) Save() {
	st := s.style
	st.dash = append([]float64(nil), s.style.dash...)
	s.stack = append(s.stack, st)
}

func (s *SVGCanvas) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.style = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

// SetTransform sets the camera transform applied to the whole drawing
func (s *SVGCanvas) SetTransform(scale, tx, ty float64) {
	s.scale, s.tx, s.ty = scale, tx, ty
}

func (s *SVGCanvas) SetGlobalAlpha(a float64)    { s.style.alpha = a }
func (s *SVGCanvas) SetFillStyle(color string)   { s.style.fill = color }
func (s *SVGCanvas) SetStrokeStyle(color string) { s.style.stroke = color }
func (s *SVGCanvas) SetLineWidth(w float64)      { s.style.width = w }
func (s *SVGCanvas) SetLineCap(c string)         { s.style.cap = c }
func (s *SVGCanvas) SetLineJoin(join string)     { s.style.join = join }
func (s *SVGCanvas) SetFont(f Font)              { s.style.font = f }
func (s *SVGCanvas) SetTextAlign(align string)   { s.style.align = align }
func (s *SVGCanvas) SetTextBaseline(b string)    { s.style.baseline = b }

func (s *SVGCanvas) SetLineDash(segments []float64) {
	s.style.dash = append([]float64(nil), segments...)
}

func (s *SVGCanvas) SetRadialGradientFill(cx, cy, r0, r1 float64, stops ...GradientStop) {
	s.nextID++
	id := fmt.Sprintf("g%d", s.nextID)
	inner := 0.0
	if r1 > 0 {
		inner = r0 / r1
	}
	fmt.Fprintf(&s.gradients, `<radialGradient id="%s" gradientUnits="userSpaceOnUse" cx="%s" cy="%s" r="%s">`,
		id, num(cx), num(cy), num(r1))
	for _, stop := range stops {
		// Canvas gradients start at r0; SVG ones start at the center
		offset := inner + stop.Offset*(1-inner)
		fmt.Fprintf(&s.gradients, `<stop offset="%s" stop-color="%s"/>`, num(offset), html.EscapeString(stop.Color))
	}
	s.gradients.WriteString(`</radialGradient>`)
	s.style.fill = "url(#" + id + ")"
}

func (s *SVGCanvas) BeginPath() {
	s.path.Reset()
}

func (s *SVGCanvas) MoveTo(x, y float64) {
	fmt.Fprintf(&s.path, "M%s %s", num(x), num(y))
}

func (s *SVGCanvas) LineTo(x, y float64) {
	fmt.Fprintf(&s.path, "L%s %s", num(x), num(y))
}

func (s *SVGCanvas) QuadraticCurveTo(cx, cy, x, y float64) {
	fmt.Fprintf(&s.path, "Q%s %s %s %s", num(cx), num(cy), num(x), num(y))
}

func (s *SVGCanvas) Arc(x, y, r, start, end float64) {
	sx, sy := x+r*math.Cos(start), y+r*math.Sin(start)
	if s.path.Len() == 0 {
		s.MoveTo(sx, sy)
	} else {
		s.LineTo(sx, sy)
	}

	sweep := end - start
	if sweep >= 2*math.Pi {
		// A single SVG arc cannot close on itself
		mid := start + math.Pi
		fmt.Fprintf(&s.path, "A%s %s 0 1 1 %s %s", num(r), num(r), num(x+r*math.Cos(mid)), num(y+r*math.Sin(mid)))
		fmt.Fprintf(&s.path, "A%s %s 0 1 1 %s %s", num(r), num(r), num(sx), num(sy))
		return
	}
	large := 0
	if sweep > math.Pi {
		large = 1
	}
	fmt.Fprintf(&s.path, "A%s %s 0 %d 1 %s %s", num(r), num(r), large, num(x+r*math.Cos(end)), num(y+r*math.Sin(end)))
}

func (s *SVGCanvas) RoundRect(x, y, w, h, r float64) {
	r = min(r, w/2, h/2)
	fmt.Fprintf(&s.path, "M%s %s", num(x+r), num(y))
	fmt.Fprintf(&s.path, "H%s", num(x+w-r))
	fmt.Fprintf(&s.path, "A%s %s 0 0 1 %s %s", num(r), num(r), num(x+w), num(y+r))
	fmt.Fprintf(&s.path, "V%s", num(y+h-r))
	fmt.Fprintf(&s.path, "A%s %s 0 0 1 %s %s", num(r), num(r), num(x+w-r), num(y+h))
	fmt.Fprintf(&s.path, "H%s", num(x+r))
	fmt.Fprintf(&s.path, "A%s %s 0 0 1 %s %s", num(r), num(r), num(x), num(y+h-r))
	fmt.Fprintf(&s.path, "V%s", num(y+r))
	fmt.Fprintf(&s.path, "A%s %s 0 0 1 %s %s", num(r), num(r), num(x+r), num(y))
	s.path.WriteString("Z")
}

func (s *SVGCanvas) ClosePath() {
	s.path.WriteString("Z")
}

func (s *SVGCanvas) opacity() string {
	if s.style.alpha >= 1 {
		return ""
	}
	return fmt.Sprintf(` opacity="%s"`, num(s.style.alpha))
}

func (s *SVGCanvas) Fill() {
	if s.path.Len() == 0 {
		return
	}
	fmt.Fprintf(&s.body, `<path d="%s" fill="%s"%s/>`, s.path.String(), html.EscapeString(s.style.fill), s.opacity())
}

func (s *SVGCanvas) Stroke() {
	if s.path.Len() == 0 {
		return
	}
	fmt.Fprintf(&s.body, `<path d="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linecap="%s" stroke-linejoin="%s"`,
		s.path.String(), html.EscapeString(s.style.stroke), num(s.style.width), s.style.cap, s.style.join)
	if len(s.style.dash) > 0 {
		parts := make([]string, len(s.style.dash))
		for i, d := range s.style.dash {
			parts[i] = num(d)
		}
		fmt.Fprintf(&s.body, ` stroke-dasharray="%s"`, strings.Join(parts, " "))
	}
	s.body.WriteString(s.opacity())
	s.body.WriteString("/>")
}

var textAnchors = map[string]string{
	"left":   "start",
	"start":  "start",
	"center": "middle",
	"right":  "end",
	"end":    "end",
}

var baselines = map[string]string{
	"top":        "text-before-edge",
	"hanging":    "hanging",
	"middle":     "central",
	"alphabetic": "alphabetic",
	"bottom":     "text-after-edge",
}

func (s *SVGCanvas) FillText(text string, x, y float64) {
	f := s.style.font
	anchor, ok := textAnchors[s.style.align]
	if !ok {
		anchor = "start"
	}
	baseline, ok := baselines[s.style.baseline]
	if !ok {
		baseline = "alphabetic"
	}
	family := f.Family
	if family == "" {
		family = DefaultFamily
	}
	fmt.Fprintf(&s.body, `<text x="%s" y="%s" font-family="%s" font-size="%s" font-weight="%d" text-anchor="%s" dominant-baseline="%s" fill="%s"%s>%s</text>`,
		num(x), num(y), html.EscapeString(family), num(f.Size), f.Weight, anchor, baseline,
		html.EscapeString(s.style.fill), s.opacity(), html.EscapeString(text))
}

// MeasureText estimates the advance width from the string's cell width
func (s *SVGCanvas) MeasureText(text string) float64 {
	advance := cellAdvance
	if s.style.font.Weight >= 600 {
		advance = boldCellAdvance
	}
	return float64(runewidth.StringWidth(text)) * s.style.font.Size * advance
}

// WriteTo writes the finished SVG document
func (s *SVGCanvas) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(s.width), num(s.height), num(s.width), num(s.height))
	if s.background != "" {
		fmt.Fprintf(&buf, `<rect width="100%%" height="100%%" fill="%s"/>`, html.EscapeString(s.background))
	}
	if s.gradients.Len() > 0 {
		buf.WriteString("<defs>")
		buf.WriteString(s.gradients.String())
		buf.WriteString("</defs>")
	}
	fmt.Fprintf(&buf, `<g transform="matrix(%s 0 0 %s %s %s)">`, num(s.scale), num(s.scale), num(s.tx), num(s.ty))
	buf.WriteString(s.body.String())
	buf.WriteString("</g></svg>")
	return buf.WriteTo(w)
}

// String returns the SVG document
func (s *SVGCanvas) String() string {
	var sb strings.Builder
	_, _ = s.WriteTo(&sb)
	return sb.String()
}
