// Package view holds the interactive state of one graph view: hover, camera,
// pending focus and the running simulation. A View is not safe for concurrent
// use; run it on a Loop and reach it through Loop.Do.
package view

import (
	"errors"
	"time"

	"github.com/ritzau/knowledge-graph/pkg/engine"
	"github.com/ritzau/knowledge-graph/pkg/logging"
	"github.com/ritzau/knowledge-graph/pkg/model"
	"github.com/ritzau/knowledge-graph/pkg/render"
	"github.com/ritzau/knowledge-graph/pkg/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	ErrUnknownNode  = errors.New("unknown node")
	ErrNoSuggestion = errors.New("nothing to suggest")
	ErrLoopStopped  = errors.New("render loop stopped")
)

// Config holds the view tuning
type Config struct {
	Sim               sim.Config
	MinZoom           float64
	MaxZoom           float64
	ZoomToFitDuration time.Duration
	ZoomToFitPadding  float64
	FocusZoom         float64
	FocusDuration     time.Duration
	FocusClickDelay   time.Duration
}

// DefaultConfig returns the interactive defaults
func DefaultConfig() Config {
	return Config{
		Sim:               sim.DefaultConfig(),
		MinZoom:           0.5,
		MaxZoom:           5,
		ZoomToFitDuration: 400 * time.Millisecond,
		ZoomToFitPadding:  60,
		FocusZoom:         2.5,
		FocusDuration:     600 * time.Millisecond,
		FocusClickDelay:   650 * time.Millisecond,
	}
}

// How a node was selected
const (
	ViaClick     = "click"
	ViaSuggested = "suggested"
)

// Selection is handed to the detail presenter when a node is opened
type Selection struct {
	Node  model.ConceptRecord  `json:"node"`
	State model.ReadinessState `json:"state"`
	Via   string               `json:"via"`
}

type pendingFocus struct {
	id     string
	fireAt time.Time
}

type frameStats struct {
	frames     int
	nodePaints int
	edgePaints int
}

// View is the per-instance interactive state
type View struct {
	cfg      Config
	viewport model.Viewport
	onSelect func(Selection)

	result      *engine.Result
	fingerprint string
	sim         *sim.Simulation

	now     time.Time
	hovered string
	camera  Camera
	move    *cameraMove
	zoomed  bool
	focus   *pendingFocus
	drag    *dragState
	pan     *panState

	stats frameStats
}

// New creates an empty view. onSelect receives every node opened through a
// click or the suggested-next control and may be nil.
func New(cfg Config, vp model.Viewport, onSelect func(Selection)) *View {
	if vp.Empty() {
		vp = model.DefaultViewport
	}
	return &View{
		cfg:      cfg,
		viewport: vp,
		onSelect: onSelect,
		camera:   Camera{Center: half(vp), Zoom: 1},
	}
}

// SetData replaces the dataset and recomputes everything derived from it. The
// running simulation is kept when node and edge identity is unchanged. It
// returns nil when the dataset is identical to the current one.
func (v *View) SetData(now time.Time, ds *model.Dataset) *engine.Diff {
	fp := engine.Fingerprint(ds)
	if v.result != nil && fp == v.fingerprint {
		logging.Debug("dataset unchanged, skipping recompute")
		return nil
	}

	prev := v.result
	v.now = now
	v.result = engine.Compute(ds, v.viewport)
	v.fingerprint = fp
	diff := engine.ComputeDiff(prev, v.result)

	if _, ok := v.result.Node(v.hovered); !ok {
		v.hovered = ""
	}
	if v.focus != nil {
		if _, ok := v.result.Node(v.focus.id); !ok {
			v.CancelFocus()
		}
	}

	if prev != nil && v.sim != nil && !diff.StructureMoved {
		logging.Debug("structure unchanged, keeping simulation", "stateChanges", len(diff.StateChanges))
		return diff
	}
	v.reseed(now)
	return diff
}

func nodeRadius(n *engine.LayoutNode) float64 {
	return render.Radius(n.Record.Difficulty)
}

func (v *View) reseed(now time.Time) {
	v.sim = nil
	v.drag = nil
	if v.result.Empty() {
		return
	}
	s := sim.New(v.result.Nodes, v.result.Edges, v.result.Viewport, nodeRadius, v.cfg.Sim)
	s.OnEnd(v.engineStopped)
	s.Start(now)
	v.sim = s
}

func (v *View) engineStopped() {
	if v.zoomed {
		logging.Debug("already zoomed, skipping zoom to fit")
		return
	}
	v.zoomed = true
	v.ZoomToFit(v.now, v.cfg.ZoomToFitDuration, v.cfg.ZoomToFitPadding)
}

// Result returns the current engine result, or nil before the first dataset
func (v *View) Result() *engine.Result {
	return v.result
}

// Simulation returns the running simulation, or nil for an empty graph
func (v *View) Simulation() *sim.Simulation {
	return v.sim
}

// Viewport returns the current viewport size
func (v *View) Viewport() model.Viewport {
	return v.viewport
}

// Camera returns the current camera
func (v *View) Camera() Camera {
	return v.camera
}

// Hovered returns the hovered node ID, or "" if none
func (v *View) Hovered() string {
	return v.hovered
}

// Resize records new viewport dimensions. They seed the next recompute; the
// current simulation keeps running undisturbed.
func (v *View) Resize(vp model.Viewport) {
	if vp.Empty() {
		return
	}
	logging.Debug("viewport resized", "width", vp.Width, "height", vp.Height)
	v.viewport = vp
}

// Advance runs the simulation and timers for one frame
func (v *View) Advance(now time.Time) {
	v.now = now
	if v.sim != nil {
		v.sim.Step(now)
	}
	if v.focus != nil && !now.Before(v.focus.fireAt) {
		id := v.focus.id
		v.focus = nil
		if _, err := v.selectNode(id, ViaSuggested); err != nil {
			logging.Warn("suggested node vanished before focus completed", "id", id)
		}
	}
	if v.move != nil {
		cam, done := v.move.at(now)
		v.camera = cam
		if done {
			v.move = nil
		}
	}
	v.stats.frames++
}

// Frame simulates and then paints. A nil canvas only simulates.
func (v *View) Frame(now time.Time, c render.Canvas) {
	v.Advance(now)
	if c != nil {
		v.Paint(c)
	}
}

func (v *View) position(n *engine.LayoutNode) r2.Vec {
	if v.sim != nil {
		if p, ok := v.sim.Position(n.ID()); ok {
			return p
		}
	}
	return n.Initial
}

// Paint draws the current state. Edges are drawn below nodes.
func (v *View) Paint(c render.Canvas) {
	scale, tx, ty := v.camera.Transform(v.viewport)
	c.SetTransform(scale, tx, ty)
	if v.result == nil || v.result.Empty() {
		return
	}

	t := float64(v.now.UnixMilli())
	hovering := v.hovered != ""

	for _, e := range v.result.Edges {
		src, ok1 := v.result.Node(e.Source)
		tgt, ok2 := v.result.Node(e.Target)
		if !ok1 || !ok2 {
			continue
		}
		sp, tp := v.position(src), v.position(tgt)
		render.PaintEdge(c, render.EdgePaint{
			SX: sp.X, SY: sp.Y, TX: tp.X, TY: tp.Y,
			SourceState:      src.State,
			TargetState:      tgt.State,
			TargetDifficulty: tgt.Record.Difficulty,
			Hovering:         hovering,
			Related:          hovering && (e.Source == v.hovered || e.Target == v.hovered),
		}, t)
		v.stats.edgePaints++
	}

	for i := range v.result.Nodes {
		n := &v.result.Nodes[i]
		p := v.position(n)
		isHovered := v.hovered == n.ID()
		isNeighbor := hovering && n.Neighbors.Has(v.hovered)
		render.PaintNode(c, render.NodePaint{
			X:          p.X,
			Y:          p.Y,
			Label:      n.Record.Name,
			Difficulty: n.Record.Difficulty,
			State:      n.State,
			Mastery:    n.Record.Mastery,
			Hovered:    isHovered,
			Neighbor:   isNeighbor,
			Dimmed:     hovering && !isHovered && !isNeighbor,
		}, t)
		v.stats.nodePaints++
	}
}

func (v *View) takeStats() frameStats {
	s := v.stats
	v.stats = frameStats{}
	return s
}

func (v *View) clampZoom(k float64) float64 {
	return max(v.cfg.MinZoom, min(v.cfg.MaxZoom, k))
}

func (v *View) animate(now time.Time, to Camera, d time.Duration) {
	to.Zoom = v.clampZoom(to.Zoom)
	v.move = &cameraMove{from: v.camera, to: to, start: now, duration: d}
	if d <= 0 {
		v.camera = to
		v.move = nil
	}
}

// ZoomToFit animates the camera so every node fits inside the padded viewport
func (v *View) ZoomToFit(now time.Time, d time.Duration, padding float64) {
	if v.sim == nil {
		return
	}
	box, ok := v.sim.Bounds()
	if !ok {
		return
	}
	size := box.Size()
	k := min(
		(v.viewport.Width-2*padding)/max(size.X, 1e-12),
		(v.viewport.Height-2*padding)/max(size.Y, 1e-12),
	)
	center := box.Center()
	logging.Debug("zoom to fit", "zoom", v.clampZoom(k), "x", center.X, "y", center.Y)
	v.animate(now, Camera{Center: center, Zoom: k}, d)
}

// ClickNode opens a node in the detail presenter. Locked nodes are ignored.
// It returns true if the selection was forwarded.
func (v *View) ClickNode(id string) (bool, error) {
	return v.selectNode(id, ViaClick)
}

func (v *View) selectNode(id, via string) (bool, error) {
	if v.result == nil {
		return false, ErrUnknownNode
	}
	n, ok := v.result.Node(id)
	if !ok {
		return false, ErrUnknownNode
	}
	if !n.State.Actionable() {
		logging.Debug("ignoring click on locked node", "id", id)
		return false, nil
	}
	logging.Debug("node selected", "id", id, "state", string(n.State), "mastery", string(n.Record.Mastery), "via", via)
	if v.onSelect != nil {
		v.onSelect(Selection{Node: n.Record, State: n.State, Via: via})
	}
	return true, nil
}

// FocusSuggested centers and zooms on the suggested node, then opens it once
// the camera has settled. It returns the suggested node's ID.
func (v *View) FocusSuggested(now time.Time) (string, error) {
	if v.result == nil {
		return "", ErrNoSuggestion
	}
	n, ok := v.result.SuggestedNode()
	if !ok {
		return "", ErrNoSuggestion
	}
	v.animate(now, Camera{Center: v.position(n), Zoom: v.cfg.FocusZoom}, v.cfg.FocusDuration)
	v.focus = &pendingFocus{id: n.ID(), fireAt: now.Add(v.cfg.FocusClickDelay)}
	logging.Debug("focusing suggested node", "id", n.ID())
	return n.ID(), nil
}

// CancelFocus abandons a pending suggested-node focus. The camera stays
// where it is.
func (v *View) CancelFocus() bool {
	if v.focus == nil {
		return false
	}
	logging.Debug("suggested focus cancelled", "id", v.focus.id)
	v.focus = nil
	v.move = nil
	return true
}

// FocusPending returns true while a suggested focus has not fired yet
func (v *View) FocusPending() bool {
	return v.focus != nil
}
