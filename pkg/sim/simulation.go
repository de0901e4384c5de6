// Package sim relaxes node positions with a d3-style force simulation. A
// Simulation is not safe for concurrent use; the view loop owns it.
package sim

import (
	"time"

	"github.com/ritzau/knowledge-graph/pkg/engine"
	"github.com/ritzau/knowledge-graph/pkg/logging"
	"github.com/ritzau/knowledge-graph/pkg/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// DragAlphaTarget keeps the simulation warm while a node is being dragged
const DragAlphaTarget = 0.3

// Body is the mutable physical state of one node
type Body struct {
	ID     string
	Pos    r2.Vec
	Vel    r2.Vec
	Radius float64
	Pinned bool
	Pin    r2.Vec
}

// RadiusFunc returns the rendered radius of a node, used to size collisions
type RadiusFunc func(n *engine.LayoutNode) float64

// Simulation owns positions and velocities for one result
type Simulation struct {
	cfg    Config
	bodies []Body
	index  map[string]int
	links  []link
	center r2.Vec

	alpha       float64
	alphaTarget float64
	seed        uint64

	running bool
	started time.Time
	ticks   int
	onEnd   func()
}

// New seeds a simulation from the layout engine's initial positions. Edges
// with unknown endpoints and self-loops are ignored.
func New(nodes []engine.LayoutNode, edges []model.Edge, vp model.Viewport, radius RadiusFunc, cfg Config) *Simulation {
	if vp.Empty() {
		vp = model.DefaultViewport
	}
	s := &Simulation{
		cfg:    cfg,
		bodies: make([]Body, len(nodes)),
		index:  make(map[string]int, len(nodes)),
		center: r2.Vec{X: vp.Width / 2, Y: vp.Height / 2},
		alpha:  1,
		seed:   1,
	}

	for i := range nodes {
		n := &nodes[i]
		s.index[n.ID()] = i
		s.bodies[i] = Body{ID: n.ID(), Pos: n.Initial}
		if radius != nil {
			s.bodies[i].Radius = radius(n)
		}
	}

	count := make([]int, len(nodes))
	for _, e := range edges {
		si, ok1 := s.index[e.Source]
		ti, ok2 := s.index[e.Target]
		if !ok1 || !ok2 || si == ti {
			continue
		}
		s.links = append(s.links, link{source: si, target: ti})
		count[si]++
		count[ti]++
	}
	for i := range s.links {
		lk := &s.links[i]
		lk.bias = float64(count[lk.source]) / float64(count[lk.source]+count[lk.target])
	}

	return s
}

// OnEnd registers a callback invoked once each time the engine stops
func (s *Simulation) OnEnd(fn func()) {
	s.onEnd = fn
}

// Start runs the warmup ticks and starts the cooldown clock
func (s *Simulation) Start(now time.Time) {
	for i := 0; i < s.cfg.WarmupTicks; i++ {
		s.Tick()
	}
	s.running = true
	s.started = now
	logging.Debug("simulation started", "nodes", len(s.bodies), "links", len(s.links), "warmup", s.cfg.WarmupTicks)
}

// Running returns true while the engine is ticking
func (s *Simulation) Running() bool {
	return s.running
}

// Alpha returns the current temperature
func (s *Simulation) Alpha() float64 {
	return s.alpha
}

// Ticks returns the number of ticks applied, warmup included
func (s *Simulation) Ticks() int {
	return s.ticks
}

// Step advances one tick if the engine is running and stops it once the
// cooldown has elapsed or alpha has decayed below the minimum. It returns
// true if a tick was applied.
func (s *Simulation) Step(now time.Time) bool {
	if !s.running {
		return false
	}
	if now.Sub(s.started) > s.cfg.Cooldown || s.alpha < s.cfg.AlphaMin {
		s.stop()
		return false
	}
	s.Tick()
	return true
}

func (s *Simulation) stop() {
	s.running = false
	logging.Debug("simulation stopped", "ticks", s.ticks, "alpha", s.alpha)
	if s.onEnd != nil {
		s.onEnd()
	}
}

// Tick applies one round of forces and integrates velocities
func (s *Simulation) Tick() {
	s.ticks++
	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay

	s.applyCharge()
	s.applyLinks()
	s.applyCenter()
	s.applyCollide()

	for i := range s.bodies {
		b := &s.bodies[i]
		if b.Pinned {
			b.Pos = b.Pin
			b.Vel = r2.Vec{}
			continue
		}
		b.Vel = r2.Scale(1-s.cfg.VelocityDecay, b.Vel)
		b.Pos = r2.Add(b.Pos, b.Vel)
	}
}

// Reheat restarts a stopped engine with the given temperature target
func (s *Simulation) Reheat(now time.Time, target float64) {
	s.alphaTarget = target
	if s.alpha < target {
		s.alpha = target
	}
	if !s.running {
		s.running = true
	}
	s.started = now
}

// Fix pins a node at pos and keeps the simulation warm, as during a drag
func (s *Simulation) Fix(now time.Time, id string, pos r2.Vec) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.bodies[i].Pinned = true
	s.bodies[i].Pin = pos
	s.bodies[i].Pos = pos
	s.Reheat(now, DragAlphaTarget)
	return true
}

// Release unpins a node and lets the simulation cool down again
func (s *Simulation) Release(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.bodies[i].Pinned = false
	s.alphaTarget = 0
	return true
}

// Position returns the current position of a node
func (s *Simulation) Position(id string) (r2.Vec, bool) {
	i, ok := s.index[id]
	if !ok {
		return r2.Vec{}, false
	}
	return s.bodies[i].Pos, true
}

// Bodies returns the live body slice. Callers must not modify it.
func (s *Simulation) Bodies() []Body {
	return s.bodies
}

// Bounds returns the bounding box of all node centers
func (s *Simulation) Bounds() (r2.Box, bool) {
	if len(s.bodies) == 0 {
		return r2.Box{}, false
	}
	box := r2.Box{Min: s.bodies[0].Pos, Max: s.bodies[0].Pos}
	for _, b := range s.bodies[1:] {
		box.Min.X = min(box.Min.X, b.Pos.X)
		box.Min.Y = min(box.Min.Y, b.Pos.Y)
		box.Max.X = max(box.Max.X, b.Pos.X)
		box.Max.Y = max(box.Max.Y, b.Pos.Y)
	}
	return box, true
}
