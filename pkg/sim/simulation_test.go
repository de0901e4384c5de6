package sim

import (
	"math"
	"testing"
	"time"

	"github.com/ritzau/knowledge-graph/pkg/engine"
	"github.com/ritzau/knowledge-graph/pkg/model"
	"gonum.org/v1/gonum/spatial/r2"
)

var vp = model.Viewport{Width: 800, Height: 600}

func layoutNodes(positions map[string]r2.Vec, order ...string) []engine.LayoutNode {
	nodes := make([]engine.LayoutNode, len(order))
	for i, id := range order {
		nodes[i] = engine.LayoutNode{
			Record:  model.ConceptRecord{ID: id, Difficulty: 1},
			Initial: positions[id],
		}
	}
	return nodes
}

func fixedRadius(r float64) RadiusFunc {
	return func(*engine.LayoutNode) float64 { return r }
}

// only returns a config with every force disabled except the one set by fn
func only(fn func(*Config)) Config {
	cfg := DefaultConfig()
	cfg.ChargeStrength = 0
	cfg.LinkStrength = 0
	cfg.CenterStrength = 0
	cfg.CollideStrength = 0
	cfg.WarmupTicks = 0
	cfg.Cooldown = time.Hour
	fn(&cfg)
	return cfg
}

func runToEnd(t *testing.T, s *Simulation) {
	t.Helper()
	now := time.Unix(0, 0)
	s.Start(now)
	for i := 0; i < 2000; i++ {
		now = now.Add(time.Millisecond)
		if !s.Step(now) && !s.Running() {
			return
		}
	}
	t.Fatal("simulation did not stop")
}

func distance(t *testing.T, s *Simulation, a, b string) float64 {
	t.Helper()
	pa, ok1 := s.Position(a)
	pb, ok2 := s.Position(b)
	if !ok1 || !ok2 {
		t.Fatalf("missing positions for %s/%s", a, b)
	}
	return r2.Norm(r2.Sub(pa, pb))
}

func TestLinkForce_ConvergesToDistance(t *testing.T) {
	nodes := layoutNodes(map[string]r2.Vec{"A": {X: 300, Y: 300}, "B": {X: 500, Y: 300}}, "A", "B")
	cfg := only(func(c *Config) { c.LinkStrength = 0.7 })
	s := New(nodes, []model.Edge{{Source: "A", Target: "B"}}, vp, nil, cfg)

	runToEnd(t, s)

	if d := distance(t, s, "A", "B"); math.Abs(d-cfg.LinkDistance) > 2 {
		t.Errorf("Expected link length near %v, got %v", cfg.LinkDistance, d)
	}
}

func TestChargeForce_Repels(t *testing.T) {
	nodes := layoutNodes(map[string]r2.Vec{"A": {X: 395, Y: 300}, "B": {X: 405, Y: 300}}, "A", "B")
	s := New(nodes, nil, vp, nil, only(func(c *Config) { c.ChargeStrength = -120 }))

	before := distance(t, s, "A", "B")
	for i := 0; i < 10; i++ {
		s.Tick()
	}

	if after := distance(t, s, "A", "B"); after <= before {
		t.Errorf("Expected nodes to move apart, distance %v -> %v", before, after)
	}
}

func TestCollideForce_SeparatesCoincidentNodes(t *testing.T) {
	nodes := layoutNodes(map[string]r2.Vec{"A": {X: 400, Y: 300}, "B": {X: 400, Y: 300}}, "A", "B")
	cfg := only(func(c *Config) { c.CollideStrength = 0.8 })
	s := New(nodes, nil, vp, fixedRadius(6), cfg)

	runToEnd(t, s)

	want := 2 * (6 + cfg.CollideMargin)
	if d := distance(t, s, "A", "B"); d < want-1 {
		t.Errorf("Expected separation of at least %v, got %v", want, d)
	}
}

func TestCenterForce_PullsTowardViewportCenter(t *testing.T) {
	nodes := layoutNodes(map[string]r2.Vec{"A": {X: 0, Y: 0}, "B": {X: 100, Y: 0}}, "A", "B")
	s := New(nodes, nil, vp, nil, only(func(c *Config) { c.CenterStrength = 0.05 }))

	for i := 0; i < 500; i++ {
		s.Tick()
	}

	a, _ := s.Position("A")
	b, _ := s.Position("B")
	mean := r2.Scale(0.5, r2.Add(a, b))
	if r2.Norm(r2.Sub(mean, r2.Vec{X: 400, Y: 300})) > 1 {
		t.Errorf("Expected centroid near viewport center, got %v", mean)
	}
	if d := r2.Norm(r2.Sub(a, b)); math.Abs(d-100) > 1e-6 {
		t.Errorf("Centering should not change relative distance, got %v", d)
	}
}

func TestSimulation_EndFiresOncePerRun(t *testing.T) {
	nodes := layoutNodes(map[string]r2.Vec{"A": {X: 400, Y: 300}}, "A")
	s := New(nodes, nil, vp, nil, DefaultConfig())
	ends := 0
	s.OnEnd(func() { ends++ })

	runToEnd(t, s)
	for i := 0; i < 5; i++ {
		s.Step(time.Unix(100, 0))
	}

	if ends != 1 {
		t.Errorf("Expected one end notification, got %d", ends)
	}
}

func TestSimulation_CooldownStops(t *testing.T) {
	nodes := layoutNodes(map[string]r2.Vec{"A": {X: 400, Y: 300}, "B": {X: 420, Y: 300}}, "A", "B")
	s := New(nodes, nil, vp, nil, DefaultConfig())
	start := time.Unix(0, 0)
	s.Start(start)

	if !s.Step(start.Add(time.Second)) {
		t.Fatal("Expected a tick inside the cooldown window")
	}
	if s.Step(start.Add(4 * time.Second)) {
		t.Error("Expected the engine to stop after the cooldown")
	}
	if s.Running() {
		t.Error("Engine still running after cooldown")
	}
}

func TestSimulation_Warmup(t *testing.T) {
	s := New(layoutNodes(nil, "A"), nil, vp, nil, DefaultConfig())
	s.Start(time.Unix(0, 0))

	if s.Ticks() != 50 {
		t.Errorf("Expected 50 warmup ticks, got %d", s.Ticks())
	}
}

func TestSimulation_FixAndRelease(t *testing.T) {
	nodes := layoutNodes(map[string]r2.Vec{"A": {X: 400, Y: 300}, "B": {X: 480, Y: 300}}, "A", "B")
	s := New(nodes, []model.Edge{{Source: "A", Target: "B"}}, vp, fixedRadius(6), DefaultConfig())
	now := time.Unix(0, 0)
	runToEnd(t, s)

	pin := r2.Vec{X: 100, Y: 100}
	if !s.Fix(now, "A", pin) {
		t.Fatal("Fix failed for known node")
	}
	if !s.Running() {
		t.Fatal("Expected drag to reheat the engine")
	}
	for i := 0; i < 20; i++ {
		s.Step(now)
	}
	if p, _ := s.Position("A"); p != pin {
		t.Errorf("Pinned node moved to %v", p)
	}
	if s.Alpha() < DragAlphaTarget/2 {
		t.Errorf("Expected alpha to stay warm during drag, got %v", s.Alpha())
	}

	s.Release("A")
	s.Tick()
	if p, _ := s.Position("A"); p == pin {
		t.Error("Released node should move with the simulation")
	}
	if s.Fix(now, "missing", pin) {
		t.Error("Fix should fail for unknown node")
	}
}

func TestSimulation_Deterministic(t *testing.T) {
	positions := map[string]r2.Vec{"A": {X: 400, Y: 300}, "B": {X: 400, Y: 300}, "C": {X: 410, Y: 290}}
	edges := []model.Edge{{Source: "A", Target: "B"}, {Source: "B", Target: "C"}}

	a := New(layoutNodes(positions, "A", "B", "C"), edges, vp, fixedRadius(8), DefaultConfig())
	b := New(layoutNodes(positions, "A", "B", "C"), edges, vp, fixedRadius(8), DefaultConfig())
	for i := 0; i < 100; i++ {
		a.Tick()
		b.Tick()
	}

	for _, id := range []string{"A", "B", "C"} {
		pa, _ := a.Position(id)
		pb, _ := b.Position(id)
		if pa != pb {
			t.Errorf("%s: %v != %v", id, pa, pb)
		}
		if math.IsNaN(pa.X) || math.IsNaN(pa.Y) {
			t.Errorf("%s: NaN position", id)
		}
	}
}

func TestSimulation_SkipsBadEdges(t *testing.T) {
	s := New(layoutNodes(nil, "A"), []model.Edge{{Source: "A", Target: "A"}, {Source: "A", Target: "ghost"}}, vp, nil, DefaultConfig())
	if len(s.links) != 0 {
		t.Errorf("Expected no links, got %d", len(s.links))
	}
	s.Tick()
	if p, _ := s.Position("A"); math.IsNaN(p.X) {
		t.Error("Single node position became NaN")
	}
}

func TestSimulation_Bounds(t *testing.T) {
	s := New(layoutNodes(map[string]r2.Vec{"A": {X: 10, Y: 50}, "B": {X: 90, Y: 20}}, "A", "B"), nil, vp, nil, DefaultConfig())
	box, ok := s.Bounds()
	if !ok {
		t.Fatal("Expected bounds")
	}
	if box.Min != (r2.Vec{X: 10, Y: 20}) || box.Max != (r2.Vec{X: 90, Y: 50}) {
		t.Errorf("Unexpected bounds %+v", box)
	}
	if _, ok := New(nil, nil, vp, nil, DefaultConfig()).Bounds(); ok {
		t.Error("Empty simulation should have no bounds")
	}
}
