package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// The forces below follow d3-force: they accumulate into velocities (center
// moves positions directly) and are applied in registration order.

type link struct {
	source, target int
	bias           float64 // share of the correction applied to the target
}

// applyCharge is an exact pairwise many-body force. Graphs here are small
// enough that the Barnes-Hut approximation is not worth its bookkeeping.
func (s *Simulation) applyCharge() {
	strength := s.cfg.ChargeStrength * s.alpha
	if strength == 0 {
		return
	}
	maxDist2 := s.cfg.ChargeDistanceMax * s.cfg.ChargeDistanceMax

	for i := range s.bodies {
		bi := &s.bodies[i]
		for j := range s.bodies {
			if i == j {
				continue
			}
			d := r2.Sub(s.bodies[j].Pos, bi.Pos)
			l := r2.Norm2(d)
			if l >= maxDist2 {
				continue
			}
			if d.X == 0 {
				d.X = s.jiggle()
				l += d.X * d.X
			}
			if d.Y == 0 {
				d.Y = s.jiggle()
				l += d.Y * d.Y
			}
			if l < 1 {
				l = math.Sqrt(l)
			}
			bi.Vel = r2.Add(bi.Vel, r2.Scale(strength/l, d))
		}
	}
}

func (s *Simulation) applyLinks() {
	for _, lk := range s.links {
		src, tgt := &s.bodies[lk.source], &s.bodies[lk.target]
		d := r2.Sub(r2.Add(tgt.Pos, tgt.Vel), r2.Add(src.Pos, src.Vel))
		if d.X == 0 {
			d.X = s.jiggle()
		}
		if d.Y == 0 {
			d.Y = s.jiggle()
		}
		l := r2.Norm(d)
		k := (l - s.cfg.LinkDistance) / l * s.alpha * s.cfg.LinkStrength
		d = r2.Scale(k, d)
		tgt.Vel = r2.Sub(tgt.Vel, r2.Scale(lk.bias, d))
		src.Vel = r2.Add(src.Vel, r2.Scale(1-lk.bias, d))
	}
}

func (s *Simulation) applyCenter() {
	if len(s.bodies) == 0 || s.cfg.CenterStrength == 0 {
		return
	}
	var mean r2.Vec
	for _, b := range s.bodies {
		mean = r2.Add(mean, b.Pos)
	}
	mean = r2.Scale(1/float64(len(s.bodies)), mean)
	shift := r2.Scale(s.cfg.CenterStrength, r2.Sub(mean, s.center))
	for i := range s.bodies {
		s.bodies[i].Pos = r2.Sub(s.bodies[i].Pos, shift)
	}
}

func (s *Simulation) applyCollide() {
	if s.cfg.CollideStrength == 0 {
		return
	}
	for iter := 0; iter < s.cfg.CollideIterations; iter++ {
		for i := range s.bodies {
			bi := &s.bodies[i]
			ri := bi.Radius + s.cfg.CollideMargin
			ri2 := ri * ri
			pi := r2.Add(bi.Pos, bi.Vel)
			for j := i + 1; j < len(s.bodies); j++ {
				bj := &s.bodies[j]
				rj := bj.Radius + s.cfg.CollideMargin
				r := ri + rj
				d := r2.Sub(pi, r2.Add(bj.Pos, bj.Vel))
				l := r2.Norm2(d)
				if l >= r*r {
					continue
				}
				if d.X == 0 {
					d.X = s.jiggle()
					l += d.X * d.X
				}
				if d.Y == 0 {
					d.Y = s.jiggle()
					l += d.Y * d.Y
				}
				l = math.Sqrt(l)
				d = r2.Scale((r-l)/l*s.cfg.CollideStrength, d)
				share := rj * rj / (ri2 + rj*rj)
				bi.Vel = r2.Add(bi.Vel, r2.Scale(share, d))
				bj.Vel = r2.Sub(bj.Vel, r2.Scale(1-share, d))
			}
		}
	}
}

// jiggle returns a tiny deterministic offset used to separate coincident points
func (s *Simulation) jiggle() float64 {
	// Same linear congruential generator as d3, so runs are reproducible
	const a, c, m = 1664525, 1013904223, 4294967296
	s.seed = (a*s.seed + c) % m
	return (float64(s.seed)/m - 0.5) * 1e-6
}
