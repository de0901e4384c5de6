package view

import (
	"time"

	"github.com/fogleman/ease"
	"github.com/ritzau/knowledge-graph/pkg/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// Camera maps world coordinates onto the viewport. Center is the world point
// shown in the middle of the viewport.
type Camera struct {
	Center r2.Vec  `json:"center"`
	Zoom   float64 `json:"zoom"`
}

func half(vp model.Viewport) r2.Vec {
	return r2.Vec{X: vp.Width / 2, Y: vp.Height / 2}
}

// ToWorld converts a viewport point into world coordinates
func (c Camera) ToWorld(screen r2.Vec, vp model.Viewport) r2.Vec {
	return r2.Add(c.Center, r2.Scale(1/c.Zoom, r2.Sub(screen, half(vp))))
}

// ToScreen converts a world point into viewport coordinates
func (c Camera) ToScreen(world r2.Vec, vp model.Viewport) r2.Vec {
	return r2.Add(half(vp), r2.Scale(c.Zoom, r2.Sub(world, c.Center)))
}

// Transform returns the canvas transform for this camera
func (c Camera) Transform(vp model.Viewport) (scale, tx, ty float64) {
	h := half(vp)
	return c.Zoom, h.X - c.Center.X*c.Zoom, h.Y - c.Center.Y*c.Zoom
}

// cameraMove is an eased transition between two cameras
type cameraMove struct {
	from, to Camera
	start    time.Time
	duration time.Duration
}

func (m *cameraMove) at(now time.Time) (Camera, bool) {
	if m.duration <= 0 || !now.Before(m.start.Add(m.duration)) {
		return m.to, true
	}
	t := float64(now.Sub(m.start)) / float64(m.duration)
	t = ease.OutQuad(max(0, t))
	return Camera{
		Center: r2.Add(m.from.Center, r2.Scale(t, r2.Sub(m.to.Center, m.from.Center))),
		Zoom:   m.from.Zoom + (m.to.Zoom-m.from.Zoom)*t,
	}, false
}
