package view

import (
	"math"
	"time"

	"github.com/ritzau/knowledge-graph/pkg/logging"
	"github.com/ritzau/knowledge-graph/pkg/render"
	"gonum.org/v1/gonum/spatial/r2"
)

// Cursor names
const (
	CursorDefault  = "default"
	CursorPointer  = "pointer"
	CursorLocked   = "not-allowed"
	CursorGrabbing = "grabbing"
)

// wheelRate matches the browser zoom step for pixel-mode wheel deltas
const wheelRate = 0.002

type dragState struct {
	id    string
	moved bool
}

type panState struct {
	last  r2.Vec
	moved bool
}

// NodeAt returns the topmost node whose hit area contains a viewport point
func (v *View) NodeAt(screen r2.Vec) (string, bool) {
	if v.result == nil {
		return "", false
	}
	world := v.camera.ToWorld(screen, v.viewport)
	for i := len(v.result.Nodes) - 1; i >= 0; i-- {
		n := &v.result.Nodes[i]
		if r2.Norm(r2.Sub(world, v.position(n))) <= render.PointerRadius(n.Record.Difficulty) {
			return n.ID(), true
		}
	}
	return "", false
}

// Hover sets the hovered node directly. An empty id clears the hover.
func (v *View) Hover(id string) error {
	if id != "" {
		if v.result == nil {
			return ErrUnknownNode
		}
		if _, ok := v.result.Node(id); !ok {
			return ErrUnknownNode
		}
	}
	if id != v.hovered {
		logging.Trace("hover", "id", id)
		v.hovered = id
	}
	return nil
}

// Cursor returns the cursor the host should show
func (v *View) Cursor() string {
	if v.drag != nil {
		return CursorGrabbing
	}
	if v.hovered == "" || v.result == nil {
		return CursorDefault
	}
	n, ok := v.result.Node(v.hovered)
	if !ok {
		return CursorDefault
	}
	if !n.State.Actionable() {
		return CursorLocked
	}
	return CursorPointer
}

// PointerMove updates the hover, or moves the dragged node or the camera
func (v *View) PointerMove(now time.Time, screen r2.Vec) {
	switch {
	case v.drag != nil:
		v.drag.moved = true
		if v.sim != nil {
			v.sim.Fix(now, v.drag.id, v.camera.ToWorld(screen, v.viewport))
		}
	case v.pan != nil:
		delta := r2.Sub(screen, v.pan.last)
		v.pan.last = screen
		v.pan.moved = true
		v.move = nil
		v.camera.Center = r2.Sub(v.camera.Center, r2.Scale(1/v.camera.Zoom, delta))
	default:
		id, _ := v.NodeAt(screen)
		_ = v.Hover(id)
	}
}

// PointerDown starts dragging the node under the pointer, or panning
func (v *View) PointerDown(now time.Time, screen r2.Vec) {
	if id, ok := v.NodeAt(screen); ok && v.sim != nil {
		v.drag = &dragState{id: id}
		p, _ := v.sim.Position(id)
		v.sim.Fix(now, id, p)
		return
	}
	v.pan = &panState{last: screen}
}

// PointerUp ends a drag or pan. A press that did not move counts as a click;
// it returns true if that click opened a node.
func (v *View) PointerUp(now time.Time, screen r2.Vec) bool {
	switch {
	case v.drag != nil:
		d := v.drag
		v.drag = nil
		if v.sim != nil {
			v.sim.Release(d.id)
		}
		if !d.moved {
			opened, _ := v.ClickNode(d.id)
			return opened
		}
	case v.pan != nil:
		p := v.pan
		v.pan = nil
		if !p.moved {
			return v.Click(screen)
		}
	}
	return false
}

// Click opens the node under the pointer, if any
func (v *View) Click(screen r2.Vec) bool {
	id, ok := v.NodeAt(screen)
	if !ok {
		return false
	}
	opened, _ := v.ClickNode(id)
	return opened
}

// Wheel zooms around the pointer. Positive deltas zoom out.
func (v *View) Wheel(screen r2.Vec, deltaY float64) {
	k := v.clampZoom(v.camera.Zoom * math.Pow(2, -deltaY*wheelRate))
	anchor := v.camera.ToWorld(screen, v.viewport)
	v.move = nil
	v.camera = Camera{
		Center: r2.Sub(anchor, r2.Scale(1/k, r2.Sub(screen, half(v.viewport)))),
		Zoom:   k,
	}
}
