// Package view is the interaction and rendering layer: it turns a subgraph
// plus layout positions into a drawable scene, owns the pan/zoom transform
// and resolves pointer events against the scene. It only reads filter state
// and positions; the one mutation it can cause is click-to-recenter, which
// goes through the view controller.
package view

import "math"

// Viewport is the pan/zoom transform between world coordinates (simulation
// space, origin at the anchored center) and screen coordinates. Panning and
// zooming are purely visual: they never restart the simulation nor touch
// filter state.
type Viewport struct {
	Width   float64
	Height  float64
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// NewViewport creates a viewport that maps the world origin to the screen
// center at scale 1.
func NewViewport(width, height float64) *Viewport {
	return &Viewport{
		Width:   width,
		Height:  height,
		Scale:   1,
		OffsetX: width / 2,
		OffsetY: height / 2,
	}
}

// ToScreen maps a world coordinate to the screen.
func (v *Viewport) ToScreen(wx, wy float64) (float64, float64) {
	return wx*v.Scale + v.OffsetX, wy*v.Scale + v.OffsetY
}

// ToWorld maps a screen coordinate back to the world.
func (v *Viewport) ToWorld(sx, sy float64) (float64, float64) {
	return (sx - v.OffsetX) / v.Scale, (sy - v.OffsetY) / v.Scale
}

// Pan shifts the view by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// minScale/maxScale bound the zoom so the graph can neither vanish nor
// blow past float precision under a scroll-wheel burst.
const (
	minScale = 0.1
	maxScale = 10
)

// ZoomAt scales the view by factor while keeping the world point under the
// given screen position fixed, the usual scroll-wheel-zoom behavior.
func (v *Viewport) ZoomAt(factor, sx, sy float64) {
	next := v.Scale * factor
	if next < minScale {
		next = minScale
	}
	if next > maxScale {
		next = maxScale
	}
	factor = next / v.Scale

	// Keep (sx, sy) stationary: adjust the offset by the growth of the
	// vector from the screen point to the old offset.
	v.OffsetX = sx + (v.OffsetX-sx)*factor
	v.OffsetY = sy + (v.OffsetY-sy)*factor
	v.Scale = next
}

// distanceToSegment returns the distance from point (px, py) to the segment
// (x1, y1)-(x2, y2).
func distanceToSegment(px, py, x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return math.Hypot(px-x1, py-y1)
	}
	t := ((px-x1)*dx + (py-y1)*dy) / lengthSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(px-(x1+t*dx), py-(y1+t*dy))
}
