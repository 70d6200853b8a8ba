// Package client holds what the local terminal and desktop clients share:
// mapping the board into a window and running a session without a server.
package client

import (
	"math"

	"hexquiz/internal/hexgeom"
)

// Fit maps board space into a window, preserving the board's aspect ratio.
// CellAspect is the height of one screen unit relative to its width; terminal
// character cells are about twice as tall as they are wide.
type Fit struct {
	Scale      float64 // screen units per board unit, horizontally
	CellAspect float64
	OffsetX    float64
	OffsetY    float64
	bounds     hexgeom.Rect
}

// NewFit centers bounds in a width x height window with margin units on each
// side.
func NewFit(bounds hexgeom.Rect, width, height, margin, cellAspect float64) Fit {
	if cellAspect <= 0 {
		cellAspect = 1
	}
	w := math.Max(width-2*margin, 1)
	h := math.Max(height-2*margin, 1)
	scale := 1.0
	if bounds.Width > 0 && bounds.Height > 0 {
		scale = math.Min(w/bounds.Width, h*cellAspect/bounds.Height)
	}
	return Fit{
		Scale:      scale,
		CellAspect: cellAspect,
		OffsetX:    (width - bounds.Width*scale) / 2,
		OffsetY:    (height - bounds.Height*scale/cellAspect) / 2,
		bounds:     bounds,
	}
}

// ToScreen maps a board point to window coordinates.
func (f Fit) ToScreen(p hexgeom.Point) (x, y float64) {
	x = f.OffsetX + (p.X-f.bounds.X)*f.Scale
	y = f.OffsetY + (p.Y-f.bounds.Y)*f.Scale/f.CellAspect
	return x, y
}

// ToBoard maps window coordinates back to board space.
func (f Fit) ToBoard(x, y float64) hexgeom.Point {
	if f.Scale == 0 {
		return hexgeom.Point{X: math.NaN(), Y: math.NaN()}
	}
	return hexgeom.Point{
		X: f.bounds.X + (x-f.OffsetX)/f.Scale,
		Y: f.bounds.Y + (y-f.OffsetY)*f.CellAspect/f.Scale,
	}
}
