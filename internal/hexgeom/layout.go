// Package hexgeom maps axial hex coordinates to pixel space: centers, corners
// and bounding boxes. It is pure; nothing here rounds to whole pixels.
package hexgeom

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidDimensions is returned for non-positive or non-finite hex sizes.
var ErrInvalidDimensions = errors.New("hexgeom: hex dimensions must be positive")

// Orientation selects pointy-top or flat-top hexagons.
type Orientation int

const (
	Pointy Orientation = iota
	Flat
)

// String implements fmt.Stringer.
func (o Orientation) String() string {
	if o == Flat {
		return "flat"
	}
	return "pointy"
}

// ParseOrientation accepts "pointy" or "flat" (case-insensitive, empty = pointy).
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pointy":
		return Pointy, nil
	case "flat":
		return Flat, nil
	}
	return Pointy, fmt.Errorf("hexgeom: unknown orientation %q", s)
}

// Origin selects which point of hex (0,0) sits at pixel (0,0).
type Origin int

const (
	// OriginCenter places the center of hex (0,0) at (0,0).
	OriginCenter Origin = iota
	// OriginTopLeft places the top-left corner of hex (0,0)'s bounding box at (0,0).
	OriginTopLeft
)

// ParseOrigin accepts "center" or "topLeft" (case-insensitive, empty = center).
func ParseOrigin(s string) (Origin, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "center":
		return OriginCenter, nil
	case "topleft", "top-left", "top_left":
		return OriginTopLeft, nil
	}
	return OriginCenter, fmt.Errorf("hexgeom: unknown origin %q", s)
}

// Layout converts between axial and pixel space for one hex size and orientation.
type Layout struct {
	orientation Orientation
	size        Point // corner radius along each axis
	offset      Point // pixel position of hex (0,0)'s center
}

// NewLayout builds a layout. size holds the horizontal and vertical corner radius.
func NewLayout(orientation Orientation, size Point, origin Origin) (Layout, error) {
	if !(size.X > 0) || !(size.Y > 0) || math.IsInf(size.X, 0) || math.IsInf(size.Y, 0) {
		return Layout{}, fmt.Errorf("%w: got %vx%v", ErrInvalidDimensions, size.X, size.Y)
	}
	if orientation != Pointy && orientation != Flat {
		return Layout{}, fmt.Errorf("hexgeom: invalid orientation %d", orientation)
	}
	l := Layout{orientation: orientation, size: size}
	if origin == OriginTopLeft {
		w, h := l.CellSize()
		l.offset = Point{X: w / 2, Y: h / 2}
	}
	return l, nil
}

// Orientation returns the layout orientation.
func (l Layout) Orientation() Orientation { return l.orientation }

// Size returns the corner radius per axis.
func (l Layout) Size() Point { return l.size }

// CellSize returns the width and height of one hexagon's bounding box.
func (l Layout) CellSize() (width, height float64) {
	if l.orientation == Flat {
		return 2 * l.size.X, math.Sqrt(3) * l.size.Y
	}
	return math.Sqrt(3) * l.size.X, 2 * l.size.Y
}

// Center returns the pixel center of a.
func (l Layout) Center(a Axial) Point {
	q, r := float64(a.Q), float64(a.R)
	var x, y float64
	if l.orientation == Flat {
		x = l.size.X * 1.5 * q
		y = l.size.Y * (math.Sqrt(3)/2*q + math.Sqrt(3)*r)
	} else {
		x = l.size.X * (math.Sqrt(3)*q + math.Sqrt(3)/2*r)
		y = l.size.Y * 1.5 * r
	}
	return Point{X: x + l.offset.X, Y: y + l.offset.Y}
}

// Corners returns the six corners of a in clockwise screen order (y grows down).
// Pointy-top hexes start at the upper-right corner; flat-top hexes start east.
func (l Layout) Corners(a Axial) [6]Point {
	c := l.Center(a)
	start := -30.0
	if l.orientation == Flat {
		start = 0
	}
	var out [6]Point
	for i := 0; i < 6; i++ {
		rad := (start + 60*float64(i)) * math.Pi / 180
		out[i] = Point{
			X: c.X + l.size.X*math.Cos(rad),
			Y: c.Y + l.size.Y*math.Sin(rad),
		}
	}
	return out
}

// BoundingBox returns the tight box around a's corners.
func (l Layout) BoundingBox(a Axial) Rect {
	corners := l.Corners(a)
	return BoundsOf(corners[:])
}

// UnionBoundingBox returns the box covering every hex in coords.
// It is the zero Rect for an empty slice.
func (l Layout) UnionBoundingBox(coords []Axial) Rect {
	if len(coords) == 0 {
		return Rect{}
	}
	box := l.BoundingBox(coords[0])
	for _, a := range coords[1:] {
		box = box.Union(l.BoundingBox(a))
	}
	return box
}

// Contains reports whether p lies inside hex a (edges included).
func (l Layout) Contains(a Axial, p Point) bool {
	corners := l.Corners(a)
	return PolygonContains(corners[:], p)
}

// PixelToAxial returns the hex containing p, using cube rounding.
func (l Layout) PixelToAxial(p Point) Axial {
	x := (p.X - l.offset.X) / l.size.X
	y := (p.Y - l.offset.Y) / l.size.Y
	var q, r float64
	if l.orientation == Flat {
		q = 2.0 / 3 * x
		r = -1.0/3*x + math.Sqrt(3)/3*y
	} else {
		q = math.Sqrt(3)/3*x - 1.0/3*y
		r = 2.0 / 3 * y
	}
	return roundAxial(q, r)
}

func roundAxial(q, r float64) Axial {
	s := -q - r
	rq, rr, rs := math.Round(q), math.Round(r), math.Round(s)
	dq, dr, ds := math.Abs(rq-q), math.Abs(rr-r), math.Abs(rs-s)
	if dq > dr && dq > ds {
		rq = -rr - rs
	} else if dr > ds {
		rr = -rq - rs
	}
	return Axial{Q: int(rq), R: int(rr)}
}
