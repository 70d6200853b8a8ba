// Package board generates the fixed hex board from row descriptors and owns
// the selectability policy. Cells are immutable once the board is built.
package board

import (
	"errors"
	"fmt"
	"math"

	"hexquiz/internal/hexgeom"
)

var (
	ErrInvalidRow           = errors.New("board: row count must not be negative")
	ErrSelectableOutOfRange = errors.New("board: selectable index out of range")
	ErrTerrainCountMismatch = errors.New("board: terrain count does not match cell count")
)

// Row describes one board row: how many cells and the column skew.
type Row struct {
	Count  int `yaml:"count" json:"count"`
	Offset int `yaml:"offset" json:"offset"`
}

// Spec is the ordered list of rows; row i becomes axial r = i.
type Spec []Row

// DefaultSpec is the 18-cell island the game ships with.
func DefaultSpec() Spec {
	return Spec{
		{Count: 3, Offset: 1},
		{Count: 4, Offset: 0},
		{Count: 3, Offset: 0},
		{Count: 4, Offset: -1},
		{Count: 3, Offset: -1},
		{Count: 1, Offset: -1},
	}
}

// Generate emits coordinates row-major: q = column + offset, r = row.
func Generate(spec Spec) ([]hexgeom.Axial, error) {
	total := 0
	for i, row := range spec {
		if row.Count < 0 {
			return nil, fmt.Errorf("%w: row %d has count %d", ErrInvalidRow, i, row.Count)
		}
		total += row.Count
	}
	out := make([]hexgeom.Axial, 0, total)
	for r, row := range spec {
		for col := 0; col < row.Count; col++ {
			out = append(out, hexgeom.Axial{Q: col + row.Offset, R: r})
		}
	}
	return out, nil
}

// Cell is one generated hex with its derived geometry.
type Cell struct {
	Index   int
	Coord   hexgeom.Axial
	Terrain Terrain
	Center  hexgeom.Point
	Corners [6]hexgeom.Point
	Bounds  hexgeom.Rect
}

// Board is the immutable generated cell set plus its selectable allow-list.
type Board struct {
	layout     hexgeom.Layout
	cells      []Cell
	selectable []bool
	byCoord    map[hexgeom.Axial]int
	bounds     hexgeom.Rect
}

type options struct {
	selectable []int
	explicit   bool
	terrains   []Terrain
}

// Option configures New.
type Option func(*options)

// WithSelectable sets an explicit allow-list of playable indices.
func WithSelectable(indices []int) Option {
	return func(o *options) {
		o.selectable = append([]int(nil), indices...)
		o.explicit = true
	}
}

// WithTerrains assigns one terrain per generated cell.
func WithTerrains(terrains []Terrain) Option {
	return func(o *options) {
		o.terrains = append([]Terrain(nil), terrains...)
	}
}

// New generates the board. Without WithSelectable, the allow-list is every
// index whose terrain is active.
func New(spec Spec, layout hexgeom.Layout, opts ...Option) (*Board, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	coords, err := Generate(spec)
	if err != nil {
		return nil, err
	}
	terrains := o.terrains
	if terrains == nil {
		terrains = DefaultTerrains(len(coords))
	}
	if len(terrains) != len(coords) {
		return nil, fmt.Errorf("%w: %d terrains for %d cells", ErrTerrainCountMismatch, len(terrains), len(coords))
	}

	b := &Board{
		layout:     layout,
		cells:      make([]Cell, len(coords)),
		selectable: make([]bool, len(coords)),
		byCoord:    make(map[hexgeom.Axial]int, len(coords)),
		bounds:     layout.UnionBoundingBox(coords),
	}
	for i, a := range coords {
		if prev, dup := b.byCoord[a]; dup {
			return nil, fmt.Errorf("board: cells %d and %d share coordinate %v", prev, i, a)
		}
		b.byCoord[a] = i
		b.cells[i] = Cell{
			Index:   i,
			Coord:   a,
			Terrain: terrains[i],
			Center:  layout.Center(a),
			Corners: layout.Corners(a),
			Bounds:  layout.BoundingBox(a),
		}
	}

	if o.explicit {
		for _, idx := range o.selectable {
			if idx < 0 || idx >= len(coords) {
				return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrSelectableOutOfRange, idx, len(coords))
			}
			b.selectable[idx] = true
		}
	} else {
		for i, t := range terrains {
			b.selectable[i] = t.Active
		}
	}
	return b, nil
}

// Layout returns the geometry the board was built with.
func (b *Board) Layout() hexgeom.Layout { return b.layout }

// Len returns the number of cells.
func (b *Board) Len() int { return len(b.cells) }

// Cells returns the cells in generation order. Callers must not modify the slice.
func (b *Board) Cells() []Cell { return b.cells }

// Cell returns the cell at index i.
func (b *Board) Cell(i int) (Cell, bool) {
	if i < 0 || i >= len(b.cells) {
		return Cell{}, false
	}
	return b.cells[i], true
}

// IsSelectable reports whether index i is on the allow-list.
func (b *Board) IsSelectable(i int) bool {
	return i >= 0 && i < len(b.selectable) && b.selectable[i]
}

// Selectable returns the allow-list in ascending order.
func (b *Board) Selectable() []int {
	var out []int
	for i, ok := range b.selectable {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// IndexOf returns the index of the cell at a.
func (b *Board) IndexOf(a hexgeom.Axial) (int, bool) {
	i, ok := b.byCoord[a]
	return i, ok
}

// Bounds returns the union of every cell's bounding box.
func (b *Board) Bounds() hexgeom.Rect { return b.bounds }

// HitTest returns the topmost cell containing p. order is the paint order
// (last paints on top); nil means generation order.
func (b *Board) HitTest(p hexgeom.Point, order []int) (int, bool) {
	if !p.Valid() || !b.bounds.Contains(p) {
		return -1, false
	}
	if order == nil {
		for i := len(b.cells) - 1; i >= 0; i-- {
			if hexgeom.PolygonContains(b.cells[i].Corners[:], p) {
				return i, true
			}
		}
		return -1, false
	}
	for k := len(order) - 1; k >= 0; k-- {
		i := order[k]
		if i < 0 || i >= len(b.cells) {
			continue
		}
		if hexgeom.PolygonContains(b.cells[i].Corners[:], p) {
			return i, true
		}
	}
	return -1, false
}

// UnitPlacement returns where the unit sprite sits on cell i: a point slightly
// above the geometric center and a square size of 90% of the shorter side.
func (b *Board) UnitPlacement(i int) (hexgeom.Point, float64, bool) {
	c, ok := b.Cell(i)
	if !ok {
		return hexgeom.Point{}, 0, false
	}
	box := c.Bounds
	center := hexgeom.Point{
		X: box.X + box.Width/2,
		Y: (box.Y + box.Y + box.Height) / 2.1,
	}
	return center, math.Min(box.Width, box.Height) * 0.9, true
}

// TileRect returns the texture rectangle for cell i. Textures overhang the
// polygon by 5px; rock textures are 8px taller and start 3px higher.
func (b *Board) TileRect(i int) (hexgeom.Rect, bool) {
	c, ok := b.Cell(i)
	if !ok {
		return hexgeom.Rect{}, false
	}
	box := c.Bounds
	x := c.Center.X - box.Width/2
	y := c.Center.Y - box.Height/2
	r := hexgeom.Rect{X: math.Floor(x), Y: math.Floor(y), Width: box.Width + 5, Height: box.Height + 5}
	if c.Terrain.Kind == KindRocks {
		r.Y = math.Floor(y - 3)
		r.Height = box.Height + 8
	}
	return r, true
}
