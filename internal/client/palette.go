package client

import (
	"image/color"

	"hexquiz/internal/board"
)

// Palette is the flat colour for each terrain kind, for clients that draw
// shapes instead of the SVG artwork.
var Palette = map[string]color.RGBA{
	board.KindPastures: {R: 0x9b, G: 0xd3, B: 0x6a, A: 0xff},
	board.KindFields:   {R: 0xf1, G: 0xd3, B: 0x6b, A: 0xff},
	board.KindForest:   {R: 0x3f, G: 0x8a, B: 0x4a, A: 0xff},
	board.KindRocks:    {R: 0xa7, G: 0xa4, B: 0x9c, A: 0xff},
	board.KindDesert:   {R: 0xe8, G: 0xc5, B: 0x8e, A: 0xff},
}

var fallback = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}

// Colour returns the fill for a cell. Cells that cannot be selected are
// darkened and the raised cell is lightened.
func Colour(kind string, selectable, raised bool) color.RGBA {
	c, ok := Palette[kind]
	if !ok {
		c = fallback
	}
	switch {
	case !selectable:
		return shade(c, 0.6)
	case raised:
		return tint(c, 0.35)
	}
	return c
}

func shade(c color.RGBA, f float64) color.RGBA {
	return color.RGBA{R: uint8(float64(c.R) * f), G: uint8(float64(c.G) * f), B: uint8(float64(c.B) * f), A: c.A}
}

func tint(c color.RGBA, f float64) color.RGBA {
	up := func(v uint8) uint8 { return v + uint8(float64(255-v)*f) }
	return color.RGBA{R: up(c.R), G: up(c.G), B: up(c.B), A: c.A}
}
