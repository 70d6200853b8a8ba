package components

import (
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"hexquiz/internal/viewmodel"
)

func num(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func itoa(n int) string { return strconv.Itoa(n) }

func itoa64(n int64) string { return strconv.FormatInt(n, 10) }

func sessionAction(id, action string) templ.Attributes {
	return templ.Attributes{"method": "post", "action": "/s/" + id + "/" + action}
}

func tileAttrs(c viewmodel.Cell) templ.Attributes {
	return templ.Attributes{
		"href":                c.Image,
		"x":                   num(c.Tile.X),
		"y":                   num(c.Tile.Y),
		"width":               num(c.Tile.Width),
		"height":              num(c.Tile.Height),
		"preserveAspectRatio": "none",
	}
}

func unitAttrs(u viewmodel.Unit) templ.Attributes {
	return templ.Attributes{
		"href":   u.Image,
		"x":      num(u.X - u.Size/2),
		"y":      num(u.Y - u.Size/2),
		"width":  num(u.Size),
		"height": num(u.Size),
	}
}

func widthStyle(percent float64) templ.Attributes {
	return templ.Attributes{"style": "width: " + num(percent) + "%"}
}

func transformStyle(t viewmodel.Transform) string {
	return fmt.Sprintf("transform: translate(%spx, %spx) scale(%s); opacity: %s",
		num(t.DX), num(t.DY), strconv.FormatFloat(t.Scale, 'f', 3, 64), strconv.FormatFloat(t.Opacity, 'f', 3, 64))
}

func dialogAttrs(data viewmodel.DialogFragment) templ.Attributes {
	return templ.Attributes{
		"style":             transformStyle(data.Current),
		"data-target":       transformStyle(data.Target),
		"data-remaining-ms": itoa64(data.RemainingMs),
	}
}

func imageAttrs(src string) templ.Attributes {
	return templ.Attributes{"src": src}
}

func boolAttr(b bool) string { return strconv.FormatBool(b) }
