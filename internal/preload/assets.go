package preload

import (
	"sort"

	"hexquiz/internal/board"
)

// Assets resolves what the board draws to image URLs.
type Assets struct {
	Background string
	Unit       string
	Terrains   map[string]string
	Questions  []string
}

// DefaultAssets returns the shipped artwork for the default terrain catalogue.
func DefaultAssets(questionImages []string) Assets {
	terrains := make(map[string]string, len(board.Catalogue))
	for kind, t := range board.Catalogue {
		terrains[kind] = t.Image
	}
	return Assets{
		Background: "/static/img/background.svg",
		Unit:       "/static/img/unit.svg",
		Terrains:   terrains,
		Questions:  append([]string(nil), questionImages...),
	}
}

// Terrain returns the image for a terrain kind.
func (a Assets) Terrain(kind string) (string, bool) {
	u, ok := a.Terrains[kind]
	return u, ok
}

// URLs returns every referenced image once, sorted.
func (a Assets) URLs() []string {
	seen := make(map[string]struct{})
	add := func(u string) {
		if u != "" {
			seen[u] = struct{}{}
		}
	}
	add(a.Background)
	add(a.Unit)
	for _, u := range a.Terrains {
		add(u)
	}
	for _, u := range a.Questions {
		add(u)
	}
	out := make([]string, 0, len(seen))
	for u := range seen {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
