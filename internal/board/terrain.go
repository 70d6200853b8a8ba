package board

// Terrain kinds used by the default board.
const (
	KindPastures = "pastures"
	KindFields   = "fields"
	KindForest   = "forest"
	KindRocks    = "rocks"
	KindDesert   = "desert"
)

// Terrain describes what a tile shows and whether it is playable.
type Terrain struct {
	Kind   string `yaml:"kind" json:"kind"`
	Image  string `yaml:"image" json:"image"`
	Active bool   `yaml:"active" json:"active"`
}

// Catalogue is the default terrain set.
var Catalogue = map[string]Terrain{
	KindPastures: {Kind: KindPastures, Image: "/static/img/hex-pastures.svg", Active: true},
	KindFields:   {Kind: KindFields, Image: "/static/img/hex-fields.svg", Active: true},
	KindForest:   {Kind: KindForest, Image: "/static/img/hex-forest.svg", Active: false},
	KindRocks:    {Kind: KindRocks, Image: "/static/img/hex-rocks.svg", Active: false},
	KindDesert:   {Kind: KindDesert, Image: "/static/img/hex-desert.svg", Active: true},
}

// defaultKinds is the fixed terrain assignment of the default 18-cell board.
var defaultKinds = []string{
	KindPastures, KindFields, KindRocks, KindForest, KindDesert, KindForest,
	KindRocks, KindPastures, KindFields, KindDesert, KindFields, KindRocks,
	KindDesert, KindPastures, KindDesert, KindDesert, KindRocks, KindPastures,
}

// DefaultTerrains returns n terrains following the default assignment,
// cycling when the board is larger than it.
func DefaultTerrains(n int) []Terrain {
	out := make([]Terrain, n)
	for i := range out {
		out[i] = Catalogue[defaultKinds[i%len(defaultKinds)]]
	}
	return out
}
