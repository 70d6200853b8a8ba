package viewmodel

// Point is a board-space position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a board-space box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Cell holds data for one hex tile, in paint order.
type Cell struct {
	Index      int    `json:"index"`
	Q          int    `json:"q"`
	R          int    `json:"r"`
	Kind       string `json:"kind"`
	Image      string `json:"image"`
	Points     string `json:"points"` // SVG polygon points
	Tile       Rect   `json:"tile"`
	Selectable bool   `json:"selectable"`
	Raised     bool   `json:"raised"`
	Active     bool   `json:"active"`
}

// Unit holds the sprite drawn on the active cell.
type Unit struct {
	Image string  `json:"image"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
}

// BoardFragment holds data for the board SVG.
type BoardFragment struct {
	SessionID  string `json:"sessionId"`
	ViewBox    string `json:"viewBox"`
	Background string `json:"background"`
	Cells      []Cell `json:"cells"`
	Unit       *Unit  `json:"unit,omitempty"`
	Ready      bool   `json:"ready"`
	Started    bool   `json:"started"`
	ShowHint   bool   `json:"showHint"`
}

// Transform is a CSS transform for the dialog.
type Transform struct {
	DX      float64 `json:"dx"`
	DY      float64 `json:"dy"`
	Scale   float64 `json:"scale"`
	Opacity float64 `json:"opacity"`
}

// Option holds one answer button.
type Option struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
	State    string `json:"state"`
}

// DialogFragment holds data for the quiz dialog. Current is the transform at
// render time; the client animates from it to Target over RemainingMs.
type DialogFragment struct {
	SessionID   string    `json:"sessionId"`
	Mounted     bool      `json:"mounted"`
	Phase       string    `json:"phase"`
	Current     Transform `json:"current"`
	Target      Transform `json:"target"`
	RemainingMs int64     `json:"remainingMs"`
	Number      int       `json:"number"`
	Total       int       `json:"total"`
	Image       string    `json:"image"`
	Prompt      string    `json:"prompt"`
	Options     []Option  `json:"options"`
	Locked      bool      `json:"locked"`
	CanNext     bool      `json:"canNext"`
	NextLabel   string    `json:"nextLabel"`
	Timer       Timer     `json:"timer"`
}

// Timer holds data for the countdown bar.
type Timer struct {
	RemainingMs int64   `json:"remainingMs"`
	DurationMs  int64   `json:"durationMs"`
	Percent     float64 `json:"percent"`
	Label       string  `json:"label"`
	Running     bool    `json:"running"`
	Expired     bool    `json:"expired"`
}

// Loader holds data for the loading overlay.
type Loader struct {
	SessionID string   `json:"sessionId"`
	Visible   bool     `json:"visible"`
	Loaded    int      `json:"loaded"`
	Total     int      `json:"total"`
	Errors    int      `json:"errors"`
	Percent   float64  `json:"percent"`
	Ready     bool     `json:"ready"`
	Started   bool     `json:"started"`
	URLs      []string `json:"urls,omitempty"`
}

// SessionPage holds data for the main page template.
type SessionPage struct {
	Title     string
	SessionID string
	ShareURL  string
	Board     BoardFragment
	Dialog    DialogFragment
	Loader    Loader
}

// State is the full session view sent to websocket clients.
type State struct {
	Version uint64         `json:"version"`
	Board   BoardFragment  `json:"board"`
	Dialog  DialogFragment `json:"dialog"`
	Loader  Loader         `json:"loader"`
	Events  []string       `json:"events,omitempty"`
}
