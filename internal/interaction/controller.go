// Package interaction turns per-cell pointer and touch input into hover and
// selection state. It owns the raised index and the active coordinate; the
// paint order it feeds comes from a stacking.Strategy.
//
// The controller is not safe for concurrent use. Callers serialise access.
package interaction

import (
	"time"

	"hexquiz/internal/board"
	"hexquiz/internal/frame"
	"hexquiz/internal/hexgeom"
	"hexquiz/internal/stacking"
)

const (
	DefaultTapDistance = 12.0
	DefaultTapDuration = 500 * time.Millisecond
)

// Kind is the pointer device class.
type Kind int

const (
	Mouse Kind = iota
	Pen
	Touch
)

func (k Kind) String() string {
	switch k {
	case Pen:
		return "pen"
	case Touch:
		return "touch"
	default:
		return "mouse"
	}
}

// ParseKind maps DOM pointerType values; anything unknown is a mouse.
func ParseKind(s string) Kind {
	switch s {
	case "pen":
		return Pen
	case "touch":
		return Touch
	default:
		return Mouse
	}
}

// PrimaryButton is the DOM button code of the main mouse button.
const PrimaryButton = 0

// Event is one pointer sample. Screen is the client position used as the
// modal anchor; Board is the same position in board space, used for hit tests.
type Event struct {
	Kind   Kind
	Screen hexgeom.Point
	Board  hexgeom.Point
	Button int
	Time   time.Time
}

// Selection is emitted when a cell is committed.
type Selection struct {
	Index  int
	Coord  hexgeom.Axial
	Anchor hexgeom.Point
}

// TapGesture is the pending touch press on one cell.
type TapGesture struct {
	Index int
	Start hexgeom.Point
	At    time.Time
}

// ClassifyTap reports whether releasing at up completes a tap started by g:
// squared displacement within maxDist² and elapsed time within maxDur.
func ClassifyTap(g TapGesture, up Event, maxDist float64, maxDur time.Duration) bool {
	dx := up.Screen.X - g.Start.X
	dy := up.Screen.Y - g.Start.Y
	if dx*dx+dy*dy > maxDist*maxDist {
		return false
	}
	return up.Time.Sub(g.At) <= maxDur
}

// Controller holds hover and selection state for one board.
type Controller struct {
	board    *board.Board
	strategy stacking.Strategy
	onSelect func(Selection)
	clock    frame.Clock

	tapDistance float64
	tapDuration time.Duration

	started   bool
	chosen    bool
	raised    int
	touchHeld bool
	active    hexgeom.Axial
	hasActive bool
	gesture   *TapGesture
}

// Option configures a Controller.
type Option func(*Controller)

// WithTapThreshold overrides the tap distance and duration limits.
func WithTapThreshold(dist float64, dur time.Duration) Option {
	return func(c *Controller) {
		if dist > 0 {
			c.tapDistance = dist
		}
		if dur > 0 {
			c.tapDuration = dur
		}
	}
}

// WithClock sets the clock used for events without a timestamp.
func WithClock(clock frame.Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New returns a controller. A nil strategy uses stacking.Sorted.
func New(b *board.Board, strategy stacking.Strategy, onSelect func(Selection), opts ...Option) *Controller {
	if strategy == nil {
		strategy = stacking.NewSorted(b.Len())
	}
	c := &Controller{
		board:       b,
		strategy:    strategy,
		onSelect:    onSelect,
		clock:       frame.SystemClock{},
		tapDistance: DefaultTapDistance,
		tapDuration: DefaultTapDuration,
		raised:      stacking.None,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start enables interaction. Nothing is selectable before it.
func (c *Controller) Start() { c.started = true }

func (c *Controller) Started() bool { return c.started }

// Chosen reports whether any cell has been selected since start.
func (c *Controller) Chosen() bool { return c.chosen }

// Raised returns the raised index or stacking.None.
func (c *Controller) Raised() int { return c.raised }

// Order returns the current paint order.
func (c *Controller) Order() []int { return c.strategy.Order() }

// Active returns the coordinate of the last selection.
func (c *Controller) Active() (hexgeom.Axial, bool) { return c.active, c.hasActive }

// Pending reports whether a touch gesture is waiting for release.
func (c *Controller) Pending() bool { return c.gesture != nil }

// Gesture returns a copy of the pending touch gesture.
func (c *Controller) Gesture() (TapGesture, bool) {
	if c.gesture == nil {
		return TapGesture{}, false
	}
	return *c.gesture, true
}

// Enter raises a hovered cell. Touch enter is ignored, as is any enter while
// a touch holds the raise.
func (c *Controller) Enter(index int, ev Event) {
	if ev.Kind == Touch || !ev.Screen.Valid() {
		return
	}
	if !c.interactive(index) || c.touchHeld {
		return
	}
	c.setRaised(index)
}

// Leave lowers index if it is still the raised cell. For touch, a leave on the
// gesture's cell drops the gesture and a board leave (index < 0) cancels.
func (c *Controller) Leave(index int, ev Event) {
	if ev.Kind == Touch {
		if index < 0 {
			c.Cancel()
			return
		}
		if c.gesture != nil && c.gesture.Index == index {
			c.gesture = nil
		}
		return
	}
	if !c.interactive(index) {
		return
	}
	if c.raised == index {
		c.setRaised(stacking.None)
	}
}

// Down records a tap gesture for touch presses. Mouse and pen presses are
// ignored; those select on release.
func (c *Controller) Down(index int, ev Event) {
	if ev.Kind != Touch || !ev.Screen.Valid() {
		return
	}
	ev = c.stamp(ev)
	c.touchHeld = true
	c.raiseUnder(ev)
	if !c.interactive(index) {
		return
	}
	c.gesture = &TapGesture{Index: index, Start: ev.Screen, At: ev.Time}
}

// Move re-hit-tests a touch point and raises whatever selectable cell is under it.
func (c *Controller) Move(ev Event) {
	if ev.Kind != Touch || !c.touchHeld {
		return
	}
	c.raiseUnder(ev)
}

// Up commits a selection: immediately for the primary mouse button, and only
// for a completed tap on the same cell for touch.
func (c *Controller) Up(index int, ev Event) {
	if !ev.Screen.Valid() {
		return
	}
	if ev.Kind != Touch {
		if ev.Button != PrimaryButton || !c.interactive(index) {
			return
		}
		c.commit(index, ev.Screen)
		return
	}

	ev = c.stamp(ev)
	g := c.gesture
	c.gesture = nil
	c.releaseTouch()
	if g == nil || g.Index != index || !c.interactive(index) {
		return
	}
	if !ClassifyTap(*g, ev, c.tapDistance, c.tapDuration) {
		return
	}
	c.commit(index, ev.Screen)
}

// Cancel drops a pending touch gesture and any touch-held raise.
func (c *Controller) Cancel() {
	c.gesture = nil
	c.releaseTouch()
}

func (c *Controller) interactive(index int) bool {
	return c.started && c.board.IsSelectable(index)
}

func (c *Controller) stamp(ev Event) Event {
	if ev.Time.IsZero() {
		ev.Time = c.clock.Now()
	}
	return ev
}

func (c *Controller) raiseUnder(ev Event) {
	if !ev.Board.Valid() {
		return
	}
	hit, ok := c.board.HitTest(ev.Board, c.strategy.Order())
	if ok && c.interactive(hit) {
		c.setRaised(hit)
		return
	}
	c.setRaised(stacking.None)
}

func (c *Controller) releaseTouch() {
	if !c.touchHeld {
		return
	}
	c.touchHeld = false
	c.setRaised(stacking.None)
}

func (c *Controller) setRaised(index int) {
	if index == c.raised {
		return
	}
	c.raised = index
	c.strategy.SetRaised(index)
}

func (c *Controller) commit(index int, anchor hexgeom.Point) {
	cell, ok := c.board.Cell(index)
	if !ok {
		return
	}
	c.active = cell.Coord
	c.hasActive = true
	c.chosen = true
	if c.onSelect != nil {
		c.onSelect(Selection{Index: index, Coord: cell.Coord, Anchor: anchor})
	}
}
