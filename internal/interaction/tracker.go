package interaction

import (
	"time"

	"hexquiz/internal/hexgeom"
)

// Tracker adapts positional pointer sampling (terminal and desktop clients
// that poll a cursor each frame) into the controller's per-cell events.
type Tracker struct {
	c     *Controller
	hover int
	down  bool
	kind  Kind
}

// NewTracker returns a tracker feeding c.
func NewTracker(c *Controller) *Tracker {
	return &Tracker{c: c, hover: -1}
}

// Sample feeds one pointer reading. board is the pointer in board space.
// Enter and Leave fire when the hovered cell changes, Down and Up on press
// edges, Move while a press is held.
func (t *Tracker) Sample(kind Kind, screen, board hexgeom.Point, pressed bool, at time.Time) {
	if !screen.Valid() || !board.Valid() {
		return
	}
	ev := Event{Kind: kind, Screen: screen, Board: board, Button: PrimaryButton, Time: at}
	target, ok := t.c.board.HitTest(board, t.c.Order())
	if !ok {
		target = -1
	}

	if kind != Touch && target != t.hover {
		if t.hover >= 0 {
			t.c.Leave(t.hover, ev)
		}
		if target >= 0 {
			t.c.Enter(target, ev)
		}
		t.hover = target
	}

	switch {
	case pressed && !t.down:
		t.down = true
		t.kind = kind
		t.c.Down(target, ev)
	case !pressed && t.down:
		t.down = false
		ev.Kind = t.kind
		t.c.Up(target, ev)
	case pressed && t.down:
		t.c.Move(ev)
	}
}

// Reset ends any press and hover, as when the pointer leaves the window.
func (t *Tracker) Reset(at time.Time) {
	if t.hover >= 0 {
		t.c.Leave(t.hover, Event{Kind: Mouse, Time: at})
		t.hover = -1
	}
	if t.down {
		t.down = false
		t.c.Cancel()
	}
}

// Hover returns the cell under the last mouse sample, or -1.
func (t *Tracker) Hover() int { return t.hover }
