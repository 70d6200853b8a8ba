package interaction

import (
	"math"
	"testing"
	"time"

	"hexquiz/internal/board"
	"hexquiz/internal/hexgeom"
	"hexquiz/internal/stacking"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	b        *board.Board
	c        *Controller
	selected []Selection
}

func newFixture(t *testing.T, strategy stacking.Strategy) *fixture {
	t.Helper()
	l, err := hexgeom.NewLayout(hexgeom.Pointy, hexgeom.Point{X: 30, Y: 30}, hexgeom.OriginTopLeft)
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	b, err := board.New(board.DefaultSpec(), l)
	if err != nil {
		t.Fatalf("board.New: %v", err)
	}
	f := &fixture{b: b}
	f.c = New(b, strategy, func(s Selection) { f.selected = append(f.selected, s) })
	f.c.Start()
	return f
}

func (f *fixture) center(i int) hexgeom.Point {
	c, _ := f.b.Cell(i)
	return c.Center
}

func mouse(p hexgeom.Point) Event {
	return Event{Kind: Mouse, Screen: p, Board: p, Button: PrimaryButton, Time: t0}
}

func touch(board, screen hexgeom.Point, at time.Time) Event {
	return Event{Kind: Touch, Screen: screen, Board: board, Time: at}
}

func TestClassifyTap(t *testing.T) {
	g := TapGesture{Start: hexgeom.Point{X: 100, Y: 100}, At: t0}
	cases := []struct {
		name    string
		dx, dy  float64
		elapsed time.Duration
		want    bool
	}{
		{"10px 100ms", 6, 8, 100 * time.Millisecond, true},
		{"20px 100ms", 12, 16, 100 * time.Millisecond, false},
		{"5px 600ms", 3, 4, 600 * time.Millisecond, false},
		{"exactly 12px", 12, 0, 0, true},
		{"exactly 500ms", 0, 0, 500 * time.Millisecond, true},
	}
	for _, tc := range cases {
		up := Event{Kind: Touch, Screen: hexgeom.Point{X: 100 + tc.dx, Y: 100 + tc.dy}, Time: t0.Add(tc.elapsed)}
		if got := ClassifyTap(g, up, DefaultTapDistance, DefaultTapDuration); got != tc.want {
			t.Errorf("%s: ClassifyTap = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMouseUp_SelectsImmediately(t *testing.T) {
	f := newFixture(t, nil)
	p := f.center(0)
	f.c.Up(0, mouse(p))
	if len(f.selected) != 1 {
		t.Fatalf("selections %d, want 1", len(f.selected))
	}
	s := f.selected[0]
	if s.Index != 0 || s.Anchor != p {
		t.Errorf("selection %+v", s)
	}
	if a, ok := f.c.Active(); !ok || a != s.Coord {
		t.Errorf("Active = %v,%v want %v", a, ok, s.Coord)
	}
	if !f.c.Chosen() {
		t.Error("Chosen should be true after a selection")
	}
}

func TestMouseUp_SecondaryButtonIgnored(t *testing.T) {
	f := newFixture(t, nil)
	ev := mouse(f.center(0))
	ev.Button = 2
	f.c.Up(0, ev)
	if len(f.selected) != 0 {
		t.Error("secondary button should not select")
	}
}

func TestNotStarted_NothingHappens(t *testing.T) {
	l, _ := hexgeom.NewLayout(hexgeom.Pointy, hexgeom.Point{X: 30, Y: 30}, hexgeom.OriginTopLeft)
	b, _ := board.New(board.DefaultSpec(), l)
	called := false
	c := New(b, nil, func(Selection) { called = true })
	c.Enter(0, mouse(hexgeom.Point{}))
	c.Up(0, mouse(hexgeom.Point{}))
	if called || c.Raised() != stacking.None {
		t.Error("controller should be inert before Start")
	}
	if c.Started() {
		t.Error("Started should be false")
	}
}

func TestNonSelectable_NeverSelects(t *testing.T) {
	f := newFixture(t, nil)
	f.c.Enter(2, mouse(f.center(2)))
	f.c.Up(2, mouse(f.center(2)))
	f.c.Down(2, touch(f.center(2), f.center(2), t0))
	f.c.Up(2, touch(f.center(2), f.center(2), t0.Add(10*time.Millisecond)))
	if len(f.selected) != 0 {
		t.Errorf("selected %+v on a non-selectable cell", f.selected)
	}
	if _, ok := f.c.Active(); ok {
		t.Error("Active should be unset")
	}
	if f.c.Raised() == 2 {
		t.Error("non-selectable cell must not be raised")
	}
}

func TestHover_StaleLeaveIgnored(t *testing.T) {
	f := newFixture(t, stacking.NewLayer(18))
	f.c.Enter(0, mouse(f.center(0)))
	f.c.Enter(1, mouse(f.center(1)))
	if f.c.Raised() != 1 {
		t.Fatalf("Raised %d, want 1", f.c.Raised())
	}
	f.c.Leave(0, mouse(f.center(0)))
	if f.c.Raised() != 1 {
		t.Errorf("stale leave lowered: Raised %d", f.c.Raised())
	}
	order := f.c.Order()
	if order[len(order)-1] != 1 {
		t.Errorf("paint order %v should end with 1", order)
	}
	f.c.Leave(1, mouse(f.center(1)))
	if f.c.Raised() != stacking.None {
		t.Errorf("Raised %d, want None", f.c.Raised())
	}
}

func TestHover_DoesNotTouchSelection(t *testing.T) {
	f := newFixture(t, nil)
	f.c.Up(0, mouse(f.center(0)))
	before, _ := f.c.Active()
	f.c.Enter(4, mouse(f.center(4)))
	f.c.Leave(4, mouse(f.center(4)))
	if after, _ := f.c.Active(); after != before {
		t.Errorf("Active changed from %v to %v by hover", before, after)
	}
}

func TestTouch_TapSelects(t *testing.T) {
	f := newFixture(t, nil)
	p := f.center(0)
	screen := hexgeom.Point{X: 200, Y: 300}
	f.c.Down(0, touch(p, screen, t0))
	if !f.c.Pending() {
		t.Fatal("touch down should record a gesture")
	}
	if f.c.Raised() != 0 {
		t.Errorf("touch down should raise the cell under the finger, got %d", f.c.Raised())
	}
	up := hexgeom.Point{X: 206, Y: 308}
	f.c.Up(0, touch(p, up, t0.Add(100*time.Millisecond)))
	if len(f.selected) != 1 || f.selected[0].Anchor != up {
		t.Fatalf("selected %+v, want one selection anchored at %v", f.selected, up)
	}
	if f.c.Pending() {
		t.Error("gesture should be consumed")
	}
	if f.c.Raised() != stacking.None {
		t.Error("touch up should clear the raise")
	}
}

func TestTouch_SwipeAndLongPressDiscarded(t *testing.T) {
	f := newFixture(t, nil)
	p := f.center(0)
	f.c.Down(0, touch(p, hexgeom.Point{X: 0, Y: 0}, t0))
	f.c.Up(0, touch(p, hexgeom.Point{X: 12, Y: 16}, t0.Add(100*time.Millisecond)))
	f.c.Down(0, touch(p, hexgeom.Point{X: 0, Y: 0}, t0))
	f.c.Up(0, touch(p, hexgeom.Point{X: 3, Y: 4}, t0.Add(600*time.Millisecond)))
	if len(f.selected) != 0 {
		t.Errorf("selected %+v, want none", f.selected)
	}
}

func TestTouch_CellChangedDiscarded(t *testing.T) {
	f := newFixture(t, nil)
	f.c.Down(0, touch(f.center(0), hexgeom.Point{}, t0))
	f.c.Up(1, touch(f.center(1), hexgeom.Point{}, t0.Add(50*time.Millisecond)))
	if len(f.selected) != 0 {
		t.Errorf("selected %+v, want none", f.selected)
	}
}

func TestTouch_CancelClearsGesture(t *testing.T) {
	f := newFixture(t, nil)
	f.c.Down(0, touch(f.center(0), hexgeom.Point{}, t0))
	f.c.Cancel()
	if f.c.Pending() || f.c.Raised() != stacking.None {
		t.Error("Cancel should clear gesture and raise")
	}
	f.c.Up(0, touch(f.center(0), hexgeom.Point{}, t0.Add(50*time.Millisecond)))
	if len(f.selected) != 0 {
		t.Error("Up after Cancel must not select")
	}

	f.c.Down(0, touch(f.center(0), hexgeom.Point{}, t0))
	f.c.Leave(-1, touch(hexgeom.Point{}, hexgeom.Point{}, t0))
	if f.c.Pending() {
		t.Error("board leave should clear the gesture")
	}
}

func TestTouch_MoveRehitTests(t *testing.T) {
	f := newFixture(t, nil)
	f.c.Down(0, touch(f.center(0), hexgeom.Point{}, t0))
	f.c.Move(touch(f.center(1), hexgeom.Point{}, t0))
	if f.c.Raised() != 1 {
		t.Errorf("Raised %d after moving onto 1", f.c.Raised())
	}
	f.c.Move(touch(f.center(2), hexgeom.Point{}, t0))
	if f.c.Raised() != stacking.None {
		t.Errorf("moving onto a non-selectable cell should clear the raise, got %d", f.c.Raised())
	}
	f.c.Move(touch(f.center(4), hexgeom.Point{}, t0))
	f.c.Enter(0, mouse(f.center(0)))
	if f.c.Raised() != 4 {
		t.Errorf("mouse enter overrode touch raise: %d", f.c.Raised())
	}
	f.c.Move(touch(hexgeom.Point{X: -400, Y: -400}, hexgeom.Point{}, t0))
	if f.c.Raised() != stacking.None {
		t.Errorf("moving off the board should clear the raise, got %d", f.c.Raised())
	}
}

func TestMalformedEventsIgnored(t *testing.T) {
	f := newFixture(t, nil)
	bad := hexgeom.Point{X: math.NaN(), Y: 1}
	f.c.Enter(0, mouse(bad))
	f.c.Up(0, mouse(bad))
	f.c.Down(0, touch(f.center(0), bad, t0))
	if len(f.selected) != 0 || f.c.Raised() != stacking.None || f.c.Pending() {
		t.Error("NaN events should not change state")
	}
}

func TestTracker_MouseHoverAndClick(t *testing.T) {
	f := newFixture(t, nil)
	tr := NewTracker(f.c)
	p := f.center(0)
	tr.Sample(Mouse, p, p, false, t0)
	if f.c.Raised() != 0 || tr.Hover() != 0 {
		t.Fatalf("Raised %d hover %d, want 0", f.c.Raised(), tr.Hover())
	}
	tr.Sample(Mouse, p, p, true, t0)
	tr.Sample(Mouse, p, p, false, t0)
	if len(f.selected) != 1 || f.selected[0].Index != 0 {
		t.Fatalf("selected %+v", f.selected)
	}
	q := f.center(1)
	tr.Sample(Mouse, q, q, false, t0)
	if f.c.Raised() != 1 {
		t.Errorf("Raised %d, want 1", f.c.Raised())
	}
	tr.Reset(t0)
	if f.c.Raised() != stacking.None || tr.Hover() != -1 {
		t.Error("Reset should drop hover")
	}
}

func TestTracker_TouchTap(t *testing.T) {
	f := newFixture(t, nil)
	tr := NewTracker(f.c)
	p := f.center(4)
	tr.Sample(Touch, p, p, true, t0)
	tr.Sample(Touch, p, p, true, t0.Add(30*time.Millisecond))
	tr.Sample(Touch, p, p, false, t0.Add(80*time.Millisecond))
	if len(f.selected) != 1 || f.selected[0].Index != 4 {
		t.Fatalf("selected %+v, want cell 4", f.selected)
	}
}
