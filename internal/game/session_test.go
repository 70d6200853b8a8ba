package game

import (
	"errors"
	"testing"
	"time"

	"hexquiz/internal/audio"
	"hexquiz/internal/board"
	"hexquiz/internal/config"
	"hexquiz/internal/frame"
	"hexquiz/internal/hexgeom"
	"hexquiz/internal/interaction"
	"hexquiz/internal/modal"
	"hexquiz/internal/quiz"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testBoard(t *testing.T) *board.Board {
	t.Helper()
	b, err := config.Default().BuildBoard()
	if err != nil {
		t.Fatalf("BuildBoard: %v", err)
	}
	return b
}

type cueLog struct{ cues []audio.Cue }

func (l *cueLog) hook(c audio.Cue) { l.cues = append(l.cues, c) }

func (l *cueLog) count(c audio.Cue) int {
	n := 0
	for _, got := range l.cues {
		if got == c {
			n++
		}
	}
	return n
}

func newTestSession(t *testing.T, settings Settings) (*Session, *frame.ManualClock, *cueLog) {
	t.Helper()
	clock := frame.NewManualClock(t0)
	cues := &cueLog{}
	s := NewSession("s1", testBoard(t), quiz.Default(), settings, clock, WithCueHook(cues.hook))
	return s, clock, cues
}

// readySession reports every asset, lets the loader fade and starts the board.
func readySession(t *testing.T) (*Session, *frame.ManualClock, *cueLog) {
	t.Helper()
	s, clock, cues := newTestSession(t, DefaultSettings())
	for _, u := range s.Assets().URLs() {
		s.ReportAsset(u, true)
	}
	advance(s, clock, 250*time.Millisecond)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s, clock, cues
}

func advance(s *Session, clock *frame.ManualClock, d time.Duration) {
	end := clock.Now().Add(d)
	for clock.Now().Before(end) {
		s.Pump(clock.Advance(16 * time.Millisecond))
	}
}

func center(t *testing.T, s *Session, i int) hexgeom.Point {
	t.Helper()
	c, ok := s.Board().Cell(i)
	if !ok {
		t.Fatalf("no cell %d", i)
	}
	return c.Center
}

func click(t *testing.T, s *Session, i int) {
	t.Helper()
	p := center(t, s, i)
	for _, a := range []PointerAction{ActionEnter, ActionUp} {
		if err := s.Pointer(PointerEvent{Action: a, Kind: interaction.Mouse, Index: i, Screen: p, Board: p}); err != nil {
			t.Fatalf("Pointer %s: %v", a, err)
		}
	}
}

func TestSession_StartWaitsForAssets(t *testing.T) {
	s, clock, _ := newTestSession(t, DefaultSettings())
	if err := s.Start(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Start err %v, want ErrNotReady", err)
	}
	urls := s.Assets().URLs()
	for i, u := range urls {
		s.ReportAsset(u, i != 0)
	}
	snap := s.Snapshot(clock.Now())
	if !snap.Ready || snap.Loading.Errors != 1 || !snap.LoaderVisible {
		t.Errorf("after reports: ready %v loading %+v loader %v", snap.Ready, snap.Loading, snap.LoaderVisible)
	}
	advance(s, clock, 100*time.Millisecond)
	if !s.Snapshot(clock.Now()).LoaderVisible {
		t.Error("loader should still fade")
	}
	advance(s, clock, 150*time.Millisecond)
	if s.Snapshot(clock.Now()).LoaderVisible {
		t.Error("loader should be hidden after the fade")
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	snap = s.Snapshot(clock.Now())
	if !snap.Started || !snap.Hint {
		t.Errorf("started %v hint %v, want both", snap.Started, snap.Hint)
	}
}

func TestSession_ClickOpensDialogFromCell(t *testing.T) {
	s, clock, cues := readySession(t)
	click(t, s, 0)

	snap := s.Snapshot(clock.Now())
	if snap.Modal.Phase != modal.Opening {
		t.Fatalf("phase %v, want opening", snap.Modal.Phase)
	}
	if snap.Hint {
		t.Error("hint should hide once a cell is chosen")
	}
	if last := snap.Cells[len(snap.Cells)-1]; last.Index != 0 || !last.Raised || !last.Active {
		t.Errorf("top cell %+v, want raised active 0", last)
	}
	if snap.Unit == nil {
		t.Fatal("unit sprite missing on the active cell")
	}
	if snap.Modal.Start.Scale != modal.DefaultOriginScale {
		t.Errorf("start scale %v", snap.Modal.Start.Scale)
	}
	if cues.count(audio.CueSelect) != 1 {
		t.Errorf("select cues %d, want 1", cues.count(audio.CueSelect))
	}

	advance(s, clock, 320*time.Millisecond)
	snap = s.Snapshot(clock.Now())
	if snap.Modal.Phase != modal.Open || snap.Modal.Transform != modal.Identity {
		t.Errorf("after duration: phase %v transform %+v", snap.Modal.Phase, snap.Modal.Transform)
	}
	if !snap.Timer.Active || snap.Timer.Remaining >= snap.Timer.Duration {
		t.Errorf("timer %+v should be running", snap.Timer)
	}
}

func TestSession_NonSelectableCellIgnored(t *testing.T) {
	s, clock, _ := readySession(t)
	if s.Board().IsSelectable(2) {
		t.Fatal("cell 2 should be rocks")
	}
	click(t, s, 2)
	snap := s.Snapshot(clock.Now())
	if snap.Modal.Mounted || snap.Unit != nil || !snap.Hint {
		t.Errorf("non-selectable click changed state: %+v", snap.Modal)
	}
}

func TestSession_NotStartedIgnoresClicks(t *testing.T) {
	s, clock, _ := newTestSession(t, DefaultSettings())
	click(t, s, 0)
	if s.Snapshot(clock.Now()).Modal.Mounted {
		t.Error("board should not react before Start")
	}
}

func TestSession_TouchTap(t *testing.T) {
	s, clock, _ := readySession(t)
	p := center(t, s, 7)
	// The browser delivers both events to the first-touched element; the
	// board point decides the cell.
	_ = s.Pointer(PointerEvent{Action: ActionDown, Kind: interaction.Touch, Index: 0, Screen: p, Board: p})
	clock.Advance(80 * time.Millisecond)
	_ = s.Pointer(PointerEvent{Action: ActionUp, Kind: interaction.Touch, Index: 0, Screen: hexgeom.Point{X: p.X + 4, Y: p.Y}, Board: p})
	snap := s.Snapshot(clock.Now())
	if !snap.Modal.Mounted {
		t.Fatal("tap should open the dialog")
	}
	if snap.Unit == nil {
		t.Fatal("unit missing")
	}
	c, _ := s.Board().Cell(7)
	for _, cell := range snap.Cells {
		if cell.Active && cell.Index != c.Index {
			t.Errorf("active cell %d, want 7", cell.Index)
		}
	}
}

func TestSession_SwipeDoesNotSelect(t *testing.T) {
	s, clock, _ := readySession(t)
	p := center(t, s, 7)
	_ = s.Pointer(PointerEvent{Action: ActionDown, Kind: interaction.Touch, Index: 7, Screen: p, Board: p})
	clock.Advance(80 * time.Millisecond)
	_ = s.Pointer(PointerEvent{Action: ActionUp, Kind: interaction.Touch, Index: 7, Screen: hexgeom.Point{X: p.X + 20, Y: p.Y}, Board: p})
	if s.Snapshot(clock.Now()).Modal.Mounted {
		t.Error("swipe should not select")
	}
}

func TestSession_AnswerAndNextWraps(t *testing.T) {
	s, clock, cues := readySession(t)
	click(t, s, 0)
	advance(s, clock, 400*time.Millisecond)

	if err := s.Next(); !errors.Is(err, ErrNoAnswer) {
		t.Fatalf("Next without answer err %v", err)
	}
	if err := s.SelectAnswer("zz"); !errors.Is(err, quiz.ErrUnknownOption) {
		t.Errorf("unknown option err %v", err)
	}
	if err := s.SelectAnswer("b"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	snap := s.Snapshot(clock.Now())
	for _, o := range snap.Question.Options {
		if o.Key == "b" && o.State != "incorrect" {
			t.Errorf("wrong answer state %q", o.State)
		}
	}
	if !snap.Question.CanNext {
		t.Error("next should be enabled after answering")
	}

	total := snap.Question.Total
	for i := 0; i < total; i++ {
		if i > 0 {
			click(t, s, 0)
			advance(s, clock, time.Second)
			if err := s.SelectAnswer("a"); err != nil {
				t.Fatalf("question %d: %v", i, err)
			}
		}
		advance(s, clock, time.Second)
		if err := s.Next(); err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
		snap = s.Snapshot(clock.Now())
		if snap.Modal.Phase != modal.Closing {
			t.Errorf("after next %d phase %v, want closing", i, snap.Modal.Phase)
		}
		if want := (i + 1) % total; snap.Question.Index != want {
			t.Errorf("after next %d index %d, want %d", i, snap.Question.Index, want)
		}
		if snap.Timer.Active || snap.Timer.Remaining != snap.Timer.Duration {
			t.Errorf("after next %d timer %+v should be reset", i, snap.Timer)
		}
		advance(s, clock, 400*time.Millisecond)
	}
	if snap.Question.Index != 0 {
		t.Errorf("after %d nexts index %d, want 0", total, snap.Question.Index)
	}
	if cues.count(audio.CueAnswer) != total {
		t.Errorf("answer cues %d, want %d", cues.count(audio.CueAnswer), total)
	}
}

func TestSession_ReopenAfterExpiryStartsFresh(t *testing.T) {
	s, clock, _ := readySession(t)
	click(t, s, 0)
	advance(s, clock, 31*time.Second)
	s.Close()
	advance(s, clock, 400*time.Millisecond)
	click(t, s, 0)
	advance(s, clock, 400*time.Millisecond)

	snap := s.Snapshot(clock.Now())
	if snap.Timer.Expired || !snap.Timer.Active {
		t.Fatalf("timer %+v, want a fresh running timer", snap.Timer)
	}
	if snap.Question.Locked || snap.Question.CanNext {
		t.Errorf("question %+v should be unlocked with next disabled", snap.Question)
	}
	if err := s.SelectAnswer("a"); err != nil {
		t.Fatalf("SelectAnswer after reopen: %v", err)
	}
	if err := s.Next(); err != nil {
		t.Errorf("Next after reopen: %v", err)
	}
}

func TestSession_ReopenClearsAnswer(t *testing.T) {
	s, clock, _ := readySession(t)
	click(t, s, 0)
	advance(s, clock, 400*time.Millisecond)
	if err := s.SelectAnswer("b"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	s.Close()
	advance(s, clock, 400*time.Millisecond)
	click(t, s, 0)
	advance(s, clock, 400*time.Millisecond)

	snap := s.Snapshot(clock.Now())
	if snap.Question.Index != 0 {
		t.Fatalf("index %d, closing should not advance", snap.Question.Index)
	}
	for _, o := range snap.Question.Options {
		if o.Selected || o.State == "incorrect" || o.State == "correct" {
			t.Errorf("option %s = %+v, want a clean sheet", o.Key, o)
		}
	}
}

func TestSession_ExpiryLocksAnswers(t *testing.T) {
	s, clock, cues := readySession(t)
	click(t, s, 0)
	advance(s, clock, 31*time.Second)

	snap := s.Snapshot(clock.Now())
	if !snap.Timer.Expired || snap.Timer.Remaining != 0 || snap.Timer.Label != "0:00" {
		t.Fatalf("timer %+v, want expired", snap.Timer)
	}
	if !snap.Question.Locked || !snap.Question.CanNext {
		t.Errorf("question %+v should be locked with next enabled", snap.Question)
	}
	if err := s.SelectAnswer("a"); !errors.Is(err, quiz.ErrLocked) {
		t.Errorf("answer after expiry err %v, want ErrLocked", err)
	}
	advance(s, clock, 5*time.Second)
	if n := cues.count(audio.CueExpire); n != 1 {
		t.Errorf("expire cues %d, want exactly 1", n)
	}
	for _, o := range snap.Question.Options {
		if o.Key == "a" && o.State != "correct" {
			t.Errorf("expiry should reveal the correct option, got %q", o.State)
		}
	}
}

func TestSession_CloseResetsTimer(t *testing.T) {
	s, clock, _ := readySession(t)
	click(t, s, 0)
	advance(s, clock, 2*time.Second)
	s.Close()
	snap := s.Snapshot(clock.Now())
	if snap.Modal.Phase != modal.Closing {
		t.Fatalf("phase %v, want closing", snap.Modal.Phase)
	}
	if snap.Timer.Active || snap.Timer.Remaining != snap.Timer.Duration {
		t.Errorf("timer %+v should be reset and paused", snap.Timer)
	}
	advance(s, clock, 320*time.Millisecond)
	if s.Snapshot(clock.Now()).Modal.Mounted {
		t.Error("dialog should unmount after closing")
	}
	if err := s.SelectAnswer("a"); !errors.Is(err, ErrDialogClosed) {
		t.Errorf("answer on closed dialog err %v", err)
	}
}

func TestSession_ReopenWhileClosing(t *testing.T) {
	s, clock, _ := readySession(t)
	click(t, s, 0)
	advance(s, clock, 400*time.Millisecond)
	s.Close()
	advance(s, clock, 100*time.Millisecond)
	click(t, s, 1)
	if s.Snapshot(clock.Now()).Modal.Phase != modal.Closing {
		t.Fatal("open during closing should wait")
	}
	advance(s, clock, 400*time.Millisecond)
	snap := s.Snapshot(clock.Now())
	if !snap.Modal.Mounted {
		t.Error("deferred open should replay after unmount")
	}
	if !snap.Timer.Active {
		t.Error("timer should run for the reopened dialog")
	}
}

func TestSession_PointerRejectsUnknownAction(t *testing.T) {
	s, _, _ := readySession(t)
	if err := s.Pointer(PointerEvent{Action: "wiggle"}); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("err %v, want ErrUnknownAction", err)
	}
}

func TestSession_SampleDrivesHover(t *testing.T) {
	s, clock, _ := readySession(t)
	p := center(t, s, 4)
	s.Sample(interaction.Mouse, p, p, false, clock.Now())
	snap := s.Snapshot(clock.Now())
	if top := snap.Cells[len(snap.Cells)-1]; top.Index != 4 || !top.Raised {
		t.Errorf("top cell %d raised %v, want 4", top.Index, top.Raised)
	}
	s.ResetPointer(clock.Now())
	for _, c := range s.Snapshot(clock.Now()).Cells {
		if c.Raised {
			t.Errorf("cell %d still raised after reset", c.Index)
		}
	}
	s.Sample(interaction.Mouse, p, p, true, clock.Now())
	s.Sample(interaction.Mouse, p, p, false, clock.Now())
	if !s.Snapshot(clock.Now()).Modal.Mounted {
		t.Error("press and release should select")
	}
}

func TestSession_TickCoalescesTimerEvents(t *testing.T) {
	s, clock, _ := readySession(t)
	s.Drain()
	click(t, s, 0)

	timerEvents := 0
	var first []string
	for i := 0; i < 63; i++ {
		_, events, idle := s.Tick(clock.Advance(16 * time.Millisecond))
		if i == 0 {
			first = events
		}
		if idle {
			t.Fatal("session should not idle while the timer runs")
		}
		for _, e := range events {
			if e == EventTimer {
				timerEvents++
			}
		}
	}
	if len(first) == 0 {
		t.Error("first tick should publish the selection")
	}
	if timerEvents < 3 || timerEvents > 5 {
		t.Errorf("timer events over ~1s: %d, want about 4", timerEvents)
	}
}

func TestSession_TickIdleWhenNothingScheduled(t *testing.T) {
	s, clock, _ := readySession(t)
	s.Drain()
	if _, _, idle := s.Tick(clock.Advance(time.Millisecond)); !idle {
		t.Error("session with closed dialog should idle")
	}
}

func TestSession_LayerStackingMatchesSorted(t *testing.T) {
	settings := DefaultSettings()
	settings.Layer = true
	layered, clock, _ := newTestSession(t, settings)
	for _, u := range layered.Assets().URLs() {
		layered.ReportAsset(u, true)
	}
	_ = layered.Start()
	sorted, _, _ := readySession(t)

	for _, i := range []int{4, 8, 12} {
		p := center(t, sorted, i)
		for _, s := range []*Session{layered, sorted} {
			_ = s.Pointer(PointerEvent{Action: ActionEnter, Kind: interaction.Mouse, Index: i, Screen: p, Board: p})
		}
	}
	a := layered.Snapshot(clock.Now()).Cells
	b := sorted.Snapshot(clock.Now()).Cells
	if a[len(a)-1].Index != 12 || b[len(b)-1].Index != 12 {
		t.Errorf("top cells %d and %d, want 12", a[len(a)-1].Index, b[len(b)-1].Index)
	}
}
