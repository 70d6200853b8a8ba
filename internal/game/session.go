package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"hexquiz/internal/audio"
	"hexquiz/internal/board"
	"hexquiz/internal/countdown"
	"hexquiz/internal/frame"
	"hexquiz/internal/hexgeom"
	"hexquiz/internal/interaction"
	"hexquiz/internal/modal"
	"hexquiz/internal/preload"
	"hexquiz/internal/quiz"
	"hexquiz/internal/stacking"
)

// Event kinds published when part of a session changes.
const (
	EventBoard   = "board"
	EventModal   = "modal"
	EventQuiz    = "quiz"
	EventTimer   = "timer"
	EventExpired = "expired"
	EventLoader  = "loader"
)

var (
	ErrNotReady      = errors.New("assets are still loading")
	ErrDialogClosed  = errors.New("dialog is not open")
	ErrNoAnswer      = errors.New("pick an answer first")
	ErrUnknownAction = errors.New("unknown pointer action")
)

// PointerAction is the DOM-level pointer callback an event came from.
type PointerAction string

const (
	ActionEnter  PointerAction = "enter"
	ActionLeave  PointerAction = "leave"
	ActionDown   PointerAction = "down"
	ActionMove   PointerAction = "move"
	ActionUp     PointerAction = "up"
	ActionCancel PointerAction = "cancel"
)

// PointerEvent is one pointer callback for a cell. Index is the cell the
// event was delivered to, or -1 for the board itself.
type PointerEvent struct {
	Action PointerAction
	Kind   interaction.Kind
	Index  int
	Screen hexgeom.Point
	Board  hexgeom.Point
	Button int
	Time   time.Time
}

// Session is one player's board, dialog and question timer. Every method is
// safe for concurrent use; transitions are serialised by one mutex so the
// engine components see a single-threaded caller.
type Session struct {
	mu        sync.Mutex
	ID        string
	CreatedAt time.Time

	settings Settings
	sched    *frame.Scheduler
	board    *board.Board
	layer    stacking.Strategy
	ctrl     *interaction.Controller
	tracker  *interaction.Tracker
	modal    *modal.Modal
	timer    *countdown.Timer
	bank     *quiz.Bank
	progress *quiz.Progress
	sheet    *quiz.Sheet
	assets   preload.Assets
	gate     *preload.Gate

	viewport     modal.Viewport
	selection    interaction.Selection
	hasSelection bool
	opens        int // dialog mounts so far, part of the timer key
	loaderHidden bool
	loaderToken  frame.Token

	version   uint64
	dirty     map[string]bool
	lastTimer time.Time
	cues      []audio.Cue
	onCue     func(audio.Cue)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithCueHook receives sound cues after each transition, outside the lock.
func WithCueHook(fn func(audio.Cue)) SessionOption {
	return func(s *Session) { s.onCue = fn }
}

// WithAssets overrides the artwork the session preloads.
func WithAssets(a preload.Assets) SessionOption {
	return func(s *Session) { s.assets = a }
}

// NewSession builds a session on a shared, immutable board.
func NewSession(id string, b *board.Board, bank *quiz.Bank, settings Settings, clock frame.Clock, opts ...SessionOption) *Session {
	if clock == nil {
		clock = frame.SystemClock{}
	}
	s := &Session{
		ID:        id,
		CreatedAt: clock.Now(),
		settings:  settings,
		sched:     frame.NewScheduler(clock, settings.FrameInterval),
		board:     b,
		bank:      bank,
		progress:  quiz.NewProgress(bank.Len()),
		assets:    preload.DefaultAssets(bank.Images()),
		viewport:  modal.Viewport{Width: 1024, Height: 768},
		dirty:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.gate = preload.NewGate(s.assets.URLs())
	s.loaderHidden = s.gate.Ready()

	if settings.Layer {
		s.layer = stacking.NewLayer(b.Len())
	} else {
		s.layer = stacking.NewSorted(b.Len())
	}
	s.ctrl = interaction.New(b, s.layer, s.onSelect,
		interaction.WithClock(clock),
		interaction.WithTapThreshold(settings.TapDistance, settings.TapDuration),
	)
	s.tracker = interaction.NewTracker(s.ctrl)
	s.modal = modal.New(s.sched,
		modal.WithDuration(settings.ModalDuration),
		modal.WithOriginScale(settings.OriginScale),
		modal.WithFallbackScale(settings.FallbackScale),
		modal.WithPhaseHook(s.onPhase),
	)
	s.timer = countdown.New(s.sched, settings.CountdownDuration,
		countdown.WithResolution(settings.CountdownResolution),
		countdown.OnTick(func(time.Duration) { s.mark(EventTimer) }),
		countdown.OnExpire(s.onExpire),
	)
	s.sheet = quiz.NewSheet(bank.At(s.progress.Current()))
	return s
}

func (s *Session) lock() { s.mu.Lock() }

// unlock releases the mutex and then delivers queued cues.
func (s *Session) unlock() {
	cues := s.cues
	s.cues = nil
	hook := s.onCue
	s.mu.Unlock()
	if hook == nil {
		return
	}
	for _, c := range cues {
		hook(c)
	}
}

// Board returns the session's board.
func (s *Session) Board() *board.Board { return s.board }

// Assets returns the artwork the session draws with.
func (s *Session) Assets() preload.Assets { return s.assets }

// Start enables interaction once every asset has reported in.
func (s *Session) Start() error {
	s.lock()
	defer s.unlock()
	if !s.gate.Ready() {
		return ErrNotReady
	}
	if s.ctrl.Started() {
		return nil
	}
	s.ctrl.Start()
	s.mark(EventBoard)
	return nil
}

// Pointer feeds one pointer callback to the interaction controller.
func (s *Session) Pointer(ev PointerEvent) error {
	s.lock()
	defer s.unlock()
	ie := interaction.Event{Kind: ev.Kind, Screen: ev.Screen, Board: ev.Board, Button: ev.Button, Time: ev.Time}
	before := s.boardState()
	switch ev.Action {
	case ActionEnter:
		s.ctrl.Enter(ev.Index, ie)
	case ActionLeave:
		s.ctrl.Leave(ev.Index, ie)
	case ActionDown:
		s.ctrl.Down(s.target(ev), ie)
	case ActionMove:
		s.ctrl.Move(ie)
	case ActionUp:
		s.ctrl.Up(s.target(ev), ie)
	case ActionCancel:
		s.ctrl.Cancel()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, ev.Action)
	}
	if s.boardState() != before {
		s.mark(EventBoard)
	}
	return nil
}

// Sample feeds a polled pointer position, for clients without per-cell
// callbacks. board is the pointer in board space.
func (s *Session) Sample(kind interaction.Kind, screen, board hexgeom.Point, pressed bool, at time.Time) {
	s.lock()
	defer s.unlock()
	before := s.boardState()
	s.tracker.Sample(kind, screen, board, pressed, at)
	if s.boardState() != before {
		s.mark(EventBoard)
	}
}

// ResetPointer ends any hover or press, as when the pointer leaves the window.
func (s *Session) ResetPointer(at time.Time) {
	s.lock()
	defer s.unlock()
	before := s.boardState()
	s.tracker.Reset(at)
	if s.boardState() != before {
		s.mark(EventBoard)
	}
}

// target resolves the cell for a touch press or release. Touch capture sticks
// to the first element, so a usable board point is hit-tested instead.
func (s *Session) target(ev PointerEvent) int {
	if (ev.Kind == interaction.Touch || ev.Index < 0) && ev.Board.Valid() {
		if hit, ok := s.board.HitTest(ev.Board, s.ctrl.Order()); ok {
			return hit
		}
		return -1
	}
	return ev.Index
}

type boardState struct {
	raised  int
	started bool
	active  hexgeom.Axial
	chosen  bool
}

func (s *Session) boardState() boardState {
	active, _ := s.ctrl.Active()
	return boardState{raised: s.ctrl.Raised(), started: s.ctrl.Started(), active: active, chosen: s.ctrl.Chosen()}
}

// SelectAnswer records the player's answer for the current question.
func (s *Session) SelectAnswer(key string) error {
	s.lock()
	defer s.unlock()
	if s.modal.Phase() != modal.Open && s.modal.Phase() != modal.Opening {
		return ErrDialogClosed
	}
	if err := s.sheet.Select(key); err != nil {
		return err
	}
	s.cue(audio.CueAnswer)
	s.mark(EventQuiz)
	return nil
}

// Next moves to the following question and closes the dialog so the player
// picks the next cell. After the last question the counter wraps to the first.
func (s *Session) Next() error {
	s.lock()
	defer s.unlock()
	if s.modal.Phase() != modal.Open && s.modal.Phase() != modal.Opening {
		return ErrDialogClosed
	}
	if !s.sheet.Answered() && !s.timer.Expired() {
		return ErrNoAnswer
	}
	s.progress.Advance()
	s.sheet.Clear(s.bank.At(s.progress.Current()))
	s.mark(EventQuiz)
	s.modal.Close()
	s.syncTimer()
	return nil
}

// Close starts the dialog's exit transition.
func (s *Session) Close() {
	s.lock()
	defer s.unlock()
	s.modal.Close()
	s.syncTimer()
}

// SetViewport records the visible viewport used for the dialog's anchor math.
func (s *Session) SetViewport(v modal.Viewport) {
	s.lock()
	defer s.unlock()
	if v.Width <= 0 || v.Height <= 0 {
		return
	}
	if v == s.viewport {
		return
	}
	s.viewport = v
	if s.modal.Mounted() {
		s.mark(EventModal)
	}
}

// ReportAsset marks one preloaded URL as finished. Once everything has
// reported, the loader overlay is hidden after the configured fade.
func (s *Session) ReportAsset(url string, ok bool) bool {
	s.lock()
	defer s.unlock()
	if !s.gate.MarkDone(url, ok) {
		return false
	}
	s.mark(EventLoader)
	if s.gate.Ready() && !s.loaderHidden {
		s.sched.Cancel(s.loaderToken)
		s.loaderToken = s.sched.After(s.settings.LoaderFade, func() {
			s.loaderHidden = true
			s.mark(EventLoader)
		})
	}
	return true
}

// Pump advances scheduled callbacks to now and returns how many ran.
func (s *Session) Pump(now time.Time) int {
	s.lock()
	defer s.unlock()
	return s.sched.Pump(now)
}

// Tick pumps the scheduler and drains change notifications. Timer updates
// are coalesced to the push interval. idle is true when nothing is scheduled
// and nothing is waiting to be published.
func (s *Session) Tick(now time.Time) (next time.Time, events []string, idle bool) {
	s.lock()
	defer s.unlock()
	s.sched.Pump(now)
	events = s.drain(now)

	next, pending := s.sched.NextWake(now)
	if s.dirty[EventTimer] {
		due := s.lastTimer.Add(s.settings.PushInterval)
		if !pending || due.Before(next) {
			next = due
		}
		pending = true
	}
	return next, events, !pending
}

// Drain returns the kinds changed since the last call, ignoring the push
// interval. Local clients that redraw every frame use it.
func (s *Session) Drain() []string {
	s.lock()
	defer s.unlock()
	return s.drainAll()
}

func (s *Session) drain(now time.Time) []string {
	if s.dirty[EventTimer] && now.Sub(s.lastTimer) < s.settings.PushInterval && !s.dirty[EventExpired] {
		delete(s.dirty, EventTimer)
		events := s.drainAll()
		s.dirty[EventTimer] = true
		return events
	}
	if s.dirty[EventTimer] {
		s.lastTimer = now
	}
	return s.drainAll()
}

func (s *Session) drainAll() []string {
	if len(s.dirty) == 0 {
		return nil
	}
	events := make([]string, 0, len(s.dirty))
	for _, kind := range []string{EventBoard, EventModal, EventQuiz, EventTimer, EventExpired, EventLoader} {
		if s.dirty[kind] {
			events = append(events, kind)
		}
	}
	clear(s.dirty)
	return events
}

// Version increases with every state change.
func (s *Session) Version() uint64 {
	s.lock()
	defer s.unlock()
	return s.version
}

// Teardown cancels every scheduled callback.
func (s *Session) Teardown() {
	s.lock()
	defer s.unlock()
	s.modal.Teardown()
	s.timer.Teardown()
	s.sched.Cancel(s.loaderToken)
	s.ctrl.Cancel()
}

func (s *Session) onSelect(sel interaction.Selection) {
	s.selection = sel
	s.hasSelection = true
	s.cue(audio.CueSelect)
	s.mark(EventBoard)
	anchor := sel.Anchor
	s.modal.Open(&anchor)
	s.syncTimer()
}

func (s *Session) onPhase(p modal.Phase) {
	if p == modal.Opening {
		// Each mount starts with a fresh sheet, keyed like the timer.
		s.opens++
		s.sheet.Clear(s.bank.At(s.progress.Current()))
		s.mark(EventQuiz)
	}
	s.mark(EventModal)
	s.syncTimer()
}

func (s *Session) onExpire() {
	s.sheet.Lock()
	s.cue(audio.CueExpire)
	s.mark(EventExpired)
	s.mark(EventQuiz)
}

// syncTimer derives the countdown's inputs: the key changes with the question
// and with each dialog mount, and the timer runs only while the dialog is
// opening or open.
func (s *Session) syncTimer() {
	phase := s.modal.Phase()
	shown := phase == modal.Opening || phase == modal.Open
	key := fmt.Sprintf("q%d/closed", s.progress.Current())
	if shown {
		key = fmt.Sprintf("q%d/open%d", s.progress.Current(), s.opens)
	}
	s.timer.Run(key, shown)
	s.mark(EventTimer)
}

func (s *Session) mark(kind string) {
	s.version++
	s.dirty[kind] = true
}

func (s *Session) cue(c audio.Cue) {
	s.cues = append(s.cues, c)
}
