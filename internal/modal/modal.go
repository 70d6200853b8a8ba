// Package modal is the single dialog's open/close state machine. The dialog
// grows out of an anchor point toward the viewport center and shrinks away on
// close; phases advance on frame and timer callbacks from a frame.Scheduler.
package modal

import (
	"time"

	"hexquiz/internal/frame"
	"hexquiz/internal/hexgeom"
)

const (
	DefaultDuration      = 320 * time.Millisecond
	DefaultOriginScale   = 0.15
	DefaultFallbackScale = 0.92
)

// Phase is the dialog lifecycle state.
type Phase int

const (
	Closed Phase = iota
	Opening
	Open
	Closing
)

func (p Phase) String() string {
	switch p {
	case Opening:
		return "opening"
	case Open:
		return "open"
	case Closing:
		return "closing"
	default:
		return "closed"
	}
}

// Viewport is the client window. VisualHeight is the visible part on mobile
// browsers; zero falls back to Height.
type Viewport struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	VisualHeight float64 `json:"visualHeight"`
}

// Target returns the point the dialog settles on.
func (v Viewport) Target() hexgeom.Point {
	h := v.VisualHeight
	if h <= 0 {
		h = v.Height
	}
	return hexgeom.Point{X: v.Width / 2, Y: h / 2}
}

// Transform is the dialog's visual state relative to its settled position.
type Transform struct {
	DX      float64 `json:"dx"`
	DY      float64 `json:"dy"`
	Scale   float64 `json:"scale"`
	Opacity float64 `json:"opacity"`
}

// Identity is the settled transform.
var Identity = Transform{Scale: 1, Opacity: 1}

// Modal is not safe for concurrent use.
type Modal struct {
	sched         *frame.Scheduler
	duration      time.Duration
	originScale   float64
	fallbackScale float64
	onPhase       func(Phase)

	phase     Phase
	origin    *hexgeom.Point
	startedAt time.Time
	closeFrom float64
	token     frame.Token
	hasToken  bool

	reopen       bool
	reopenOrigin *hexgeom.Point
}

// Option configures a Modal.
type Option func(*Modal)

func WithDuration(d time.Duration) Option {
	return func(m *Modal) {
		if d > 0 {
			m.duration = d
		}
	}
}

// WithOriginScale sets the start scale when an anchor is given.
func WithOriginScale(s float64) Option {
	return func(m *Modal) {
		if s > 0 {
			m.originScale = s
		}
	}
}

// WithFallbackScale sets the start scale of an anchorless pop.
func WithFallbackScale(s float64) Option {
	return func(m *Modal) {
		if s > 0 {
			m.fallbackScale = s
		}
	}
}

// WithPhaseHook is called after every phase change.
func WithPhaseHook(fn func(Phase)) Option {
	return func(m *Modal) { m.onPhase = fn }
}

// New returns a closed modal driven by sched.
func New(sched *frame.Scheduler, opts ...Option) *Modal {
	m := &Modal{
		sched:         sched,
		duration:      DefaultDuration,
		originScale:   DefaultOriginScale,
		fallbackScale: DefaultFallbackScale,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Modal) Phase() Phase { return m.phase }

// Mounted reports whether the dialog is in the render tree.
func (m *Modal) Mounted() bool { return m.phase != Closed }

// Duration returns the transition length.
func (m *Modal) Duration() time.Duration { return m.duration }

// Origin returns the anchor while the dialog is mounted, if one was given.
func (m *Modal) Origin() (hexgeom.Point, bool) {
	if m.origin == nil {
		return hexgeom.Point{}, false
	}
	return *m.origin, true
}

// Open starts the enter transition from origin; nil pops from the center.
// While closing, the request is held and replayed once the dialog unmounts.
// Open on a mounted dialog is a no-op.
func (m *Modal) Open(origin *hexgeom.Point) {
	if origin != nil && !origin.Valid() {
		origin = nil
	}
	switch m.phase {
	case Closing:
		m.reopen = true
		m.reopenOrigin = clonePoint(origin)
		return
	case Opening, Open:
		return
	}
	m.origin = clonePoint(origin)
	m.startedAt = m.sched.Clock().Now()
	m.setPhase(Opening)
	m.schedule(m.sched.RequestFrame(m.openFrame))
}

// Close starts the exit transition from whatever visibility the dialog has now.
// Closing again drops a held reopen.
func (m *Modal) Close() {
	now := m.sched.Clock().Now()
	switch m.phase {
	case Closed:
		return
	case Closing:
		m.reopen = false
		m.reopenOrigin = nil
		return
	}
	m.closeFrom = m.Progress(now)
	m.cancel()
	m.startedAt = now
	m.setPhase(Closing)
	m.schedule(m.sched.After(m.duration, m.unmount))
}

// Progress returns visibility in [0,1]: 0 fully at the anchor, 1 settled.
func (m *Modal) Progress(now time.Time) float64 {
	switch m.phase {
	case Opening:
		return Ease(m.linear(now))
	case Open:
		return 1
	case Closing:
		return m.closeFrom * (1 - Ease(m.linear(now)))
	default:
		return 0
	}
}

// Elapsed returns time into the current transition, capped at Duration.
func (m *Modal) Elapsed(now time.Time) time.Duration {
	if m.phase != Opening && m.phase != Closing {
		return 0
	}
	return time.Duration(m.linear(now) * float64(m.duration))
}

// Transform interpolates between the start transform and Identity.
func (m *Modal) Transform(now time.Time, vp Viewport) Transform {
	v := m.Progress(now)
	if v >= 1 {
		return Identity
	}
	start := m.StartTransform(vp)
	return Transform{
		DX:      start.DX * (1 - v),
		DY:      start.DY * (1 - v),
		Scale:   start.Scale + (1-start.Scale)*v,
		Opacity: v,
	}
}

// StartTransform is the transform the dialog enters from: offset from the
// viewport center to the anchor, strongly scaled down.
func (m *Modal) StartTransform(vp Viewport) Transform {
	if m.origin == nil {
		return Transform{Scale: m.fallbackScale}
	}
	target := vp.Target()
	return Transform{
		DX:    m.origin.X - target.X,
		DY:    m.origin.Y - target.Y,
		Scale: m.originScale,
	}
}

// Teardown cancels pending callbacks and unmounts without running hooks.
func (m *Modal) Teardown() {
	m.cancel()
	m.phase = Closed
	m.origin = nil
	m.reopen = false
	m.reopenOrigin = nil
}

func (m *Modal) openFrame(now time.Time) {
	m.hasToken = false
	if m.phase != Opening {
		return
	}
	if now.Sub(m.startedAt) >= m.duration {
		m.setPhase(Open)
		return
	}
	m.schedule(m.sched.RequestFrame(m.openFrame))
}

func (m *Modal) unmount() {
	m.hasToken = false
	if m.phase != Closing {
		return
	}
	m.origin = nil
	m.setPhase(Closed)
	if m.reopen {
		origin := m.reopenOrigin
		m.reopen = false
		m.reopenOrigin = nil
		m.Open(origin)
	}
}

func (m *Modal) linear(now time.Time) float64 {
	t := float64(now.Sub(m.startedAt)) / float64(m.duration)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func (m *Modal) schedule(id frame.Token) {
	m.token = id
	m.hasToken = true
}

func (m *Modal) cancel() {
	if m.hasToken {
		m.sched.Cancel(m.token)
		m.hasToken = false
	}
}

func (m *Modal) setPhase(p Phase) {
	if m.phase == p {
		return
	}
	m.phase = p
	if m.onPhase != nil {
		m.onPhase(p)
	}
}

func clonePoint(p *hexgeom.Point) *hexgeom.Point {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
