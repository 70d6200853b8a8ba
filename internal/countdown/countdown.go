// Package countdown runs the per-question timer. Remaining time is derived from
// the wall clock on every frame, so dropped frames never slow it down, and
// expiry fires once per run.
package countdown

import (
	"fmt"
	"math"
	"time"

	"hexquiz/internal/frame"
)

const (
	DefaultDuration   = 30 * time.Second
	DefaultResolution = 40 * time.Millisecond
)

// Timer is a restartable countdown. It is not safe for concurrent use.
type Timer struct {
	sched      *frame.Scheduler
	duration   time.Duration
	resolution time.Duration
	onExpire   func()
	onTick     func(remaining time.Duration)

	key       string
	active    bool
	remaining time.Duration
	reported  time.Duration
	elapsed   time.Duration // banked before the current resume
	startedAt time.Time
	completed bool
	token     frame.Token
	running   bool
}

// Option configures a Timer.
type Option func(*Timer)

// OnExpire is called once when a run reaches zero.
func OnExpire(fn func()) Option {
	return func(t *Timer) { t.onExpire = fn }
}

// OnTick is called when the remaining time has moved by at least the
// resolution since the last report, and on reaching zero.
func OnTick(fn func(remaining time.Duration)) Option {
	return func(t *Timer) { t.onTick = fn }
}

// WithResolution sets the minimum change between OnTick calls.
func WithResolution(d time.Duration) Option {
	return func(t *Timer) {
		if d >= 0 {
			t.resolution = d
		}
	}
}

// New returns an inactive timer holding the full duration.
func New(sched *frame.Scheduler, duration time.Duration, opts ...Option) *Timer {
	if duration < 0 {
		duration = 0
	}
	t := &Timer{
		sched:      sched,
		duration:   duration,
		resolution: DefaultResolution,
		remaining:  duration,
		reported:   duration,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run applies the timer's inputs: a changed key restarts from the full
// duration, then active starts or pauses frame scheduling.
func (t *Timer) Run(key string, active bool) {
	if key != t.key {
		t.key = key
		t.Reset()
	}
	t.SetActive(active)
}

// Reset cancels the in-flight run and restores the full duration. The
// active flag is kept.
func (t *Timer) Reset() {
	t.stop()
	t.remaining = t.duration
	t.reported = t.duration
	t.elapsed = 0
	t.completed = false
	if t.active {
		t.resume()
	}
}

// SetActive pauses or resumes without resetting the remaining time.
func (t *Timer) SetActive(active bool) {
	if active == t.active {
		return
	}
	t.active = active
	if active {
		t.resume()
		return
	}
	if t.running {
		now := t.sched.Clock().Now()
		t.elapsed += now.Sub(t.startedAt)
		t.stop()
		t.update(now)
	}
}

func (t *Timer) Active() bool { return t.active }

// Key returns the reset key of the current run.
func (t *Timer) Key() string { return t.key }

// Duration returns the full length of a run.
func (t *Timer) Duration() time.Duration { return t.duration }

// Remaining returns the time left as of the last frame.
func (t *Timer) Remaining() time.Duration { return t.remaining }

// Progress returns remaining/duration in [0,1].
func (t *Timer) Progress() float64 {
	if t.duration <= 0 {
		return 0
	}
	p := float64(t.remaining) / float64(t.duration)
	return math.Min(math.Max(p, 0), 1)
}

// Expired reports whether the current run has reached zero.
func (t *Timer) Expired() bool { return t.completed }

// Label formats the remaining time as m:ss, rounding seconds up.
func (t *Timer) Label() string { return FormatRemaining(t.remaining) }

// FormatRemaining renders d as m:ss with seconds rounded up.
func FormatRemaining(d time.Duration) string {
	total := int(math.Ceil(d.Seconds()))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Teardown stops frame scheduling for good.
func (t *Timer) Teardown() {
	t.stop()
	t.active = false
}

func (t *Timer) resume() {
	if t.running || t.completed {
		return
	}
	t.startedAt = t.sched.Clock().Now()
	t.running = true
	t.token = t.sched.RequestFrame(t.tick)
}

func (t *Timer) stop() {
	if t.running {
		t.sched.Cancel(t.token)
		t.running = false
	}
}

func (t *Timer) tick(now time.Time) {
	if !t.running {
		return
	}
	t.update(now)
	if t.remaining > 0 {
		t.token = t.sched.RequestFrame(t.tick)
		return
	}
	t.running = false
	if !t.completed {
		t.completed = true
		if t.onExpire != nil {
			t.onExpire()
		}
	}
}

// update recomputes remaining from the wall clock. now is the frame time.
func (t *Timer) update(now time.Time) {
	elapsed := t.elapsed
	if t.running {
		elapsed += now.Sub(t.startedAt)
	}
	next := t.duration - elapsed
	if next < 0 {
		next = 0
	}
	t.remaining = next
	if t.onTick == nil {
		return
	}
	diff := t.reported - next
	if diff < 0 {
		diff = -diff
	}
	if diff >= t.resolution || (next == 0 && t.reported != 0) {
		t.reported = next
		t.onTick(next)
	}
}
