// Package frame provides the single scheduling primitive the board engine is
// driven by: "run this at the next frame" and "run this after a delay", both
// returning cancellation tokens.
//
// A Scheduler does not own a goroutine. Its owner pumps it, either from a
// real loop (realtime.RoomStore.RunLoop, an ebiten Update, a terminal ticker)
// or from a test with synthetic timestamps. It is not safe for concurrent
// use; the owner serialises access.
package frame

import (
	"sort"
	"time"
)

// DefaultInterval approximates a 60 Hz display.
const DefaultInterval = 16 * time.Millisecond

// Token identifies a scheduled callback. The zero Token is never issued.
type Token uint64

type frameEntry struct {
	id Token
	fn func(now time.Time)
}

type timerEntry struct {
	id Token
	at time.Time
	fn func()
}

// Scheduler queues frame and timer callbacks until pumped.
type Scheduler struct {
	clock     Clock
	interval  time.Duration
	nextID    Token
	frames    []frameEntry
	timers    []timerEntry
	inflight  map[Token]struct{}
	cancelled map[Token]struct{}
	lastFrame time.Time
}

// NewScheduler creates a scheduler. A non-positive interval falls back to DefaultInterval.
func NewScheduler(clock Clock, interval time.Duration) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		clock:     clock,
		interval:  interval,
		inflight:  make(map[Token]struct{}),
		cancelled: make(map[Token]struct{}),
	}
}

// Clock returns the clock used to place timers.
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// Interval returns the frame period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// RequestFrame runs fn once on the next frame. Callbacks requested from inside
// a frame callback run on the following frame, never the current one.
func (s *Scheduler) RequestFrame(fn func(now time.Time)) Token {
	s.nextID++
	s.frames = append(s.frames, frameEntry{id: s.nextID, fn: fn})
	return s.nextID
}

// After runs fn once d after the scheduler clock's current time.
func (s *Scheduler) After(d time.Duration, fn func()) Token {
	s.nextID++
	s.timers = append(s.timers, timerEntry{id: s.nextID, at: s.clock.Now().Add(d), fn: fn})
	return s.nextID
}

// Cancel removes a pending callback. It reports whether anything was removed.
// A callback cancelled by an earlier callback of the same pump does not run.
// Cancelling a token that already ran is a no-op.
func (s *Scheduler) Cancel(id Token) bool {
	if id == 0 {
		return false
	}
	for i, f := range s.frames {
		if f.id == id {
			s.frames = append(s.frames[:i], s.frames[i+1:]...)
			return true
		}
	}
	for i, t := range s.timers {
		if t.id == id {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return true
		}
	}
	if _, ok := s.inflight[id]; ok {
		delete(s.inflight, id)
		s.cancelled[id] = struct{}{}
		return true
	}
	return false
}

// Pending reports whether any callback is queued.
func (s *Scheduler) Pending() bool {
	return len(s.frames) > 0 || len(s.timers) > 0
}

// Pump runs every timer due at now, then the queued frame callbacks if a frame
// interval has elapsed since the previous frame. It returns how many
// callbacks ran.
func (s *Scheduler) Pump(now time.Time) int {
	ran := 0

	sort.SliceStable(s.timers, func(i, j int) bool {
		return s.timers[i].at.Before(s.timers[j].at)
	})
	due := 0
	for due < len(s.timers) && !s.timers[due].at.After(now) {
		due++
	}
	if due > 0 {
		batch := make([]timerEntry, due)
		copy(batch, s.timers[:due])
		s.timers = append(s.timers[:0], s.timers[due:]...)
		for _, t := range batch {
			s.inflight[t.id] = struct{}{}
		}
		for _, t := range batch {
			if s.consumeCancelled(t.id) {
				continue
			}
			delete(s.inflight, t.id)
			t.fn()
			ran++
		}
	}

	if len(s.frames) == 0 || !s.frameDue(now) {
		return ran
	}
	s.lastFrame = now
	batch := s.frames
	s.frames = nil
	for _, f := range batch {
		s.inflight[f.id] = struct{}{}
	}
	for _, f := range batch {
		if s.consumeCancelled(f.id) {
			continue
		}
		delete(s.inflight, f.id)
		f.fn(now)
		ran++
	}
	return ran
}

// NextWake returns when the scheduler next has work, and false when idle.
func (s *Scheduler) NextWake(now time.Time) (time.Time, bool) {
	var next time.Time
	found := false
	if len(s.frames) > 0 {
		next = s.lastFrame.Add(s.interval)
		if next.Before(now) {
			next = now
		}
		found = true
	}
	for _, t := range s.timers {
		if !found || t.at.Before(next) {
			next = t.at
			found = true
		}
	}
	return next, found
}

func (s *Scheduler) frameDue(now time.Time) bool {
	return s.lastFrame.IsZero() || now.Sub(s.lastFrame) >= s.interval
}

// consumeCancelled reports whether id was cancelled while its batch was in flight.
func (s *Scheduler) consumeCancelled(id Token) bool {
	if _, ok := s.cancelled[id]; ok {
		delete(s.cancelled, id)
		return true
	}
	return false
}
