package realtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Room holds state and a broadcaster for one room.
type Room[T any] struct {
	ID      string
	State   T
	hub     *Broadcaster
	touched atomic.Int64 // unix nanos of the last Touch
}

// Hub returns the room's broadcaster.
func (r *Room[T]) Hub() *Broadcaster { return r.hub }

// RoomStore manages rooms, their broadcasters and their timing loops.
type RoomStore[T any] struct {
	mu    sync.RWMutex
	rooms map[string]*Room[T]

	// loopMu orders loop registration against a loop's stop decision, so a
	// RunLoop racing a stopping loop either wakes it before it decides or
	// starts a new one after it has gone.
	loopMu sync.Mutex
	loops  map[string]*loop

	now func() time.Time
}

type loop struct {
	cancel context.CancelFunc
	wake   chan struct{}
}

// NewRoomStore creates an empty room store.
func NewRoomStore[T any]() *RoomStore[T] {
	return &RoomStore[T]{
		rooms: make(map[string]*Room[T]),
		loops: make(map[string]*loop),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetNow replaces the clock used for ticks and idle tracking.
func (s *RoomStore[T]) SetNow(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *RoomStore[T]) clock() time.Time {
	s.mu.RLock()
	now := s.now
	s.mu.RUnlock()
	return now()
}

// Create adds a room with the given id and state, and a new Broadcaster.
func (s *RoomStore[T]) Create(id string, state T) *Room[T] {
	r := &Room[T]{ID: id, State: state, hub: NewBroadcaster()}
	r.touched.Store(s.clock().UnixNano())
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.rooms[id]; ok {
		old.hub.Close()
	}
	s.rooms[id] = r
	return r
}

// Get returns the room by ID if it exists.
func (s *RoomStore[T]) Get(id string) (*Room[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	return r, ok
}

// Touch marks the room as used now.
func (s *RoomStore[T]) Touch(id string) {
	if r, ok := s.Get(id); ok {
		r.touched.Store(s.clock().UnixNano())
	}
}

// Len reports the number of rooms.
func (s *RoomStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Delete removes a room, stops its loop and closes its subscribers.
func (s *RoomStore[T]) Delete(id string) bool {
	s.mu.Lock()
	r, ok := s.rooms[id]
	delete(s.rooms, id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.loopMu.Lock()
	if l, running := s.loops[id]; running {
		l.cancel()
		delete(s.loops, id)
	}
	s.loopMu.Unlock()
	r.hub.Close()
	return true
}

// Sweep deletes rooms untouched for longer than idle and returns their ids.
func (s *RoomStore[T]) Sweep(idle time.Duration) []string {
	cutoff := s.clock().Add(-idle).UnixNano()
	s.mu.RLock()
	var stale []string
	for id, r := range s.rooms {
		if r.touched.Load() < cutoff {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()
	for _, id := range stale {
		s.Delete(id)
	}
	return stale
}

// Publish notifies subscribers of the room's broadcaster.
func (s *RoomStore[T]) Publish(id string, kind string) {
	if hub, ok := s.Broadcaster(id); ok {
		hub.Publish(kind)
	}
}

// Broadcaster returns the broadcaster for the room.
func (s *RoomStore[T]) Broadcaster(id string) (*Broadcaster, bool) {
	r, ok := s.Get(id)
	if !ok {
		return nil, false
	}
	return r.hub, true
}

// TickFunc is called by RunLoop to determine the next wake time and events to publish.
// stop true means exit the loop.
type TickFunc[T any] func(state T, now time.Time) (next time.Time, events []string, stop bool)

// RunLoop starts a timing loop for the room and reports whether it started one.
// If a loop is already running it is woken instead, so state changed before
// the call is always seen by a tick.
func (s *RoomStore[T]) RunLoop(id string, tick TickFunc[T]) bool {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()
	if l, ok := s.loops[id]; ok {
		l.signal()
		return false
	}
	if _, ok := s.Get(id); !ok {
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &loop{cancel: cancel, wake: make(chan struct{}, 1)}
	s.loops[id] = l
	go s.run(ctx, id, l, tick)
	return true
}

func (s *RoomStore[T]) run(ctx context.Context, id string, l *loop, tick TickFunc[T]) {
	defer l.cancel()
	for {
		next, events, stop := s.step(id, l, tick)
		// Publish before waiting so clients see the state the tick produced.
		for _, e := range events {
			s.Publish(id, e)
		}
		if stop {
			return
		}
		wait := next.Sub(s.clock())
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		case <-l.wake:
			timer.Stop()
		}
	}
}

// step runs one tick under loopMu and deregisters the loop in the same
// critical section when the tick asks to stop.
func (s *RoomStore[T]) step(id string, l *loop, tick TickFunc[T]) (time.Time, []string, bool) {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()
	if s.loops[id] != l {
		return time.Time{}, nil, true
	}
	r, ok := s.Get(id)
	if !ok {
		delete(s.loops, id)
		return time.Time{}, nil, true
	}
	next, events, stop := tick(r.State, s.clock())
	if stop {
		delete(s.loops, id)
	}
	return next, events, stop
}

// Running reports whether a loop is registered for the room.
func (s *RoomStore[T]) Running(id string) bool {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()
	_, ok := s.loops[id]
	return ok
}

// Wake unblocks the room's loop so it recomputes immediately.
func (s *RoomStore[T]) Wake(id string) {
	s.loopMu.Lock()
	l, ok := s.loops[id]
	s.loopMu.Unlock()
	if ok {
		l.signal()
	}
}

func (l *loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
