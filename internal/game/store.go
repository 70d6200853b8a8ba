package game

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"log"
	"strings"
	"time"

	"hexquiz/internal/board"
	"hexquiz/internal/frame"
	"hexquiz/internal/quiz"
	"hexquiz/pkg/realtime"
)

// Store holds sessions and delegates to realtime.RoomStore for broadcast and
// frame loops.
type Store struct {
	r        *realtime.RoomStore[*Session]
	board    *board.Board
	bank     *quiz.Bank
	settings Settings
	clock    frame.Clock
	opts     []SessionOption
}

// NewStore creates an in-memory session store. Every session shares b and bank.
func NewStore(b *board.Board, bank *quiz.Bank, settings Settings, opts ...SessionOption) *Store {
	return &Store{
		r:        realtime.NewRoomStore[*Session](),
		board:    b,
		bank:     bank,
		settings: settings,
		clock:    frame.SystemClock{},
		opts:     opts,
	}
}

// SetClock replaces the clock for sessions created afterwards and for frame loops.
func (s *Store) SetClock(c frame.Clock) {
	s.clock = c
	s.r.SetNow(c.Now)
}

// CreateSession initializes a session and registers its broadcaster.
func (s *Store) CreateSession() *Session {
	sess := NewSession(newID(), s.board, s.bank, s.settings, s.clock, s.opts...)
	s.r.Create(sess.ID, sess)
	return sess
}

// GetSession returns a session by ID if it exists, marking it as used.
func (s *Store) GetSession(id string) (*Session, bool) {
	room, ok := s.r.Get(id)
	if !ok {
		return nil, false
	}
	s.r.Touch(id)
	return room.State, true
}

// Len reports how many sessions are live.
func (s *Store) Len() int { return s.r.Len() }

// Broadcaster returns the event broadcaster for a session.
func (s *Store) Broadcaster(id string) (*realtime.Broadcaster, bool) {
	return s.r.Broadcaster(id)
}

// Publish notifies subscribers of a session update with a typed event.
func (s *Store) Publish(id string, kind string) {
	s.r.Publish(id, kind)
}

// EnsureFrameLoop starts the session's frame loop, or wakes it if it is
// already running. The loop stops once the session has nothing scheduled.
func (s *Store) EnsureFrameLoop(id string) {
	s.r.RunLoop(id, func(sess *Session, now time.Time) (time.Time, []string, bool) {
		return sess.Tick(now)
	})
}

// WakeFrameLoop unblocks the frame loop so it recomputes immediately.
func (s *Store) WakeFrameLoop(id string) {
	s.r.Wake(id)
}

// Remove tears a session down and drops it.
func (s *Store) Remove(id string) bool {
	if sess, ok := s.GetSession(id); ok {
		sess.Teardown()
	}
	return s.r.Delete(id)
}

// Janitor removes sessions idle for longer than idle, checking every interval
// until ctx is done.
func (s *Store) Janitor(ctx context.Context, idle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range s.r.Sweep(idle) {
				log.Printf("session expired id=%s", id)
			}
		}
	}
}

func newID() string {
	// 10 bytes -> 16 chars of base32, short and url-safe.
	buf := make([]byte, 10)
	_, _ = rand.Read(buf)
	encoder := base32.StdEncoding.WithPadding(base32.NoPadding)
	return strings.ToLower(encoder.EncodeToString(buf))
}
