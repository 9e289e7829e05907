package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrinvalidTurn rejections from Append.
var (
	ErrEmptyRole    = errors.New("session: turn has empty role")
	ErrEmptyContent = errors.New("session: turn has empty content")
)

// Session owns one interactive session's state. The turn log is append-only
// except for Clear, which atomically empties it. Connection state is written
// only by the orchestration layer in response to explicit probes. Safe for
// concurrent use.
type Session struct {
	id      string
	started time.Time
	now     func() time.Time

	mu    sync.Mutex
	conn  ConnectionState
	turns []Turn
}

// New creates an empty Session with a fresh ID.
func New() *Session {
	return &Session{
		id:      uuid.NewString(),
		started: time.Now(),
		now:     time.Now,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// StartedAt returns when the session was created.
func (s *Session) StartedAt() time.Time {
	return s.started
}

// Append adds a turn to the end of the log. If the turn's timestamp is
// zero it is stamped with the current time. The only validation is
// non-empty role and content.
func (s *Session) Append(t Turn) error {
	if t.Role == "" {
		return ErrEmptyRole
	}
	if t.Content == "" {
		return ErrEmptyContent
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, t)
	return nil
}

// Clear atomically empties the turn log. Connection state is untouched.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}

// Turns returns a copy of the log in append order.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns in the log.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// Stats derives the log summary from the current turns. Nothing is cached:
// the log can be cleared or appended between calls and a status display
// must never show stale counts.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{TotalTurns: len(s.turns)}
	for _, t := range s.turns {
		if t.Role == RoleUser {
			st.UserTurns++
		}
	}
	if len(s.turns) > 0 {
		st.HasTurns = true
		st.LastTurnAge = s.now().Sub(s.turns[len(s.turns)-1].Timestamp)
	}
	return st
}

// SetConnection records the result of a liveness probe.
func (s *Session) SetConnection(c ConnectionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = c
}

// Connection returns the last recorded connection state.
func (s *Session) Connection() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}
