// Package session holds the mutable state of a single harvest run.
//
// A Session is created at run start and owned by that run: the harvest worker is the
// only writer of its counters, while Cancel may be called from any goroutine.
package session

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Session tracks the per-run event cap, collected events, language model token usage
// and the cancellation flag
type Session struct {
	ID string

	cap             int
	eventsCollected int
	tokensUsed      int

	cancelled atomic.Bool
	done      chan struct{}
	once      sync.Once
}

// New creates a session with the given event cap. A cap below zero is treated as zero.
func New(cap int) *Session {
	if cap < 0 {
		cap = 0
	}
	return &Session{
		ID:   uuid.NewString(),
		cap:  cap,
		done: make(chan struct{}),
	}
}

// Cap returns the maximum number of events the run may resolve
func (s *Session) Cap() int {
	return s.cap
}

// EventsCollected returns the number of rows reserved for enrichment so far
func (s *Session) EventsCollected() int {
	return s.eventsCollected
}

// TokensUsed returns the cumulative language model tokens reported for this run
func (s *Session) TokensUsed() int {
	return s.tokensUsed
}

// Reserve claims a slot for one qualifying row. It returns false, leaving the counter
// unchanged, when the cap has already been reached.
func (s *Session) Reserve() bool {
	if s.eventsCollected >= s.cap {
		return false
	}
	s.eventsCollected++
	return true
}

// Release gives back a slot claimed by Reserve for a row that was dropped
func (s *Session) Release() {
	if s.eventsCollected > 0 {
		s.eventsCollected--
	}
}

// CapReached reports whether no further rows may be resolved
func (s *Session) CapReached() bool {
	return s.eventsCollected >= s.cap
}

// AddTokens adds a language model call's total token usage
func (s *Session) AddTokens(n int) {
	if n > 0 {
		s.tokensUsed += n
	}
}

// Cancel requests the run to stop. Safe to call more than once and from any goroutine.
func (s *Session) Cancel() {
	s.once.Do(func() {
		s.cancelled.Store(true)
		close(s.done)
	})
}

// Cancelled reports whether Cancel has been called
func (s *Session) Cancelled() bool {
	return s.cancelled.Load()
}

// Done returns a channel that is closed when the session is cancelled
func (s *Session) Done() <-chan struct{} {
	return s.done
}
