package quote

import (
	"sync"
	"time"

	"github.com/bobmcallan/twindex/internal/models"
)

// Store owns the single current snapshot and the scheduling clock. The
// snapshot's own capture timestamp says how old the numbers are; the
// scheduling clock says when the last refresh attempt finished, success or
// not. The two advance independently and must not be conflated.
//
// All access goes through the mutex; critical sections are field copies only.
type Store struct {
	mu          sync.Mutex
	current     *models.IndexSnapshot
	lastAttempt time.Time

	now func() time.Time // swapped in tests
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Current returns a copy of the current snapshot, or false when no fetch has
// completed yet.
func (s *Store) Current() (models.IndexSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return models.IndexSnapshot{}, false
	}
	return *s.current, true
}

// LastAttempt returns the scheduling clock: the time of the last completed
// refresh attempt. Zero when no attempt has completed.
func (s *Store) LastAttempt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAttempt
}

// Publish atomically replaces the current snapshot and advances the
// scheduling clock.
func (s *Store) Publish(snap models.IndexSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &snap
	s.lastAttempt = s.now()
}

// Reuse keeps the current snapshot after a failed refresh, stamping errMsg
// onto it, provided its capture time is still within the validity window.
// The snapshot's capture timestamp is left untouched; the scheduling clock
// advances so the next attempt is scheduled from now. Returns false when
// there is no snapshot or the window has expired, in which case the caller
// publishes the default instead.
func (s *Store) Reuse(errMsg string, window time.Duration) (models.IndexSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.current == nil || now.Sub(time.Unix(s.current.Timestamp, 0)) >= window {
		return models.IndexSnapshot{}, false
	}

	s.current.Error = errMsg
	s.lastAttempt = now
	return *s.current, true
}
