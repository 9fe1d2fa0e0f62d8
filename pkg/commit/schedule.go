package commit

import (
	"sync"
	"time"
)

// DefaultNavigateDelay is how long a navigation waits before firing.
const DefaultNavigateDelay = time.Second

// Scheduler runs at most one delayed navigation at a time.
type Scheduler struct {
	delay    time.Duration
	navigate func(url string)

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	gen     uint64 // bumped on every schedule and cancel
	closed  bool
}

// NewScheduler creates a Scheduler that calls navigate delay after each
// Schedule. A non-positive delay uses DefaultNavigateDelay.
func NewScheduler(delay time.Duration, navigate func(url string)) *Scheduler {
	if delay <= 0 {
		delay = DefaultNavigateDelay
	}
	return &Scheduler{delay: delay, navigate: navigate}
}

// Schedule arranges for url to be navigated to after the delay, replacing
// any navigation still pending.
func (s *Scheduler) Schedule(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.stopLocked()

	s.gen++
	gen := s.gen
	s.pending = url
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
	return nil
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		// Superseded after the timer had already fired.
		s.mu.Unlock()
		return
	}
	url := s.pending
	s.pending = ""
	s.timer = nil
	s.mu.Unlock()

	s.navigate(url)
}

// Pending returns the URL waiting to be navigated to, if any.
func (s *Scheduler) Pending() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, s.timer != nil
}

// Cancel drops the pending navigation. It reports whether one was pending.
func (s *Scheduler) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

// Close cancels the pending navigation and rejects later Schedule calls.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.closed = true
}

func (s *Scheduler) stopLocked() bool {
	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	s.pending = ""
	s.gen++
	return true
}
