// Package debounce coalesces bursts of calls into a single delayed action.
package debounce

import (
	"sync"
	"time"
)

// Timer is the subset of *time.Timer the scheduler needs.
type Timer interface {
	Stop() bool
}

// AfterFunc starts a timer that calls f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithAfterFunc replaces the timer source (tests use a manual clock).
func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Scheduler) { s.afterFunc = fn }
}

// Scheduler holds at most one pending action. Scheduling a new action
// cancels the previous one.
type Scheduler struct {
	mu        sync.Mutex
	timer     Timer
	gen       uint64
	stopped   bool
	afterFunc AfterFunc
}

// New creates a scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{afterFunc: realAfterFunc}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Schedule cancels any pending action and runs action after delay, unless
// Schedule, Cancel or Stop is called first.
func (s *Scheduler) Schedule(action func(), delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.cancelLocked()
	gen := s.gen
	s.timer = s.afterFunc(delay, func() {
		s.mu.Lock()
		// A timer that fired while being replaced must not run.
		if s.gen != gen || s.stopped {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		action()
	})
}

// Cancel discards the pending action, if any.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

// Pending reports whether an action is waiting to fire.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Stop cancels the pending action and rejects future schedules.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.stopped = true
}

func (s *Scheduler) cancelLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
