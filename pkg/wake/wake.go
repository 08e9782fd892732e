// Package wake provides a single-slot, coalescing notification used to wake
// the status loop ahead of its next scheduled render.
package wake

import "context"

// Signal is a coalescing wake-up flag. Any number of Raise calls made before
// the consumer receives collapse into one pending wake.
type Signal struct {
	ch chan struct{}
}

// New returns a Signal with no pending wake.
func New() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Raise marks a wake as pending without blocking. It reports whether this call
// buffered a new wake; false means one was already pending.
func (s *Signal) Raise() bool {
	select {
	case s.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Wait blocks until a wake is pending, consumes it and returns nil. A wake
// raised before Wait was called is returned immediately.
func (s *Signal) Wait(ctx context.Context) error {
	select {
	case <-s.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// C exposes the receive side so callers can race the signal against timers
// in a select. A receive on C consumes the pending wake.
func (s *Signal) C() <-chan struct{} {
	return s.ch
}

// Pending reports whether a wake is buffered. It is only a hint, the value
// may change as soon as it is returned.
func (s *Signal) Pending() bool {
	return len(s.ch) > 0
}
