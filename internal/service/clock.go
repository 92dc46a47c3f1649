package service

import "time"

// Clock abstracts "now" so date-sensitive logic (streak transitions, today's
// plan) is deterministically testable without real time passing.
type Clock interface {
	Now() time.Time
}

// systemClock is the production Clock backed by the wall clock.
type systemClock struct{}

// NewSystemClock returns a Clock that reads the real wall clock.
func NewSystemClock() Clock {
	return systemClock{}
}

// Now implements Clock.
func (systemClock) Now() time.Time {
	return time.Now().UTC()
}
