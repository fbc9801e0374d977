// Package clock abstracts wall-clock access so lock-boundary logic can be
// tested with injected instants.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns a Clock backed by time.Now.
func System() Clock { return systemClock{} }

// Fixed is a Clock pinned to a settable instant, for tests.
type Fixed struct {
	Instant time.Time
}

// NewFixed returns a Fixed clock pinned to t.
func NewFixed(t time.Time) *Fixed { return &Fixed{Instant: t} }

// Now returns the pinned instant.
func (f *Fixed) Now() time.Time { return f.Instant }

// Set moves the pinned instant.
func (f *Fixed) Set(t time.Time) { f.Instant = t }
