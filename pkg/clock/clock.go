package clock

import "time"

// Clock abstracts wall-clock access so time-derived status transitions
// can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// New returns a Clock backed by time.Now.
func New() Clock {
	return systemClock{}
}

// Fixed is a Clock pinned to a settable instant. Not safe for
// concurrent mutation; intended for tests.
type Fixed struct {
	Instant time.Time
}

func (f *Fixed) Now() time.Time { return f.Instant }

// Advance moves the fixed clock forward.
func (f *Fixed) Advance(d time.Duration) {
	f.Instant = f.Instant.Add(d)
}
