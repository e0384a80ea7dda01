package clock

import "time"

// Clock allows injecting time into services.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by time.Now.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

type fixedClock struct {
	now time.Time
}

// NewFixed returns a clock that always reports the same instant (useful for tests).
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t.UTC()}
}

func (f fixedClock) Now() time.Time {
	return f.now
}

// NewStepped returns a clock that starts at t and advances by step on
// every Now call. Handy for tests that need distinct order timestamps.
func NewStepped(t time.Time, step time.Duration) Clock {
	return &steppedClock{now: t.UTC(), step: step}
}

type steppedClock struct {
	now  time.Time
	step time.Duration
}

func (s *steppedClock) Now() time.Time {
	t := s.now
	s.now = s.now.Add(s.step)
	return t
}
