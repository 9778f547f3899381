package timex

import (
	"sync"
	"time"
)

// Clock is the time source used by the scheduler, the sampler and the step
// executor. Sleep blocks the caller; there is no cancellation.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// System is the wall clock. Now carries a monotonic reading.
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// Manual is a clock that only moves when told to. Sleep advances it.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

// NewManual returns a manual clock starting at start.
func NewManual(start time.Time) *Manual { return &Manual{now: start} }

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Sleep(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slept = append(m.slept, d)
	if d > 0 {
		m.now = m.now.Add(d)
	}
}

// Advance moves the clock forward without recording a sleep.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Slept returns the recorded Sleep durations.
func (m *Manual) Slept() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.slept...)
}

// Total is the sum of recorded sleeps.
func (m *Manual) Total() time.Duration {
	var t time.Duration
	for _, d := range m.Slept() {
		t += d
	}
	return t
}
