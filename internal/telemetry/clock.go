package telemetry

import "time"

// Clock defines an interface for getting the current time.
// This allows us to inject a fake time during unit tests.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the actual server system time.
type RealClock struct{}

func (c RealClock) Now() time.Time {
	return time.Now()
}

// MockClock implements Clock for testing specific scenarios.
// Every call advances the clock by Step so bursts get distinct timestamps.
type MockClock struct {
	MockTime time.Time
	Step     time.Duration
}

func (m *MockClock) Now() time.Time {
	now := m.MockTime
	m.MockTime = m.MockTime.Add(m.Step)
	return now
}

// ---------------------------------------------------------
// Pacing
// ---------------------------------------------------------

// Pacer controls the delay between two steps of a burst.
// The delay is cosmetic: tests swap in a pacer that never sleeps.
type Pacer interface {
	Pause(d time.Duration)
}

// SleepPacer blocks the calling goroutine for the full duration.
type SleepPacer struct{}

func (SleepPacer) Pause(d time.Duration) {
	time.Sleep(d)
}

// NoPacer returns immediately.
type NoPacer struct{}

func (NoPacer) Pause(time.Duration) {}
