// Package session ties one presenter's deck cursor and telemetry table
// together and keeps them alive across requests.
package session

import (
	"sync"
	"time"

	"microcasa/internal/deck"
	"microcasa/internal/metrics"
	"microcasa/internal/telemetry"
)

// SlideFactory builds the slide renderers of a session. Renderers close over
// the session so they can read its feed and last interactions.
type SlideFactory func(s *Session) []deck.Slide

// Submission is the outcome of the last manual form submission.
type Submission struct {
	Temperature float64
	Location    string
	Reading     telemetry.Reading
	Err         error
}

func (s *Submission) OK() bool {
	return s != nil && s.Err == nil
}

// Session is the state of one presenter. Callers hold Lock for the duration
// of an operation; the deck and feed are not safe for concurrent use.
type Session struct {
	ID   string
	Deck *deck.Deck
	Feed *telemetry.Feed

	// Presentation state of the last interactions. Not persisted.
	LastBurst      []telemetry.Step
	BurstLog       []string
	LastSubmission *Submission

	mu         sync.Mutex
	lastSeen   time.Time // guarded by Manager.mu
	record     func(telemetry.Reading)
	onNavigate func(index int)
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Navigate applies a deck transition and persists the new index if it moved.
func (s *Session) Navigate(action string, move func(*deck.Deck) bool) bool {
	if !move(s.Deck) {
		return false
	}
	metrics.Navigations.WithLabelValues(action).Inc()
	if s.onNavigate != nil {
		s.onNavigate(s.Deck.Active())
	}
	return true
}

// Simulate runs one burst to completion. reveal sees each step together
// with the serial log accumulated so far.
func (s *Session) Simulate(p telemetry.Pacer, pace time.Duration, reveal func(telemetry.Step, []string)) []telemetry.Step {
	start := time.Now()
	defer func() { metrics.BurstDuration.Observe(time.Since(start).Seconds()) }()

	b := s.BeginBurst()
	return b.Run(p, pace, func(step telemetry.Step) {
		s.track(b, step)
		if reveal != nil {
			reveal(step, s.BurstLog)
		}
	})
}

// BeginBurst starts a burst the caller drives itself with AdvanceBurst.
func (s *Session) BeginBurst() *telemetry.Burst {
	b := s.Feed.SimulateBurst()
	s.BurstLog = b.Log()
	s.LastBurst = nil
	return b
}

// AdvanceBurst appends the next reading of b. ok is false once b is done.
func (s *Session) AdvanceBurst(b *telemetry.Burst) (telemetry.Step, bool) {
	step, ok := b.Next()
	if ok {
		s.track(b, step)
	}
	return step, ok
}

func (s *Session) track(b *telemetry.Burst, step telemetry.Step) {
	s.BurstLog = b.Log()
	s.LastBurst = append(s.LastBurst, step)
}

// Submit validates and appends a manual reading and remembers the outcome.
func (s *Session) Submit(temperature float64, location string) (telemetry.Reading, error) {
	r, err := s.Feed.SubmitReading(temperature, location)
	s.LastSubmission = &Submission{Temperature: temperature, Location: location, Reading: r, Err: err}
	if err != nil {
		metrics.Submissions.WithLabelValues("rejected").Inc()
		return r, err
	}
	metrics.Submissions.WithLabelValues("accepted").Inc()
	return r, nil
}

func (s *Session) observe(r telemetry.Reading) {
	metrics.ReadingsAppended.WithLabelValues(string(r.Origin)).Inc()
	if s.record != nil {
		s.record(r)
	}
}
