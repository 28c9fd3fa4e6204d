package telemetry

import (
	"errors"
	"fmt"
	"math"
)

// SeedSize is the number of readings a fresh feed starts with.
const SeedSize = 50

// ErrOutOfRange is returned when a manual submission exceeds MaxSensorTemperature
// or is not a finite number.
var ErrOutOfRange = errors.New("value exceeds realistic sensor range")

// OutOfRangeMessage is what the presenter sees when ErrOutOfRange is returned.
const OutOfRangeMessage = "Error: Value exceeds realistic sensor range."

// Observer is notified after every append, in append order.
type Observer func(Reading)

type Option func(*Feed)

// WithSource overrides the random source.
func WithSource(src Source) Option {
	return func(f *Feed) { f.src = src }
}

// WithClock overrides the clock used to timestamp readings.
func WithClock(c Clock) Option {
	return func(f *Feed) { f.clock = c }
}

// WithObserver registers an append observer.
func WithObserver(o Observer) Option {
	return func(f *Feed) { f.observers = append(f.observers, o) }
}

// Feed is the append-only telemetry table of one session.
// It is not safe for concurrent use; the owning session serialises access.
type Feed struct {
	rows      []Reading
	seeded    bool
	src       Source
	clock     Clock
	observers []Observer
}

func New(opts ...Option) *Feed {
	f := &Feed{}
	for _, opt := range opts {
		opt(f)
	}
	if f.src == nil {
		f.src = NewSource()
	}
	if f.clock == nil {
		f.clock = RealClock{}
	}
	return f
}

// Restore rebuilds a feed from previously persisted rows. Observers are not
// notified for restored rows. A non-empty restore counts as seeded.
func Restore(rows []Reading, opts ...Option) *Feed {
	f := New(opts...)
	f.rows = append(f.rows, rows...)
	f.seeded = len(rows) > 0
	return f
}

// Seed populates the feed with SeedSize synthetic readings sharing one
// timestamp. It runs at most once per feed and reports whether it did.
func (f *Feed) Seed() bool {
	if f.seeded {
		return false
	}
	f.seeded = true

	now := f.clock.Now()
	for i := 0; i < SeedSize; i++ {
		f.append(Reading{
			Latitude:    uniform(f.src, 5.350, 5.360),
			Longitude:   uniform(f.src, 100.29, 100.31),
			Temperature: normal(f.src, 28, 4),
			Humidity:    normal(f.src, 60, 10),
			Time:        now,
			Origin:      OriginSeed,
		})
	}
	return true
}

func (f *Feed) Seeded() bool {
	return f.seeded
}

func (f *Feed) Len() int {
	return len(f.rows)
}

// All returns a copy of the table in append order.
func (f *Feed) All() []Reading {
	out := make([]Reading, len(f.rows))
	copy(out, f.rows)
	return out
}

// SubmitReading validates and appends one manually entered reading.
// On ErrOutOfRange nothing is appended.
func (f *Feed) SubmitReading(temperature float64, location string) (Reading, error) {
	if math.IsNaN(temperature) || math.IsInf(temperature, 0) {
		return Reading{}, fmt.Errorf("%w: %v°C is not a reading", ErrOutOfRange, temperature)
	}
	if temperature > MaxSensorTemperature {
		return Reading{}, fmt.Errorf("%w: %.1f°C > %.0f°C", ErrOutOfRange, temperature, MaxSensorTemperature)
	}

	r := f.append(Reading{
		Latitude:    5.355 + uniform(f.src, -0.005, 0.005),
		Longitude:   ReferenceLon + uniform(f.src, -0.005, 0.005),
		Temperature: temperature,
		Humidity:    FormHumidity,
		Time:        f.clock.Now(),
		Origin:      OriginForm,
		Location:    location,
	})
	return r, nil
}

func (f *Feed) append(r Reading) Reading {
	r.Seq = len(f.rows)
	f.rows = append(f.rows, r)
	for _, o := range f.observers {
		o(r)
	}
	return r
}
