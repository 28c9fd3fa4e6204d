package telemetry

import (
	"bytes"
	"encoding/csv"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)

// newTestFeed returns a deterministic feed whose clock ticks one second per read.
func newTestFeed(opts ...Option) *Feed {
	base := []Option{
		WithSource(rand.New(rand.NewSource(42))),
		WithClock(&MockClock{MockTime: anchor, Step: time.Second}),
	}
	return New(append(base, opts...)...)
}

func TestSeed(t *testing.T) {
	f := newTestFeed()

	require.True(t, f.Seed())
	rows := f.All()
	require.Len(t, rows, SeedSize)

	for i, r := range rows {
		assert.Equal(t, i, r.Seq)
		assert.Equal(t, anchor, r.Time, "all seed rows share one timestamp")
		assert.Equal(t, OriginSeed, r.Origin)
		assert.GreaterOrEqual(t, r.Latitude, 5.350)
		assert.LessOrEqual(t, r.Latitude, 5.360)
		assert.GreaterOrEqual(t, r.Longitude, 100.29)
		assert.LessOrEqual(t, r.Longitude, 100.31)
	}
}

func TestSeed_OnlyOnce(t *testing.T) {
	f := newTestFeed()
	require.True(t, f.Seed())
	assert.False(t, f.Seed())
	assert.Equal(t, SeedSize, f.Len())
}

func TestSeed_NormalSpread(t *testing.T) {
	f := New(WithSource(rand.New(rand.NewSource(7))))
	f.Seed()

	var tempSum, humidSum float64
	for _, r := range f.All() {
		tempSum += r.Temperature
		humidSum += r.Humidity
	}
	// Means of 50 draws stay well within a few standard errors of 28 and 60.
	assert.InDelta(t, 28, tempSum/SeedSize, 2.5)
	assert.InDelta(t, 60, humidSum/SeedSize, 6)
}

func TestSubmitReading(t *testing.T) {
	tests := []struct {
		name    string
		temp    float64
		wantErr bool
	}{
		{"Typical Reading", 32.5, false},
		{"Upper Bound Accepted", 50, false},
		{"Negative Accepted", -4, false},
		{"Just Above Bound", 50.1, true},
		{"Way Out Of Range", 51, true},
		{"NaN Rejected", math.NaN(), true},
		{"Positive Infinity Rejected", math.Inf(1), true},
		{"Negative Infinity Rejected", math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFeed()
			f.Seed()
			before := f.Len()

			r, err := f.SubmitReading(tt.temp, "Sector 7")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrOutOfRange))
				assert.Equal(t, before, f.Len(), "rejected submission must not append")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, before+1, f.Len())
			assert.InDelta(t, 5.355, r.Latitude, 0.005)
			assert.InDelta(t, ReferenceLon, r.Longitude, 0.005)
			assert.Equal(t, FormHumidity, r.Humidity)
			assert.Equal(t, tt.temp, r.Temperature)
			assert.Equal(t, "Sector 7", r.Location)
			assert.Equal(t, OriginForm, r.Origin)
			assert.Equal(t, r, f.All()[before])
		})
	}
}

func TestObserversSeeEveryAppend(t *testing.T) {
	var seen []Reading
	f := newTestFeed(WithObserver(func(r Reading) { seen = append(seen, r) }))

	f.Seed()
	f.SimulateBurst().Run(NoPacer{}, 0, nil)
	_, err := f.SubmitReading(99, "rejected")
	require.Error(t, err)

	assert.Equal(t, f.All(), seen)
}

func TestRestore(t *testing.T) {
	src := newTestFeed()
	src.Seed()
	rows := src.All()

	var notified int
	f := Restore(rows, WithObserver(func(Reading) { notified++ }))
	assert.True(t, f.Seeded())
	assert.False(t, f.Seed(), "restored feed must not reseed")
	assert.Equal(t, rows, f.All())
	assert.Zero(t, notified)

	r, err := f.SubmitReading(30, "")
	require.NoError(t, err)
	assert.Equal(t, SeedSize, r.Seq)

	empty := Restore(nil)
	assert.False(t, empty.Seeded())
}

func TestAllIsACopy(t *testing.T) {
	f := newTestFeed()
	f.Seed()
	rows := f.All()
	rows[0].Temperature = 999

	assert.NotEqual(t, 999.0, f.All()[0].Temperature)
}

func TestFullSessionTable(t *testing.T) {
	f := newTestFeed()
	f.Seed()
	seeded := f.All()

	f.SimulateBurst().Run(NoPacer{}, 0, nil)
	_, err := f.SubmitReading(32.5, "Sector 7")
	require.NoError(t, err)

	rows := f.All()
	require.Len(t, rows, 56)
	assert.Equal(t, seeded, rows[:SeedSize], "earlier rows are never mutated")
	for i, r := range rows {
		assert.Equal(t, i, r.Seq)
	}
	assert.Equal(t, OriginBurst, rows[50].Origin)
	assert.Equal(t, OriginForm, rows[55].Origin)
}

func TestWriteCSV(t *testing.T) {
	f := newTestFeed()
	f.Seed()
	_, err := f.SubmitReading(32.5, "Sector 7")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, f.All()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, SeedSize+2)
	assert.Equal(t, csvHeader, records[0])
	last := records[len(records)-1]
	assert.Equal(t, "32.50", last[3])
	assert.Equal(t, "form", last[6])
	assert.Equal(t, "Sector 7", last[7])
}
