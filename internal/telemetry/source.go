package telemetry

import (
	"math"
	"math/rand"
	"time"
)

// Source is the randomness a feed draws from. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	NormFloat64() float64
}

// NewSource returns a time-seeded generator. It is not safe for concurrent use;
// each feed owns its own.
func NewSource() Source {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// uniform samples [lo, hi).
func uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

func normal(src Source, mean, spread float64) float64 {
	return mean + src.NormFloat64()*spread
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
