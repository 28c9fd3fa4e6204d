package telemetry

import (
	"fmt"
	"time"
)

const (
	// BurstSize is the number of readings one simulation run produces.
	BurstSize = 5
	// DefaultBurstPace is the delay between two revealed readings.
	DefaultBurstPace = 800 * time.Millisecond
	// RegisterAddress is the I2C address shown on the register panel.
	RegisterAddress = "0x3F"
)

// BootLog opens every serial monitor session.
var BootLog = []string{"[BOOT] ESP32 Initialized...", "[WIFI] Connected!"}

// Step is one revealed reading of a burst.
type Step struct {
	Index   int     `json:"index"`
	Reading Reading `json:"reading"`
	Status  Status  `json:"status"`
	Line    string  `json:"line"`
}

// Burst generates BurstSize readings one at a time. Each call to Next appends
// to the feed before returning, so the caller can reveal the reading before
// asking for the next one.
type Burst struct {
	feed     *Feed
	produced int
	log      []string
}

// SimulateBurst starts a new burst on the feed.
func (f *Feed) SimulateBurst() *Burst {
	return &Burst{
		feed: f,
		log:  append([]string(nil), BootLog...),
	}
}

// Next generates and appends the next reading. ok is false once the burst is done.
func (b *Burst) Next() (Step, bool) {
	if b.Done() {
		return Step{}, false
	}
	f := b.feed

	temp := round(uniform(f.src, 25.0, 34.0), 1)
	humid := round(uniform(f.src, 50, 80), 1)
	lat := round(5.35+uniform(f.src, -0.01, 0.01), 4)
	lon := round(ReferenceLon+uniform(f.src, -0.01, 0.01), 4)

	r := f.append(Reading{
		Latitude:    lat,
		Longitude:   lon,
		Temperature: temp,
		Humidity:    humid,
		Time:        f.clock.Now(),
		Origin:      OriginBurst,
	})

	status := Classify(temp)
	line := fmt.Sprintf("[%s] T:%.1fC H:%.1f%% -> %s", r.Time.Format("15:04:05"), temp, humid, status)
	b.log = append(b.log, line)

	step := Step{Index: b.produced, Reading: r, Status: status, Line: line}
	b.produced++
	return step, true
}

func (b *Burst) Done() bool {
	return b.produced >= BurstSize
}

// Log returns the serial monitor lines so far, boot lines included.
func (b *Burst) Log() []string {
	return append([]string(nil), b.log...)
}

// Run drives the burst to completion, calling reveal after each reading and
// pausing between readings. There is no cancellation: a started burst always
// appends BurstSize readings.
func (b *Burst) Run(p Pacer, pace time.Duration, reveal func(Step)) []Step {
	var steps []Step
	for {
		step, ok := b.Next()
		if !ok {
			return steps
		}
		steps = append(steps, step)
		if reveal != nil {
			reveal(step)
		}
		if !b.Done() {
			p.Pause(pace)
		}
	}
}
