package telemetry

import (
	"fmt"
	"time"
)

// Reference coordinate of the synthetic sensor field (USM Penang).
const (
	ReferenceLat = 5.356
	ReferenceLon = 100.30
)

const (
	// AlertThreshold is the temperature (°C) at which a burst reading is flagged.
	AlertThreshold = 30.0
	// CriticalThreshold is the line drawn on the temperature trend chart.
	CriticalThreshold = 35.0
	// MaxSensorTemperature is the highest value a manual submission may carry.
	MaxSensorTemperature = 50.0
	// FormHumidity is the fixed humidity stamped on manual submissions.
	FormHumidity = 60.0
)

// Origin records which producer appended a reading.
type Origin string

const (
	OriginSeed  Origin = "seed"
	OriginBurst Origin = "burst"
	OriginForm  Origin = "form"
)

// Reading is one row of the telemetry table. Rows are never mutated once appended.
type Reading struct {
	Seq         int       `json:"seq"`
	Latitude    float64   `json:"lat"`
	Longitude   float64   `json:"lon"`
	Temperature float64   `json:"temp"`
	Humidity    float64   `json:"humidity"`
	Time        time.Time `json:"time"`
	Origin      Origin    `json:"origin"`
	Location    string    `json:"location,omitempty"`
}

// Geo formats the coordinates the way the register panel shows them.
func (r Reading) Geo() string {
	return fmt.Sprintf("%.4f, %.4f", r.Latitude, r.Longitude)
}

// Status is the display classification of a burst reading. It is not stored.
type Status string

const (
	StatusNormal Status = "NORMAL"
	StatusAlert  Status = "ALERT"
)

// Classify returns ALERT when temp >= AlertThreshold.
func Classify(temp float64) Status {
	if temp >= AlertThreshold {
		return StatusAlert
	}
	return StatusNormal
}
