package models

import "time"

// SensorReading is one appended telemetry row. Rows are insert-only.
type SensorReading struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	SessionID   string    `gorm:"size:36;not null;uniqueIndex:idx_session_seq" json:"session_id"`
	Seq         int       `gorm:"not null;uniqueIndex:idx_session_seq" json:"seq"`
	Latitude    float64   `json:"lat"`
	Longitude   float64   `json:"lon"`
	Temperature float64   `json:"temp"`
	Humidity    float64   `json:"humidity"`
	RecordedAt  time.Time `gorm:"index" json:"time"`
	Origin      string    `gorm:"size:10" json:"origin"` // seed, burst or form
	Location    string    `json:"location,omitempty"`
}
