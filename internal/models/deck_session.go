package models

import "time"

// DeckSession is the durable navigation state of one presenter session.
type DeckSession struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ActiveIndex int       `gorm:"not null;default:0" json:"active_index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides the default pluralization
func (DeckSession) TableName() string {
	return "deck_sessions"
}
