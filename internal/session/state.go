package session

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"microcasa/internal/models"
	"microcasa/internal/telemetry"
)

var ErrUnknownSession = errors.New("unknown session")

// StateManager persists sessions so they survive a restart of the server
// (when the database itself is durable).
type StateManager struct {
	db *gorm.DB
}

func NewStateManager(db *gorm.DB) *StateManager {
	return &StateManager{db: db}
}

// Create stores a new session together with its seed rows.
func (sm *StateManager) Create(id string, index int, rows []telemetry.Reading) error {
	return sm.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.DeckSession{ID: id, ActiveIndex: index}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		recs := make([]models.SensorReading, len(rows))
		for i, r := range rows {
			recs[i] = toModel(id, r)
		}
		return tx.CreateInBatches(recs, 100).Error
	})
}

// Load reads back the active index and the table in append order.
func (sm *StateManager) Load(id string) (int, []telemetry.Reading, error) {
	var sess models.DeckSession
	if err := sm.db.First(&sess, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, ErrUnknownSession
		}
		return 0, nil, err
	}

	var recs []models.SensorReading
	if err := sm.db.Where("session_id = ?", id).Order("seq asc").Find(&recs).Error; err != nil {
		return 0, nil, err
	}

	rows := make([]telemetry.Reading, len(recs))
	for i, rec := range recs {
		rows[i] = fromModel(rec)
	}
	return sess.ActiveIndex, rows, nil
}

// UpdateIndex is called every time the session moves to another slide.
func (sm *StateManager) UpdateIndex(id string, index int) error {
	res := sm.db.Model(&models.DeckSession{ID: id}).Update("active_index", index)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return nil
}

// Delete removes a session and its table.
func (sm *StateManager) Delete(id string) error {
	return sm.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&models.SensorReading{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.DeckSession{ID: id}).Error
	})
}

// AppendReading writes one row. Re-writing an existing (session, seq) is a no-op.
func (sm *StateManager) AppendReading(id string, r telemetry.Reading) error {
	rec := toModel(id, r)
	return sm.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "seq"}},
		DoNothing: true,
	}).Create(&rec).Error
}

func toModel(id string, r telemetry.Reading) models.SensorReading {
	return models.SensorReading{
		SessionID:   id,
		Seq:         r.Seq,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		RecordedAt:  r.Time,
		Origin:      string(r.Origin),
		Location:    r.Location,
	}
}

func fromModel(rec models.SensorReading) telemetry.Reading {
	return telemetry.Reading{
		Seq:         rec.Seq,
		Latitude:    rec.Latitude,
		Longitude:   rec.Longitude,
		Temperature: rec.Temperature,
		Humidity:    rec.Humidity,
		Time:        rec.RecordedAt,
		Origin:      telemetry.Origin(rec.Origin),
		Location:    rec.Location,
	}
}
