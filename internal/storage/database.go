package storage

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/bjo0vj/zalo-image-bot/internal/models"
)

// DatabaseStore persists the session as a single row in PostgreSQL
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed session store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (d *DatabaseStore) LoadSession() (*models.CountingSession, error) {
	var record models.SessionRecord
	err := d.db.Order("id").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewCountingSession(), nil
		}
		log.Printf("⚠️  Could not load session row, using default state: %v", err)
		return models.NewCountingSession(), nil
	}
	return record.ToSession(), nil
}

func (d *DatabaseStore) SaveSession(session *models.CountingSession) error {
	var record models.SessionRecord
	err := d.db.Order("id").First(&record).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	record.FromSession(session)
	return d.db.Save(&record).Error
}
