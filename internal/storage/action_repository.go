package storage

import (
	"bot-swatter/internal/models"

	"gorm.io/gorm"
)

// ActionRepository handles database operations for ActionRecord
type ActionRepository struct {
	db *gorm.DB
}

// NewActionRepository creates a new ActionRepository
func NewActionRepository(db *gorm.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// MigrateTable ensures the ActionRecord table exists
func (r *ActionRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.ActionRecord{})
}

// Create inserts a new ActionRecord
func (r *ActionRepository) Create(record *models.ActionRecord) error {
	return r.db.Create(record).Error
}

// GetByUser returns all recorded actions against a user, newest first
func (r *ActionRepository) GetByUser(username string) ([]*models.ActionRecord, error) {
	var records []*models.ActionRecord
	result := r.db.Where("username = ?", username).Order("created_at DESC").Find(&records)
	return records, result.Error
}
