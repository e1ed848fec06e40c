package repositories

import (
	"fmt"

	"bengkel/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMReductionRepository is a GORM implementation of ReductionRepository.
type GORMReductionRepository struct {
	db *gorm.DB
}

// NewGORMReductionRepository creates a new instance of GORMReductionRepository.
func NewGORMReductionRepository(db *gorm.DB) *GORMReductionRepository {
	return &GORMReductionRepository{
		db: db,
	}
}

// Create appends a reduction record to the audit log.
func (r *GORMReductionRepository) Create(record *models.ReductionRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create reduction record: %w", err)
	}
	return nil
}

// GetByItemID retrieves the reduction history of one item, newest first.
func (r *GORMReductionRepository) GetByItemID(itemID string) ([]models.ReductionRecord, error) {
	var records []models.ReductionRecord
	if err := r.db.Where("item_id = ?", itemID).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get reduction records for item %s: %w", itemID, err)
	}
	return records, nil
}

// GetAll retrieves the full audit log, newest first.
func (r *GORMReductionRepository) GetAll() ([]models.ReductionRecord, error) {
	var records []models.ReductionRecord
	if err := r.db.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get reduction records: %w", err)
	}
	return records, nil
}
