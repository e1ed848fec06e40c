package repositories

import (
	"bengkel/internal/models"
)

// ReductionRepository defines the interface for the append-only reduction
// audit log. There is deliberately no update or delete: records are immutable
// once created and survive the deletion of the item they reference.
type ReductionRepository interface {
	Create(record *models.ReductionRecord) error
	GetByItemID(itemID string) ([]models.ReductionRecord, error)
	GetAll() ([]models.ReductionRecord, error)
}
