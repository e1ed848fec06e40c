package repositories

import (
	"sync"
	"time"

	"bengkel/internal/models"

	"github.com/google/uuid"
)

// MockReductionRepository is an in-memory implementation of ReductionRepository.
type MockReductionRepository struct {
	records []models.ReductionRecord
	mu      sync.RWMutex
}

// NewMockReductionRepository creates a new instance of MockReductionRepository.
func NewMockReductionRepository() *MockReductionRepository {
	return &MockReductionRepository{}
}

// Create appends a reduction record.
func (r *MockReductionRepository) Create(record *models.ReductionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	r.records = append(r.records, *record)
	return nil
}

// GetByItemID returns the records for one item, newest first.
func (r *MockReductionRepository) GetByItemID(itemID string) ([]models.ReductionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.ReductionRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].ItemID == itemID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

// GetAll returns every record, newest first.
func (r *MockReductionRepository) GetAll() ([]models.ReductionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ReductionRecord, 0, len(r.records))
	for i := len(r.records) - 1; i >= 0; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}
