package repositories

import (
	"fmt"
	"strings"
	"time"

	"bengkel/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Bounded retry for drivers that report lock contention instead of blocking.
const maxWriteAttempts = 3

// GORMItemRepository is a GORM implementation of ItemRepository.
type GORMItemRepository struct {
	db *gorm.DB
}

// NewGORMItemRepository creates a new instance of GORMItemRepository.
func NewGORMItemRepository(db *gorm.DB) *GORMItemRepository {
	return &GORMItemRepository{
		db: db,
	}
}

// GetAll retrieves all active items, optionally narrowed by category.
func (r *GORMItemRepository) GetAll(filter ItemFilter) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	q := r.db
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if err := q.Order("name").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get all items: %w", err)
	}
	return items, nil
}

// GetByID retrieves a single item by its ID.
func (r *GORMItemRepository) GetByID(id string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.First(&item, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("item with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item by ID %s: %w", id, err)
	}
	return &item, nil
}

// GetByName retrieves an active item by name, case-insensitively.
func (r *GORMItemRepository) GetByName(name string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.First(&item, "LOWER(name) = LOWER(?)", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("item named %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item by name %q: %w", name, err)
	}
	return &item, nil
}

// Create creates a new item.
func (r *GORMItemRepository) Create(item *models.InventoryItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// Update updates an existing item. Quantity changes must go through
// ReduceQuantity/AddQuantity instead so the non-negativity check holds.
func (r *GORMItemRepository) Update(item *models.InventoryItem) error {
	res := r.db.Model(&models.InventoryItem{}).Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"name":          item.Name,
			"category":      item.Category,
			"supplier":      item.Supplier,
			"price":         item.Price,
			"min_threshold": item.MinThreshold,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item with ID %s for update: %w", item.ID, ErrNotFound)
	}
	return nil
}

// Delete soft-deletes an item. Its reduction records stay queryable.
func (r *GORMItemRepository) Delete(id string) error {
	res := r.db.Delete(&models.InventoryItem{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item with ID %s for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// ReduceQuantity issues a single conditional decrement:
//
//	UPDATE inventory_items SET quantity = quantity - ? WHERE id = ? AND quantity >= ?
//
// The WHERE clause closes the read-then-write race window: of two concurrent
// callers whose requests together exceed the available stock, at most one
// succeeds. Zero rows affected is disambiguated into not-found vs
// insufficient-stock with a follow-up read.
func (r *GORMItemRepository) ReduceQuantity(id string, qty int) (int, error) {
	var updated models.InventoryItem
	var res *gorm.DB
	for attempt := 1; ; attempt++ {
		res = r.db.Model(&updated).
			Clauses(clause.Returning{Columns: []clause.Column{{Name: "quantity"}}}).
			Where("id = ? AND quantity >= ?", id, qty).
			UpdateColumns(map[string]interface{}{
				"quantity":   gorm.Expr("quantity - ?", qty),
				"updated_at": time.Now(),
			})
		if res.Error == nil || !isLockContention(res.Error) || attempt >= maxWriteAttempts {
			break
		}
		time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
	}
	if res.Error != nil {
		if isLockContention(res.Error) {
			return 0, fmt.Errorf("reduce quantity for item %s: %w", id, ErrConflict)
		}
		return 0, fmt.Errorf("failed to reduce quantity for item %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		item, err := r.GetByID(id)
		if err != nil {
			return 0, err
		}
		return item.Quantity, fmt.Errorf("item %s has %d, requested %d: %w", id, item.Quantity, qty, ErrInsufficientStock)
	}
	return updated.Quantity, nil
}

// AddQuantity is the replenishment counterpart of ReduceQuantity.
func (r *GORMItemRepository) AddQuantity(id string, qty int) (int, error) {
	var updated models.InventoryItem
	res := r.db.Model(&updated).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "quantity"}}}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to add quantity for item %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("item with ID %s for replenishment: %w", id, ErrNotFound)
	}
	return updated.Quantity, nil
}

// isLockContention recognizes driver-level conflict errors (sqlite busy
// database, postgres deadlock/serialization failures) that are safe to retry.
func isLockContention(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access")
}
