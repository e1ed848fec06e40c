package repositories

import (
	"errors"

	"bengkel/internal/models"
)

// Sentinel errors returned by repositories. Services translate them into the
// user-facing taxonomy with item context attached.
var (
	// ErrNotFound means the item does not exist or was soft-deleted.
	ErrNotFound = errors.New("item not found")
	// ErrInsufficientStock means the conditional decrement found less stock
	// than requested at commit time.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrConflict means the store could not commit after bounded retries.
	ErrConflict = errors.New("concurrent update conflict")
)

// ItemFilter narrows GetAll results. Zero value means no filtering.
type ItemFilter struct {
	Category string
}

// ItemRepository defines the interface for inventory item data access.
// ReduceQuantity and AddQuantity are the only quantity writers and both are
// atomic conditional updates: two concurrent reductions on the same item can
// never drive the quantity negative.
type ItemRepository interface {
	GetAll(filter ItemFilter) ([]models.InventoryItem, error)
	GetByID(id string) (*models.InventoryItem, error)
	GetByName(name string) (*models.InventoryItem, error)
	Create(item *models.InventoryItem) error
	Update(item *models.InventoryItem) error
	Delete(id string) error
	// ReduceQuantity decrements quantity by qty only if qty is still
	// available, returning the post-decrement quantity.
	ReduceQuantity(id string, qty int) (int, error)
	// AddQuantity increments quantity by qty, returning the new quantity.
	AddQuantity(id string, qty int) (int, error)
}
