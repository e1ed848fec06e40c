package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"bengkel/internal/models"

	"github.com/google/uuid"
)

// MockItemRepository is an in-memory implementation of ItemRepository.
// The mutex serializes conflicting writes to the same item, so the
// check-and-decrement contract holds under concurrent callers.
type MockItemRepository struct {
	items map[string]models.InventoryItem
	mu    sync.RWMutex
}

// NewMockItemRepository creates a new instance of MockItemRepository.
func NewMockItemRepository() *MockItemRepository {
	return &MockItemRepository{
		items: make(map[string]models.InventoryItem),
	}
}

// GetAll returns all items, optionally narrowed by category, sorted by name.
func (r *MockItemRepository) GetAll(filter ItemFilter) ([]models.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	itemList := make([]models.InventoryItem, 0, len(r.items))
	for _, it := range r.items {
		if filter.Category != "" && it.Category != filter.Category {
			continue
		}
		itemList = append(itemList, it)
	}
	sort.Slice(itemList, func(i, j int) bool { return itemList[i].Name < itemList[j].Name })
	return itemList, nil
}

// GetByID returns an item by its ID.
func (r *MockItemRepository) GetByID(id string) (*models.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("item with ID %s: %w", id, ErrNotFound)
	}
	return &item, nil
}

// GetByName returns an item by name, case-insensitively.
func (r *MockItemRepository) GetByName(name string) (*models.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, it := range r.items {
		if strings.EqualFold(it.Name, name) {
			item := it
			return &item, nil
		}
	}
	return nil, fmt.Errorf("item named %q: %w", name, ErrNotFound)
}

// Create adds a new item.
func (r *MockItemRepository) Create(item *models.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()
	r.items[item.ID] = *item
	return nil
}

// Update modifies an existing item's descriptive fields.
func (r *MockItemRepository) Update(item *models.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[item.ID]
	if !ok {
		return fmt.Errorf("item with ID %s for update: %w", item.ID, ErrNotFound)
	}
	existing.Name = item.Name
	existing.Category = item.Category
	existing.Supplier = item.Supplier
	existing.Price = item.Price
	existing.MinThreshold = item.MinThreshold
	existing.UpdatedAt = time.Now()
	r.items[item.ID] = existing
	return nil
}

// Delete removes an item by its ID.
func (r *MockItemRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("item with ID %s for deletion: %w", id, ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

// ReduceQuantity performs the check-and-decrement atomically under the write
// lock, mirroring the conditional UPDATE of the GORM implementation.
func (r *MockItemRepository) ReduceQuantity(id string, qty int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return 0, fmt.Errorf("item with ID %s: %w", id, ErrNotFound)
	}
	if item.Quantity < qty {
		return item.Quantity, fmt.Errorf("item %s has %d, requested %d: %w", id, item.Quantity, qty, ErrInsufficientStock)
	}
	item.Quantity -= qty
	item.UpdatedAt = time.Now()
	r.items[id] = item
	return item.Quantity, nil
}

// AddQuantity increments an item's quantity under the write lock.
func (r *MockItemRepository) AddQuantity(id string, qty int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return 0, fmt.Errorf("item with ID %s for replenishment: %w", id, ErrNotFound)
	}
	item.Quantity += qty
	item.UpdatedAt = time.Now()
	r.items[id] = item
	return item.Quantity, nil
}
