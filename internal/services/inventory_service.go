package services

import (
	"errors"
	"fmt"

	"bengkel/internal/models"
	"bengkel/internal/repositories"
	"bengkel/pkg/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// maxPrice is the inclusive upper bound for an item price.
var maxPrice = decimal.NewFromInt(999999)

// InventoryService handles business logic for inventory items: queries with
// fresh status classification, intake, updates, replenishment and deletion.
type InventoryService struct {
	itemRepo repositories.ItemRepository
	validate *validator.Validate
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(itemRepo repositories.ItemRepository) *InventoryService {
	return &InventoryService{
		itemRepo: itemRepo,
		validate: validator.New(),
	}
}

// ItemView is an item together with its freshly computed status.
type ItemView struct {
	models.InventoryItem
	Status models.StockStatus `json:"status"`
}

// GetItems retrieves items, classified at read time, optionally filtered by
// status and category. Status is recomputed on every call so a concurrent
// reduction is reflected on the next read.
func (s *InventoryService) GetItems(status models.StockStatus, category string) ([]ItemView, error) {
	items, err := s.itemRepo.GetAll(repositories.ItemFilter{Category: category})
	if err != nil {
		return nil, err
	}

	views := make([]ItemView, 0, len(items))
	for _, it := range items {
		st := it.Status()
		if status != "" && st != status {
			continue
		}
		views = append(views, ItemView{InventoryItem: it, Status: st})
	}
	return views, nil
}

// GetItem retrieves a single item with its current status.
func (s *InventoryService) GetItem(id string) (*ItemView, error) {
	item, err := s.itemRepo.GetByID(id)
	if err != nil {
		return nil, translateRepoErr(err, id)
	}
	return &ItemView{InventoryItem: *item, Status: item.Status()}, nil
}

// CreateItem validates and persists a new item.
func (s *InventoryService) CreateItem(item *models.InventoryItem) error {
	if err := s.validateItem(item); err != nil {
		return err
	}
	if existing, err := s.itemRepo.GetByName(item.Name); err == nil && existing != nil {
		return apperrors.NewDuplicateName(item.Name)
	}
	return s.itemRepo.Create(item)
}

// UpdateItem validates and persists changes to an item's descriptive fields.
// Quantity is not updated here; reductions and replenishments have their own
// atomic paths.
func (s *InventoryService) UpdateItem(item *models.InventoryItem) error {
	if err := s.validateItem(item); err != nil {
		return err
	}
	if existing, err := s.itemRepo.GetByName(item.Name); err == nil && existing.ID != item.ID {
		return apperrors.NewDuplicateName(item.Name)
	}
	if err := s.itemRepo.Update(item); err != nil {
		return translateRepoErr(err, item.ID)
	}
	return nil
}

// Replenish increases an item's quantity and returns the fresh view.
func (s *InventoryService) Replenish(id string, qty int) (*ItemView, error) {
	if qty <= 0 {
		return nil, apperrors.NewInvalidQuantity(qty)
	}
	if _, err := s.itemRepo.AddQuantity(id, qty); err != nil {
		return nil, translateRepoErr(err, id)
	}
	return s.GetItem(id)
}

// DeleteItem soft-deletes an item. Historical reduction records are kept.
func (s *InventoryService) DeleteItem(id string) error {
	if err := s.itemRepo.Delete(id); err != nil {
		return translateRepoErr(err, id)
	}
	return nil
}

// validateItem applies the struct tags plus the price rules the tags cannot
// express (decimal bounds, two fractional digits).
func (s *InventoryService) validateItem(item *models.InventoryItem) error {
	if err := s.validate.Struct(item); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return apperrors.NewValidation(
				fmt.Sprintf("invalid value for %s", f.Field()),
				fmt.Sprintf("failed rule: %s", f.Tag()))
		}
		return apperrors.NewValidation("invalid item", err.Error())
	}
	if item.Price.IsNegative() {
		return apperrors.NewValidation("price must not be negative", item.Price.String())
	}
	if item.Price.GreaterThan(maxPrice) {
		return apperrors.NewValidation("price must not exceed 999999", item.Price.String())
	}
	if !item.Price.Equal(item.Price.Round(2)) {
		return apperrors.NewValidation("price must have at most 2 fractional digits", item.Price.String())
	}
	return nil
}

// translateRepoErr maps repository sentinel errors to the caller-facing taxonomy.
func translateRepoErr(err error, itemID string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.NewItemNotFound(itemID)
	case errors.Is(err, repositories.ErrConflict):
		return apperrors.NewConflict(err.Error())
	default:
		return err
	}
}
