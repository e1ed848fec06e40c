package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockStatus is the derived health label of an inventory item. It is never
// stored; always recompute it from the current quantity and threshold.
type StockStatus string

const (
	StatusOut  StockStatus = "out"
	StatusLow  StockStatus = "low"
	StatusGood StockStatus = "good"
)

// Rank orders statuses by urgency: out before low before good.
// Used for sorting reorder suggestions and alert sections.
func (s StockStatus) Rank() int {
	switch s {
	case StatusOut:
		return 0
	case StatusLow:
		return 1
	default:
		return 2
	}
}

// ClassifyStock derives the stock status from a quantity and threshold.
// A threshold above the quantity is the low-stock condition, not a data error.
func ClassifyStock(quantity, minThreshold int) StockStatus {
	switch {
	case quantity == 0:
		return StatusOut
	case quantity <= minThreshold:
		return StatusLow
	default:
		return StatusGood
	}
}

// InventoryItem represents a spare part tracked by the workshop.
// Quantity never goes negative; the only decrement path is the conditional
// update in the repository layer.
type InventoryItem struct {
	ID           string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name         string          `json:"name" gorm:"type:varchar(100)" validate:"required,min=2,max=100"`
	Category     string          `json:"category" gorm:"type:varchar(50)" validate:"required,min=2,max=50"`
	Supplier     string          `json:"supplier" gorm:"type:varchar(100)" validate:"required,min=2,max=100"`
	Quantity     int             `json:"quantity" validate:"gte=0"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"`
	MinThreshold int             `json:"min_threshold" validate:"gte=0,lte=999999"`
	gorm.Model                   // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Status classifies the item from its current fields. Call fresh on every
// read; a status computed before a concurrent reduction is stale.
func (i *InventoryItem) Status() StockStatus {
	return ClassifyStock(i.Quantity, i.MinThreshold)
}

// StockValue is quantity × price for this item.
func (i *InventoryItem) StockValue() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
