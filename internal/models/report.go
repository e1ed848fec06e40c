package models

import "github.com/shopspring/decimal"

// Reorder priority labels. Out-of-stock items are critical, low-stock high.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
)

// ReorderSuggestion is a computed replenishment recommendation. Derived on
// demand from the current item state, never stored.
type ReorderSuggestion struct {
	ItemID          string          `json:"item_id"`
	Name            string          `json:"name"`
	CurrentQuantity int             `json:"current_quantity"`
	SuggestedQty    int             `json:"suggested_qty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	EstimatedCost   decimal.Decimal `json:"estimated_cost"`
	Priority        string          `json:"priority"`
}

// InventoryOverview is the top-level analytics rollup.
type InventoryOverview struct {
	TotalItems int             `json:"total_items"`
	OutOfStock int             `json:"out_of_stock"`
	LowStock   int             `json:"low_stock"`
	GoodStock  int             `json:"good_stock"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// CategoryStats is the per-category breakdown.
type CategoryStats struct {
	Category   string `json:"category"`
	Total      int    `json:"total"`
	LowStock   int    `json:"low_stock"`
	OutOfStock int    `json:"out_of_stock"`
}

// SupplierStats is the per-supplier rollup, sorted by total value.
type SupplierStats struct {
	Supplier      string          `json:"supplier"`
	TotalItems    int             `json:"total_items"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LowStockItems int             `json:"low_stock_items"`
}

// AlertPayload is a composed notification ready for an external sender.
// The engine only builds content; delivery happens elsewhere.
type AlertPayload struct {
	Kind     string `json:"kind"` // "stock_alert" or "reorder_suggestion"
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	HTMLBody string `json:"html_body"`
}
