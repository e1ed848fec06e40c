package services

import (
	"sort"

	"bengkel/internal/models"

	"github.com/shopspring/decimal"
)

// minReorderQty is the floor applied to every suggestion so that items with
// a zero or tiny threshold still get a worthwhile order size.
const minReorderQty = 10

// SuggestReorder computes a replenishment recommendation for one item.
// It returns nil for items with healthy stock. The heuristic orders enough
// to clear the threshold twice over, never less than minReorderQty.
func SuggestReorder(item *models.InventoryItem) *models.ReorderSuggestion {
	status := item.Status()
	if status == models.StatusGood {
		return nil
	}

	suggested := item.MinThreshold * 2
	if suggested < minReorderQty {
		suggested = minReorderQty
	}

	priority := models.PriorityHigh
	if status == models.StatusOut {
		priority = models.PriorityCritical
	}

	return &models.ReorderSuggestion{
		ItemID:          item.ID,
		Name:            item.Name,
		CurrentQuantity: item.Quantity,
		SuggestedQty:    suggested,
		UnitPrice:       item.Price,
		EstimatedCost:   item.Price.Mul(decimal.NewFromInt(int64(suggested))),
		Priority:        priority,
	}
}

// SuggestReorderAll computes suggestions for every low or out-of-stock item,
// sorted critical before high, ties broken by descending estimated cost.
func SuggestReorderAll(items []models.InventoryItem) []models.ReorderSuggestion {
	suggestions := []models.ReorderSuggestion{}
	for i := range items {
		if s := SuggestReorder(&items[i]); s != nil {
			suggestions = append(suggestions, *s)
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Priority != suggestions[j].Priority {
			return suggestions[i].Priority == models.PriorityCritical
		}
		return suggestions[i].EstimatedCost.GreaterThan(suggestions[j].EstimatedCost)
	})
	return suggestions
}
