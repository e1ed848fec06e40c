package services

import (
	"sort"

	"bengkel/internal/models"
	"bengkel/internal/repositories"
)

// AnalyticsService computes read-only rollups over the current item
// snapshot. Nothing here is incrementally maintained; every call recomputes
// from the store so the numbers can never drift from the source of truth.
type AnalyticsService struct {
	itemRepo repositories.ItemRepository
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(itemRepo repositories.ItemRepository) *AnalyticsService {
	return &AnalyticsService{
		itemRepo: itemRepo,
	}
}

// Overview returns status counts and the total stock value.
func (s *AnalyticsService) Overview() (*models.InventoryOverview, error) {
	items, err := s.itemRepo.GetAll(repositories.ItemFilter{})
	if err != nil {
		return nil, err
	}

	overview := &models.InventoryOverview{TotalItems: len(items)}
	for i := range items {
		switch items[i].Status() {
		case models.StatusOut:
			overview.OutOfStock++
		case models.StatusLow:
			overview.LowStock++
		default:
			overview.GoodStock++
		}
		overview.TotalValue = overview.TotalValue.Add(items[i].StockValue())
	}
	return overview, nil
}

// CategoryBreakdown returns per-category totals and stock-health counts,
// sorted by category name.
func (s *AnalyticsService) CategoryBreakdown() ([]models.CategoryStats, error) {
	items, err := s.itemRepo.GetAll(repositories.ItemFilter{})
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]*models.CategoryStats)
	for i := range items {
		stats, ok := byCategory[items[i].Category]
		if !ok {
			stats = &models.CategoryStats{Category: items[i].Category}
			byCategory[items[i].Category] = stats
		}
		stats.Total++
		switch items[i].Status() {
		case models.StatusOut:
			stats.OutOfStock++
		case models.StatusLow:
			stats.LowStock++
		}
	}

	breakdown := make([]models.CategoryStats, 0, len(byCategory))
	for _, stats := range byCategory {
		breakdown = append(breakdown, *stats)
	}
	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].Category < breakdown[j].Category })
	return breakdown, nil
}

// ReorderSuggestions computes prioritized reorder suggestions over a fresh
// item snapshot.
func (s *AnalyticsService) ReorderSuggestions() ([]models.ReorderSuggestion, error) {
	items, err := s.itemRepo.GetAll(repositories.ItemFilter{})
	if err != nil {
		return nil, err
	}
	return SuggestReorderAll(items), nil
}

// TopSuppliers returns per-supplier rollups sorted by descending total value.
func (s *AnalyticsService) TopSuppliers() ([]models.SupplierStats, error) {
	items, err := s.itemRepo.GetAll(repositories.ItemFilter{})
	if err != nil {
		return nil, err
	}

	bySupplier := make(map[string]*models.SupplierStats)
	for i := range items {
		stats, ok := bySupplier[items[i].Supplier]
		if !ok {
			stats = &models.SupplierStats{Supplier: items[i].Supplier}
			bySupplier[items[i].Supplier] = stats
		}
		stats.TotalItems++
		stats.TotalValue = stats.TotalValue.Add(items[i].StockValue())
		if st := items[i].Status(); st == models.StatusLow || st == models.StatusOut {
			stats.LowStockItems++
		}
	}

	suppliers := make([]models.SupplierStats, 0, len(bySupplier))
	for _, stats := range bySupplier {
		suppliers = append(suppliers, *stats)
	}
	sort.SliceStable(suppliers, func(i, j int) bool {
		if !suppliers[i].TotalValue.Equal(suppliers[j].TotalValue) {
			return suppliers[i].TotalValue.GreaterThan(suppliers[j].TotalValue)
		}
		return suppliers[i].Supplier < suppliers[j].Supplier
	})
	return suppliers, nil
}
