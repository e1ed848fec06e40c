package services

import (
	"fmt"
	"strings"

	"bengkel/internal/models"
	"bengkel/internal/repositories"
	"bengkel/pkg/rabbitmq"

	"github.com/shopspring/decimal"
)

// AlertService composes low-stock and reorder notifications and hands them to
// the delivery queue. It only builds content; the mail sender consuming the
// queue is a separate process. Composition always starts from a fresh item
// snapshot, taken after any stock mutation is already durable.
type AlertService struct {
	itemRepo  repositories.ItemRepository
	publisher Publisher
}

// NewAlertService creates a new AlertService.
func NewAlertService(itemRepo repositories.ItemRepository, publisher Publisher) *AlertService {
	return &AlertService{
		itemRepo:  itemRepo,
		publisher: publisher,
	}
}

// AlertEnvelope wraps a composed payload with its recipient for the queue.
type AlertEnvelope struct {
	Recipient string               `json:"recipient"`
	Payload   *models.AlertPayload `json:"payload"`
}

// ComposeStockAlert builds the low/out-of-stock notification. Returns nil
// when there is nothing to report, which callers treat as a no-op.
func ComposeStockAlert(lowStock, outOfStock []models.InventoryItem) *models.AlertPayload {
	total := len(lowStock) + len(outOfStock)
	if total == 0 {
		return nil
	}

	var body, html strings.Builder
	fmt.Fprintf(&body, "%d inventory item(s) need attention.\n", total)
	fmt.Fprintf(&html, "<p>%d inventory item(s) need attention.</p>", total)

	if len(outOfStock) > 0 {
		body.WriteString("\nCRITICAL - Out of stock:\n")
		html.WriteString("<h3>Critical: out of stock</h3><ul>")
		for i := range outOfStock {
			writeItemRow(&body, &html, &outOfStock[i])
		}
		html.WriteString("</ul>")
	}
	if len(lowStock) > 0 {
		body.WriteString("\nWARNING - Low stock:\n")
		html.WriteString("<h3>Warning: low stock</h3><ul>")
		for i := range lowStock {
			writeItemRow(&body, &html, &lowStock[i])
		}
		html.WriteString("</ul>")
	}

	return &models.AlertPayload{
		Kind:     "stock_alert",
		Subject:  fmt.Sprintf("Stock alert: %d item(s) need attention", total),
		Body:     body.String(),
		HTMLBody: html.String(),
	}
}

// ComposeReorderAlert builds the reorder-suggestion notification with a grand
// total across all lines. Returns nil for an empty suggestion list.
func ComposeReorderAlert(suggestions []models.ReorderSuggestion) *models.AlertPayload {
	if len(suggestions) == 0 {
		return nil
	}

	var body, html strings.Builder
	var grandTotal decimal.Decimal

	body.WriteString("Suggested reorders:\n")
	html.WriteString("<h3>Suggested reorders</h3><ul>")
	for _, sg := range suggestions {
		fmt.Fprintf(&body, "- %s [%s]: have %d, order %d @ %s = %s\n",
			sg.Name, sg.Priority, sg.CurrentQuantity, sg.SuggestedQty,
			sg.UnitPrice.StringFixed(2), sg.EstimatedCost.StringFixed(2))
		fmt.Fprintf(&html, "<li><b>%s</b> [%s]: have %d, order %d @ %s = %s</li>",
			sg.Name, sg.Priority, sg.CurrentQuantity, sg.SuggestedQty,
			sg.UnitPrice.StringFixed(2), sg.EstimatedCost.StringFixed(2))
		grandTotal = grandTotal.Add(sg.EstimatedCost)
	}
	fmt.Fprintf(&body, "\nTotal estimated cost: %s\n", grandTotal.StringFixed(2))
	fmt.Fprintf(&html, "</ul><p>Total estimated cost: <b>%s</b></p>", grandTotal.StringFixed(2))

	return &models.AlertPayload{
		Kind:     "reorder_suggestion",
		Subject:  fmt.Sprintf("Reorder suggestions: %d item(s), estimated %s", len(suggestions), grandTotal.StringFixed(2)),
		Body:     body.String(),
		HTMLBody: html.String(),
	}
}

// SendStockAlert classifies the current snapshot, composes the stock alert
// and publishes it to the delivery queue. A healthy inventory is a no-op and
// returns a nil payload.
func (s *AlertService) SendStockAlert(recipient string) (*models.AlertPayload, error) {
	items, err := s.itemRepo.GetAll(repositories.ItemFilter{})
	if err != nil {
		return nil, err
	}

	var low, out []models.InventoryItem
	for _, it := range items {
		switch it.Status() {
		case models.StatusOut:
			out = append(out, it)
		case models.StatusLow:
			low = append(low, it)
		}
	}

	payload := ComposeStockAlert(low, out)
	if payload == nil {
		return nil, nil
	}
	return payload, s.publish(recipient, payload)
}

// SendReorderAlert composes reorder suggestions for the current snapshot and
// publishes them. No suggestions means no-op and a nil payload.
func (s *AlertService) SendReorderAlert(recipient string) (*models.AlertPayload, error) {
	items, err := s.itemRepo.GetAll(repositories.ItemFilter{})
	if err != nil {
		return nil, err
	}

	payload := ComposeReorderAlert(SuggestReorderAll(items))
	if payload == nil {
		return nil, nil
	}
	return payload, s.publish(recipient, payload)
}

func (s *AlertService) publish(recipient string, payload *models.AlertPayload) error {
	if s.publisher == nil {
		return fmt.Errorf("no alert publisher configured")
	}
	if err := s.publisher.PublishJSON(rabbitmq.AlertQueue, AlertEnvelope{Recipient: recipient, Payload: payload}); err != nil {
		return fmt.Errorf("failed to publish %s to delivery queue: %w", payload.Kind, err)
	}
	return nil
}

func writeItemRow(body, html *strings.Builder, item *models.InventoryItem) {
	fmt.Fprintf(body, "- %s | %s | %s | qty %d / threshold %d | %s\n",
		item.Name, item.Category, item.Supplier, item.Quantity, item.MinThreshold, item.Price.StringFixed(2))
	fmt.Fprintf(html, "<li><b>%s</b> | %s | %s | qty %d / threshold %d | %s</li>",
		item.Name, item.Category, item.Supplier, item.Quantity, item.MinThreshold, item.Price.StringFixed(2))
}
