package handlers

import (
	"log"

	"bengkel/internal/services"
	"bengkel/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler exposes analytics rollups, reorder suggestions and alert
// composition.
type ReportHandler struct {
	analytics *services.AnalyticsService
	alerts    *services.AlertService
	// defaultRecipient receives alerts when the request names none.
	defaultRecipient string
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(analytics *services.AnalyticsService, alerts *services.AlertService, defaultRecipient string) *ReportHandler {
	return &ReportHandler{
		analytics:        analytics,
		alerts:           alerts,
		defaultRecipient: defaultRecipient,
	}
}

// RegisterRoutes registers the reporting routes with the Fiber app.
func (h *ReportHandler) RegisterRoutes(router fiber.Router) {
	analyticsRoutes := router.Group("/analytics")
	analyticsRoutes.Get("/overview", h.HandleOverview)
	analyticsRoutes.Get("/categories", h.HandleCategoryBreakdown)
	analyticsRoutes.Get("/suppliers", h.HandleTopSuppliers)

	router.Get("/reorder/suggestions", h.HandleReorderSuggestions)

	alertRoutes := router.Group("/alerts")
	alertRoutes.Post("/stock", h.HandleSendStockAlert)
	alertRoutes.Post("/reorder", h.HandleSendReorderAlert)
}

// HandleOverview returns status counts and total stock value.
func (h *ReportHandler) HandleOverview(c *fiber.Ctx) error {
	overview, err := h.analytics.Overview()
	if err != nil {
		log.Printf("Error computing overview: %v", err)
		return writeError(c, err)
	}
	return c.JSON(overview)
}

// HandleCategoryBreakdown returns per-category stock-health counts.
func (h *ReportHandler) HandleCategoryBreakdown(c *fiber.Ctx) error {
	breakdown, err := h.analytics.CategoryBreakdown()
	if err != nil {
		log.Printf("Error computing category breakdown: %v", err)
		return writeError(c, err)
	}
	return c.JSON(breakdown)
}

// HandleTopSuppliers returns supplier rollups by descending stock value.
func (h *ReportHandler) HandleTopSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.analytics.TopSuppliers()
	if err != nil {
		log.Printf("Error computing supplier rollup: %v", err)
		return writeError(c, err)
	}
	return c.JSON(suppliers)
}

// HandleReorderSuggestions returns prioritized reorder suggestions.
func (h *ReportHandler) HandleReorderSuggestions(c *fiber.Ctx) error {
	suggestions, err := h.analytics.ReorderSuggestions()
	if err != nil {
		log.Printf("Error computing reorder suggestions: %v", err)
		return writeError(c, err)
	}
	return c.JSON(suggestions)
}

type alertRequest struct {
	Recipient string `json:"recipient,omitempty"`
}

// HandleSendStockAlert composes a low/out-of-stock alert for the current
// snapshot and queues it for delivery. Returns 204 when stock is healthy.
func (h *ReportHandler) HandleSendStockAlert(c *fiber.Ctx) error {
	recipient, err := h.recipient(c)
	if err != nil {
		return writeError(c, err)
	}

	payload, err := h.alerts.SendStockAlert(recipient)
	if err != nil {
		log.Printf("Error sending stock alert: %v", err)
		return writeError(c, err)
	}
	if payload == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(payload)
}

// HandleSendReorderAlert composes a reorder-suggestion alert and queues it.
// Returns 204 when there is nothing to reorder.
func (h *ReportHandler) HandleSendReorderAlert(c *fiber.Ctx) error {
	recipient, err := h.recipient(c)
	if err != nil {
		return writeError(c, err)
	}

	payload, err := h.alerts.SendReorderAlert(recipient)
	if err != nil {
		log.Printf("Error sending reorder alert: %v", err)
		return writeError(c, err)
	}
	if payload == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(payload)
}

func (h *ReportHandler) recipient(c *fiber.Ctx) (string, error) {
	var req alertRequest
	// Body is optional; fall back to the configured recipient.
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return "", apperrors.NewValidation("invalid request body", err.Error())
		}
	}
	if req.Recipient != "" {
		return req.Recipient, nil
	}
	if h.defaultRecipient == "" {
		return "", apperrors.NewValidation("no recipient given and no default configured", "")
	}
	return h.defaultRecipient, nil
}
