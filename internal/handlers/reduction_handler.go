package handlers

import (
	"log"

	"bengkel/internal/middleware"
	"bengkel/internal/models"
	"bengkel/internal/services"
	"bengkel/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

// ReductionHandler handles HTTP requests for stock reductions and their
// audit trail.
type ReductionHandler struct {
	service *services.ReductionService
}

// NewReductionHandler creates a new ReductionHandler.
func NewReductionHandler(service *services.ReductionService) *ReductionHandler {
	return &ReductionHandler{
		service: service,
	}
}

// RegisterRoutes registers the reduction routes with the Fiber app.
func (h *ReductionHandler) RegisterRoutes(router fiber.Router) {
	itemRoutes := router.Group("/items")
	itemRoutes.Post("/reduce-bulk", h.HandleReduceBulk)
	itemRoutes.Post("/:id/reduce", h.HandleReduceSingle)
	itemRoutes.Get("/:id/reductions", h.HandleGetHistory)
}

type reduceRequest struct {
	Quantity     int               `json:"quantity"`
	ReasonCode   models.ReasonCode `json:"reason_code"`
	JobReference string            `json:"job_reference,omitempty"`
	Notes        string            `json:"notes,omitempty"`
}

type bulkReduceRequest struct {
	Items             []services.BulkReduceLine `json:"items"`
	DefaultReasonCode models.ReasonCode         `json:"default_reason_code"`
	DefaultNotes      string                    `json:"default_notes,omitempty"`
}

// HandleReduceSingle performs one audited stock reduction. The actor comes
// from the validated token, never from the request body.
func (h *ReductionHandler) HandleReduceSingle(c *fiber.Ctx) error {
	var req reduceRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, apperrors.NewValidation("invalid request body", err.Error()))
	}

	actor, _ := c.Locals(middleware.LocalActor).(string)
	record, err := h.service.ReduceSingle(services.ReduceInput{
		ItemID:       c.Params("id"),
		Quantity:     req.Quantity,
		ReasonCode:   req.ReasonCode,
		JobReference: req.JobReference,
		Notes:        req.Notes,
		Actor:        actor,
	})
	if err != nil {
		log.Printf("Error reducing stock for item %s: %v", c.Params("id"), err)
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

// HandleReduceBulk performs a best-effort bulk reduction. Partial success is
// an expected outcome: the response always carries both lists.
func (h *ReductionHandler) HandleReduceBulk(c *fiber.Ctx) error {
	var req bulkReduceRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, apperrors.NewValidation("invalid request body", err.Error()))
	}

	actor, _ := c.Locals(middleware.LocalActor).(string)
	result, err := h.service.ReduceBulk(req.Items, req.DefaultReasonCode, req.DefaultNotes, actor)
	if err != nil {
		log.Printf("Error in bulk reduction: %v", err)
		return writeError(c, err)
	}
	return c.JSON(result)
}

// HandleGetHistory returns the reduction audit trail of one item, newest
// first. History remains available after the item is deleted.
func (h *ReductionHandler) HandleGetHistory(c *fiber.Ctx) error {
	records, err := h.service.History(c.Params("id"))
	if err != nil {
		log.Printf("Error getting reduction history for item %s: %v", c.Params("id"), err)
		return writeError(c, err)
	}
	return c.JSON(records)
}
