package handlers

import (
	"log"

	"bengkel/internal/middleware"
	"bengkel/internal/models"
	"bengkel/internal/services"
	"bengkel/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// writeError maps a service error onto its HTTP status and JSON shape.
func writeError(c *fiber.Ctx, err error) error {
	ae := apperrors.From(err)
	return c.Status(ae.HTTPStatus()).JSON(ae)
}

// ItemHandler handles HTTP requests for inventory items.
type ItemHandler struct {
	service *services.InventoryService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service *services.InventoryService) *ItemHandler {
	return &ItemHandler{
		service: service,
	}
}

// RegisterRoutes registers the item routes with the Fiber app.
func (h *ItemHandler) RegisterRoutes(router fiber.Router) {
	itemRoutes := router.Group("/items")
	itemRoutes.Get("/", h.HandleGetItems)
	itemRoutes.Post("/", h.HandleCreateItem)
	itemRoutes.Get("/:id", h.HandleGetItemByID)
	itemRoutes.Put("/:id", h.HandleUpdateItem)
	itemRoutes.Post("/:id/replenish", h.HandleReplenish)
	itemRoutes.Delete("/:id", middleware.RequireRole("admin"), h.HandleDeleteItem)
}

// itemRequest is the strict parse boundary for item intake and updates. The
// JSON decoder rejects mistyped fields instead of coercing them; price
// accepts a number or a numeric string and is validated downstream.
type itemRequest struct {
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Supplier     string          `json:"supplier"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	MinThreshold int             `json:"min_threshold"`
}

// HandleGetItems retrieves all items, optionally filtered by status and category.
func (h *ItemHandler) HandleGetItems(c *fiber.Ctx) error {
	status := models.StockStatus(c.Query("status"))
	if status != "" && status != models.StatusOut && status != models.StatusLow && status != models.StatusGood {
		return writeError(c, apperrors.NewValidation("unknown status filter", string(status)))
	}

	items, err := h.service.GetItems(status, c.Query("category"))
	if err != nil {
		log.Printf("Error getting items: %v", err)
		return writeError(c, err)
	}
	return c.JSON(items)
}

// HandleGetItemByID retrieves a single item with its current stock status.
func (h *ItemHandler) HandleGetItemByID(c *fiber.Ctx) error {
	item, err := h.service.GetItem(c.Params("id"))
	if err != nil {
		log.Printf("Error getting item %s: %v", c.Params("id"), err)
		return writeError(c, err)
	}
	return c.JSON(item)
}

// HandleCreateItem creates a new inventory item.
func (h *ItemHandler) HandleCreateItem(c *fiber.Ctx) error {
	var req itemRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, apperrors.NewValidation("invalid request body", err.Error()))
	}

	item := models.InventoryItem{
		Name:         req.Name,
		Category:     req.Category,
		Supplier:     req.Supplier,
		Quantity:     req.Quantity,
		Price:        req.Price,
		MinThreshold: req.MinThreshold,
	}
	if err := h.service.CreateItem(&item); err != nil {
		log.Printf("Error creating item: %v", err)
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleUpdateItem updates an item's descriptive fields. Quantity changes go
// through the reduce and replenish endpoints instead.
func (h *ItemHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req itemRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, apperrors.NewValidation("invalid request body", err.Error()))
	}

	item := models.InventoryItem{
		ID:           c.Params("id"),
		Name:         req.Name,
		Category:     req.Category,
		Supplier:     req.Supplier,
		Price:        req.Price,
		MinThreshold: req.MinThreshold,
	}
	if err := h.service.UpdateItem(&item); err != nil {
		log.Printf("Error updating item %s: %v", item.ID, err)
		return writeError(c, err)
	}

	updated, err := h.service.GetItem(item.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

// HandleReplenish increases an item's stock.
func (h *ItemHandler) HandleReplenish(c *fiber.Ctx) error {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, apperrors.NewValidation("invalid request body", err.Error()))
	}

	item, err := h.service.Replenish(c.Params("id"), req.Quantity)
	if err != nil {
		log.Printf("Error replenishing item %s: %v", c.Params("id"), err)
		return writeError(c, err)
	}
	return c.JSON(item)
}

// HandleDeleteItem soft-deletes an item. Its reduction history is preserved.
func (h *ItemHandler) HandleDeleteItem(c *fiber.Ctx) error {
	if err := h.service.DeleteItem(c.Params("id")); err != nil {
		log.Printf("Error deleting item %s: %v", c.Params("id"), err)
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Item deleted successfully",
	})
}
