package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"bengkel/internal/handlers"
	"bengkel/internal/middleware"
	"bengkel/internal/models"
	"bengkel/internal/repositories"
	"bengkel/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// recordingPublisher collects published messages instead of talking to a
// broker.
type recordingPublisher struct {
	queues []string
}

func (p *recordingPublisher) PublishJSON(queue string, v interface{}) error {
	p.queues = append(p.queues, queue)
	return nil
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers/services wired the way main does it.
func setupApp() (*fiber.App, *recordingPublisher, error) {
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	if err := db.AutoMigrate(&models.InventoryItem{}, &models.ReductionRecord{}); err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	itemRepo := repositories.NewGORMItemRepository(db)
	reductionRepo := repositories.NewGORMReductionRepository(db)

	publisher := &recordingPublisher{}
	inventoryService := services.NewInventoryService(itemRepo)
	reductionService := services.NewReductionService(itemRepo, reductionRepo, publisher)
	analyticsService := services.NewAnalyticsService(itemRepo)
	alertService := services.NewAlertService(itemRepo, publisher)

	itemHandler := handlers.NewItemHandler(inventoryService)
	reductionHandler := handlers.NewReductionHandler(reductionService)
	reportHandler := handlers.NewReportHandler(analyticsService, alertService, "inventory@bengkel.local")

	app := fiber.New()
	apiV1 := app.Group("/api/v1", middleware.ActorRequired(jwtSecret))
	itemHandler.RegisterRoutes(apiV1)
	reductionHandler.RegisterRoutes(apiV1)
	reportHandler.RegisterRoutes(apiV1)

	return app, publisher, nil
}

// mintToken issues an HS256 token the way the workshop's identity service
// does, carrying the caller identity and role.
func mintToken(t *testing.T, username, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test_jwt_secret"))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// createItem creates an item through the API and returns it.
func createItem(t *testing.T, app *fiber.App, token string, body map[string]interface{}) models.InventoryItem {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/items", token, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var item models.InventoryItem
	decodeBody(t, resp, &item)
	require.NotEmpty(t, item.ID)
	return item
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestRejectsRequestsWithoutValidToken(t *testing.T) {
	app, _, err := setupApp()
	require.NoError(t, err)

	// No Authorization header
	resp := doJSON(t, app, http.MethodGet, "/api/v1/items", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Malformed header
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	req.Header.Set("Authorization", "NotBearer something")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Token signed with the wrong secret
	badToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"username": "mallory"})
	signed, err := badToken.SignedString([]byte("wrong_secret"))
	require.NoError(t, err)
	resp = doJSON(t, app, http.MethodGet, "/api/v1/items", signed, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestItemLifecycle(t *testing.T) {
	app, _, err := setupApp()
	require.NoError(t, err)
	token := mintToken(t, "mechanic_sari", "staff")

	created := createItem(t, app, token, map[string]interface{}{
		"name":          "Lifecycle Brake Disc",
		"category":      "Brakes",
		"supplier":      "Astra Otoparts",
		"quantity":      20,
		"price":         125.50,
		"min_threshold": 5,
	})

	// GET by id carries the computed status
	resp := doJSON(t, app, http.MethodGet, "/api/v1/items/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched services.ItemView
	decodeBody(t, resp, &fetched)
	assert.Equal(t, created.ID, fetched.InventoryItem.ID)
	assert.Equal(t, models.StatusGood, fetched.Status)
	assert.Equal(t, "125.50", fetched.Price.StringFixed(2))

	// Update descriptive fields
	resp = doJSON(t, app, http.MethodPut, "/api/v1/items/"+created.ID, token, map[string]interface{}{
		"name":          "Lifecycle Brake Disc Pro",
		"category":      "Brakes",
		"supplier":      "Astra Otoparts",
		"price":         139.99,
		"min_threshold": 6,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated services.ItemView
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Lifecycle Brake Disc Pro", updated.Name)
	assert.Equal(t, "139.99", updated.Price.StringFixed(2))
	// Quantity is untouched by descriptive updates
	assert.Equal(t, 20, updated.Quantity)

	// Duplicate name is rejected with a conflict
	resp = doJSON(t, app, http.MethodPost, "/api/v1/items", token, map[string]interface{}{
		"name":          "lifecycle brake disc pro",
		"category":      "Brakes",
		"supplier":      "Astra Otoparts",
		"quantity":      1,
		"price":         10.00,
		"min_threshold": 1,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var dupErr map[string]string
	decodeBody(t, resp, &dupErr)
	assert.Equal(t, "DuplicateName", dupErr["error"])

	// Validation failure surfaces a 400 with the error code
	resp = doJSON(t, app, http.MethodPost, "/api/v1/items", token, map[string]interface{}{
		"name":          "x",
		"category":      "Brakes",
		"supplier":      "Astra Otoparts",
		"quantity":      1,
		"price":         10.00,
		"min_threshold": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var valErr map[string]string
	decodeBody(t, resp, &valErr)
	assert.Equal(t, "ValidationError", valErr["error"])

	// Unknown id
	resp = doJSON(t, app, http.MethodGet, "/api/v1/items/no-such-id", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestReduceEndpoint(t *testing.T) {
	app, _, err := setupApp()
	require.NoError(t, err)
	token := mintToken(t, "mechanic_budi", "staff")

	item := createItem(t, app, token, map[string]interface{}{
		"name":          "Reduce Endpoint Oil Filter",
		"category":      "Filters",
		"supplier":      "Denso",
		"quantity":      10,
		"price":         15.25,
		"min_threshold": 4,
	})

	// Successful reduction returns the appended audit record
	resp := doJSON(t, app, http.MethodPost, "/api/v1/items/"+item.ID+"/reduce", token, map[string]interface{}{
		"quantity":      4,
		"reason_code":   "repair",
		"job_reference": "JOB-2051",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var record models.ReductionRecord
	decodeBody(t, resp, &record)
	assert.Equal(t, item.ID, record.ItemID)
	assert.Equal(t, 4, record.QuantityReduced)
	assert.Equal(t, 6, record.ResultingQuantity)
	assert.Equal(t, models.ReasonRepair, record.ReasonCode)
	assert.Equal(t, "JOB-2051", record.JobReference)
	assert.Equal(t, "mechanic_budi", record.Actor)

	// Over-reduction is rejected with requested vs available context and
	// leaves the quantity untouched
	resp = doJSON(t, app, http.MethodPost, "/api/v1/items/"+item.ID+"/reduce", token, map[string]interface{}{
		"quantity":    40,
		"reason_code": "sale",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var insufficientErr map[string]string
	decodeBody(t, resp, &insufficientErr)
	assert.Equal(t, "InsufficientStock", insufficientErr["error"])
	assert.Contains(t, insufficientErr["details"], "requested: 40")
	assert.Contains(t, insufficientErr["details"], "available: 6")

	resp = doJSON(t, app, http.MethodGet, "/api/v1/items/"+item.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var view services.ItemView
	decodeBody(t, resp, &view)
	assert.Equal(t, 6, view.Quantity)

	// Zero quantity is invalid
	resp = doJSON(t, app, http.MethodPost, "/api/v1/items/"+item.ID+"/reduce", token, map[string]interface{}{
		"quantity":    0,
		"reason_code": "repair",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// History lists the single successful reduction
	resp = doJSON(t, app, http.MethodGet, "/api/v1/items/"+item.ID+"/reductions", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var history []models.ReductionRecord
	decodeBody(t, resp, &history)
	require.Len(t, history, 1)
	assert.Equal(t, record.ID, history[0].ID)
}

func TestDeleteRequiresAdminAndKeepsHistory(t *testing.T) {
	app, _, err := setupApp()
	require.NoError(t, err)
	staffToken := mintToken(t, "mechanic_tono", "staff")
	adminToken := mintToken(t, "owner_rina", "admin")

	item := createItem(t, app, staffToken, map[string]interface{}{
		"name":          "Delete Test Timing Belt",
		"category":      "Engine",
		"supplier":      "Gates",
		"quantity":      8,
		"price":         42.00,
		"min_threshold": 2,
	})

	resp := doJSON(t, app, http.MethodPost, "/api/v1/items/"+item.ID+"/reduce", staffToken, map[string]interface{}{
		"quantity":    3,
		"reason_code": "repair",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Staff cannot delete
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/items/"+item.ID, staffToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Admin can
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/items/"+item.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/items/"+item.ID, staffToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// The audit trail outlives the item
	resp = doJSON(t, app, http.MethodGet, "/api/v1/items/"+item.ID+"/reductions", staffToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var history []models.ReductionRecord
	decodeBody(t, resp, &history)
	assert.Len(t, history, 1)
}

func TestReduceBulkPartialSuccess(t *testing.T) {
	app, _, err := setupApp()
	require.NoError(t, err)
	token := mintToken(t, "mechanic_dewi", "staff")

	plenty := createItem(t, app, token, map[string]interface{}{
		"name":          "Bulk Test Spark Plug",
		"category":      "Ignition",
		"supplier":      "NGK",
		"quantity":      12,
		"price":         6.75,
		"min_threshold": 3,
	})
	scarce := createItem(t, app, token, map[string]interface{}{
		"name":          "Bulk Test Radiator Hose",
		"category":      "Cooling",
		"supplier":      "Gates",
		"quantity":      2,
		"price":         18.00,
		"min_threshold": 1,
	})

	resp := doJSON(t, app, http.MethodPost, "/api/v1/items/reduce-bulk", token, map[string]interface{}{
		"default_reason_code": "repair",
		"items": []map[string]interface{}{
			{"item_id": plenty.ID, "quantity": 4},
			{"item_id": scarce.ID, "quantity": 5},
			{"item_id": "", "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var result services.BulkReduceResult
	decodeBody(t, resp, &result)
	require.Len(t, result.Succeeded, 1)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, plenty.ID, result.Succeeded[0].ItemID)
	assert.Equal(t, 8, result.Succeeded[0].ResultingQuantity)

	// The failing line left its item untouched
	resp = doJSON(t, app, http.MethodGet, "/api/v1/items/"+scarce.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view services.ItemView
	decodeBody(t, resp, &view)
	assert.Equal(t, 2, view.Quantity)
}

func TestReplenishEndpoint(t *testing.T) {
	app, _, err := setupApp()
	require.NoError(t, err)
	token := mintToken(t, "mechanic_agus", "staff")

	item := createItem(t, app, token, map[string]interface{}{
		"name":          "Replenish Test Air Filter",
		"category":      "Filters",
		"supplier":      "Sakura",
		"quantity":      2,
		"price":         9.90,
		"min_threshold": 5,
	})

	resp := doJSON(t, app, http.MethodPost, "/api/v1/items/"+item.ID+"/replenish", token, map[string]interface{}{
		"quantity": 10,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var view services.ItemView
	decodeBody(t, resp, &view)
	assert.Equal(t, 12, view.Quantity)
	assert.Equal(t, models.StatusGood, view.Status)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/items/"+item.ID+"/replenish", token, map[string]interface{}{
		"quantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAnalyticsReorderAndAlerts(t *testing.T) {
	app, publisher, err := setupApp()
	require.NoError(t, err)
	token := mintToken(t, "owner_rina", "admin")

	// An out-of-stock item with a distinctive supplier anchors the
	// assertions; the shared store may hold items from other tests.
	depleted := createItem(t, app, token, map[string]interface{}{
		"name":          "Analytics Test Clutch Cable",
		"category":      "Transmission",
		"supplier":      "Exedy Analytics",
		"quantity":      0,
		"price":         33.00,
		"min_threshold": 3,
	})

	resp := doJSON(t, app, http.MethodGet, "/api/v1/analytics/overview", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var overview models.InventoryOverview
	decodeBody(t, resp, &overview)
	assert.GreaterOrEqual(t, overview.TotalItems, 1)
	assert.GreaterOrEqual(t, overview.OutOfStock, 1)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/analytics/categories", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var categories []models.CategoryStats
	decodeBody(t, resp, &categories)
	var transmission *models.CategoryStats
	for i := range categories {
		if categories[i].Category == "Transmission" {
			transmission = &categories[i]
		}
	}
	require.NotNil(t, transmission)
	assert.GreaterOrEqual(t, transmission.OutOfStock, 1)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/analytics/suppliers", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var suppliers []models.SupplierStats
	decodeBody(t, resp, &suppliers)
	found := false
	for _, s := range suppliers {
		if s.Supplier == "Exedy Analytics" {
			found = true
		}
	}
	assert.True(t, found)

	// The depleted item must show up as a critical suggestion with the
	// floor-of-ten heuristic applied
	resp = doJSON(t, app, http.MethodGet, "/api/v1/reorder/suggestions", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var suggestions []models.ReorderSuggestion
	decodeBody(t, resp, &suggestions)
	var suggestion *models.ReorderSuggestion
	for i := range suggestions {
		if suggestions[i].ItemID == depleted.ID {
			suggestion = &suggestions[i]
		}
	}
	require.NotNil(t, suggestion)
	assert.Equal(t, 10, suggestion.SuggestedQty)
	assert.Equal(t, models.PriorityCritical, suggestion.Priority)
	assert.Equal(t, "330.00", suggestion.EstimatedCost.StringFixed(2))

	// Triggering the stock alert publishes one message to the delivery queue
	resp = doJSON(t, app, http.MethodPost, "/api/v1/alerts/stock", token, map[string]interface{}{
		"recipient": "purchasing@bengkel.local",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var payload models.AlertPayload
	decodeBody(t, resp, &payload)
	assert.Equal(t, "stock_alert", payload.Kind)
	assert.Contains(t, payload.Body, "Analytics Test Clutch Cable")
	assert.Contains(t, publisher.queues, "inventory_alerts")
}
