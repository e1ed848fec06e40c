package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"bengkel/internal/models"
	"bengkel/internal/repositories"
	"bengkel/pkg/apperrors"
	"bengkel/pkg/rabbitmq"
)

// Publisher is the outbound messaging boundary. *rabbitmq.Client satisfies
// it; tests substitute a mock. Publishing always happens after the store
// mutation is durable, and a publish failure never fails the reduction.
type Publisher interface {
	PublishJSON(queue string, v interface{}) error
}

// ReduceInput is a validated-at-the-boundary request for a single reduction.
type ReduceInput struct {
	ItemID       string
	Quantity     int
	ReasonCode   models.ReasonCode
	JobReference string
	Notes        string
	Actor        string
}

// BulkReduceLine is one line of a bulk reduction request. ReasonCode and
// Notes fall back to the request-level defaults when empty.
type BulkReduceLine struct {
	ItemID     string            `json:"item_id"`
	Quantity   int               `json:"quantity"`
	ReasonCode models.ReasonCode `json:"reason_code,omitempty"`
	Notes      string            `json:"notes,omitempty"`
}

// BulkFailure pairs a failed line with its error kind.
type BulkFailure struct {
	ItemID string              `json:"item_id"`
	Error  *apperrors.AppError `json:"error"`
}

// BulkReduceResult separates successes from failures so the caller can react
// to partial completion.
type BulkReduceResult struct {
	Succeeded []models.ReductionRecord `json:"succeeded"`
	Failed    []BulkFailure            `json:"failed"`
}

// ReductionService executes audited stock reductions. It is the only writer
// of item quantities besides the replenishment path, and the sole producer
// of reduction records.
type ReductionService struct {
	itemRepo      repositories.ItemRepository
	reductionRepo repositories.ReductionRepository
	publisher     Publisher
}

// NewReductionService creates a new ReductionService.
func NewReductionService(itemRepo repositories.ItemRepository, reductionRepo repositories.ReductionRepository, publisher Publisher) *ReductionService {
	return &ReductionService{
		itemRepo:      itemRepo,
		reductionRepo: reductionRepo,
		publisher:     publisher,
	}
}

// ReduceSingle atomically decrements one item's quantity and appends exactly
// one audit record. Two concurrent callers requesting more than the available
// stock combined can never both succeed: the check-and-decrement happens in a
// single conditional update inside the repository.
func (s *ReductionService) ReduceSingle(input ReduceInput) (*models.ReductionRecord, error) {
	if input.Quantity <= 0 {
		return nil, apperrors.NewInvalidQuantity(input.Quantity)
	}
	if !input.ReasonCode.IsValid() {
		return nil, apperrors.NewValidation("unknown reason code", string(input.ReasonCode))
	}
	if input.Actor == "" {
		return nil, apperrors.NewValidation("actor is required", "")
	}

	// Read the item up front only for its name in error messages; the
	// stock check itself happens atomically in ReduceQuantity.
	item, err := s.itemRepo.GetByID(input.ItemID)
	if err != nil {
		return nil, translateRepoErr(err, input.ItemID)
	}

	newQty, err := s.itemRepo.ReduceQuantity(input.ItemID, input.Quantity)
	if err != nil {
		if errors.Is(err, repositories.ErrInsufficientStock) {
			// newQty carries the quantity available at commit time, which
			// may differ from the earlier read.
			return nil, apperrors.NewInsufficientStock(item.Name, input.Quantity, newQty)
		}
		return nil, translateRepoErr(err, input.ItemID)
	}

	record := &models.ReductionRecord{
		ItemID:            input.ItemID,
		QuantityReduced:   input.Quantity,
		ReasonCode:        input.ReasonCode,
		JobReference:      input.JobReference,
		Notes:             input.Notes,
		Actor:             input.Actor,
		ResultingQuantity: newQty,
		CreatedAt:         time.Now(),
	}
	if err := s.reductionRepo.Create(record); err != nil {
		return nil, fmt.Errorf("reduction committed but audit record failed for item %s: %w", input.ItemID, err)
	}

	s.publishReduced(item, record)

	return record, nil
}

// ReduceBulk attempts every line independently: best-effort, per-item
// atomicity, no cross-item rollback. Malformed lines are rejected into the
// failed list without being attempted and never produce an audit record.
func (s *ReductionService) ReduceBulk(lines []BulkReduceLine, defaultReason models.ReasonCode, defaultNotes, actor string) (*BulkReduceResult, error) {
	if len(lines) == 0 {
		return nil, apperrors.NewValidation("at least one reduction line is required", "")
	}
	if actor == "" {
		return nil, apperrors.NewValidation("actor is required", "")
	}

	result := &BulkReduceResult{
		Succeeded: []models.ReductionRecord{},
		Failed:    []BulkFailure{},
	}

	// Malformed lines are weeded out before any attempt begins; they never
	// touch the store and never produce an audit record.
	valid := make([]ReduceInput, 0, len(lines))
	for _, line := range lines {
		reason := line.ReasonCode
		if reason == "" {
			reason = defaultReason
		}
		notes := line.Notes
		if notes == "" {
			notes = defaultNotes
		}

		switch {
		case line.ItemID == "":
			result.Failed = append(result.Failed, BulkFailure{
				ItemID: line.ItemID,
				Error:  apperrors.NewValidation("item_id is required", ""),
			})
		case line.Quantity <= 0:
			result.Failed = append(result.Failed, BulkFailure{
				ItemID: line.ItemID,
				Error:  apperrors.NewInvalidQuantity(line.Quantity),
			})
		case !reason.IsValid():
			result.Failed = append(result.Failed, BulkFailure{
				ItemID: line.ItemID,
				Error:  apperrors.NewValidation("unknown reason code", string(reason)),
			})
		default:
			valid = append(valid, ReduceInput{
				ItemID:     line.ItemID,
				Quantity:   line.Quantity,
				ReasonCode: reason,
				Notes:      notes,
				Actor:      actor,
			})
		}
	}

	for _, input := range valid {
		record, err := s.ReduceSingle(input)
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{
				ItemID: input.ItemID,
				Error:  apperrors.From(err),
			})
			continue
		}
		result.Succeeded = append(result.Succeeded, *record)
	}

	return result, nil
}

// History returns the reduction records of one item, newest first. Records
// of soft-deleted items remain queryable.
func (s *ReductionService) History(itemID string) ([]models.ReductionRecord, error) {
	return s.reductionRepo.GetByItemID(itemID)
}

// publishReduced emits a stock event after the reduction is durable. The
// event degrades to a low/out notification when the item crossed a threshold.
func (s *ReductionService) publishReduced(item *models.InventoryItem, record *models.ReductionRecord) {
	if s.publisher == nil {
		return
	}

	status := models.ClassifyStock(record.ResultingQuantity, item.MinThreshold)
	event := map[string]interface{}{
		"event":              "stock.reduced",
		"item_id":            record.ItemID,
		"item_name":          item.Name,
		"quantity_reduced":   record.QuantityReduced,
		"resulting_quantity": record.ResultingQuantity,
		"status":             status,
		"reason_code":        record.ReasonCode,
		"actor":              record.Actor,
	}
	if status != models.StatusGood {
		event["event"] = "stock." + string(status)
	}

	if err := s.publisher.PublishJSON(rabbitmq.EventQueue, event); err != nil {
		log.Printf("Warning: failed to publish stock event for item %s: %v", record.ItemID, err)
	}
}
