package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced by the inventory engine.
const (
	CodeValidation        = "ValidationError"
	CodeInvalidQuantity   = "InvalidQuantity"
	CodeInsufficientStock = "InsufficientStock"
	CodeItemNotFound      = "ItemNotFound"
	CodeDuplicateName     = "DuplicateName"
	CodeConflict          = "ConcurrencyConflict"
	CodeInternal          = "InternalError"
)

// AppError is a standardized error carrying a machine-readable code and
// enough context for the caller to act without a follow-up query.
type AppError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// HTTPStatus maps the error code to an HTTP status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeValidation, CodeInvalidQuantity, CodeInsufficientStock:
		return http.StatusBadRequest
	case CodeItemNotFound:
		return http.StatusNotFound
	case CodeDuplicateName, CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// New creates an AppError with an arbitrary code.
func New(code, message, details string) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

// NewValidation reports malformed input, with the offending field in details.
func NewValidation(message, details string) *AppError {
	return New(CodeValidation, message, details)
}

// NewInvalidQuantity reports a non-positive or non-integer quantity.
func NewInvalidQuantity(got int) *AppError {
	return New(CodeInvalidQuantity, "reduction quantity must be a positive integer",
		fmt.Sprintf("got: %d", got))
}

// NewInsufficientStock reports a reduction that exceeded available stock at
// commit time. Details carry requested vs available so the caller can show
// "only N available".
func NewInsufficientStock(itemName string, requested, available int) *AppError {
	return New(CodeInsufficientStock,
		fmt.Sprintf("insufficient stock for %s", itemName),
		fmt.Sprintf("requested: %d, available: %d", requested, available))
}

// NewItemNotFound reports that the referenced item does not exist or was deleted.
func NewItemNotFound(itemID string) *AppError {
	return New(CodeItemNotFound, "inventory item not found", fmt.Sprintf("item ID: %s", itemID))
}

// NewDuplicateName reports a case-insensitive name collision among active items.
func NewDuplicateName(name string) *AppError {
	return New(CodeDuplicateName, "an item with this name already exists", fmt.Sprintf("name: %s", name))
}

// NewConflict reports that the store could not commit a write after bounded
// retries. The write never lands partially.
func NewConflict(details string) *AppError {
	return New(CodeConflict, "conflicting concurrent update, please retry", details)
}

// NewInternal wraps an unexpected error.
func NewInternal(err error) *AppError {
	return New(CodeInternal, "internal error", err.Error())
}

// From extracts the AppError from err, wrapping unknown errors as internal.
func From(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return NewInternal(err)
}
