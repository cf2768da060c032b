// Package apperror provides structured error handling for the POS core.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal          = "INTERNAL_ERROR"
	CodeDatabase          = "DATABASE_ERROR"
	CodeRemoteUnavailable = "REMOTE_UNAVAILABLE"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Business rule violations (422)
	CodeOutOfStock        = "OUT_OF_STOCK"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeInvalidTotal      = "INVALID_TOTAL"

	// Remote synchronization (409 / 502)
	CodeSyncInProgress     = "SYNC_IN_PROGRESS"
	CodeSyncFailed         = "SYNC_FAILED"
	CodeFetchInProgress    = "FETCH_IN_PROGRESS"
	CodeStockUpdateFailed  = "STOCK_UPDATE_FAILED"
	CodeStockUpdatePartial = "STOCK_UPDATE_PARTIAL"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict = "CONFLICT"
)

// AppError is the standard error type for the application.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewOutOfStock is returned when a product cannot be added because nothing is left.
func NewOutOfStock(productID string) *AppError {
	return &AppError{
		Code:       CodeOutOfStock,
		Message:    "Product is out of stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"product_id": productID},
	}
}

// NewInsufficientStock creates a stock shortage error
func NewInsufficientStock(productID string, requested, available int) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    "Insufficient stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"product_id": productID,
			"requested":  requested,
			"available":  available,
		},
	}
}

// NewInvalidTotal rejects a checkout whose computed total is negative.
func NewInvalidTotal(total string) *AppError {
	return &AppError{
		Code:       CodeInvalidTotal,
		Message:    "Invoice total cannot be negative",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"total": total},
	}
}

// NewSyncInProgress is returned when a sync is already running; callers retry later.
func NewSyncInProgress() *AppError {
	return &AppError{
		Code:       CodeSyncInProgress,
		Message:    "Synchronization already running",
		HTTPStatus: http.StatusConflict,
	}
}

// NewSyncFailed wraps a failed full or delta synchronization.
func NewSyncFailed(err error) *AppError {
	return &AppError{
		Code:       CodeSyncFailed,
		Message:    "Synchronization failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewFetchInProgress is returned when an order fetch is already outstanding.
func NewFetchInProgress() *AppError {
	return &AppError{
		Code:       CodeFetchInProgress,
		Message:    "Order fetch already running",
		HTTPStatus: http.StatusConflict,
	}
}

// NewStockUpdateFailed wraps a stock push where no item was confirmed.
func NewStockUpdateFailed(err error) *AppError {
	return &AppError{
		Code:       CodeStockUpdateFailed,
		Message:    "Stock update failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewStockUpdatePartial reports a partially confirmed batch with a
// human-readable count ("updated 3 of 5 products").
func NewStockUpdatePartial(updated, total int, failedIDs []string) *AppError {
	return &AppError{
		Code:       CodeStockUpdatePartial,
		Message:    fmt.Sprintf("updated %d of %d products", updated, total),
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"failed_product_ids": failedIDs},
	}
}

// NewRemoteUnavailable wraps a transport-level failure talking to the remote service.
func NewRemoteUnavailable(endpoint string, err error) *AppError {
	return &AppError{
		Code:       CodeRemoteUnavailable,
		Message:    "Remote inventory service unavailable",
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"endpoint": endpoint},
		Err:        err,
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// HasCode checks whether err carries the given machine code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
