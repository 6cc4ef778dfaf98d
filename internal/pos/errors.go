package pos

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes Store errors.
type ErrorCode string

const (
	// ErrCodeInvalidInvoice indicates a malformed invoice (no id, no items, quantity < 1, negative total).
	ErrCodeInvalidInvoice ErrorCode = "INVALID_INVOICE"

	// ErrCodeInvalidStockLog indicates a malformed stock log (no id, unknown reason); AdjustStock also rejects a zero change.
	ErrCodeInvalidStockLog ErrorCode = "INVALID_STOCK_LOG"

	// ErrCodeInvalidProduct indicates a product violating its invariants.
	ErrCodeInvalidProduct ErrorCode = "INVALID_PRODUCT"

	// ErrCodeInvalidCustomer indicates a customer violating its invariants.
	ErrCodeInvalidCustomer ErrorCode = "INVALID_CUSTOMER"

	// ErrCodeInvalidSettings indicates settings violating their invariants.
	ErrCodeInvalidSettings ErrorCode = "INVALID_SETTINGS"

	// ErrCodeInvalidImport indicates an import payload with an invalid record.
	ErrCodeInvalidImport ErrorCode = "INVALID_IMPORT"

	// ErrCodeEmptyCart indicates a checkout without lines.
	ErrCodeEmptyCart ErrorCode = "EMPTY_CART"

	// ErrCodeMissingCustomer indicates a checkout without customer name or phone.
	ErrCodeMissingCustomer ErrorCode = "MISSING_CUSTOMER"

	// ErrCodeUnknownProduct indicates a helper was asked to act on a product that does not exist.
	ErrCodeUnknownProduct ErrorCode = "UNKNOWN_PRODUCT"

	// ErrCodeInsufficientStock indicates a checkout line exceeds available stock.
	ErrCodeInsufficientStock ErrorCode = "INSUFFICIENT_STOCK"

	// ErrCodePersistFailed indicates the adapter rejected a write; in-memory state is unchanged.
	ErrCodePersistFailed ErrorCode = "PERSIST_FAILED"
)

// Error is returned by Store operations.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ID identifies the record involved, when there is one.
	ID string

	// Err is the underlying cause (validation or adapter error).
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.ID != "" {
		msg += fmt.Sprintf(" (id=%s)", e.ID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the ErrorCode of err, or "" if err is not a Store error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsInsufficientStock returns true if err is an insufficient stock error.
func IsInsufficientStock(err error) bool {
	return CodeOf(err) == ErrCodeInsufficientStock
}

// IsPersistError returns true if err came from the persistence adapter.
func IsPersistError(err error) bool {
	return CodeOf(err) == ErrCodePersistFailed
}

// IsValidationError returns true if err rejects caller input.
func IsValidationError(err error) bool {
	switch CodeOf(err) {
	case ErrCodeInvalidInvoice, ErrCodeInvalidStockLog, ErrCodeInvalidProduct,
		ErrCodeInvalidCustomer, ErrCodeInvalidSettings, ErrCodeInvalidImport, ErrCodeEmptyCart,
		ErrCodeMissingCustomer, ErrCodeUnknownProduct:
		return true
	}
	return false
}

func invalid(code ErrorCode, id string, err error) *Error {
	return &Error{Code: code, Message: "validation failed", ID: id, Err: err}
}
