package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Domain failures returned by the services wrap one of these,
// so callers classify them with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrValidation         = errors.New("validation error")
	ErrTransactionAborted = errors.New("transaction aborted")
)

// Error codes exposed to adapters.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodeValidation         = "VALIDATION_ERROR"
	CodeTransactionAborted = "TRANSACTION_ABORTED"
	CodeInternal           = "INTERNAL_ERROR"
)

// LineError reports the order line that stopped a sale or purchase.
// Line is 1-based.
type LineError struct {
	Line       int
	MedicineID string
	BatchID    string
	Err        error
	Detail     string
}

func (e *LineError) Error() string {
	inner := e.Err.Error()
	subject := ""
	switch {
	case e.MedicineID != "" && !strings.Contains(inner, e.MedicineID):
		subject = " medicine " + e.MedicineID
	case e.BatchID != "" && !strings.Contains(inner, e.BatchID):
		subject = " batch " + e.BatchID
	}
	msg := fmt.Sprintf("line %d%s: %s", e.Line, subject, inner)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *LineError) Unwrap() error { return e.Err }

// ErrorCode maps err to one of the Code* constants.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInsufficientStock):
		return CodeInsufficientStock
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrTransactionAborted):
		return CodeTransactionAborted
	default:
		return CodeInternal
	}
}

// IsRetryable reports whether the whole operation may be retried unchanged.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransactionAborted)
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
