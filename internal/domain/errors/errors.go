package errors

import (
	"errors"
	"fmt"
)

var (
	// Booking errors
	ErrBookingNotFound        = errors.New("booking not found")
	ErrSessionNotFound        = errors.New("booking session not found")
	ErrBookingWriteFailed     = errors.New("booking write failed after payment capture")
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// Guest count errors
	ErrGuestCountLocked = errors.New("guest count is locked")

	// Processor errors
	ErrProcessorUnavailable = errors.New("payment processor unavailable")
	ErrProcessorRejected    = errors.New("payment rejected by processor")
	ErrProcessorTimeout     = errors.New("processor request timeout")

	// Installment errors
	ErrInstallmentClaimed = errors.New("installment already claimed")
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// Idempotency errors
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// Lock errors
	ErrLockAcquisitionFailed = errors.New("failed to acquire lock")
	ErrLockNotHeld           = errors.New("lock not held")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidInput     = errors.New("invalid input")
)

// DomainError wraps errors with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
