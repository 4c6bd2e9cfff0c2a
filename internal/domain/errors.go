package domain

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
)

// Review engine failures.
var (
	// ErrInvalidGrade: grade outside 0..3, rejected before any state mutation.
	ErrInvalidGrade = errors.New("invalid grade")
	// ErrContentNotFound: the owning content domain does not know the item.
	ErrContentNotFound = errors.New("content not found")
	// ErrStateStoreUnavailable: a review state or progress store read/write failed.
	ErrStateStoreUnavailable = errors.New("state store unavailable")
	// ErrBatchFetchFailed: the batch content source failed; the session stays loading.
	ErrBatchFetchFailed = errors.New("batch fetch failed")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// StoreError wraps a collaborator store failure with op context and marks it
// as ErrStateStoreUnavailable. Not-found and context errors keep their identity.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrStateStoreUnavailable),
		errors.Is(err, ErrNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStateStoreUnavailable, err)
}

// InvalidGradeError reports a grade outside AGAIN..EASY.
// The result matches both ErrInvalidGrade and ErrValidation.
func InvalidGradeError(g ReviewGrade) error {
	return fmt.Errorf("%w: %w", ErrInvalidGrade,
		NewValidationError("grade", fmt.Sprintf("must be 0 (AGAIN) to 3 (EASY), got %d", int(g))))
}
