package domain

import (
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

	// ErrNoSenseApplies indicates a WSD resolution found no sense score-eligible
	// for a context sentence (every candidate scored below threshold, or the
	// entry had no registered senses at all).
	ErrNoSenseApplies = errors.New("no sense applies to context")

	// ErrAlignmentNotFound indicates a surface span could not be located in
	// its carrying sentence during token-to-annotation alignment.
	ErrAlignmentNotFound = errors.New("annotation span not found in sentence")

	// ErrRegistryIntegrity indicates a sense-registry row violates an
	// invariant the registry enforces at write time (duplicate sense_id,
	// orphaned generation-cache reference, malformed sense_order sequence).
	ErrRegistryIntegrity = errors.New("registry integrity violation")

	// ErrCacheMiss indicates a content-addressed cache lookup (generation
	// cache or WSD cache) found no row for the given key.
	ErrCacheMiss = errors.New("cache miss")
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
		return fmt.Sprintf("validation: %s — %s", e.Errors[0].Field, e.Errors[0].Message)
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
