package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound        = errors.New("domain: not found")
	ErrConflict        = errors.New("domain: conflict")
	ErrUnauthenticated = errors.New("domain: unauthenticated")
	ErrForbidden       = errors.New("domain: forbidden")
	ErrValidation      = errors.New("domain: validation failed")
)

// ForbiddenReason distinguishes the two denial kinds the transport layer
// must keep apart: a non-admin caller (401) and an admin acting on their
// own record (403).
type ForbiddenReason string

const (
	ReasonNotAdmin   ForbiddenReason = "not-admin"
	ReasonSelfAction ForbiddenReason = "self-action"
)

// ForbiddenError is an authorization denial with its reason attached.
type ForbiddenError struct {
	Reason ForbiddenReason
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("domain: forbidden (%s)", e.Reason)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// NewForbidden returns a ForbiddenError with the given reason.
func NewForbidden(reason ForbiddenReason) *ForbiddenError {
	return &ForbiddenError{Reason: reason}
}

// ValidationError reports a field-level validation failure. It wraps
// ErrValidation so callers can match the whole category with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("domain: validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation returns a ValidationError for the given field.
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
