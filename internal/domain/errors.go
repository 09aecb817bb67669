package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("requested resource not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("user does not have permission to access this resource")
	ErrConflict          = errors.New("resource conflict, item already exists")
	ErrExternalBoundary  = errors.New("external service call failed")
)

// ValidationError reports a missing or malformed field on an entity or request.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type InvalidTransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %s cannot move from %s to %s", e.Entity, e.ID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// StaleStatusError is returned by a repository when a status update lost a
// race: the stored row no longer carries the status the caller read.
type StaleStatusError struct {
	Entity   string
	ID       string
	Expected string
}

func (e *StaleStatusError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently, expected status %s", e.Entity, e.ID, e.Expected)
}

func (e *StaleStatusError) Unwrap() error { return ErrConflict }

// ExternalBoundaryError wraps a failure returned by a collaborator outside this
// service (catalog API, email provider). The core never retries these.
type ExternalBoundaryError struct {
	Service string
	Op      string
	Err     error
}

func (e *ExternalBoundaryError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Service, e.Op, e.Err)
}

func (e *ExternalBoundaryError) Unwrap() []error {
	return []error{ErrExternalBoundary, e.Err}
}
