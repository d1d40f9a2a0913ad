package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a DomainError so transport layers can map it without string matching.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindForbidden  Kind = "forbidden"
	KindConflict   Kind = "conflict"
)

// Error codes surfaced to API clients.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeForbidden         = "FORBIDDEN"
	CodeConflict          = "CONFLICT"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeDatesUnavailable  = "DATES_UNAVAILABLE"
)

// Sentinels for errors.Is. A DomainError matches the sentinel of its kind.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)

// DomainError is a business-rule failure that callers are expected to surface to the user.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is the sentinel matching this error's kind.
func (e *DomainError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrForbidden:
		return e.Kind == KindForbidden
	case ErrConflict:
		return e.Kind == KindConflict
	}
	return false
}

// NewValidationError reports malformed or missing input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: CodeValidation, Message: message}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(resource, id string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
	}
}

// NewForbiddenError reports an actor lacking the role required for an action.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Kind: KindForbidden, Code: CodeForbidden, Message: message}
}

// NewConflictError reports a write rejected by the current state of the store.
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: CodeConflict, Message: message}
}

// NewInvalidStateError reports a status transition that the state machine does not allow.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Kind:    KindConflict,
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewUnavailableError reports a stay request that collides with an accepted booking.
func NewUnavailableError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: CodeDatesUnavailable, Message: message}
}

// KindOf returns the kind of err if it wraps a DomainError.
func KindOf(err error) (Kind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// CodeOf returns the client-facing code of err if it wraps a DomainError.
func CodeOf(err error) (string, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}
