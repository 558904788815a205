package shared

import (
	"errors"
	"sort"
	"strings"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so errors.Is(err, ErrNotFound)
// holds for every not-found error regardless of its message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// FieldErrors maps a request field to the messages reported against it
type FieldErrors map[string][]string

// ValidationError is an INVALID_INPUT error carrying per-field messages.
type ValidationError struct {
	*DomainError
	Fields FieldErrors
}

// NewValidationError creates a validation error with a single field message
func NewValidationError(field, message string) *ValidationError {
	return (&ValidationError{
		DomainError: NewDomainError(ErrInvalidInput.Code, ErrInvalidInput.Message),
		Fields:      make(FieldErrors),
	}).Add(field, message)
}

// Add appends a message for the field and returns the error for chaining
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields[field] = append(e.Fields[field], message)
	return e
}

// Error joins all field messages in a stable order
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e.Fields[f], "; "))
	}
	return e.Message + " (" + strings.Join(parts, ", ") + ")"
}

// Unwrap exposes the underlying domain error
func (e *ValidationError) Unwrap() error {
	return e.DomainError
}

// NewConflictError creates an ALREADY_EXISTS error reported against a field
func NewConflictError(field, message string) *ValidationError {
	v := NewValidationError(field, message)
	v.DomainError = NewDomainError(ErrAlreadyExists.Code, message)
	return v
}
