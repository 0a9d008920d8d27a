package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors services return; handlers map them to HTTP statuses.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrExpired            = errors.New("expired")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrRateLimited        = errors.New("rate limited")
	ErrConflict           = errors.New("conflict")
)

// ValidationError aggregates field-level problems so the client can render
// them next to the offending inputs.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = msg
}

func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, m := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, m))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldError is a shortcut for a single-field validation failure.
func FieldError(field, msg string) *ValidationError {
	v := NewValidationError()
	v.Add(field, msg)
	return v
}
