package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/pkg/logger"
)

// ErrorResponse represents a structured JSON error response
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Common error codes
const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeRateLimit     = "RATE_LIMIT_EXCEEDED"
	CodeInternalError = "INTERNAL_ERROR"
	CodeExpired       = "EXPIRED"
)

// WriteError writes a structured JSON error response
func WriteError(w http.ResponseWriter, statusCode int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code}); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

// WriteValidationError surfaces field-level errors as a dictionary.
func WriteValidationError(w http.ResponseWriter, v *domain.ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:  "validation failed",
		Code:   CodeInvalidInput,
		Fields: v.Fields,
	}); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

// WriteJSON writes a 200 JSON body.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// FromError maps a service error to the right HTTP shape.
func FromError(w http.ResponseWriter, err error) {
	var v *domain.ValidationError
	switch {
	case errors.As(err, &v):
		WriteValidationError(w, v)
	case errors.Is(err, domain.ErrNotFound):
		NotFound(w, "not found")
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid credentials", CodeUnauthorized)
	case errors.Is(err, domain.ErrExpired):
		WriteError(w, http.StatusUnauthorized, "expired", CodeExpired)
	case errors.Is(err, domain.ErrUnauthorized):
		Unauthorized(w, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		Forbidden(w, "forbidden")
	case errors.Is(err, domain.ErrRateLimited):
		RateLimit(w, "too many requests, try again later")
	case errors.Is(err, domain.ErrConflict):
		Conflict(w, "conflict")
	default:
		InternalError(w, "internal error")
	}
}

// Convenience functions for common errors
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeForbidden)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeInternalError)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, CodeRateLimit)
}

func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message, CodeConflict)
}
