package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// WithDetails returns a copy of e carrying message and details
func (e *APIError) WithDetails(message string, details interface{}) *APIError {
	return NewWithDetails(e.StatusCode, e.ErrorCode, message, details)
}

// Predefined error types for common scenarios
var (
	ErrInvalidRequest    = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed  = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrNotFound          = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")
	ErrInternalServer    = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
	ErrUpstreamFailed    = New(http.StatusBadGateway, "UPSTREAM_FAILED", "KPI source request failed")
)

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return ErrValidationFailed.WithDetails(ErrValidationFailed.Message, ValidationError{
		Field:   field,
		Message: message,
	})
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errors []ValidationError) *APIError {
	return ErrValidationFailed.WithDetails(ErrValidationFailed.Message, ValidationErrors{Errors: errors})
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// FromAppError maps an AppError onto the HTTP status the API reports for it.
// A source body that is not a valid envelope is an upstream failure, not bad data.
func FromAppError(appErr *AppError) *APIError {
	switch appErr.Type {
	case ErrTypeValidation:
		return NewWithDetails(http.StatusUnprocessableEntity, "UNPROCESSABLE_DATA", appErr.Message, appErr.Context)
	case ErrTypeNotFound:
		var missing *MissingColumnError
		if errors.As(appErr, &missing) {
			return NewWithDetails(http.StatusNotFound, "COLUMN_NOT_FOUND", missing.Error(), map[string]interface{}{
				"column":    missing.Column,
				"available": missing.Available,
			})
		}
		return ErrNotFound.WithDetails(appErr.Message, appErr.Context)
	case ErrTypeParsing:
		var envErr *EnvelopeError
		if errors.As(appErr, &envErr) {
			return ErrUpstreamFailed.WithDetails(appErr.Error(), appErr.Context)
		}
		return NewWithDetails(http.StatusUnprocessableEntity, "PARSE_FAILED", appErr.Error(), appErr.Context)
	case ErrTypeNetwork:
		return ErrUpstreamFailed.WithDetails(appErr.Error(), appErr.Context)
	default:
		return ErrInternalServer.WithDetails(ErrInternalServer.Message, appErr.Message)
	}
}

// ErrPanic creates a panic recovery error
func ErrPanic(rec interface{}) *APIError {
	return ErrInternalServer.WithDetails("An unexpected error occurred", fmt.Sprintf("%v", rec))
}
