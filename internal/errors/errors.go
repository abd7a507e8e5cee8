// Package errors defines the portal's API error taxonomy and its
// rendering through chi/render.
//
// Three failure classes exist. Visibility denial is always surfaced as
// NOT_FOUND, indistinguishable from true absence, so callers cannot probe
// for records they may not see. Validation failures carry field-level
// details and are recovered by the caller re-submitting. Referential
// gaps (an order pointing at a missing customer) never surface as errors
// at all; consumers substitute defined fallbacks.
package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// FieldError describes one failing input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details.
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined errors for common scenarios.
var (
	// 400 Bad Request
	ErrInvalidRequest   = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrInvalidRole      = New(http.StatusBadRequest, "INVALID_ROLE", "Unknown or missing role")

	// 404 Not Found, also covering records hidden from the caller
	ErrNotFound         = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrCustomerNotFound = New(http.StatusNotFound, "NOT_FOUND", "Customer not found")
	ErrOrderNotFound    = New(http.StatusNotFound, "NOT_FOUND", "Order not found")
	ErrWorkflowNotFound = New(http.StatusNotFound, "WORKFLOW_NOT_FOUND", "Workflow not found")

	// 409 Conflict
	ErrConflict = New(http.StatusConflict, "CONFLICT", "Resource conflict")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")

	// 500 Internal Server Error
	ErrInternalServer = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// InvalidRequestWithError creates an invalid request error with details.
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
}

// ErrValidation creates a validation error for a single field.
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", FieldError{
		Field:   field,
		Message: message,
	})
}

// ValidationFailed creates a validation error carrying multiple field
// rejections, used for workflow step guards.
func ValidationFailed(fields []FieldError) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", fields)
}

// NotFoundError creates a not found error for a named resource.
func NotFoundError(resource string) *APIError {
	return New(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource))
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse wraps an APIError in the standard envelope.
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{Success: false, Error: err}
}

// Render implements the render.Renderer interface.
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}
