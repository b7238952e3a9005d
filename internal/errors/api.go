package errors

import (
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

// Predefined error types for common scenarios
var (
	ErrInvalidRequest   = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrNotFound         = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrConflict         = New(http.StatusConflict, "CONFLICT", "Resource conflict")
	ErrInternalServer   = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// CampaignNotFoundError creates a not found error for an unknown campaign key
func CampaignNotFoundError(campaign string) *APIError {
	return NewWithDetails(http.StatusNotFound, "CAMPAIGN_NOT_FOUND",
		fmt.Sprintf("campaign %q not found", campaign), campaign)
}

// ExtractionFailedError maps an engine failure onto the API surface,
// preserving the fatal/degraded distinction: NO_DATA and SOURCE errors
// come back as 422 so callers can distinguish missing data from server
// faults.
func ExtractionFailedError(err error) *APIError {
	if appErr, ok := err.(*AppError); ok {
		switch appErr.Type {
		case ErrTypeNoData, ErrTypeSource, ErrTypeNotFound:
			return NewWithDetails(http.StatusUnprocessableEntity, string(appErr.Type), appErr.Message, appErr.Context)
		}
	}
	return NewWithDetails(http.StatusInternalServerError, "EXTRACTION_FAILED", "extraction run failed", err.Error())
}
