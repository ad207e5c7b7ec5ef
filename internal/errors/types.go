package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeInvalidURL ErrorType = "INVALID_URL_ERROR"
	ErrorTypeFetch      ErrorType = "FETCH_ERROR"
	ErrorTypeExtraction ErrorType = "EXTRACTION_ERROR"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND_ERROR"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
)

// AppError represents a structured error for the application
type AppError struct {
	Type          ErrorType `json:"type"`
	Message       string    `json:"message"`
	StatusCode    int       `json:"statusCode"`
	ErrorCode     string    `json:"errorCode"`
	IsOperational bool      `json:"isOperational"`
	Recovery      string    `json:"recoverySuggestion,omitempty"`
	// UpstreamStatus is the HTTP status returned by a fetched page, zero for
	// transport failures.
	UpstreamStatus int   `json:"upstreamStatus,omitempty"`
	Err            error `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Code returns the application-specific error code
func (e *AppError) Code() string {
	return e.ErrorCode
}

// RecoverySuggestion returns the suggestion on how to recover from the error
func (e *AppError) RecoverySuggestion() string {
	return e.Recovery
}

// IsRetryable determines if the operation that caused the error could succeed
// when the caller tries again. Nothing in the pipeline retries on its own.
func (e *AppError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeFetch:
		return e.UpstreamStatus == 0 || e.UpstreamStatus >= 500 || e.UpstreamStatus == http.StatusTooManyRequests
	case ErrorTypeInternal:
		return true
	default:
		return false
	}
}

// IsType reports whether err wraps an AppError of type t.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// NewValidationError creates a new validation error (400)
func NewValidationError(message string, errorCode string, suggestion string) *AppError {
	return &AppError{
		Type:          ErrorTypeValidation,
		Message:       message,
		StatusCode:    http.StatusBadRequest,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      suggestion,
	}
}

// NewNotFoundError creates a new not found error (404)
func NewNotFoundError(message string, errorCode string, suggestion string) *AppError {
	return &AppError{
		Type:          ErrorTypeNotFound,
		Message:       message,
		StatusCode:    http.StatusNotFound,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      suggestion,
	}
}

// NewInvalidURLError creates an error for a URL rejected before any network access (400)
func NewInvalidURLError(message string, errorCode string) *AppError {
	return &AppError{
		Type:          ErrorTypeInvalidURL,
		Message:       "Invalid URL: " + message,
		StatusCode:    http.StatusBadRequest,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      "Provide a public http or https address.",
	}
}

// NewFetchError creates an error for a page that could not be retrieved (502)
func NewFetchError(message string, errorCode string, upstreamStatus int, err error) *AppError {
	return &AppError{
		Type:           ErrorTypeFetch,
		Message:        "Failed to fetch URL: " + message,
		StatusCode:     http.StatusBadGateway,
		ErrorCode:      errorCode,
		IsOperational:  true,
		Recovery:       "Verify the URL is accessible and try again later.",
		UpstreamStatus: upstreamStatus,
		Err:            err,
	}
}

// NewExtractionError creates an error for a page no strategy could turn into a recipe (422)
func NewExtractionError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeExtraction,
		Message:       message,
		StatusCode:    http.StatusUnprocessableEntity,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      "Paste the recipe text instead, or try a page with recipe markup.",
		Err:           err,
	}
}

// NewInternalError creates a new internal error (500)
func NewInternalError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeInternal,
		Message:       message,
		StatusCode:    http.StatusInternalServerError,
		ErrorCode:     errorCode,
		IsOperational: false,
		Err:           err,
	}
}
