package errors

import (
	"net/http"

	"ziplink/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Verification-code errors. A consumed, expired or superseded code is
	// indistinguishable from one that never existed.
	ErrInvalidCode = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CODE",
		"code not valid",
		"",
	)

	// Connection errors. Ownership mismatch is deliberately reported with the
	// same error as true absence so callers cannot probe for existence.
	ErrInvalidRefreshToken = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_REFRESH_TOKEN",
		"connection not found",
		"",
	)

	ErrConnectionNotFound = NewBaseError(
		http.StatusNotFound,
		"CONNECTION_NOT_FOUND",
		"connection not found",
		"",
	)

	ErrConnectionLimit = NewBaseError(
		http.StatusTooManyRequests,
		"CONNECTION_LIMIT",
		"maximum connections reached",
		"",
	)

	// Store errors
	ErrStoreUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"STORE_UNAVAILABLE",
		"storage temporarily unavailable",
		"",
	)

	// Link errors
	ErrLinkNotFound = NewBaseError(
		http.StatusNotFound,
		"LINK_NOT_FOUND",
		"link not found",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"input validation failed",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"internal server error",
		"",
	)
)
