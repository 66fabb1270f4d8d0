package errors

import (
	"errors"
	"net/http"
)

// ErrorResponse represents a standardized error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// Validation reports bad or missing input.
func Validation(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, "VALIDATION_ERROR")
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *HTTPError {
	return NewHTTPError(http.StatusConflict, message, "CONFLICT")
}

// Unauthorized reports bad credentials or an invalid token.
func Unauthorized(message string) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, "UNAUTHORIZED")
}

// Forbidden reports an authenticated caller acting on a resource it does not own.
func Forbidden(message string) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, "FORBIDDEN")
}

// NotFound reports a missing resource.
func NotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, "NOT_FOUND")
}

// Internal reports an unexpected store or service failure.
func Internal(message string) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, "INTERNAL_ERROR")
}

// From maps any error to an HTTPError. Errors that are not already an
// HTTPError are reported as internal server errors.
func From(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	return Internal("internal server error")
}
