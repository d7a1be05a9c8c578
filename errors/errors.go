// Package errors provides unified error handling for the echoscribe service.
// It implements structured error types with error codes, HTTP status mapping,
// and retryable detection.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// Timeout creates a new AppError for a remote call that exceeded its bound.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// RemoteService creates a new AppError for a failure returned by a remote service.
func RemoteService(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeRemoteService, Message: fmt.Sprintf("The %s returned an error.", service),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"service": service},
		Cause:   cause,
	}
}

// ServiceUnavailable creates a new AppError for a service that is temporarily unavailable.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// AlreadyExists creates a new AppError for a resource that already exists.
func AlreadyExists(resource string) *AppError {
	return &AppError{
		Code: ErrCodeAlreadyExists, Message: fmt.Sprintf("A %s with these details already exists.", resource),
		HTTPStatus: http.StatusConflict, Retryable: false,
		Details: map[string]any{"resource": resource},
	}
}

// Conflict creates a new AppError for a conflict with the current state of the resource.
func Conflict(reason string) *AppError {
	return &AppError{
		Code: ErrCodeConflict, Message: reason,
		HTTPStatus: http.StatusConflict, Retryable: false,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// Storage creates a new AppError for a failed durable storage operation.
func Storage(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStorage, Message: "A storage error occurred. Please try again.",
		HTTPStatus: http.StatusInternalServerError, Retryable: true,
		Details: map[string]any{"operation": operation},
		Cause:   cause,
	}
}

// IsTimeout reports whether err represents a timed-out remote call. Timeouts
// are the only failure kind eligible for model escalation.
func IsTimeout(err error) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == ErrCodeTimeout
	}
	return false
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
