package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Remote-service errors
const (
	// ErrCodeTimeout indicates a remote call exceeded its time bound.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRemoteService indicates the remote service was reachable but
	// returned a failure.
	ErrCodeRemoteService ErrorCode = "REMOTE_SERVICE_ERROR"
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates the resource already exists.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	// ErrCodeConflict indicates a conflict with the current state of the resource.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeStorage indicates a durable storage read or write failed.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:            true,
	ErrCodeServiceUnavailable: true,
	ErrCodeRemoteService:      true,
	ErrCodeStorage:            true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
