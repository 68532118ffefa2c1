package errors

import (
	"fmt"
)

// ErrorCode represents a specific failure kind in the capture pipeline.
type ErrorCode string

const (
	// ErrCodeServiceUnavailable indicates the extraction backend is unreachable
	// or misconfigured. Always degrades to the fallback heuristic.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeMalformedResponse indicates the extraction backend answered with
	// unparsable JSON or without any usable event fields. Same degrade path.
	ErrCodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	// ErrCodeInvalidTimezone indicates an unrecognized IANA timezone name.
	ErrCodeInvalidTimezone ErrorCode = "INVALID_TIMEZONE"
	// ErrCodeValidationFailed indicates a normalized event failed schema checks.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeNotFound indicates the requested object does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
)

// PipelineError is a structured error for normalization pipeline operations.
type PipelineError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// GetCode returns the error code.
func (e *PipelineError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// ServiceUnavailable creates a service unavailable error.
func ServiceUnavailable(msg string, cause error) *PipelineError {
	return &PipelineError{Code: ErrCodeServiceUnavailable, Message: msg, Cause: cause}
}

// MalformedResponse creates a malformed response error.
func MalformedResponse(msg string, cause error) *PipelineError {
	return &PipelineError{Code: ErrCodeMalformedResponse, Message: msg, Cause: cause}
}

// InvalidTimezone creates an invalid timezone error.
func InvalidTimezone(name string, cause error) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeInvalidTimezone,
		Message: fmt.Sprintf("unrecognized timezone: %s", name),
		Cause:   cause,
	}
}

// ValidationFailed creates a validation failed error.
func ValidationFailed(msg string) *PipelineError {
	return &PipelineError{Code: ErrCodeValidationFailed, Message: msg}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *PipelineError {
	return &PipelineError{Code: ErrCodeInvalidArgument, Message: msg}
}

// NotFound creates a not found error.
func NotFound(msg string) *PipelineError {
	return &PipelineError{Code: ErrCodeNotFound, Message: msg}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg string) *PipelineError {
	return &PipelineError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if perr, ok := err.(*PipelineError); ok {
		return perr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a PipelineError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if perr, ok := err.(*PipelineError); ok {
		return perr.Code
	}
	return defaultCode
}
