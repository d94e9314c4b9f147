package ai

import (
	"errors"
	"fmt"
)

// ErrorCode classifies orchestrator and provider failures.
type ErrorCode string

const (
	// ErrServiceUnavailable means the AI path failed and no safe
	// deterministic substitute exists for the requested operation.
	ErrServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrBadInput means a required input was missing or empty.
	ErrBadInput ErrorCode = "BAD_INPUT"
	// ErrProviderUnavailable is a network or availability failure of the
	// language-model provider.
	ErrProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	// ErrProviderRateLimited is an HTTP 429 from the provider.
	ErrProviderRateLimited ErrorCode = "PROVIDER_RATE_LIMITED"
)

// Error is a structured pipeline error.
type Error struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether this error is worth retrying.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// ServiceUnavailable builds a SERVICE_UNAVAILABLE error.
func ServiceUnavailable(message string, cause error) *Error {
	return &Error{Code: ErrServiceUnavailable, Message: message, Cause: cause}
}

// BadInput builds a BAD_INPUT error.
func BadInput(message string) *Error {
	return &Error{Code: ErrBadInput, Message: message}
}

// CodeOf extracts the ErrorCode from err, or empty when err is not a
// pipeline error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
