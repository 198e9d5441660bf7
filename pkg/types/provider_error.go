package types

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the dispatcher. Callers match them with errors.Is.
var (
	// ErrInvalidRequest is returned when a request fails validation. No attempts are made.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNoProvidersConfigured is returned when no enabled provider is available.
	ErrNoProvidersConfigured = errors.New("no providers configured")

	// ErrProviderFailure marks a single failed provider attempt.
	ErrProviderFailure = errors.New("provider failure")

	// ErrAllProvidersExhausted is reported when every provider ran out of retries.
	ErrAllProvidersExhausted = errors.New("all providers exhausted")

	// ErrDispatchCancelled is returned when the caller's context ends mid-dispatch.
	ErrDispatchCancelled = errors.New("dispatch cancelled")

	// ErrProviderNotFound is returned when a provider key is not in the registry.
	ErrProviderNotFound = errors.New("provider not found")
)

// ErrorCode categorizes provider errors
type ErrorCode string

const (
	ErrCodeUnknown           ErrorCode = "unknown"
	ErrCodeAuthentication    ErrorCode = "auth"
	ErrCodeRateLimit         ErrorCode = "rate_limit"
	ErrCodeInvalidRequest    ErrorCode = "invalid_request"
	ErrCodeServerError       ErrorCode = "server_error"
	ErrCodeTimeout           ErrorCode = "timeout"
	ErrCodeNetwork           ErrorCode = "network"
	ErrCodeMalformedResponse ErrorCode = "malformed_response"
	ErrCodePanic             ErrorCode = "panic"
)

// ProviderError represents a standardized error from a provider
type ProviderError struct {
	Code        ErrorCode // Categorized error code
	Message     string    // Human-readable message
	StatusCode  int       // HTTP status code (0 if not applicable)
	Provider    string    // Key of the provider that failed
	OriginalErr error     // Wrapped original error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] %s (status=%d, code=%s)", e.Provider, e.Message, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("[%s] %s (code=%s)", e.Provider, e.Message, e.Code)
}

// Unwrap returns the original error for errors.Is/As
func (e *ProviderError) Unwrap() error {
	return e.OriginalErr
}

// Is reports every ProviderError as an ErrProviderFailure.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderFailure
}

// WithStatusCode sets the status code field and returns the error for chaining
func (e *ProviderError) WithStatusCode(statusCode int) *ProviderError {
	e.StatusCode = statusCode
	return e
}

// WithOriginalErr sets the original error field and returns the error for chaining
func (e *ProviderError) WithOriginalErr(err error) *ProviderError {
	e.OriginalErr = err
	return e
}

// NewProviderError creates a new ProviderError
func NewProviderError(provider string, code ErrorCode, message string) *ProviderError {
	return &ProviderError{
		Code:     code,
		Message:  message,
		Provider: provider,
	}
}

// NewMalformedResponseError creates the error used when a provider returns no usable payload.
func NewMalformedResponseError(provider string, reason string) *ProviderError {
	return NewProviderError(provider, ErrCodeMalformedResponse, "malformed response: "+reason)
}

// ErrorCodeOf extracts the classification of err, or ErrCodeUnknown.
func ErrorCodeOf(err error) ErrorCode {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ErrCodeUnknown
}
