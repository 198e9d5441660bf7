package types

import (
	"errors"
	"fmt"
)

// DispatchResult is the single outcome of one dispatch call.
type DispatchResult struct {
	DispatchID      string          `json:"dispatch_id"`
	Success         bool            `json:"success"`
	ProviderKey     string          `json:"provider_key,omitempty"`
	Content         string          `json:"content,omitempty"`
	TokensUsed      int             `json:"tokens_used,omitempty"`
	Model           string          `json:"model,omitempty"`
	FallbackUsed    bool            `json:"fallback_used"`
	Attempts        []AttemptRecord `json:"attempts"`
	TotalDurationMs int64           `json:"total_duration_ms"`
	Error           string          `json:"error,omitempty"`

	cause error
}

// NewFailedResult builds a failed result whose Err() wraps cause.
func NewFailedResult(dispatchID string, attempts []AttemptRecord, cause error) *DispatchResult {
	return &DispatchResult{
		DispatchID: dispatchID,
		Attempts:   attempts,
		Error:      cause.Error(),
		cause:      cause,
	}
}

// Err returns nil on success, otherwise an error matching ErrAllProvidersExhausted
// or ErrDispatchCancelled.
func (r *DispatchResult) Err() error {
	if r == nil || r.Success {
		return nil
	}
	if r.cause != nil {
		return r.cause
	}
	return fmt.Errorf("%w: %s", ErrAllProvidersExhausted, r.Error)
}

// Exhausted reports whether every provider ran out of retries.
func (r *DispatchResult) Exhausted() bool {
	return errors.Is(r.Err(), ErrAllProvidersExhausted)
}
