package types

import "time"

// Outcome is the result of a single provider attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// AttemptRecord describes one call to one provider. Each retry produces a new record;
// records are never mutated after creation.
type AttemptRecord struct {
	DispatchID    string    `json:"dispatch_id"`
	ProviderKey   string    `json:"provider_key"`
	ProviderIndex int       `json:"provider_index"` // position in the try-order, 0 = first choice
	AttemptNumber int       `json:"attempt_number"` // 1-based, per provider
	StartedAt     time.Time `json:"started_at"`
	DurationMs    int64     `json:"duration_ms"`
	Outcome       Outcome   `json:"outcome"`
	ErrorType     ErrorCode `json:"error_type,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	TokensUsed    int       `json:"tokens_used,omitempty"`
}

// Succeeded reports whether the attempt produced a valid result.
func (a AttemptRecord) Succeeded() bool {
	return a.Outcome == OutcomeSuccess
}
