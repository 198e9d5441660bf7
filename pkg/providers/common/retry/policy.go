// Package retry provides the per-provider retry policy used by the contingency
// dispatcher: how many attempts a provider gets, how long to wait between them,
// and a context-aware wait.
package retry

import "time"

// RetryPolicy defines the configuration for retry behavior
type RetryPolicy struct {
	// MaxAttempts is the number of calls a provider gets before the dispatcher
	// falls through to the next one. Values <= 0 are treated as 1.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`

	// RetryDelay is the base delay; the wait after failed attempt n is RetryDelay*n.
	RetryDelay time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`

	// MaxDelay caps a single wait. Zero means uncapped.
	MaxDelay time.Duration `yaml:"max_delay" mapstructure:"max_delay"`
}

// DefaultRetryPolicy returns a retry policy with sensible defaults
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: 3,
		RetryDelay:  1 * time.Second,
		MaxDelay:    0,
	}
}

// Attempts returns the effective attempt count, never less than one.
func (p *RetryPolicy) Attempts() int {
	if p == nil || p.MaxAttempts <= 0 {
		return 1
	}
	return p.MaxAttempts
}

// HasNext reports whether another attempt follows attempt (1-based).
func (p *RetryPolicy) HasNext(attempt int) bool {
	return attempt < p.Attempts()
}

// Strategy returns the linear backoff strategy described by the policy.
func (p *RetryPolicy) Strategy() BackoffStrategy {
	if p == nil {
		return NewConstantBackoffStrategy(0)
	}
	return NewLinearBackoffStrategy(p.RetryDelay, p.RetryDelay, p.MaxDelay)
}

// Clone creates a copy of the retry policy
func (p *RetryPolicy) Clone() *RetryPolicy {
	clone := *p
	return &clone
}

// WithMaxAttempts returns a new policy with updated MaxAttempts
func (p *RetryPolicy) WithMaxAttempts(maxAttempts int) *RetryPolicy {
	clone := p.Clone()
	clone.MaxAttempts = maxAttempts
	return clone
}

// WithRetryDelay returns a new policy with updated RetryDelay
func (p *RetryPolicy) WithRetryDelay(delay time.Duration) *RetryPolicy {
	clone := p.Clone()
	clone.RetryDelay = delay
	return clone
}

// WithMaxDelay returns a new policy with updated MaxDelay
func (p *RetryPolicy) WithMaxDelay(delay time.Duration) *RetryPolicy {
	clone := p.Clone()
	clone.MaxDelay = delay
	return clone
}
