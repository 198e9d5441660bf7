package types

import (
	"context"
	"strings"
	"time"
)

// Invoker is the capability every provider exposes: perform one call for a request.
// A nil error with a structurally valid Result is the only form of success.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (*Result, error)
}

// InvokerFunc adapts a plain function to the Invoker interface.
type InvokerFunc func(ctx context.Context, req Request) (*Result, error)

// Invoke calls f(ctx, req).
func (f InvokerFunc) Invoke(ctx context.Context, req Request) (*Result, error) {
	return f(ctx, req)
}

// Result is the payload a provider returns on success.
type Result struct {
	Content    string `json:"content"`
	TokensUsed int    `json:"tokens_used,omitempty"`
	Model      string `json:"model,omitempty"`
}

// CheckResult reports whether res is a usable success payload for provider key.
func CheckResult(key string, res *Result) error {
	if res == nil {
		return NewMalformedResponseError(key, "nil result")
	}
	if strings.TrimSpace(res.Content) == "" {
		return NewMalformedResponseError(key, "empty content")
	}
	return nil
}

// ProviderDescriptor is the read-only configuration of one provider.
type ProviderDescriptor struct {
	Key      string `json:"key" yaml:"key"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
	Priority int    `json:"priority" yaml:"priority"`
	Enabled  bool   `json:"enabled" yaml:"enabled"`

	// MaxRetries overrides the dispatcher's per-provider attempt count when > 0.
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`

	// Timeout overrides the dispatcher's per-call timeout when > 0.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	Invoker Invoker `json:"-" yaml:"-"`
}

// Usable reports whether the descriptor may be placed in a try-order.
func (p ProviderDescriptor) Usable() bool {
	return p.Enabled && p.Invoker != nil
}

// FindProvider returns the descriptor with the given key.
func FindProvider(providers []ProviderDescriptor, key string) (ProviderDescriptor, bool) {
	for _, p := range providers {
		if p.Key == key {
			return p, true
		}
	}
	return ProviderDescriptor{}, false
}
