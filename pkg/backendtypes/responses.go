package backendtypes

import (
	"time"

	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// APIResponse is the standard response wrapper
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error codes used in APIError.Code.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeNoProviders        = "NO_PROVIDERS"
	CodeProvidersExhausted = "PROVIDERS_EXHAUSTED"
	CodeDispatchCancelled  = "DISPATCH_CANCELLED"
	CodeProviderNotFound   = "PROVIDER_NOT_FOUND"
	CodeStatsUnavailable   = "STATS_UNAVAILABLE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInternal           = "INTERNAL_ERROR"
)

// ProviderInfo for provider listing
type ProviderInfo struct {
	Key        string `json:"key"`
	Type       string `json:"type"`
	Model      string `json:"model,omitempty"`
	Priority   int    `json:"priority"`
	Enabled    bool   `json:"enabled"`
	Available  bool   `json:"available"`
	MaxRetries int    `json:"max_retries,omitempty"`
	TimeoutMs  int64  `json:"timeout_ms,omitempty"`
}

// NewProviderInfo describes p for the API. Available is false when the provider was
// configured but could not be built, for example because credentials are missing.
func NewProviderInfo(p types.ProviderDescriptor) ProviderInfo {
	return ProviderInfo{
		Key:        p.Key,
		Type:       p.Type,
		Model:      p.Model,
		Priority:   p.Priority,
		Enabled:    p.Enabled,
		Available:  p.Invoker != nil,
		MaxRetries: p.MaxRetries,
		TimeoutMs:  p.Timeout.Milliseconds(),
	}
}

// HealthResponse for health endpoints
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Providers int    `json:"providers"`
}
