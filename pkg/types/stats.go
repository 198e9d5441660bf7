package types

// DefaultStatsWindowDays is used when a stats query names no window.
const DefaultStatsWindowDays = 7

// Stats aggregates attempt records over a time window.
type Stats struct {
	WindowDays             int            `json:"window_days"`
	TotalRequests          int            `json:"total_requests"`
	SuccessfulRequests     int            `json:"successful_requests"`
	ContingencyActivations int            `json:"contingency_activations"`
	ProviderFailures       map[string]int `json:"provider_failures"`
	MostUsedFallback       string         `json:"most_used_fallback,omitempty"`
}
