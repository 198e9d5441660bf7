package types

import "time"

// HealthCheckPrompt is the canned prompt used for single-provider health checks.
const HealthCheckPrompt = "Hello, this is a test. Please respond with 'OK'."

// HealthCheckRequest returns the minimal request sent by a health check.
func HealthCheckRequest() Request {
	return Request{
		Prompt:    HealthCheckPrompt,
		MaxTokens: 50,
	}
}

// TestResult represents the result of a provider test
type TestResult struct {
	ProviderKey string    `json:"provider_key"`
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	Model       string    `json:"model,omitempty"`
	ErrorType   ErrorCode `json:"error_type,omitempty"`
	LatencyMs   int64     `json:"latency_ms"`
	CheckedAt   time.Time `json:"checked_at"`
}

// NewSuccessResult creates a new successful test result
func NewSuccessResult(key string, model string, latency time.Duration) TestResult {
	return TestResult{
		ProviderKey: key,
		Success:     true,
		Message:     "provider responded successfully",
		Model:       model,
		LatencyMs:   latency.Milliseconds(),
		CheckedAt:   time.Now(),
	}
}

// NewErrorResult creates a new error test result
func NewErrorResult(key string, err error, latency time.Duration) TestResult {
	return TestResult{
		ProviderKey: key,
		Success:     false,
		Message:     err.Error(),
		ErrorType:   ErrorCodeOf(err),
		LatencyMs:   latency.Milliseconds(),
		CheckedAt:   time.Now(),
	}
}
