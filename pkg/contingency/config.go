package contingency

import (
	"time"

	"github.com/cecil-the-coder/ai-contingency/pkg/providers/common/retry"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// Config holds the dispatcher's retry and timeout settings.
type Config struct {
	// MaxRetriesPerProvider is the number of calls each provider gets. Values <= 0 mean 1.
	MaxRetriesPerProvider int `yaml:"max_retries_per_provider" mapstructure:"max_retries_per_provider"`

	// RetryDelay is the linear backoff unit: the wait after failed attempt n is RetryDelay*n.
	RetryDelay time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`

	// MaxRetryDelay caps a single wait. Zero means uncapped.
	MaxRetryDelay time.Duration `yaml:"max_retry_delay" mapstructure:"max_retry_delay"`

	// ProviderTimeout bounds each individual provider call.
	ProviderTimeout time.Duration `yaml:"provider_timeout" mapstructure:"provider_timeout"`

	// HealthCheckParallelism limits concurrent calls made by TestAll.
	HealthCheckParallelism int `yaml:"health_check_parallelism" mapstructure:"health_check_parallelism"`
}

// DefaultConfig returns the dispatcher defaults: 3 attempts per provider, a 1s linear
// delay and a 30s per-call timeout.
func DefaultConfig() Config {
	policy := retry.DefaultRetryPolicy()
	return Config{
		MaxRetriesPerProvider:  policy.MaxAttempts,
		RetryDelay:             policy.RetryDelay,
		MaxRetryDelay:          policy.MaxDelay,
		ProviderTimeout:        30 * time.Second,
		HealthCheckParallelism: 4,
	}
}

// policyFor returns the retry policy that applies to p.
func (c Config) policyFor(p types.ProviderDescriptor) *retry.RetryPolicy {
	attempts := c.MaxRetriesPerProvider
	if p.MaxRetries > 0 {
		attempts = p.MaxRetries
	}
	return retry.DefaultRetryPolicy().
		WithMaxAttempts(attempts).
		WithRetryDelay(c.RetryDelay).
		WithMaxDelay(c.MaxRetryDelay)
}

// timeoutFor returns the per-call timeout for p; zero means no timeout.
func (c Config) timeoutFor(p types.ProviderDescriptor) time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return c.ProviderTimeout
}

func (c Config) healthParallelism() int {
	if c.HealthCheckParallelism <= 0 {
		return 1
	}
	return c.HealthCheckParallelism
}
