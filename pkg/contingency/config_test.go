package contingency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.MaxRetriesPerProvider)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.Equal(t, 30*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 4, cfg.healthParallelism())
}

func TestConfig_ProviderOverrides(t *testing.T) {
	cfg := DefaultConfig()

	plain := types.ProviderDescriptor{Key: "a"}
	assert.Equal(t, 3, cfg.policyFor(plain).Attempts())
	assert.Equal(t, 30*time.Second, cfg.timeoutFor(plain))

	tuned := types.ProviderDescriptor{Key: "b", MaxRetries: 5, Timeout: 2 * time.Second}
	assert.Equal(t, 5, cfg.policyFor(tuned).Attempts())
	assert.Equal(t, 2*time.Second, cfg.timeoutFor(tuned))

	cfg.MaxRetriesPerProvider = 0
	cfg.HealthCheckParallelism = -1
	assert.Equal(t, 1, cfg.policyFor(plain).Attempts())
	assert.Equal(t, 1, cfg.healthParallelism())
}

func TestConfig_PolicyCarriesDelays(t *testing.T) {
	cfg := Config{MaxRetriesPerProvider: 4, RetryDelay: 250 * time.Millisecond, MaxRetryDelay: 600 * time.Millisecond}

	policy := cfg.policyFor(types.ProviderDescriptor{Key: "a"})
	assert.Equal(t, 4, policy.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, policy.RetryDelay)
	assert.Equal(t, 600*time.Millisecond, policy.MaxDelay)

	strategy := policy.Strategy()
	assert.Equal(t, 500*time.Millisecond, strategy.NextDelay(2))
	assert.Equal(t, 600*time.Millisecond, strategy.NextDelay(3))

	cfg.RetryDelay = 0
	assert.Zero(t, cfg.policyFor(types.ProviderDescriptor{Key: "a"}).RetryDelay)
}
