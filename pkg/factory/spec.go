package factory

import (
	"fmt"
	"os"
	"time"

	"github.com/cecil-the-coder/ai-contingency/pkg/providers/common"
)

// ProviderSpec is one provider entry of the registry file.
type ProviderSpec struct {
	Key          string              `yaml:"key" toml:"key" validate:"required"`
	Type         string              `yaml:"type" toml:"type" validate:"required"`
	Priority     int                 `yaml:"priority" toml:"priority"`
	Enabled      *bool               `yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	Model        string              `yaml:"model,omitempty" toml:"model,omitempty"`
	APIKeyEnv    string              `yaml:"api_key_env,omitempty" toml:"api_key_env,omitempty"`
	BaseURL      string              `yaml:"base_url,omitempty" toml:"base_url,omitempty" validate:"omitempty,url"`
	MaxRetries   int                 `yaml:"max_retries,omitempty" toml:"max_retries,omitempty" validate:"gte=0"`
	Timeout      string              `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	RateLimitRPM int                 `yaml:"rate_limit_rpm,omitempty" toml:"rate_limit_rpm,omitempty" validate:"gte=0"`
	OAuth        *common.OAuthConfig `yaml:"oauth,omitempty" toml:"oauth,omitempty"`
	Script       []string            `yaml:"script,omitempty" toml:"script,omitempty"`
}

// IsEnabled reports the enabled flag; providers are enabled unless stated otherwise.
func (s ProviderSpec) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// APIKey reads the provider's API key from its environment variable.
func (s ProviderSpec) APIKey() string {
	if s.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(s.APIKeyEnv)
}

// TimeoutDuration parses Timeout. An empty value means the dispatcher default.
func (s ProviderSpec) TimeoutDuration() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", s.Timeout)
	}
	return d, nil
}
