// Package registry loads the provider registry file and turns it into the provider
// descriptors and dispatcher settings the rest of the application runs on. YAML and
// TOML files are supported, chosen by file extension.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/cecil-the-coder/ai-contingency/pkg/contingency"
	"github.com/cecil-the-coder/ai-contingency/pkg/factory"
)

// =============================================================================
// File Structures
// =============================================================================

// File is the parsed registry file.
type File struct {
	Dispatcher DispatcherSettings     `yaml:"dispatcher" toml:"dispatcher"`
	Providers  []factory.ProviderSpec `yaml:"providers" toml:"providers"`
}

// DispatcherSettings overrides dispatcher defaults. Unset fields keep the default.
type DispatcherSettings struct {
	MaxRetriesPerProvider  *int   `yaml:"max_retries_per_provider,omitempty" toml:"max_retries_per_provider,omitempty"`
	RetryDelay             string `yaml:"retry_delay,omitempty" toml:"retry_delay,omitempty"`
	MaxRetryDelay          string `yaml:"max_retry_delay,omitempty" toml:"max_retry_delay,omitempty"`
	ProviderTimeout        string `yaml:"provider_timeout,omitempty" toml:"provider_timeout,omitempty"`
	HealthCheckParallelism int    `yaml:"health_check_parallelism,omitempty" toml:"health_check_parallelism,omitempty"`
}

// Format identifies the registry file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// =============================================================================
// Loading
// =============================================================================

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported registry file extension %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// LoadFile reads, parses and validates a registry file.
func LoadFile(path string) (*File, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	f, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates registry data.
func Parse(data []byte, format Format) (*File, error) {
	var f File

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown registry format %q", format)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks provider specs and dispatcher durations.
func (f *File) Validate() error {
	if err := factory.ValidateProviderSpecs(f.Providers); err != nil {
		return err
	}
	if _, err := f.Dispatcher.Apply(contingency.DefaultConfig()); err != nil {
		return err
	}
	return nil
}

// Apply layers the settings over base.
func (s DispatcherSettings) Apply(base contingency.Config) (contingency.Config, error) {
	cfg := base

	if s.MaxRetriesPerProvider != nil {
		cfg.MaxRetriesPerProvider = *s.MaxRetriesPerProvider
	}
	if s.HealthCheckParallelism > 0 {
		cfg.HealthCheckParallelism = s.HealthCheckParallelism
	}

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"retry_delay", s.RetryDelay, &cfg.RetryDelay},
		{"max_retry_delay", s.MaxRetryDelay, &cfg.MaxRetryDelay},
		{"provider_timeout", s.ProviderTimeout, &cfg.ProviderTimeout},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil || parsed < 0 {
			return base, fmt.Errorf("dispatcher.%s: invalid duration %q", d.name, d.value)
		}
		*d.dst = parsed
	}

	return cfg, nil
}
