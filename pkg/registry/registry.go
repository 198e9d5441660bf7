package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cecil-the-coder/ai-contingency/pkg/contingency"
	"github.com/cecil-the-coder/ai-contingency/pkg/factory"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// Registry holds the configured providers and dispatcher settings. Descriptors are
// read-only once built; callers get copies.
type Registry struct {
	providers []types.ProviderDescriptor
	config    contingency.Config
}

// New creates a registry over already built descriptors.
func New(cfg contingency.Config, providers []types.ProviderDescriptor) *Registry {
	return &Registry{
		providers: append([]types.ProviderDescriptor(nil), providers...),
		config:    cfg,
	}
}

// Load reads the registry file at path and builds every provider with fac.
func Load(ctx context.Context, path string, fac *factory.DefaultInvokerFactory, logger logrus.FieldLogger) (*Registry, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Build(ctx, f, contingency.DefaultConfig(), fac, logger)
}

// Build turns a parsed file into a registry. Providers whose credentials are missing
// are kept without an invoker, which the dispatcher treats as disabled; any other
// build failure is an error.
func Build(ctx context.Context, f *File, base contingency.Config, fac *factory.DefaultInvokerFactory, logger logrus.FieldLogger) (*Registry, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if err := factory.ValidateProviderSpecs(f.Providers); err != nil {
		return nil, err
	}
	cfg, err := f.Dispatcher.Apply(base)
	if err != nil {
		return nil, err
	}

	providers := make([]types.ProviderDescriptor, 0, len(f.Providers))
	for _, spec := range f.Providers {
		if !fac.Supports(spec.Type) {
			return nil, fmt.Errorf("provider %q: unknown type %q (supported: %v)", spec.Key, spec.Type, fac.GetSupportedTypes())
		}

		timeout, err := spec.TimeoutDuration()
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", spec.Key, err)
		}

		desc := types.ProviderDescriptor{
			Key:        spec.Key,
			Type:       spec.Type,
			Model:      spec.Model,
			Priority:   spec.Priority,
			Enabled:    spec.IsEnabled(),
			MaxRetries: spec.MaxRetries,
			Timeout:    timeout,
		}

		inv, err := fac.CreateInvoker(ctx, spec)
		switch {
		case errors.Is(err, factory.ErrMissingCredentials):
			logger.WithFields(logrus.Fields{
				"provider": spec.Key,
				"event":    "provider_unavailable",
			}).Warnf("Provider has no credentials and will be skipped: %v", err)
		case err != nil:
			return nil, fmt.Errorf("provider %q: %w", spec.Key, err)
		default:
			desc.Invoker = inv
			if desc.Model == "" {
				desc.Model = modelOf(inv)
			}
		}

		providers = append(providers, desc)
	}

	logger.WithFields(logrus.Fields{
		"event":     "registry_loaded",
		"providers": len(providers),
	}).Info("Provider registry loaded")

	return New(cfg, providers), nil
}

// modelOf asks the invoker, or the invoker it wraps, for its model.
func modelOf(inv types.Invoker) string {
	for inv != nil {
		if m, ok := inv.(interface{ Model() string }); ok {
			return m.Model()
		}
		u, ok := inv.(interface{ Unwrap() types.Invoker })
		if !ok {
			return ""
		}
		inv = u.Unwrap()
	}
	return ""
}

// Providers returns a copy of all descriptors in file order.
func (r *Registry) Providers() []types.ProviderDescriptor {
	return append([]types.ProviderDescriptor(nil), r.providers...)
}

// Get returns the descriptor with the given key.
func (r *Registry) Get(key string) (types.ProviderDescriptor, bool) {
	return types.FindProvider(r.providers, key)
}

// Config returns the dispatcher configuration from the registry file.
func (r *Registry) Config() contingency.Config {
	return r.config
}
