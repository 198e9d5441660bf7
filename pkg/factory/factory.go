package factory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cecil-the-coder/ai-contingency/pkg/providers/common"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// ErrMissingCredentials is returned by builders when a provider has no way to authenticate.
var ErrMissingCredentials = errors.New("missing credentials")

// BuilderFunc creates the invoker for one provider spec.
type BuilderFunc func(ctx context.Context, spec ProviderSpec) (types.Invoker, error)

// DefaultInvokerFactory is the default factory implementation
type DefaultInvokerFactory struct {
	builders map[string]BuilderFunc
	mutex    sync.RWMutex
}

// NewInvokerFactory creates an empty factory. Use RegisterDefaultInvokers for the
// built-in provider types.
func NewInvokerFactory() *DefaultInvokerFactory {
	return &DefaultInvokerFactory{
		builders: make(map[string]BuilderFunc),
	}
}

// RegisterInvoker registers a builder for a provider type
func (f *DefaultInvokerFactory) RegisterInvoker(providerType string, builder BuilderFunc) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.builders[providerType] = builder
}

// CreateInvoker builds the invoker for spec and applies its rate limit.
func (f *DefaultInvokerFactory) CreateInvoker(ctx context.Context, spec ProviderSpec) (types.Invoker, error) {
	f.mutex.RLock()
	builder, exists := f.builders[spec.Type]
	f.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("provider type %q not registered", spec.Type)
	}

	inv, err := builder(ctx, spec)
	if err != nil {
		return nil, err
	}
	return common.NewRateLimitedInvoker(spec.Key, inv, spec.RateLimitRPM), nil
}

// Supports reports whether providerType has a registered builder.
func (f *DefaultInvokerFactory) Supports(providerType string) bool {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	_, ok := f.builders[providerType]
	return ok
}

// GetSupportedTypes returns all registered provider types, sorted.
func (f *DefaultInvokerFactory) GetSupportedTypes() []string {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	providerTypes := make([]string, 0, len(f.builders))
	for providerType := range f.builders {
		providerTypes = append(providerTypes, providerType)
	}
	sort.Strings(providerTypes)
	return providerTypes
}
