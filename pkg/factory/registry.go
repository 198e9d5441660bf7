package factory

import (
	"context"
	"fmt"

	"github.com/cecil-the-coder/ai-contingency/pkg/providers/anthropic"
	"github.com/cecil-the-coder/ai-contingency/pkg/providers/common"
	"github.com/cecil-the-coder/ai-contingency/pkg/providers/mock"
	"github.com/cecil-the-coder/ai-contingency/pkg/providers/openai"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// Provider types understood by RegisterDefaultInvokers.
const (
	TypeOpenAI    = "openai"
	TypeAnthropic = "anthropic"
	TypeMock      = "mock"
)

// RegisterDefaultInvokers registers the built-in provider types with the factory
func RegisterDefaultInvokers(factory *DefaultInvokerFactory) {
	factory.RegisterInvoker(TypeOpenAI, func(ctx context.Context, spec ProviderSpec) (types.Invoker, error) {
		apiKey := spec.APIKey()
		// OpenAI-compatible servers behind a base URL often need no key.
		if apiKey == "" && !spec.OAuth.Enabled() && spec.BaseURL == "" {
			return nil, fmt.Errorf("%w: set %s", ErrMissingCredentials, envName(spec))
		}
		client, err := common.NewHTTPClient(ctx, spec.OAuth, 0)
		if err != nil {
			return nil, err
		}
		return openai.New(openai.Config{
			Key:        spec.Key,
			APIKey:     apiKey,
			BaseURL:    spec.BaseURL,
			Model:      spec.Model,
			HTTPClient: client,
		}), nil
	})

	factory.RegisterInvoker(TypeAnthropic, func(ctx context.Context, spec ProviderSpec) (types.Invoker, error) {
		apiKey := spec.APIKey()
		if apiKey == "" && !spec.OAuth.Enabled() {
			return nil, fmt.Errorf("%w: set %s", ErrMissingCredentials, envName(spec))
		}
		client, err := common.NewHTTPClient(ctx, spec.OAuth, 0)
		if err != nil {
			return nil, err
		}
		return anthropic.New(anthropic.Config{
			Key:        spec.Key,
			APIKey:     apiKey,
			BaseURL:    spec.BaseURL,
			Model:      spec.Model,
			HTTPClient: client,
		}), nil
	})

	factory.RegisterInvoker(TypeMock, func(ctx context.Context, spec ProviderSpec) (types.Invoker, error) {
		return mock.New(spec.Key, spec.Model, spec.Script)
	})
}

func envName(spec ProviderSpec) string {
	if spec.APIKeyEnv == "" {
		return "api_key_env"
	}
	return spec.APIKeyEnv
}
