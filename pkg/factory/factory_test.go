package factory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cecil-the-coder/ai-contingency/pkg/providers/common"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

func stubBuilder(content string) BuilderFunc {
	return func(ctx context.Context, spec ProviderSpec) (types.Invoker, error) {
		return types.InvokerFunc(func(ctx context.Context, req types.Request) (*types.Result, error) {
			return &types.Result{Content: content}, nil
		}), nil
	}
}

// TestNewInvokerFactory tests factory creation and initialization
func TestNewInvokerFactory(t *testing.T) {
	factory := NewInvokerFactory()

	assert.NotNil(t, factory)
	assert.NotNil(t, factory.builders)
	assert.Empty(t, factory.GetSupportedTypes())
}

// TestDefaultInvokerFactory_RegisterInvoker_ConcurrentAccess tests thread safety of registration
func TestDefaultInvokerFactory_RegisterInvoker_ConcurrentAccess(t *testing.T) {
	factory := NewInvokerFactory()
	var wg sync.WaitGroup
	numGoroutines := 50

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			factory.RegisterInvoker(fmt.Sprintf("type-%d", i), stubBuilder("ok"))
			_ = factory.GetSupportedTypes()
		}(i)
	}
	wg.Wait()

	assert.Len(t, factory.GetSupportedTypes(), numGoroutines)
}

// TestDefaultInvokerFactory_CreateInvoker tests building, rate limit wrapping and unknown types
func TestDefaultInvokerFactory_CreateInvoker(t *testing.T) {
	factory := NewInvokerFactory()
	factory.RegisterInvoker("stub", stubBuilder("hi"))
	factory.RegisterInvoker("broken", func(ctx context.Context, spec ProviderSpec) (types.Invoker, error) {
		return nil, errors.New("cannot build")
	})

	t.Run("plain", func(t *testing.T) {
		inv, err := factory.CreateInvoker(context.Background(), ProviderSpec{Key: "a", Type: "stub"})
		require.NoError(t, err)
		_, limited := inv.(*common.RateLimitedInvoker)
		assert.False(t, limited)

		res, err := inv.Invoke(context.Background(), types.Request{Prompt: "x"})
		require.NoError(t, err)
		assert.Equal(t, "hi", res.Content)
	})

	t.Run("rate limited", func(t *testing.T) {
		inv, err := factory.CreateInvoker(context.Background(), ProviderSpec{Key: "a", Type: "stub", RateLimitRPM: 120})
		require.NoError(t, err)
		_, limited := inv.(*common.RateLimitedInvoker)
		assert.True(t, limited)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := factory.CreateInvoker(context.Background(), ProviderSpec{Key: "a", Type: "gemini"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not registered")
	})

	t.Run("builder error", func(t *testing.T) {
		_, err := factory.CreateInvoker(context.Background(), ProviderSpec{Key: "a", Type: "broken"})
		assert.EqualError(t, err, "cannot build")
	})
}
