package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

func okInvoker(calls *int) types.Invoker {
	return types.InvokerFunc(func(ctx context.Context, req types.Request) (*types.Result, error) {
		*calls++
		return &types.Result{Content: "ok"}, nil
	})
}

func TestNewRateLimitedInvoker_Disabled(t *testing.T) {
	calls := 0
	inner := okInvoker(&calls)

	wrapped := NewRateLimitedInvoker("p", inner, 0)
	_, isLimited := wrapped.(*RateLimitedInvoker)
	assert.False(t, isLimited)
	assert.Nil(t, NewRateLimitedInvoker("p", nil, 60))
}

func TestRateLimitedInvoker_Invoke(t *testing.T) {
	calls := 0
	wrapped := NewRateLimitedInvoker("p", okInvoker(&calls), 600)

	limited, ok := wrapped.(*RateLimitedInvoker)
	require.True(t, ok)
	assert.InDelta(t, float64(rate.Every(100*time.Millisecond)), float64(limited.Limit()), 0.0001)

	res, err := wrapped.Invoke(context.Background(), types.Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Content)
	assert.Equal(t, 1, calls)
}

func TestRateLimitedInvoker_WaitHonoursContext(t *testing.T) {
	calls := 0
	// one request per minute with a burst of one: the second call must wait ~60s
	wrapped := NewRateLimitedInvoker("p", okInvoker(&calls), 1)

	_, err := wrapped.Invoke(context.Background(), types.Request{Prompt: "first"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = wrapped.Invoke(ctx, types.Request{Prompt: "second"})
	require.Error(t, err)
	assert.Equal(t, types.ErrCodeRateLimit, types.ErrorCodeOf(err))
	assert.Equal(t, 1, calls)
}
