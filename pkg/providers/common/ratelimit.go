package common

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// RateLimitedInvoker wraps an Invoker with a client-side requests-per-minute budget.
// Waiting for a token honours the call's context, so a per-call timeout also bounds
// time spent queued behind the limiter.
type RateLimitedInvoker struct {
	key     string
	next    types.Invoker
	limiter *rate.Limiter
}

// NewRateLimitedInvoker returns next unchanged when rpm <= 0.
func NewRateLimitedInvoker(key string, next types.Invoker, rpm int) types.Invoker {
	if rpm <= 0 || next == nil {
		return next
	}
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedInvoker{
		key:     key,
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), burst),
	}
}

// Invoke waits for the limiter and then calls the wrapped invoker.
func (r *RateLimitedInvoker) Invoke(ctx context.Context, req types.Request) (*types.Result, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, types.NewProviderError(r.key, types.ErrCodeRateLimit, "client rate limit: "+err.Error()).WithOriginalErr(err)
	}
	return r.next.Invoke(ctx, req)
}

// Limit reports the configured token refill rate.
func (r *RateLimitedInvoker) Limit() rate.Limit {
	return r.limiter.Limit()
}

// Unwrap returns the wrapped invoker.
func (r *RateLimitedInvoker) Unwrap() types.Invoker {
	return r.next
}
