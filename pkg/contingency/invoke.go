package contingency

import (
	"context"
	"fmt"
	"time"

	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

type invokeOutcome struct {
	res *types.Result
	err error
}

// invoke performs a single call bounded by the provider timeout. A call that overruns
// the timeout is abandoned and reported as a timeout failure; caller cancellation is
// left to the invoker through ctx.
func (d *Dispatcher) invoke(ctx context.Context, p types.ProviderDescriptor, req types.Request) (*types.Result, error) {
	if p.Invoker == nil {
		return nil, types.NewProviderError(p.Key, types.ErrCodeInvalidRequest, "provider has no invoker")
	}

	timeout := d.cfg.timeoutFor(p)
	callCtx := ctx
	var timeoutC <-chan time.Time
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()

		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	done := make(chan invokeOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- invokeOutcome{err: types.NewProviderError(p.Key, types.ErrCodePanic, fmt.Sprintf("invoker panicked: %v", r))}
			}
		}()
		res, err := p.Invoker.Invoke(callCtx, req)
		done <- invokeOutcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			if timeout > 0 && ctx.Err() == nil && callCtx.Err() != nil {
				return nil, timeoutError(p.Key, timeout)
			}
			return nil, out.err
		}
		if err := types.CheckResult(p.Key, out.res); err != nil {
			return nil, err
		}
		return out.res, nil
	case <-timeoutC:
		return nil, timeoutError(p.Key, timeout)
	}
}

func timeoutError(key string, timeout time.Duration) error {
	return types.NewProviderError(key, types.ErrCodeTimeout,
		fmt.Sprintf("no response within %s", timeout)).WithOriginalErr(context.DeadlineExceeded)
}
