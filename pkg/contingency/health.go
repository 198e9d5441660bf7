package contingency

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cecil-the-coder/ai-contingency/pkg/providers/common"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// TestProvider sends the canned health-check request to the provider with the given key.
// It makes exactly one call with no retry or fallback and records nothing in the attempt
// log, so health checks never show up in usage statistics. Disabled providers can be
// tested too.
func (d *Dispatcher) TestProvider(ctx context.Context, key string, providers []types.ProviderDescriptor) types.TestResult {
	p, ok := types.FindProvider(providers, key)
	if !ok {
		return d.testFailure(key, fmt.Errorf("%w: %s", types.ErrProviderNotFound, key), 0)
	}
	return d.test(ctx, p)
}

// TestAll health-checks every provider concurrently and returns the results in the
// order of providers.
func (d *Dispatcher) TestAll(ctx context.Context, providers []types.ProviderDescriptor) []types.TestResult {
	results := make([]types.TestResult, len(providers))

	var g errgroup.Group
	g.SetLimit(d.cfg.healthParallelism())
	for i, p := range providers {
		i, p := i, p
		g.Go(func() error {
			results[i] = d.test(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (d *Dispatcher) test(ctx context.Context, p types.ProviderDescriptor) types.TestResult {
	if p.Invoker == nil {
		return d.testFailure(p.Key, types.NewProviderError(p.Key, types.ErrCodeInvalidRequest, "provider has no invoker"), 0)
	}

	log := d.logger.WithFields(logrus.Fields{"provider": p.Key, "event": "health_check"})

	started := d.now()
	res, err := d.invoke(ctx, p, types.HealthCheckRequest())
	latency := d.now().Sub(started)

	if err != nil {
		perr := common.ClassifyError(p.Key, err)
		log.WithField("error_type", perr.Code).Warnf("Health check failed: %s", perr.Message)
		return d.testFailure(p.Key, perr, latency)
	}

	log.WithField("latency_ms", latency.Milliseconds()).Debug("Health check passed")
	result := types.NewSuccessResult(p.Key, resultModel(res, p), latency)
	result.CheckedAt = d.now()
	return result
}

func (d *Dispatcher) testFailure(key string, err error, latency time.Duration) types.TestResult {
	result := types.NewErrorResult(key, err, latency)
	result.CheckedAt = d.now()
	return result
}
