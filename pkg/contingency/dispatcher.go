package contingency

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cecil-the-coder/ai-contingency/pkg/attemptlog"
	"github.com/cecil-the-coder/ai-contingency/pkg/providers/common"
	"github.com/cecil-the-coder/ai-contingency/pkg/providers/common/retry"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// Dispatcher runs requests against an ordered set of providers. It holds no mutable
// state besides its configuration, so one Dispatcher may serve concurrent calls.
type Dispatcher struct {
	cfg    Config
	sink   attemptlog.Sink
	logger logrus.FieldLogger
	now    func() time.Time
	newID  func() string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for attempt and dispatch events.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClock replaces time.Now for record timestamps and stats windows.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithIDGenerator replaces the dispatch ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(d *Dispatcher) {
		if newID != nil {
			d.newID = newID
		}
	}
}

// NewDispatcher creates a dispatcher that appends its attempt records to sink.
// A nil sink discards records.
func NewDispatcher(cfg Config, sink attemptlog.Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:    cfg,
		sink:   sink,
		logger: logrus.StandardLogger(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Config returns the dispatcher configuration.
func (d *Dispatcher) Config() Config {
	return d.cfg
}

// Sink returns the attempt log the dispatcher writes to.
func (d *Dispatcher) Sink() attemptlog.Sink {
	return d.sink
}

// Dispatch executes req against providers and returns exactly one result.
//
// The returned error is non-nil only when the request is invalid (ErrInvalidRequest),
// no provider is usable (ErrNoProvidersConfigured) or ctx ended mid-dispatch
// (ErrDispatchCancelled, returned together with the partial result). Exhausting every
// provider is reported through the result: Success is false and Error summarizes the
// last failure of each provider.
func (d *Dispatcher) Dispatch(ctx context.Context, req types.Request, providers []types.ProviderDescriptor) (*types.DispatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	order := TryOrder(req, providers)
	if len(order) == 0 {
		return nil, types.ErrNoProvidersConfigured
	}

	dispatchID := d.newID()
	log := d.logger.WithField("dispatch_id", dispatchID)
	started := d.now()

	log.WithFields(logrus.Fields{
		"event":     "dispatch_started",
		"providers": len(order),
		"first":     order[0].Key,
	}).Debug("Dispatch started")

	var attempts []types.AttemptRecord
	lastErrs := make([]*types.ProviderError, len(order))
	cur := newCursor(order, d.cfg.policyFor)

	for !cur.done() {
		p, idx, attempt := cur.current()

		if err := ctx.Err(); err != nil {
			return d.cancelled(ctx, log, dispatchID, attempts, started, err)
		}

		attemptLog := log.WithFields(logrus.Fields{"provider": p.Key, "attempt": attempt})
		record, res, perr := d.attempt(ctx, dispatchID, p, idx, attempt, req)
		attempts = append(attempts, record)

		if perr == nil {
			result := &types.DispatchResult{
				DispatchID:      dispatchID,
				Success:         true,
				ProviderKey:     p.Key,
				Content:         res.Content,
				TokensUsed:      res.TokensUsed,
				Model:           resultModel(res, p),
				FallbackUsed:    idx > 0,
				Attempts:        attempts,
				TotalDurationMs: d.now().Sub(started).Milliseconds(),
			}
			attemptLog.WithFields(logrus.Fields{
				"event":         "dispatch_succeeded",
				"fallback_used": result.FallbackUsed,
				"attempts":      len(attempts),
				"duration_ms":   result.TotalDurationMs,
			}).Info("Dispatch succeeded")
			d.record(ctx, log, attempts)
			return result, nil
		}

		lastErrs[idx] = perr
		attemptLog.WithFields(logrus.Fields{
			"event":      "attempt_failed",
			"error_type": perr.Code,
		}).Warnf("Provider attempt failed: %s", perr.Message)

		wait, switched := cur.advance()
		if switched {
			if !cur.done() {
				next, _, _ := cur.current()
				log.WithFields(logrus.Fields{
					"event": "fallback",
					"from":  p.Key,
					"to":    next.Key,
				}).Info("Provider exhausted, falling back")
			}
			continue
		}

		if err := retry.Sleep(ctx, wait); err != nil {
			return d.cancelled(ctx, log, dispatchID, attempts, started, err)
		}
	}

	cause := exhaustedError(order, lastErrs)
	result := types.NewFailedResult(dispatchID, attempts, cause)
	result.TotalDurationMs = d.now().Sub(started).Milliseconds()

	log.WithFields(logrus.Fields{
		"event":    "dispatch_exhausted",
		"attempts": len(attempts),
	}).Error(result.Error)
	d.record(ctx, log, attempts)
	return result, nil
}

// cancelled builds the partial result returned when ctx ends between attempts.
func (d *Dispatcher) cancelled(ctx context.Context, log logrus.FieldLogger, dispatchID string, attempts []types.AttemptRecord, started time.Time, ctxErr error) (*types.DispatchResult, error) {
	cause := fmt.Errorf("%w: %w", types.ErrDispatchCancelled, ctxErr)
	result := types.NewFailedResult(dispatchID, attempts, cause)
	result.TotalDurationMs = d.now().Sub(started).Milliseconds()

	log.WithFields(logrus.Fields{
		"event":    "dispatch_cancelled",
		"attempts": len(attempts),
	}).Warn("Dispatch cancelled")
	d.record(ctx, log, attempts)
	return result, cause
}

// attempt performs one provider call and builds its record.
func (d *Dispatcher) attempt(ctx context.Context, dispatchID string, p types.ProviderDescriptor, idx, attempt int, req types.Request) (types.AttemptRecord, *types.Result, *types.ProviderError) {
	startedAt := d.now()
	res, err := d.invoke(ctx, p, req)
	record := types.AttemptRecord{
		DispatchID:    dispatchID,
		ProviderKey:   p.Key,
		ProviderIndex: idx,
		AttemptNumber: attempt,
		StartedAt:     startedAt,
		DurationMs:    d.now().Sub(startedAt).Milliseconds(),
	}

	if err != nil {
		perr := common.ClassifyError(p.Key, err)
		record.Outcome = types.OutcomeFailure
		record.ErrorType = perr.Code
		record.ErrorMessage = perr.Message
		return record, nil, perr
	}

	record.Outcome = types.OutcomeSuccess
	record.TokensUsed = res.TokensUsed
	return record, res, nil
}

// record appends the records to the sink. The dispatch outcome is already decided,
// so the append outlives caller cancellation and its failure is only logged.
func (d *Dispatcher) record(ctx context.Context, log logrus.FieldLogger, attempts []types.AttemptRecord) {
	if d.sink == nil || len(attempts) == 0 {
		return
	}
	if err := d.sink.Append(context.WithoutCancel(ctx), attempts...); err != nil {
		log.WithFields(logrus.Fields{
			"event":   "attempt_log_failed",
			"records": len(attempts),
		}).WithError(err).Error("Failed to append attempt records")
	}
}

// exhaustedError summarizes the last failure of every provider in try-order.
func exhaustedError(order []types.ProviderDescriptor, lastErrs []*types.ProviderError) error {
	parts := make([]string, 0, len(order))
	for i, p := range order {
		if lastErrs[i] == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", p.Key, lastErrs[i].Message))
	}
	return fmt.Errorf("%w: %s", types.ErrAllProvidersExhausted, strings.Join(parts, "; "))
}

func resultModel(res *types.Result, p types.ProviderDescriptor) string {
	if res.Model != "" {
		return res.Model
	}
	return p.Model
}
