package contingency

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cecil-the-coder/ai-contingency/pkg/attemptlog"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// ErrNoAttemptLog is returned by Stats when the dispatcher was built without a sink.
var ErrNoAttemptLog = errors.New("dispatcher has no attempt log")

// dispatchLookback is how far before the window start GetStats reads, so that
// dispatches which began before the window can be recognised and left out whole.
const dispatchLookback = 24 * time.Hour

var unixEpoch = time.Unix(0, 0)

// GetStats aggregates the dispatches whose first attempt started within the windowDays
// days before now. A windowDays <= 0 uses DefaultStatsWindowDays. Windows reaching
// past the Unix epoch start at the epoch.
func GetStats(ctx context.Context, windowDays int, reader attemptlog.Reader, now time.Time) (*types.Stats, error) {
	if windowDays <= 0 {
		windowDays = types.DefaultStatsWindowDays
	}

	since := windowStart(now, windowDays)
	from := since.Add(-dispatchLookback)
	if from.Before(unixEpoch) {
		from = unixEpoch
	}

	records, err := reader.Query(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempt log: %w", err)
	}

	stats := Aggregate(startedSince(records, since), windowDays)
	return &stats, nil
}

func windowStart(now time.Time, windowDays int) time.Time {
	if !now.After(unixEpoch) || windowDays > int(now.Sub(unixEpoch)/(24*time.Hour)) {
		return unixEpoch
	}
	return now.AddDate(0, 0, -windowDays)
}

// startedSince keeps the records of dispatches whose earliest record started at or
// after since.
func startedSince(records []types.AttemptRecord, since time.Time) []types.AttemptRecord {
	first := make(map[string]time.Time, len(records))
	for _, r := range records {
		if t, ok := first[r.DispatchID]; !ok || r.StartedAt.Before(t) {
			first[r.DispatchID] = r.StartedAt
		}
	}

	kept := make([]types.AttemptRecord, 0, len(records))
	for _, r := range records {
		if !first[r.DispatchID].Before(since) {
			kept = append(kept, r)
		}
	}
	return kept
}

// Stats is GetStats over the dispatcher's own attempt log and clock.
func (d *Dispatcher) Stats(ctx context.Context, windowDays int) (*types.Stats, error) {
	if d.sink == nil {
		return nil, ErrNoAttemptLog
	}
	return GetStats(ctx, windowDays, d.sink, d.now())
}

// Aggregate computes usage statistics from attempt records. Records are grouped by
// dispatch ID; a dispatch counts as a contingency activation when its successful
// attempt came from a provider other than the first in its try-order. Every record
// passed in is counted, so callers windowing by time should pass whole dispatches.
func Aggregate(records []types.AttemptRecord, windowDays int) types.Stats {
	stats := types.Stats{
		WindowDays:       windowDays,
		ProviderFailures: make(map[string]int),
	}

	dispatches := make(map[string]struct{})
	fallbacks := make(map[string]int)

	for _, r := range records {
		dispatches[r.DispatchID] = struct{}{}

		if !r.Succeeded() {
			stats.ProviderFailures[r.ProviderKey]++
			continue
		}

		stats.SuccessfulRequests++
		if r.ProviderIndex > 0 {
			stats.ContingencyActivations++
			fallbacks[r.ProviderKey]++
		}
	}

	stats.TotalRequests = len(dispatches)
	stats.MostUsedFallback = mostUsed(fallbacks)
	return stats
}

// mostUsed returns the key with the highest count, the smallest key on ties.
func mostUsed(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, bestCount := "", 0
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}
