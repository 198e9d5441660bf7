package attemptlog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// sinks returns every Sink implementation, freshly created.
func sinks(t *testing.T) map[string]Sink {
	t.Helper()

	sqliteLog, err := OpenSQLite(filepath.Join(t.TempDir(), "attempts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteLog.Close() })

	return map[string]Sink{
		"memory": NewMemoryLog(),
		"sqlite": sqliteLog,
	}
}

func record(dispatchID, key string, index, attempt int, startedAt time.Time, outcome types.Outcome) types.AttemptRecord {
	r := types.AttemptRecord{
		DispatchID:    dispatchID,
		ProviderKey:   key,
		ProviderIndex: index,
		AttemptNumber: attempt,
		StartedAt:     startedAt,
		DurationMs:    12,
		Outcome:       outcome,
	}
	if outcome == types.OutcomeFailure {
		r.ErrorType = types.ErrCodeServerError
		r.ErrorMessage = "boom"
	} else {
		r.TokensUsed = 42
	}
	return r
}

func TestSink_AppendAndQuery(t *testing.T) {
	now := time.Now()

	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, sink.Append(ctx,
				record("d1", "a", 0, 1, now, types.OutcomeFailure),
				record("d1", "a", 0, 2, now.Add(time.Millisecond), types.OutcomeFailure),
				record("d1", "b", 1, 1, now.Add(2*time.Millisecond), types.OutcomeSuccess),
			))

			got, err := sink.Query(ctx, now.Add(-time.Hour))
			require.NoError(t, err)
			require.Len(t, got, 3)

			assert.Equal(t, "a", got[0].ProviderKey)
			assert.Equal(t, 2, got[1].AttemptNumber)
			assert.Equal(t, "b", got[2].ProviderKey)
			assert.Equal(t, 1, got[2].ProviderIndex)
			assert.Equal(t, types.OutcomeSuccess, got[2].Outcome)
			assert.Equal(t, 42, got[2].TokensUsed)
			assert.Equal(t, types.ErrCodeServerError, got[0].ErrorType)
			assert.Equal(t, "boom", got[0].ErrorMessage)
			assert.True(t, got[0].StartedAt.Equal(now))
		})
	}
}

func TestSink_QueryWindow(t *testing.T) {
	now := time.Now()

	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, sink.Append(ctx,
				record("old", "a", 0, 1, now.Add(-10*24*time.Hour), types.OutcomeSuccess),
				record("new", "a", 0, 1, now.Add(-time.Hour), types.OutcomeSuccess),
			))

			got, err := sink.Query(ctx, now.Add(-7*24*time.Hour))
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "new", got[0].DispatchID)
		})
	}
}

func TestSink_AppendEmpty(t *testing.T) {
	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, sink.Append(context.Background()))

			got, err := sink.Query(context.Background(), time.Time{})
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestSink_Prune(t *testing.T) {
	now := time.Now()

	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, sink.Append(ctx,
				record("d1", "a", 0, 1, now.Add(-48*time.Hour), types.OutcomeSuccess),
				record("d2", "a", 0, 1, now.Add(-36*time.Hour), types.OutcomeSuccess),
				record("d3", "a", 0, 1, now, types.OutcomeSuccess),
			))

			removed, err := sink.Prune(ctx, now.Add(-24*time.Hour))
			require.NoError(t, err)
			assert.Equal(t, int64(2), removed)

			got, err := sink.Query(ctx, time.Time{})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "d3", got[0].DispatchID)
		})
	}
}

func TestSink_ConcurrentAppends(t *testing.T) {
	now := time.Now()

	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					id := fmt.Sprintf("d%d", i)
					assert.NoError(t, sink.Append(ctx,
						record(id, "a", 0, 1, now, types.OutcomeFailure),
						record(id, "b", 1, 1, now, types.OutcomeSuccess),
					))
				}(i)
			}
			wg.Wait()

			got, err := sink.Query(ctx, time.Time{})
			require.NoError(t, err)
			require.Len(t, got, 40)

			// Each dispatch's records stay adjacent and ordered.
			for i := 0; i < len(got); i += 2 {
				assert.Equal(t, got[i].DispatchID, got[i+1].DispatchID)
				assert.Equal(t, "a", got[i].ProviderKey)
				assert.Equal(t, "b", got[i+1].ProviderKey)
			}
		})
	}
}

func TestMemoryLog_CancelledContext(t *testing.T) {
	log := NewMemoryLog()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, log.Append(ctx, record("d", "a", 0, 1, time.Now(), types.OutcomeSuccess)), context.Canceled)
	assert.Equal(t, 0, log.Len())
}

func TestOpenSQLite_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "attempts.db")
	ctx := context.Background()

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx, record("d1", "a", 0, 1, time.Now(), types.OutcomeSuccess)))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Query(ctx, time.Time{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
