package contingency

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/cecil-the-coder/ai-contingency/pkg/attemptlog"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	cfg.ProviderTimeout = 2 * time.Second
	return cfg
}

func newTestDispatcher(t *testing.T, cfg Config, opts ...Option) (*Dispatcher, *attemptlog.MemoryLog, *logtest.Hook) {
	t.Helper()

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	sink := attemptlog.NewMemoryLog()
	all := append([]Option{WithLogger(logger)}, opts...)
	return NewDispatcher(cfg, sink, all...), sink, hook
}

func loggedRecords(t *testing.T, sink attemptlog.Reader) []types.AttemptRecord {
	t.Helper()
	records, err := sink.Query(context.Background(), time.Time{})
	require.NoError(t, err)
	return records
}

func events(hook *logtest.Hook) []string {
	var out []string
	for _, e := range hook.AllEntries() {
		if ev, ok := e.Data["event"].(string); ok {
			out = append(out, ev)
		}
	}
	return out
}

func keysOf(records []types.AttemptRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ProviderKey
	}
	return out
}
