package attemptlog

import (
	"context"
	"sync"
	"time"

	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// MemoryLog keeps attempt records in process memory.
type MemoryLog struct {
	mu      sync.RWMutex
	records []types.AttemptRecord
}

// NewMemoryLog creates an empty in-memory attempt log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (m *MemoryLog) Append(ctx context.Context, records ...types.AttemptRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
	return nil
}

func (m *MemoryLog) Query(ctx context.Context, since time.Time) ([]types.AttemptRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.AttemptRecord, 0, len(m.records))
	for _, r := range m.records {
		if !r.StartedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryLog) Prune(ctx context.Context, before time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	var removed int64
	for _, r := range m.records {
		if r.StartedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return removed, nil
}

// Len returns the number of stored records.
func (m *MemoryLog) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MemoryLog) Close() error { return nil }
