// Package attemptlog stores the attempt records produced by dispatch calls so that
// usage statistics can be computed over a time window. Implementations are
// append-only and safe for concurrent use.
package attemptlog

import (
	"context"
	"time"

	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// Writer accepts attempt records.
type Writer interface {
	Append(ctx context.Context, records ...types.AttemptRecord) error
}

// Reader returns the records started at or after since, in append order.
type Reader interface {
	Query(ctx context.Context, since time.Time) ([]types.AttemptRecord, error)
}

// Sink is the full attempt log used by the dispatcher and the stats queries.
type Sink interface {
	Writer
	Reader

	// Prune drops records started before the cutoff and reports how many were removed.
	Prune(ctx context.Context, before time.Time) (int64, error)

	Close() error
}
