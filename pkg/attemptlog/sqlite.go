package attemptlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// SQLiteLog persists attempt records in a SQLite database.
type SQLiteLog struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the attempt log at dbPath. ":memory:" is accepted.
func OpenSQLite(dbPath string) (*SQLiteLog, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
			return nil, fmt.Errorf("attemptlog: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("attemptlog: open db: %w", err)
	}

	// SQLite allows a single writer; one connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{`PRAGMA journal_mode=WAL`, `PRAGMA busy_timeout=5000`} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("attemptlog: %s: %w", pragma, err)
		}
	}

	l := &SQLiteLog{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("attemptlog: migrate: %w", err)
	}
	return l, nil
}

func (l *SQLiteLog) migrate() error {
	for _, stmt := range migrations {
		if _, err := l.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (l *SQLiteLog) Append(ctx context.Context, records ...types.AttemptRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("attemptlog: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO attempts (dispatch_id, provider_key, provider_index, attempt_number,
			started_at, duration_ms, outcome, error_type, error_message, tokens_used)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("attemptlog: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.DispatchID, r.ProviderKey, r.ProviderIndex, r.AttemptNumber,
			r.StartedAt.UnixNano(), r.DurationMs, string(r.Outcome),
			string(r.ErrorType), r.ErrorMessage, r.TokensUsed,
		); err != nil {
			return fmt.Errorf("attemptlog: insert: %w", err)
		}
	}

	return tx.Commit()
}

func (l *SQLiteLog) Query(ctx context.Context, since time.Time) ([]types.AttemptRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT dispatch_id, provider_key, provider_index, attempt_number, started_at,
			duration_ms, outcome, error_type, error_message, tokens_used
		FROM attempts WHERE started_at >= ? ORDER BY id ASC`,
		since.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("attemptlog: query: %w", err)
	}
	defer rows.Close()

	var records []types.AttemptRecord
	for rows.Next() {
		var (
			r         types.AttemptRecord
			startedAt int64
			outcome   string
			errType   string
		)
		if err := rows.Scan(&r.DispatchID, &r.ProviderKey, &r.ProviderIndex, &r.AttemptNumber,
			&startedAt, &r.DurationMs, &outcome, &errType, &r.ErrorMessage, &r.TokensUsed); err != nil {
			return nil, fmt.Errorf("attemptlog: scan: %w", err)
		}
		r.StartedAt = time.Unix(0, startedAt)
		r.Outcome = types.Outcome(outcome)
		r.ErrorType = types.ErrorCode(errType)
		records = append(records, r)
	}

	return records, rows.Err()
}

func (l *SQLiteLog) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := l.db.ExecContext(ctx, `DELETE FROM attempts WHERE started_at < ?`, before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("attemptlog: prune: %w", err)
	}
	return res.RowsAffected()
}

func (l *SQLiteLog) Close() error {
	return l.db.Close()
}
