package attemptlog

// migrations is the ordered list of SQL migration statements.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dispatch_id TEXT NOT NULL,
		provider_key TEXT NOT NULL,
		provider_index INTEGER NOT NULL,
		attempt_number INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		error_type TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		tokens_used INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attempts_started_at ON attempts(started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_attempts_dispatch_id ON attempts(dispatch_id)`,
}
