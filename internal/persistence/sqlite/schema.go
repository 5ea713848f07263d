package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migrations holds the ordered DDL history. Entries are append-only; each is
// applied at most once, tracked in schema_version.
var migrations = []string{
	`
CREATE TABLE IF NOT EXISTS candidates (
    id                  TEXT PRIMARY KEY,
    workspace_id        TEXT NOT NULL,
    name                TEXT NOT NULL,
    email               TEXT NOT NULL DEFAULT '',
    position            TEXT NOT NULL DEFAULT '',
    current_stage_index INTEGER NOT NULL DEFAULT 0,
    status              TEXT NOT NULL CHECK(status IN ('active','documentation','hired','rejected','dismissed','archived')),
    rejection_stage     INTEGER,
    rejection_reason    TEXT,
    created_at          TEXT NOT NULL,
    updated_at          TEXT NOT NULL,
    deleted_at          TEXT
);
CREATE INDEX IF NOT EXISTS idx_candidates_workspace ON candidates(workspace_id, status);

CREATE TABLE IF NOT EXISTS interview_stages (
    id             TEXT PRIMARY KEY,
    candidate_id   TEXT NOT NULL REFERENCES candidates(id),
    stage_index    INTEGER NOT NULL,
    stage_name     TEXT NOT NULL,
    interviewer_id TEXT,
    status         TEXT NOT NULL CHECK(status IN ('waiting','pending','in_progress','passed','failed')),
    scheduled_at   TEXT,
    completed_at   TEXT,
    comments       TEXT,
    rating         INTEGER,
    created_at     TEXT NOT NULL,
    updated_at     TEXT NOT NULL,
    deleted_at     TEXT
);
CREATE INDEX IF NOT EXISTS idx_stages_candidate ON interview_stages(candidate_id, stage_index);

CREATE TABLE IF NOT EXISTS interviews (
    id               TEXT PRIMARY KEY,
    stage_id         TEXT NOT NULL REFERENCES interview_stages(id),
    candidate_id     TEXT NOT NULL REFERENCES candidates(id),
    interviewer_id   TEXT NOT NULL,
    scheduled_at     TEXT NOT NULL,
    duration_minutes INTEGER NOT NULL DEFAULT 30,
    status           TEXT NOT NULL CHECK(status IN ('scheduled','completed','cancelled','rescheduled')),
    outcome          TEXT CHECK(outcome IN ('passed','failed','pending')),
    notes            TEXT,
    created_at       TEXT NOT NULL,
    updated_at       TEXT NOT NULL,
    deleted_at       TEXT
);
CREATE INDEX IF NOT EXISTS idx_interviews_interviewer ON interviews(interviewer_id, scheduled_at);
CREATE INDEX IF NOT EXISTS idx_interviews_stage ON interviews(stage_id);

CREATE TABLE IF NOT EXISTS notifications (
    id                  TEXT PRIMARY KEY,
    user_id             TEXT NOT NULL,
    type                TEXT NOT NULL,
    title               TEXT NOT NULL,
    message             TEXT NOT NULL DEFAULT '',
    related_entity_type TEXT NOT NULL DEFAULT '',
    related_entity_id   TEXT NOT NULL DEFAULT '',
    is_read             INTEGER NOT NULL DEFAULT 0,
    created_at          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC);
`,
}

// Migrate brings the schema up to the latest version. Each pending migration
// runs in its own transaction together with its schema_version bookkeeping.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current sql.NullInt64
	if err := cp.db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	applied := int(current.Int64)
	for version := applied + 1; version <= len(migrations); version++ {
		ddl := migrations[version-1]
		err := cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.Exec(ddl); err != nil {
				return fmt.Errorf("apply migration %d: %w", version, err)
			}
			if _, err := tx.Exec(
				"INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
				version, time.Now().UTC().Format(time.RFC3339),
			); err != nil {
				return fmt.Errorf("record migration %d: %w", version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}
