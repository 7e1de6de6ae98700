// Package logging writes a per-event audit trail next to the records, so
// rejected answers and finalize outcomes can be inspected after the fact.
package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region schema
const eventLogSchema = `
CREATE TABLE IF NOT EXISTS event_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	chat_id     INTEGER NOT NULL,
	event       TEXT NOT NULL,
	step_key    TEXT,
	decision    TEXT NOT NULL,
	reason      TEXT,
	created_at  TEXT NOT NULL
);
`

// #endregion schema

// #region audit-log
// AuditLog appends event entries to the event_log table.
type AuditLog struct {
	db *sql.DB
}

// NewAuditLog initializes the event_log table on an already-open database.
func NewAuditLog(db *sql.DB) (*AuditLog, error) {
	if _, err := db.Exec(eventLogSchema); err != nil {
		return nil, fmt.Errorf("migrate event_log: %w", err)
	}
	return &AuditLog{db: db}, nil
}

// #endregion audit-log

// #region log-event
// LogEvent writes one audit entry. Callers treat failures as best-effort.
func (a *AuditLog) LogEvent(entry EventEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := a.db.Exec(
		`INSERT INTO event_log (chat_id, event, step_key, decision, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ChatID,
		entry.Event,
		nullIfEmpty(entry.StepKey),
		entry.Decision,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// #endregion log-event

// #region recent
// Recent returns the most recent audit entries, newest first.
func (a *AuditLog) Recent(limit int) ([]EventEntry, error) {
	rows, err := a.db.Query(
		`SELECT chat_id, event, step_key, decision, reason, created_at
		 FROM event_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query event_log: %w", err)
	}
	defer rows.Close()

	var out []EventEntry
	for rows.Next() {
		var e EventEntry
		var stepKey, reason sql.NullString
		var createdStr string
		if err := rows.Scan(&e.ChatID, &e.Event, &stepKey, &e.Decision, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan event_log: %w", err)
		}
		e.StepKey = stepKey.String
		e.Reason = reason.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion recent

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
