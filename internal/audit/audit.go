// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audit provides a local trail of session lifecycle events.
//
// Events are recorded to a SQLite database under the config directory.
// Recording is best-effort by design: a failed write is logged and dropped,
// never surfaced to the session operation that produced it.
package audit

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// schema holds the audit trail table.
const schema = `
CREATE TABLE IF NOT EXISTS session_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	event      TEXT NOT NULL,
	detail     TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_events_created ON session_events(created_at);
`

// Event is one recorded session lifecycle event.
type Event struct {
	ID        int64
	Event     string
	Detail    string
	CreatedAt time.Time
}

// Trail records session events to a local SQLite database.
type Trail struct {
	db *sql.DB
}

// Open opens (creating if necessary) the audit trail at the given path.
func Open(path string) (*Trail, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	// SQLite supports a single writer; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	return &Trail{db: db}, nil
}

// Record stores one event. Failures are logged and swallowed; the audit
// trail never blocks a session operation. Never record credentials here.
func (t *Trail) Record(event, detail string) {
	_, err := t.db.Exec(
		"INSERT INTO session_events (event, detail, created_at) VALUES (?, ?, ?)",
		event, detail, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		log.Printf("audit: failed to record %s: %v", event, err)
	}
}

// Recent returns up to limit events, newest first.
func (t *Trail) Recent(limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := t.db.Query(
		"SELECT id, event, detail, created_at FROM session_events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Event, &e.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			e.CreatedAt = ts
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close releases the underlying database handle.
func (t *Trail) Close() error {
	return t.db.Close()
}
