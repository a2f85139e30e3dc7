// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// QueryLogEntry is one logged question.
type QueryLogEntry struct {
	ID string
	// IdentityID is empty for anonymous users and stored as NULL.
	IdentityID string
	Tool       string
	Query      string
	Timestamp  time.Time
}

// Anonymous reports whether no identity was attached.
func (e *QueryLogEntry) Anonymous() bool {
	return e.IdentityID == ""
}

// ListOptions filters QueryLog.List.
type ListOptions struct {
	// Limit caps the number of rows. Zero means DefaultListLimit.
	Limit int
	// IdentityID restricts results to one identity when non-empty.
	IdentityID string
	// Contains filters by a case-insensitive substring of the query.
	Contains string
}

// DefaultListLimit bounds List when no limit is given.
const DefaultListLimit = 50

// QueryLog is the append-only question log.
type QueryLog struct {
	db  *DB
	now func() time.Time
}

// NewQueryLog creates a QueryLog on an open DB.
func NewQueryLog(db *DB) *QueryLog {
	return &QueryLog{db: db, now: time.Now}
}

// Append stores an entry. A missing ID or Timestamp is filled in and written
// back to the entry.
func (l *QueryLog) Append(ctx context.Context, entry *QueryLogEntry) error {
	if entry == nil {
		return errors.New("nil query log entry")
	}
	if strings.TrimSpace(entry.Query) == "" {
		return errors.New("query is required")
	}
	conn, err := l.db.conn()
	if err != nil {
		return err
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}
	entry.Timestamp = entry.Timestamp.UTC()

	_, err = conn.ExecContext(ctx, `
		INSERT INTO user_searches (id, identity_id, tool, query, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, entry.ID, nullString(entry.IdentityID), entry.Tool, entry.Query,
		entry.Timestamp.Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("failed to append query log: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (l *QueryLog) List(ctx context.Context, opts ListOptions) ([]QueryLogEntry, error) {
	conn, err := l.db.conn()
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var where []string
	var args []any
	if opts.IdentityID != "" {
		where = append(where, "identity_id = ?")
		args = append(args, opts.IdentityID)
	}
	if opts.Contains != "" {
		where = append(where, "instr(lower(query), lower(?)) > 0")
		args = append(args, opts.Contains)
	}

	query := "SELECT id, identity_id, tool, query, timestamp FROM user_searches"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list query log: %w", err)
	}
	defer rows.Close()

	var entries []QueryLogEntry
	for rows.Next() {
		var e QueryLogEntry
		var identity sql.NullString
		var ts string
		if err := rows.Scan(&e.ID, &identity, &e.Tool, &e.Query, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan query log: %w", err)
		}
		e.IdentityID = identity.String
		if e.Timestamp, err = time.Parse(timestampLayout, ts); err != nil {
			return nil, fmt.Errorf("bad timestamp %q: %w", ts, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of logged questions.
func (l *QueryLog) Count(ctx context.Context) (int, error) {
	conn, err := l.db.conn()
	if err != nil {
		return 0, err
	}
	var n int
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_searches").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count query log: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
