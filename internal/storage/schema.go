// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// Schema creates every docmind table. Timestamps are RFC 3339 UTC text.
const Schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- One row per question asked. identity_id is NULL for anonymous users.
CREATE TABLE IF NOT EXISTS user_searches (
    id TEXT PRIMARY KEY,
    identity_id TEXT,
    tool TEXT NOT NULL DEFAULT '',
    query TEXT NOT NULL,
    timestamp TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_user_searches_identity ON user_searches(identity_id);
CREATE INDEX IF NOT EXISTS idx_user_searches_timestamp ON user_searches(timestamp);

CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE COLLATE NOCASE,
    display_name TEXT NOT NULL DEFAULT '',
    password_hash BLOB NOT NULL,
    salt BLOB NOT NULL,
    iterations INTEGER NOT NULL,
    totp_secret TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
`

// timestampLayout is fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
