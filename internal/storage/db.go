// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound      = errors.New("record not found")
	ErrAccountExists = errors.New("account already exists")
	ErrClosed        = errors.New("database not open")
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// =============================================================================
// DB
// =============================================================================

// DB is a SQLite database connection shared by the stores.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a DB for the given path. Nothing is opened until Open.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Path returns the database location.
func (db *DB) Path() string {
	return db.path
}

// Open opens the connection, applies pragmas and creates the schema.
func (db *DB) Open() error {
	if db.path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(db.path), 0700); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time. A single connection also
	// keeps an in-memory database alive for the life of the pool.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	if db.path != MemoryPath {
		// WAL is not supported for in-memory databases.
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL")
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := conn.Exec(Schema); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := conn.Exec(
		"INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', ?)",
		strconv.Itoa(SchemaVersion),
	); err != nil {
		conn.Close()
		return fmt.Errorf("failed to write schema version: %w", err)
	}

	db.db = conn
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// SchemaVersion reads the stored schema version.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	if db.db == nil {
		return 0, ErrClosed
	}
	var v string
	if err := db.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return strconv.Atoi(v)
}

func (db *DB) conn() (*sql.DB, error) {
	if db.db == nil {
		return nil, ErrClosed
	}
	return db.db, nil
}
