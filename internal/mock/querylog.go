// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mock

import (
	"context"
	"sync"

	"github.com/jeranaias/docmind-tui/internal/storage"
)

// QueryLogger is a mock of the conversation query log dependency.
type QueryLogger struct {
	AppendFn func(ctx context.Context, entry *storage.QueryLogEntry) error
}

func (l *QueryLogger) Append(ctx context.Context, entry *storage.QueryLogEntry) error {
	return l.AppendFn(ctx, entry)
}

// RecordingQueryLogger collects appended entries. Safe for concurrent use.
type RecordingQueryLogger struct {
	mu      sync.Mutex
	entries []storage.QueryLogEntry
	// Err, when set, is returned from every Append after recording.
	Err error
}

func (l *RecordingQueryLogger) Append(ctx context.Context, entry *storage.QueryLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, *entry)
	return l.Err
}

// Entries returns a copy of everything appended so far.
func (l *RecordingQueryLogger) Entries() []storage.QueryLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]storage.QueryLogEntry(nil), l.entries...)
}
