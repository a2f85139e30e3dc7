// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides SQLite persistence for docmind.
//
// Two stores share one database file:
//
//   - QueryLog: append-only record of every question asked (user_searches)
//   - AccountStore: local accounts backing the identity package
//
// # Usage
//
//	db := storage.NewDB(filepath.Join(home, ".docmind", "docmind.db"))
//	if err := db.Open(); err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	log := storage.NewQueryLog(db)
//	err := log.Append(ctx, &storage.QueryLogEntry{Tool: "docmind", Query: "rate limits"})
//
// Use ":memory:" as the path for tests.
package storage
