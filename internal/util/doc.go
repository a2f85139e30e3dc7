// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across docmind.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile, AtomicWriteJSON: crash-safe writes with fsync
//   - DataDir, DataPath: the ~/.docmind directory and files inside it
//
// String Utilities:
//   - OneLine: collapse whitespace for single-line display
//   - TruncateWidth, PadRight: display-width aware (CJK, emoji) layout
//
// # Usage
//
//	path, err := util.DataPath("session.json")
//	err = util.AtomicWriteJSON(path, session, 0600)
//
//	row := util.PadRight(util.TruncateWidth(query, 40), 40)
package util
