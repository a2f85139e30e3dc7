// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a docmind conversation to a file.
//
// # Supported Formats
//
//   - Markdown: the transcript with a Sources list under each answer
//   - HTML: the same structure rendered with goldmark and sanitized with
//     bluemonday; source links open in a new tab with no referrer
//   - JSON: the raw turns
//
// # Usage
//
//	conv := export.NewConversation(ctrl.Turns(), identityName)
//	exp, err := export.New(export.FormatHTML, nil)
//	path, err := export.ExportToFile(conv, exp, nil)
package export
