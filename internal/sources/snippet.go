// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sources

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

const (
	// SnippetWidth is the display width snippets are cut to.
	SnippetWidth = 120

	// DefaultTitle is shown for citations without a title.
	DefaultTitle = "Documentation"

	ellipsis = "..."
)

// Title returns the citation title or the placeholder.
func Title(title string) string {
	if strings.TrimSpace(title) == "" {
		return DefaultTitle
	}
	return title
}

// TruncateSnippet prepares a snippet for display: it composes the text to
// NFC so combining marks are never split from their base, collapses runs of
// whitespace, and cuts the result to width display columns including the
// trailing ellipsis. The stored snippet is never modified.
func TruncateSnippet(snippet string, width int) string {
	s := strings.Join(strings.Fields(norm.NFC.String(snippet)), " ")
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, ellipsis)
}
