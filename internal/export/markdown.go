// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/docmind-tui/internal/model"
	"github.com/jeranaias/docmind-tui/internal/sources"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a conversation to Markdown.
func (e *MarkdownExporter) Export(conv *Conversation) ([]byte, error) {
	if err := conv.validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", escapeYAML(conv.Title))
		fmt.Fprintf(&sb, "date: %s\n", conv.CreatedAt.Format(time.RFC3339))
		if conv.Identity != "" {
			fmt.Fprintf(&sb, "identity: %s\n", escapeYAML(conv.Identity))
		}
		fmt.Fprintf(&sb, "turns: %d\n", len(conv.Turns))
		sb.WriteString("generator: docmind\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(conv.Title))

	for _, turn := range conv.Turns {
		e.writeTurn(&sb, turn)
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// writeTurn writes one turn. Answer text is copied verbatim; it is
// already markdown.
func (e *MarkdownExporter) writeTurn(sb *strings.Builder, turn model.Turn) {
	heading := turn.Origin.DisplayName()
	if e.options.IncludeTimestamps && !turn.CreatedAt.IsZero() {
		heading += " (" + formatShortTimestamp(turn.CreatedAt) + ")"
	}
	fmt.Fprintf(sb, "### %s\n\n", heading)
	sb.WriteString(strings.TrimSpace(turn.Text))
	sb.WriteString("\n\n")

	if turn.IsAssistant() {
		writeSourcesMarkdown(sb, turn.Citations)
	}
}

func writeSourcesMarkdown(sb *strings.Builder, citations []model.Citation) {
	groups := sources.Normalize(citations)
	if len(groups) == 0 {
		return
	}

	sb.WriteString("**Sources**\n\n")
	for _, g := range groups {
		fmt.Fprintf(sb, "*%s*\n\n", escapeMarkdown(sources.DisplayLabel(g.Tool)))
		for _, c := range g.Citations {
			fmt.Fprintf(sb, "- [%s](<%s>)", escapeMarkdown(sources.Title(c.Title)), linkDestination(c.URL))
			if snippet := sources.TruncateSnippet(c.Snippet, sources.SnippetWidth); snippet != "" {
				fmt.Fprintf(sb, ": %s", escapeMarkdown(snippet))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
}

// =============================================================================
// ESCAPING
// =============================================================================

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
)

// escapeMarkdown escapes characters with inline meaning in Markdown.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

var destinationEscaper = strings.NewReplacer(
	"<", "%3C",
	">", "%3E",
	" ", "%20",
	"\n", "",
	"\r", "",
)

// linkDestination makes url safe inside an angle-bracket link destination.
func linkDestination(url string) string {
	return destinationEscaper.Replace(url)
}

// escapeYAML quotes a frontmatter value.
func escapeYAML(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", " ")
	return `"` + s + `"`
}
