// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/jeranaias/docmind-tui/internal/model"
	"github.com/jeranaias/docmind-tui/internal/sources"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a standalone HTML page. Answer
// markdown goes through goldmark with raw HTML disabled, and the whole body
// is sanitized before it is written.
type HTMLExporter struct {
	options *Options
	md      goldmark.Markdown
	policy  *bluemonday.Policy
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{
		options: opts,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
		policy: newPolicy(),
	}
}

// newPolicy allows user-generated markup plus our class names. External
// links get target="_blank" and rel="noopener noreferrer".
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.AllowAttrs("class").Globally()
	return p
}

// Export converts a conversation to HTML.
func (e *HTMLExporter) Export(conv *Conversation) ([]byte, error) {
	if err := conv.validate(); err != nil {
		return nil, err
	}

	var body strings.Builder
	if e.options.IncludeMetadata {
		e.writeHeader(&body, conv)
	}
	body.WriteString("<main class=\"conversation\">\n")
	for _, turn := range conv.Turns {
		if err := e.writeTurn(&body, turn); err != nil {
			return nil, err
		}
	}
	body.WriteString("</main>\n")

	theme := e.options.Theme
	if theme != "dark" {
		theme = "light"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"UTF-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString("<meta name=\"referrer\" content=\"no-referrer\">\n")
	sb.WriteString("<meta name=\"generator\" content=\"docmind\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(conv.Title))
	sb.WriteString(css)
	fmt.Fprintf(&sb, "</head>\n<body class=\"%s-theme\">\n<div class=\"container\">\n", theme)
	sb.WriteString(e.policy.Sanitize(body.String()))
	fmt.Fprintf(&sb, "<footer class=\"footer\">Exported from DocuMind on %s</footer>\n",
		time.Now().Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("</div>\n</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) writeHeader(sb *strings.Builder, conv *Conversation) {
	sb.WriteString("<header class=\"header\">\n")
	fmt.Fprintf(sb, "<h1>%s</h1>\n", html.EscapeString(conv.Title))
	sb.WriteString("<p class=\"metadata\">")
	fmt.Fprintf(sb, "<span>%s</span> ", formatTimestamp(conv.CreatedAt))
	if conv.Identity != "" {
		fmt.Fprintf(sb, "<span>%s</span> ", html.EscapeString(conv.Identity))
	}
	fmt.Fprintf(sb, "<span>%d turns</span>", len(conv.Turns))
	sb.WriteString("</p>\n</header>\n")
}

func (e *HTMLExporter) writeTurn(sb *strings.Builder, turn model.Turn) error {
	fmt.Fprintf(sb, "<section class=\"turn %s\">\n", turn.Origin)
	sb.WriteString("<div class=\"turn-header\">")
	fmt.Fprintf(sb, "<span class=\"role\">%s</span>", html.EscapeString(turn.Origin.DisplayName()))
	if e.options.IncludeTimestamps && !turn.CreatedAt.IsZero() {
		fmt.Fprintf(sb, " <span class=\"timestamp\">%s</span>", formatShortTimestamp(turn.CreatedAt))
	}
	sb.WriteString("</div>\n<div class=\"turn-body\">\n")

	if turn.IsUser() {
		fmt.Fprintf(sb, "<p>%s</p>\n", html.EscapeString(turn.Text))
	} else {
		var buf bytes.Buffer
		if err := e.md.Convert([]byte(turn.Text), &buf); err != nil {
			return fmt.Errorf("render turn %d: %w", turn.ID, err)
		}
		sb.Write(buf.Bytes())
		writeSourcesHTML(sb, turn.Citations)
	}

	sb.WriteString("</div>\n</section>\n")
	return nil
}

func writeSourcesHTML(sb *strings.Builder, citations []model.Citation) {
	groups := sources.Normalize(citations)
	if len(groups) == 0 {
		return
	}

	sb.WriteString("<div class=\"sources\">\n<h3>Sources</h3>\n")
	for _, g := range groups {
		kind := sources.KindOf(g.Tool)
		fmt.Fprintf(sb, "<div class=\"source-group\">\n<span class=\"badge badge-%s\">%s</span>\n<ul>\n",
			kind, html.EscapeString(sources.DisplayLabel(g.Tool)))
		for _, c := range g.Citations {
			sb.WriteString("<li>")
			fmt.Fprintf(sb, "<a href=\"%s\" target=\"_blank\" rel=\"noopener noreferrer\">%s</a>",
				html.EscapeString(c.URL), html.EscapeString(sources.Title(c.Title)))
			if snippet := sources.TruncateSnippet(c.Snippet, sources.SnippetWidth); snippet != "" {
				fmt.Fprintf(sb, "<p class=\"snippet\">%s</p>", html.EscapeString(snippet))
			}
			sb.WriteString("</li>\n")
		}
		sb.WriteString("</ul>\n</div>\n")
	}
	sb.WriteString("</div>\n")
}

const css = `<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 0; }
.light-theme { background: #f9fafb; color: #1f2937; }
.dark-theme { background: #1e1e2e; color: #cdd6f4; }
.container { max-width: 860px; margin: 0 auto; padding: 24px; }
.header h1 { margin-bottom: 4px; }
.metadata span { margin-right: 12px; color: #6b7280; font-size: 0.9em; }
.turn { margin: 16px 0; padding: 12px 16px; border-radius: 16px; }
.turn.user { background: linear-gradient(90deg, #3b82f6, #7c3aed); color: #fff; margin-left: 20%; }
.turn.assistant { background: #f3f4f6; border: 1px solid #e5e7eb; margin-right: 10%; }
.dark-theme .turn.assistant { background: #2a2a3c; border-color: #45475a; }
.turn-header { font-size: 0.8em; font-weight: 600; margin-bottom: 6px; }
.timestamp { font-weight: normal; opacity: 0.7; }
.sources { border-top: 1px solid #e5e7eb; margin-top: 12px; padding-top: 8px; }
.sources h3 { font-size: 0.9em; margin: 0 0 8px; }
.sources ul { margin: 4px 0 8px; padding-left: 18px; }
.snippet { margin: 2px 0; font-size: 0.85em; color: #6b7280; }
.badge { display: inline-block; padding: 2px 8px; border-radius: 999px; font-size: 0.75em; border: 1px solid; }
.badge-stripe { background: #faf5ff; color: #6b21a8; border-color: #e9d5ff; }
.badge-tailwind { background: #ecfeff; color: #155e75; border-color: #a5f3fc; }
.badge-react { background: #eff6ff; color: #1e40af; border-color: #bfdbfe; }
.badge-nextjs { background: #f9fafb; color: #1f2937; border-color: #e5e7eb; }
.badge-vercel { background: #000; color: #fff; border-color: #1f2937; }
.badge-generic { background: #f0fdf4; color: #166534; border-color: #bbf7d0; }
pre { background: #1e1e2e; color: #cdd6f4; padding: 12px; border-radius: 8px; overflow-x: auto; }
.footer { margin-top: 32px; font-size: 0.8em; color: #9ca3af; text-align: center; }
</style>
`
