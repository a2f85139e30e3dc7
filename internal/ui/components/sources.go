// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"

	"github.com/jeranaias/docmind-tui/internal/model"
	"github.com/jeranaias/docmind-tui/internal/sources"
	"github.com/jeranaias/docmind-tui/internal/ui/styles"
	"github.com/jeranaias/docmind-tui/internal/util"
)

// SourcesHeading labels the citation list.
const SourcesHeading = "Sources"

// SourcesOptions controls citation rendering.
type SourcesOptions struct {
	Width        int
	Hyperlinks   bool
	HideSnippets bool
}

// RenderBadge renders the pill for a tool label.
func RenderBadge(theme *styles.Theme, tool string) string {
	b := styles.BadgeFor(sources.KindOf(tool))
	return theme.Badge(b).Render(b.Icon + " " + util.StripControl(sources.DisplayLabel(tool)))
}

// RenderLink renders url as a followable link. With hyperlinks enabled the
// visible text is wrapped in an OSC 8 sequence so the terminal opens it in
// the browser; otherwise the url is printed as is.
func RenderLink(theme *styles.Theme, url string, width int, hyperlinks bool) string {
	url = util.StripControl(url)
	text := url
	if width > 4 {
		text = util.TruncateWidth(url, width-2)
	}
	text = styles.LinkIcon + " " + text
	if hyperlinks {
		return termenv.Hyperlink(url, theme.Link.Render(text))
	}
	return theme.Link.Render(text)
}

// RenderSources renders the citations grouped by tool. Citations without a
// url and repeated urls are dropped first. Returns "" when nothing remains.
func RenderSources(theme *styles.Theme, citations []model.Citation, opts SourcesOptions) string {
	groups := sources.Normalize(citations)
	if len(groups) == 0 {
		return ""
	}

	width := opts.Width
	if width < 20 {
		width = 20
	}
	inner := width - 2

	lines := []string{theme.SourcesHeader.Render(styles.SourcesIcon + " " + SourcesHeading)}
	for _, g := range groups {
		lines = append(lines, RenderBadge(theme, g.Tool))
		for _, c := range g.Citations {
			lines = append(lines, theme.CitationCard.Render(renderCitation(theme, c, inner, opts)))
		}
	}
	return strings.Join(lines, "\n")
}

func renderCitation(theme *styles.Theme, c model.Citation, width int, opts SourcesOptions) string {
	title := util.StripControl(sources.Title(c.Title))
	parts := []string{theme.CitationTitle.Render(util.TruncateWidth(title, width))}
	if !opts.HideSnippets && strings.TrimSpace(c.Snippet) != "" {
		snippet := sources.TruncateSnippet(util.StripControl(c.Snippet), sources.SnippetWidth)
		parts = append(parts, theme.CitationSnippet.Render(wordwrap.String(snippet, width)))
	}
	if c.HasURL() {
		parts = append(parts, RenderLink(theme, c.URL, width, opts.Hyperlinks))
	}
	return strings.Join(parts, "\n")
}

// RenderCompactSources renders a one-line summary: a "Sources:" label
// followed by one badge per distinct tool.
func RenderCompactSources(theme *styles.Theme, citations []model.Citation) string {
	tools := sources.Tools(citations)
	if len(tools) == 0 {
		return ""
	}
	parts := []string{theme.CompactLabel.Render(SourcesHeading + ":")}
	for _, tool := range tools {
		parts = append(parts, RenderBadge(theme, tool))
	}
	return strings.Join(parts, " ")
}
