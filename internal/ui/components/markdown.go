// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"regexp"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
)

// Style names accepted by NewMarkdownRenderer.
const (
	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StylePlain = "notty"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// MarkdownRenderer renders assistant answers for the terminal. Renderers
// are cached per width since glamour fixes word wrap at construction.
type MarkdownRenderer struct {
	style string

	mu       sync.Mutex
	width    int
	renderer *glamour.TermRenderer
	// newRenderer is swapped in tests to exercise the fallback.
	newRenderer func(style string, width int) (*glamour.TermRenderer, error)
}

// NewMarkdownRenderer creates a renderer for the given style. "auto"
// resolves with dark; callers that know the background pass dark or light.
func NewMarkdownRenderer(style string) *MarkdownRenderer {
	switch style {
	case StyleDark, StyleLight, StylePlain:
	default:
		style = StyleDark
	}
	return &MarkdownRenderer{style: style, newRenderer: newGlamour}
}

// ResolveStyle maps a configured theme name to a renderer style.
func ResolveStyle(theme string, dark bool) string {
	switch theme {
	case StyleDark, StyleLight, StylePlain:
		return theme
	}
	if dark {
		return StyleDark
	}
	return StyleLight
}

// Style returns the resolved style name.
func (r *MarkdownRenderer) Style() string {
	return r.style
}

func newGlamour(style string, width int) (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
}

// Render renders text as markdown at width columns. It never fails: when
// glamour cannot render, the plain fallback is used.
func (r *MarkdownRenderer) Render(text string, width int) string {
	if width < 10 {
		width = 10
	}
	if r.style == StylePlain {
		return PlainMarkdown(text, width, false)
	}

	tr, err := r.rendererFor(width)
	if err != nil {
		return PlainMarkdown(text, width, true)
	}
	out, err := tr.Render(text)
	if err != nil {
		return PlainMarkdown(text, width, true)
	}
	return strings.Trim(out, "\n")
}

func (r *MarkdownRenderer) rendererFor(width int) (*glamour.TermRenderer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.renderer != nil && r.width == width {
		return r.renderer, nil
	}
	tr, err := r.newRenderer(r.style, width)
	if err != nil {
		return nil, err
	}
	r.renderer = tr
	r.width = width
	return tr, nil
}

// =============================================================================
// PLAIN FALLBACK
// =============================================================================

var (
	reBold      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldU     = regexp.MustCompile(`__(.+?)__`)
	reItalic    = regexp.MustCompile(`\*(\S(?:[^*\n]*?\S)?)\*`)
	reItalicU   = regexp.MustCompile(`\b_([^_\n]+)_\b`)
	reStrike    = regexp.MustCompile(`~~(.+?)~~`)
	reInlineTag = regexp.MustCompile("`([^`\n]+)`")
	reHeading   = regexp.MustCompile(`^#{1,6}\s+`)
	reLink      = regexp.MustCompile(`\[([^\]\n]+)\]\(([^)\s]+)\)`)
)

// StripEmphasis removes inline markdown markers from a single line, keeping
// the text they wrap. Links become "text (url)".
func StripEmphasis(line string) string {
	line = reHeading.ReplaceAllString(line, "")
	line = reLink.ReplaceAllString(line, "$1 ($2)")
	line = reInlineTag.ReplaceAllString(line, "$1")
	line = reBold.ReplaceAllString(line, "$1")
	line = reBoldU.ReplaceAllString(line, "$1")
	line = reStrike.ReplaceAllString(line, "$1")
	line = reItalic.ReplaceAllString(line, "$1")
	line = reItalicU.ReplaceAllString(line, "$1")
	return line
}

// PlainMarkdown renders markdown without glamour. Fenced code blocks are
// boxed, and highlighted with chroma when highlight is set; all other lines
// have emphasis markers stripped and are word wrapped to width.
func PlainMarkdown(text string, width int, highlight bool) string {
	var (
		out      []string
		code     []string
		language string
		inCode   bool
	)

	flush := func() {
		cb := NewCodeBlock(language, strings.Join(code, "\n"))
		cb.MaxWidth = width
		cb.Highlight = highlight
		out = append(out, cb.Render())
		code = nil
		language = ""
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inCode {
				flush()
				inCode = false
			} else {
				language = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
				inCode = true
			}
			continue
		}
		if inCode {
			code = append(code, line)
			continue
		}
		out = append(out, wordwrap.String(StripEmphasis(line), width))
	}
	if inCode && len(code) > 0 {
		flush()
	}

	return strings.Trim(strings.Join(out, "\n"), "\n")
}
