// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/docmind-tui/internal/config"
	"github.com/jeranaias/docmind-tui/internal/model"
	"github.com/jeranaias/docmind-tui/internal/sources"
	"github.com/jeranaias/docmind-tui/internal/ui/components"
	"github.com/jeranaias/docmind-tui/internal/ui/styles"
	"github.com/jeranaias/docmind-tui/internal/util"
)

// printer renders answers for line-oriented output. Without a colour
// terminal it falls back to plain text: no ANSI styling and markdown
// emphasis stripped.
type printer struct {
	out    io.Writer
	theme  *styles.Theme
	md     *components.MarkdownRenderer
	width  int
	color  bool
	source components.SourcesOptions
}

func newPrinter(w io.Writer, cfg *config.Config, noColor bool) *printer {
	profile := colorProfile(w, noColor)
	color := profile != termenv.Ascii

	dark := true
	if color {
		dark = termenv.NewOutput(w).HasDarkBackground()
	}
	lipgloss.SetColorProfile(profile)

	theme := styles.NewThemeWithProfile(profile, dark)
	style := components.StylePlain
	if color {
		style = components.ResolveStyle(cfg.UI.Theme, dark)
	}

	width := cfg.UI.WordWrap
	if width <= 0 {
		width = terminalWidth(w)
	}
	theme.SetSize(width, 0)

	return &printer{
		out:   w,
		theme: theme,
		md:    components.NewMarkdownRenderer(style),
		width: width,
		color: color,
		source: components.SourcesOptions{
			Width:        width,
			Hyperlinks:   color && !cfg.UI.NoHyperlinks,
			HideSnippets: cfg.UI.HideSnippets,
		},
	}
}

// Answer prints an assistant turn with its full source cards.
func (p *printer) Answer(turn model.Turn) {
	fmt.Fprintln(p.out, p.md.Render(util.StripControl(turn.Text), p.width))
	if len(turn.Citations) == 0 {
		return
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, components.RenderSources(p.theme, turn.Citations, p.source))
}

// CompactAnswer prints an assistant turn followed by the distinct source
// badges only.
func (p *printer) CompactAnswer(turn model.Turn) {
	fmt.Fprintln(p.out, p.md.Render(util.StripControl(turn.Text), p.width))
	if len(turn.Citations) == 0 {
		return
	}
	fmt.Fprintln(p.out, components.RenderCompactSources(p.theme, turn.Citations))
}

// Label prints the assistant label line.
func (p *printer) Label() {
	fmt.Fprintln(p.out, p.theme.AssistantLabel.Render(components.AssistantMark+" "+model.OriginAssistant.DisplayName()))
}

// Hint prints muted helper text.
func (p *printer) Hint(format string, args ...any) {
	fmt.Fprintln(p.out, p.theme.Hint.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error line.
func (p *printer) Error(format string, args ...any) {
	fmt.Fprintln(p.out, p.theme.Error.Render(fmt.Sprintf(format, args...)))
}

// answerJSON is the --json shape of one answer.
type answerJSON struct {
	Question string           `json:"question"`
	Answer   string           `json:"answer"`
	Sources  []model.Citation `json:"sources"`
	Tools    []string         `json:"tools"`
}

func writeAnswerJSON(w io.Writer, question string, turn model.Turn) error {
	cites := sources.Dedupe(turn.Citations)
	if cites == nil {
		cites = []model.Citation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(answerJSON{
		Question: question,
		Answer:   turn.Text,
		Sources:  cites,
		Tools:    sources.Tools(cites),
	})
}
