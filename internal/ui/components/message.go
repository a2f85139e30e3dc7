// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jeranaias/docmind-tui/internal/model"
	"github.com/jeranaias/docmind-tui/internal/ui/styles"
	"github.com/jeranaias/docmind-tui/internal/util"
)

// AssistantMark prefixes the assistant label.
const AssistantMark = "✦"

// ThinkingText accompanies the spinner while an answer is pending.
const ThinkingText = "Searching the documentation"

// =============================================================================
// MESSAGE VIEW
// =============================================================================

// MessageView renders transcript turns. Layout depends only on the turn's
// origin: user turns sit on the right, assistant turns on the left under
// the assistant label.
type MessageView struct {
	Width   int
	Sources SourcesOptions

	theme *styles.Theme
	md    *MarkdownRenderer
}

// NewMessageView creates a MessageView 80 columns wide.
func NewMessageView(theme *styles.Theme, md *MarkdownRenderer) *MessageView {
	return &MessageView{
		Width:   80,
		Sources: SourcesOptions{Hyperlinks: true},
		theme:   theme,
		md:      md,
	}
}

// SetWidth sets the available width.
func (v *MessageView) SetWidth(width int) {
	v.Width = width
}

// Render renders a single turn.
func (v *MessageView) Render(turn model.Turn) string {
	if turn.IsUser() {
		return v.renderUser(turn)
	}
	return v.renderAssistant(turn)
}

// RenderAll renders turns in order separated by blank lines.
func (v *MessageView) RenderAll(turns []model.Turn) string {
	blocks := make([]string, 0, len(turns))
	for _, t := range turns {
		blocks = append(blocks, v.Render(t))
	}
	return strings.Join(blocks, "\n\n")
}

// RenderThinking renders the pending indicator with the current spinner frame.
func (v *MessageView) RenderThinking(frame string) string {
	return v.assistantLabel() + "\n" + frame + " " + v.theme.Thinking.Render(ThinkingText)
}

func (v *MessageView) contentWidth() int {
	return max(styles.BubbleWidthFor(v.Width)-4, 10)
}

func (v *MessageView) renderUser(turn model.Turn) string {
	text := wordwrap.String(util.StripControl(turn.Text), v.contentWidth())
	block := lipgloss.JoinVertical(lipgloss.Right,
		v.theme.Hint.Render(model.OriginUser.DisplayName()),
		v.theme.UserBubble.Render(text),
	)
	return lipgloss.PlaceHorizontal(v.Width, lipgloss.Right, block)
}

func (v *MessageView) renderAssistant(turn model.Turn) string {
	width := v.contentWidth()
	body := v.md.Render(util.StripControl(turn.Text), width)
	if turn.HasCitations() {
		opts := v.Sources
		opts.Width = width
		if src := RenderSources(v.theme, turn.Citations, opts); src != "" {
			body += "\n\n" + src
		}
	}
	return v.assistantLabel() + "\n" + v.theme.AssistantBubble.Render(body)
}

func (v *MessageView) assistantLabel() string {
	return v.theme.AssistantLabel.Render(AssistantMark + " " + model.OriginAssistant.DisplayName())
}
