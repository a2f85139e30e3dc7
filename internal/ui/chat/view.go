// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docmind-tui/internal/conversation"
	"github.com/jeranaias/docmind-tui/internal/util"
)

// View renders the chat view.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		m.viewport.View(),
		m.renderInput(),
		m.renderHint(),
		m.status.View(),
	)
}

func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(max(m.width-2, 10)).Render(m.input.View())
}

// renderHint suggests topics while the buffer is empty.
func (m Model) renderHint() string {
	var hint string
	switch {
	case m.ctrl.Pending():
		hint = "Waiting for the answer..."
	case strings.TrimSpace(m.input.Value()) == "":
		hint = "Try asking about: " + strings.Join(conversation.PopularTopics, " · ")
	}
	if hint == "" {
		return ""
	}
	return m.theme.Hint.Render(util.TruncateWidth(hint, max(m.width-1, 1)))
}
