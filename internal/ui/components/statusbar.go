// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docmind-tui/internal/ui/styles"
	"github.com/jeranaias/docmind-tui/internal/util"
)

// Shortcut is one key hint in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// DefaultShortcuts are the chat view key hints.
var DefaultShortcuts = []Shortcut{
	{Key: "enter", Desc: "ask"},
	{Key: "ctrl+y", Desc: "copy answer"},
	{Key: "ctrl+s", Desc: "export"},
	{Key: "pgup/pgdn", Desc: "scroll"},
	{Key: "ctrl+c", Desc: "quit"},
}

// StatusBar shows a transient message on the left and key hints on the right.
type StatusBar struct {
	Message   string
	IsError   bool
	Shortcuts []Shortcut
	Width     int
	theme     *styles.Theme
}

// NewStatusBar creates a status bar with the default shortcuts.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Shortcuts: DefaultShortcuts,
		Width:     80,
		theme:     theme,
	}
}

// SetWidth updates the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetMessage sets the transient message.
func (s *StatusBar) SetMessage(msg string, isError bool) {
	s.Message = msg
	s.IsError = isError
}

// View renders the bar. Shortcuts are dropped from the right until the
// message fits.
func (s *StatusBar) View() string {
	msg := ""
	if s.Message != "" {
		style := s.theme.Hint
		if s.IsError {
			style = s.theme.Error
		}
		msg = style.Render(util.TruncateWidth(s.Message, max(s.Width/2, 10)))
	}

	hints := s.Shortcuts
	var right string
	for len(hints) > 0 {
		right = s.renderShortcuts(hints)
		if lipgloss.Width(msg)+lipgloss.Width(right)+4 <= s.Width {
			break
		}
		hints = hints[:len(hints)-1]
		right = ""
	}

	gap := s.Width - lipgloss.Width(msg) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return s.theme.StatusBar.Render(msg + strings.Repeat(" ", gap) + right)
}

func (s *StatusBar) renderShortcuts(hints []Shortcut) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, s.theme.ShortcutKey.Render(h.Key)+" "+s.theme.ShortcutDesc.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
