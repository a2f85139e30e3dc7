// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docmind-tui/internal/ui/styles"
)

// Placeholder is shown while the buffer is empty.
const Placeholder = "Ask anything about the documentation..."

// MaxQuestionLength caps the buffer.
const MaxQuestionLength = 2000

// Input is the question buffer.
type Input struct {
	field textinput.Model
}

// NewInput creates a focused, empty Input.
func NewInput(theme *styles.Theme) Input {
	ti := textinput.New()
	ti.Placeholder = Placeholder
	ti.Prompt = "› "
	ti.CharLimit = MaxQuestionLength
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.Hint
	ti.Focus()
	return Input{field: ti}
}

// Value returns the raw buffer.
func (i Input) Value() string {
	return i.field.Value()
}

// SetValue replaces the buffer.
func (i *Input) SetValue(s string) {
	i.field.SetValue(s)
}

// SetWidth sets the visible width of the field.
func (i *Input) SetWidth(w int) {
	i.field.Width = max(w, 10)
}

// Submit returns the trimmed buffer and clears it. It does nothing and
// returns false when the trimmed buffer is empty or a question is pending.
func (i *Input) Submit(pending bool) (string, bool) {
	text := strings.TrimSpace(i.field.Value())
	if text == "" || pending {
		return "", false
	}
	i.field.Reset()
	return text, true
}

// Update forwards editing keys to the field.
func (i Input) Update(msg tea.Msg) (Input, tea.Cmd) {
	var cmd tea.Cmd
	i.field, cmd = i.field.Update(msg)
	return i, cmd
}

// View renders the field.
func (i Input) View() string {
	return i.field.View()
}
