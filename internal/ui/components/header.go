// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docmind-tui/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Health is the last known state of the documentation service.
type Health int

const (
	HealthUnknown Health = iota
	HealthOnline
	HealthOffline
)

// String returns the indicator text for the state.
func (h Health) String() string {
	switch h {
	case HealthOnline:
		return "Online"
	case HealthOffline:
		return "Offline"
	default:
		return "Checking"
	}
}

// Default header text.
const (
	DefaultTitle    = "DocuMind AI"
	DefaultSubtitle = "Intelligent Documentation Assistant"
)

// Header is the title bar with the service indicator.
type Header struct {
	Title    string
	Subtitle string
	Health   Health
	Width    int
	theme    *styles.Theme
}

// NewHeader creates a new Header with the default titles.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title:    DefaultTitle,
		Subtitle: DefaultSubtitle,
		Width:    80,
		theme:    theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetHealth updates the service indicator.
func (h *Header) SetHealth(health Health) {
	h.Health = health
}

// View renders the header. The subtitle is dropped on narrow terminals.
func (h *Header) View() string {
	left := h.theme.HeaderTitle.Render(AssistantMark + " " + h.Title)
	if styles.LayoutModeFor(h.Width) != styles.LayoutNarrow && h.Subtitle != "" {
		left += "  " + h.theme.HeaderSubtitle.Render(h.Subtitle)
	}
	right := h.indicator()

	gap := h.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return h.theme.Header.Width(max(h.Width, 1)).Render(left + strings.Repeat(" ", gap) + right)
}

func (h *Header) indicator() string {
	style := h.theme.StatusUnknown
	switch h.Health {
	case HealthOnline:
		style = h.theme.StatusOnline
	case HealthOffline:
		style = h.theme.StatusOffline
	}
	return style.Render("● " + h.Health.String())
}
