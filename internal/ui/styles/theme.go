// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	StatusOnline   lipgloss.Style
	StatusOffline  lipgloss.Style
	StatusUnknown  lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	AssistantLabel  lipgloss.Style
	Thinking        lipgloss.Style

	// ==========================================================================
	// SOURCES STYLES
	// ==========================================================================

	SourcesHeader   lipgloss.Style
	CitationCard    lipgloss.Style
	CitationTitle   lipgloss.Style
	CitationSnippet lipgloss.Style
	Link            lipgloss.Style
	CompactLabel    lipgloss.Style

	// ==========================================================================
	// INPUT / STATUS BAR STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	Hint           lipgloss.Style
	Error          lipgloss.Style
	StatusBar      lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style
}

// NewTheme creates a theme for the current terminal.
func NewTheme() *Theme {
	return NewThemeWithProfile(termenv.ColorProfile(), termenv.HasDarkBackground())
}

// NewThemeWithProfile creates a theme for an explicit color profile.
// termenv.Ascii yields unstyled output.
func NewThemeWithProfile(profile termenv.Profile, dark bool) *Theme {
	t := &Theme{
		IsDark:       dark,
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

// Plain reports whether the theme renders without colors.
func (t *Theme) Plain() bool {
	return t.ColorProfile == termenv.Ascii
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.StatusOnline = lipgloss.NewStyle().Foreground(Emerald)
	t.StatusOffline = lipgloss.NewStyle().Foreground(Rose)
	t.StatusUnknown = lipgloss.NewStyle().Foreground(Amber)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.Thinking = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.SourcesHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.CitationCard = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Overlay).
		PaddingLeft(1)

	t.CitationTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.CitationSnippet = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Underline keeps links distinguishable without color.
	t.Link = lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)

	t.CompactLabel = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.Hint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Error = lipgloss.NewStyle().
		Foreground(Rose)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// Badge returns the pill style for a source badge.
func (t *Theme) Badge(b Badge) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(b.Fg).
		Background(b.Bg).
		Padding(0, 1)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// BubbleWidth is the maximum width of a message bubble at the current size.
func (t *Theme) BubbleWidth() int {
	return BubbleWidthFor(t.Width)
}

// BubbleWidthFor is the maximum message bubble width in a view width columns wide.
func BubbleWidthFor(width int) int {
	switch LayoutModeFor(width) {
	case LayoutNarrow:
		return max(width-2, 20)
	case LayoutMedium:
		return width * 85 / 100
	default:
		return min(width*3/4, 110)
	}
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	return LayoutModeFor(t.Width)
}

// LayoutModeFor returns the layout mode for a view width columns wide.
func LayoutModeFor(width int) LayoutMode {
	if width < 60 {
		return LayoutNarrow
	}
	if width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
