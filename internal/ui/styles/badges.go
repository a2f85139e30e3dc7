// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docmind-tui/internal/sources"
)

// Badge is the icon and palette for one source kind.
type Badge struct {
	Icon   string
	Fg     lipgloss.AdaptiveColor
	Bg     lipgloss.AdaptiveColor
	Border lipgloss.AdaptiveColor
}

// SourcesIcon marks the "Sources" heading.
const SourcesIcon = "≡"

// LinkIcon is the external-link affordance.
const LinkIcon = "↗"

var genericBadge = Badge{
	Icon:   "📖",
	Fg:     lipgloss.AdaptiveColor{Light: "#166534", Dark: "#BBF7D0"},
	Bg:     lipgloss.AdaptiveColor{Light: "#F0FDF4", Dark: "#14532D"},
	Border: lipgloss.AdaptiveColor{Light: "#BBF7D0", Dark: "#166534"},
}

var badges = map[sources.Kind]Badge{
	sources.KindStripe: {
		Icon:   "💳",
		Fg:     lipgloss.AdaptiveColor{Light: "#6B21A8", Dark: "#E9D5FF"},
		Bg:     lipgloss.AdaptiveColor{Light: "#FAF5FF", Dark: "#581C87"},
		Border: lipgloss.AdaptiveColor{Light: "#E9D5FF", Dark: "#7E22CE"},
	},
	sources.KindTailwind: {
		Icon:   "🎨",
		Fg:     lipgloss.AdaptiveColor{Light: "#155E75", Dark: "#CFFAFE"},
		Bg:     lipgloss.AdaptiveColor{Light: "#ECFEFF", Dark: "#164E63"},
		Border: lipgloss.AdaptiveColor{Light: "#A5F3FC", Dark: "#0E7490"},
	},
	sources.KindReact: {
		Icon:   "</>",
		Fg:     lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#DBEAFE"},
		Bg:     lipgloss.AdaptiveColor{Light: "#EFF6FF", Dark: "#1E3A8A"},
		Border: lipgloss.AdaptiveColor{Light: "#BFDBFE", Dark: "#1D4ED8"},
	},
	sources.KindNextJS: {
		Icon:   "</>",
		Fg:     lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#F3F4F6"},
		Bg:     lipgloss.AdaptiveColor{Light: "#F9FAFB", Dark: "#374151"},
		Border: lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#4B5563"},
	},
	sources.KindVercel: {
		Icon:   "▲",
		Fg:     lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"},
		Bg:     lipgloss.AdaptiveColor{Light: "#000000", Dark: "#000000"},
		Border: lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#6B7280"},
	},
	sources.KindGeneric: genericBadge,
}

// BadgeFor returns the badge for k, or the generic badge for an unknown kind.
func BadgeFor(k sources.Kind) Badge {
	if b, ok := badges[k]; ok {
		return b
	}
	return genericBadge
}
