// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the docmind TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Blue/Purple - user bubbles (the brand gradient)
  - Neutral gray - assistant bubbles
  - Emerald/Rose - service online/offline indicator

# Source Badges (badges.go)

Each documentation source kind has a fixed badge: an icon and a
foreground/background/border color triple. Unknown kinds use the generic
badge.

	badge := styles.BadgeFor(sources.KindOf("stripe"))
	label := theme.Badge(badge).Render(badge.Icon + " Stripe")

# Theme (theme.go)

Theme holds the composed lipgloss styles. Create one per program with
NewTheme and call SetSize on every window resize.
*/
package styles
