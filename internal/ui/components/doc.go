// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the rendering components for the docmind TUI.

# Display Components

Header (header.go) - Title bar with the service Online/Offline indicator.
StatusBar (statusbar.go) - Bottom bar with a transient message and shortcuts.
MessageView (message.go) - Turn rendering; alignment and color follow origin.
Sources (sources.go) - Citation list grouped by tool, and the compact summary.
MarkdownRenderer (markdown.go) - Assistant markdown via glamour, with a
plain fallback that strips emphasis markers.
CodeBlock (codeblock.go) - Chroma-highlighted fenced code for the fallback.

All components accept a *styles.Theme:

	theme := styles.NewTheme()
	view := components.NewMessageView(theme, components.NewMarkdownRenderer("auto"))
	view.SetWidth(80)
	out := view.Render(turn)

Nothing here executes or interprets content. Raw HTML in answers is shown
as text and links are only printed, never opened.
*/
package components
