// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the rigchat TUI.

All colors are Lip Gloss AdaptiveColor values. NewTheme resolves the
configured theme ("dark", "light" or "auto", which asks termenv) and tells
lipgloss which half of each adaptive pair to use.

# Colors (colors.go)

	Purple  - assistant turns, reveal cursor
	Cyan    - brand, user highlights
	Emerald - success, runnable code tag
	Amber   - warnings
	Rose    - errors

# Theme (theme.go)

Theme carries ready-made styles for the header, message bubbles, code
blocks, input, status bar, spinner and welcome panel, plus the matching
chroma and glamour style names.

# Animations (animations.go)

Spinner frame sets for the typing indicator and the reveal cursor glyph.
*/
package styles
