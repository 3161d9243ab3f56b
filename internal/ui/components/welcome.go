// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/ui/styles"
	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// WELCOME PANEL
// =============================================================================

// Welcome is the empty-conversation panel shown before the first message.
type Welcome struct {
	labels Labels
	width  int
	height int
	theme  *styles.Theme
}

// NewWelcome creates a welcome panel.
func NewWelcome(theme *styles.Theme) Welcome {
	return Welcome{labels: EnglishLabels, theme: theme}
}

// SetLabels sets the title and body text.
func (w *Welcome) SetLabels(labels Labels) {
	w.labels = labels
}

// SetSize updates the dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// View renders the panel centered in its area.
func (w Welcome) View() string {
	width := w.width
	if width <= 0 {
		width = 80
	}
	height := w.height
	if height <= 0 {
		height = 12
	}

	iconStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Purple).Padding(0, 2)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimary)
	bodyStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	if w.theme != nil {
		iconStyle = w.theme.WelcomeIcon
		titleStyle = w.theme.WelcomeTitle
		bodyStyle = w.theme.WelcomeBody
	}

	bodyWidth := width - 8
	if bodyWidth > 60 {
		bodyWidth = 60
	}
	if bodyWidth < 10 {
		bodyWidth = 10
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		iconStyle.Render("[ ... ]"),
		"",
		titleStyle.Render(w.labels.WelcomeTitle),
		"",
		lipgloss.NewStyle().Width(bodyWidth).Align(lipgloss.Center).
			Render(bodyStyle.Render(util.Wrap(w.labels.WelcomeBody, bodyWidth))),
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
