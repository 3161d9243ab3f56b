// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// =============================================================================
// SHARED STYLES FOR ALL CLI COMMANDS
// =============================================================================

var (
	// PromptStyle is the REPL prompt
	PromptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	// TitleStyle is used for command titles and headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Purple)

	// DimStyle is used for secondary information and hints
	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)
)

// render applies style only when colored output is on.
func render(colored bool, style lipgloss.Style, text string) string {
	if !colored {
		return text
	}
	return style.Render(text)
}

// Status lines carry a text indicator so they read the same without color.
func success(colored bool, msg string) string {
	return status(colored, styles.StatusIndicators.Success, styles.RenderSuccess, msg)
}

func failure(colored bool, msg string) string {
	return status(colored, styles.StatusIndicators.Error, styles.RenderError, msg)
}

func warning(colored bool, msg string) string {
	return status(colored, styles.StatusIndicators.Warning, styles.RenderWarning, msg)
}

func info(colored bool, msg string) string {
	return status(colored, styles.StatusIndicators.Info, styles.RenderInfo, msg)
}

func status(colored bool, indicator string, renderFn func(string) string, msg string) string {
	if !colored {
		return indicator + " " + msg
	}
	return renderFn(msg)
}
