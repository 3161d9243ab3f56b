// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// =============================================================================
// TYPING INDICATOR
// =============================================================================

// TypingIndicator is shown while a reply is outstanding: three animated
// dots, a label and the elapsed time.
type TypingIndicator struct {
	spinner   spinner.Model
	label     string
	startTime time.Time
	isActive  bool
	now       func() time.Time
	theme     *styles.Theme
}

// NewTypingIndicator creates an inactive indicator.
func NewTypingIndicator(theme *styles.Theme) TypingIndicator {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: styles.DotsSpinner.Frames,
		FPS:    styles.DotsSpinner.Duration(),
	}
	return TypingIndicator{
		spinner: s,
		label:   EnglishLabels.Typing,
		now:     time.Now,
		theme:   theme,
	}
}

// SetLabel sets the text shown before the dots.
func (t *TypingIndicator) SetLabel(label string) {
	t.label = label
}

// Start activates the indicator and returns the first spinner tick.
func (t *TypingIndicator) Start() tea.Cmd {
	t.isActive = true
	t.startTime = t.now()
	return t.spinner.Tick
}

// Stop deactivates the indicator. Pending spinner ticks are ignored.
func (t *TypingIndicator) Stop() {
	t.isActive = false
}

// IsActive returns whether the indicator is running.
func (t TypingIndicator) IsActive() bool {
	return t.isActive
}

// Update advances the spinner while active.
func (t TypingIndicator) Update(msg tea.Msg) (TypingIndicator, tea.Cmd) {
	if !t.isActive {
		return t, nil
	}
	var cmd tea.Cmd
	t.spinner, cmd = t.spinner.Update(msg)
	return t, cmd
}

// View renders the indicator, or "" when inactive.
func (t TypingIndicator) View() string {
	if !t.isActive {
		return ""
	}

	spinnerStyle := lipgloss.NewStyle().Foreground(styles.Purple)
	textStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary).Italic(true)
	if t.theme != nil {
		spinnerStyle = t.theme.Spinner
		textStyle = t.theme.ThinkingText
	}

	out := textStyle.Render(t.label) + " " + spinnerStyle.Render(t.spinner.View())
	if !t.startTime.IsZero() {
		out += lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(" (" + formatElapsed(t.now().Sub(t.startTime)) + ")")
	}
	return out
}
