// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// Shortcut is one key hint in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar renders a transient notice on the left and key hints on the
// right. Hints that do not fit are dropped from the end.
type StatusBar struct {
	Notice    string
	Shortcuts []Shortcut
	Width     int
	theme     *styles.Theme
}

// NewStatusBar creates an empty status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// View renders the bar at exactly Width cells.
func (s *StatusBar) View() string {
	barStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary).Padding(0, 1)
	noticeStyle := lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	if s.theme != nil {
		barStyle = s.theme.StatusBar
		noticeStyle = s.theme.StatusNotice
		keyStyle = s.theme.ShortcutKey
		descStyle = s.theme.ShortcutDesc
	}

	inner := s.Width - 2
	if inner < 1 {
		inner = 1
	}

	left := ""
	if s.Notice != "" {
		left = noticeStyle.Render(s.Notice)
	}

	var hints []string
	used := lipgloss.Width(left) + 1
	for _, sc := range s.Shortcuts {
		hint := keyStyle.Render(sc.Key) + descStyle.Render(" "+sc.Desc)
		w := lipgloss.Width(hint) + 2
		if used+w > inner {
			break
		}
		hints = append(hints, hint)
		used += w
	}
	right := strings.Join(hints, descStyle.Render("  "))

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return barStyle.Width(s.Width).MaxWidth(s.Width).
		Render(left + strings.Repeat(" ", gap) + right)
}
