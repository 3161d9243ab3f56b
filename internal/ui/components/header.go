// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/ui/styles"
	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar: the brand, then provider and model.
type Header struct {
	Title    string
	Provider string
	Model    string
	Width    int
	theme    *styles.Theme
}

// NewHeader creates a header titled "rigchat".
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "rigchat",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetBackend updates the provider kind and model name.
func (h *Header) SetBackend(provider, model string) {
	h.Provider = provider
	h.Model = model
}

// Subtitle returns "provider / model", omitting empty parts.
func (h *Header) Subtitle() string {
	var parts []string
	if h.Provider != "" {
		parts = append(parts, h.Provider)
	}
	if h.Model != "" {
		parts = append(parts, h.Model)
	}
	return strings.Join(parts, " / ")
}

// View renders the header on one line inside a rounded box.
func (h *Header) View() string {
	width := h.Width
	if width < 20 {
		width = 20
	}
	inner := width - 6

	brandStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan)
	subStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary).Italic(true)
	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Padding(0, 2)
	if h.theme != nil {
		brandStyle = h.theme.HeaderBrand
		subStyle = h.theme.HeaderSubtitle
		boxStyle = h.theme.Header
	}

	brand := brandStyle.Render(h.Title)
	line := brand
	if sub := h.Subtitle(); sub != "" {
		room := inner - lipgloss.Width(brand) - 1
		if room > 3 {
			gap := room - util.Width(util.Truncate(sub, room))
			line += strings.Repeat(" ", gap+1) + subStyle.Render(util.Truncate(sub, room))
		}
	}

	return boxStyle.Width(width - 2).Render(line)
}
