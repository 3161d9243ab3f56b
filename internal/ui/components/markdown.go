// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// Markdown renders fully revealed plain segments through glamour. The
// renderer is rebuilt only when the wrap width changes.
type Markdown struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdown creates a renderer using a glamour standard style
// ("dark" or "light").
func NewMarkdown(style string) *Markdown {
	return &Markdown{style: style}
}

// Render renders text wrapped at width cells. If glamour fails the text
// is wrapped plainly instead.
func (m *Markdown) Render(text string, width int) string {
	if m == nil {
		return util.Wrap(text, width)
	}
	if m.renderer == nil || m.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return util.Wrap(text, width)
		}
		m.renderer = r
		m.width = width
	}

	out, err := m.renderer.Render(text)
	if err != nil {
		return util.Wrap(text, width)
	}
	return strings.Trim(out, "\n")
}
