// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/ui/components"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// Fixed heights of the chrome around the message viewport.
const (
	headerHeight    = 3
	indicatorHeight = 1
	inputHeight     = 2
	statusHeight    = 1
)

// =============================================================================
// LAYOUT
// =============================================================================

// layout sizes every component from the current window dimensions.
func (m *Model) layout() {
	vpHeight := m.height - headerHeight - indicatorHeight - inputHeight - statusHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.theme.SetSize(m.width, m.height)
	m.viewport.Width = m.width
	m.viewport.Height = vpHeight
	m.header.SetWidth(m.width)
	m.status.Width = m.width
	m.welcome.SetSize(m.width, vpHeight)
	m.input.Width = m.width - lipgloss.Width(m.input.Prompt) - 2
	m.updateViewport(true)
}

// updateViewport re-renders the transcript into the viewport. The view
// follows the tail when follow is set or when it was already at the bottom.
func (m *Model) updateViewport(follow bool) {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	if follow || atBottom {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the chat screen: header, transcript, typing line, input and
// status bar, top to bottom.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var body string
	if len(m.session.Messages()) == 0 && !m.session.Busy() {
		body = m.welcome.View()
	} else {
		body = m.viewport.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		body,
		m.renderIndicator(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

// renderMessages renders every message bubble of the conversation.
func (m Model) renderMessages() string {
	msgs := m.session.Messages()
	if len(msgs) == 0 {
		return ""
	}

	narrow := m.theme.GetLayoutMode() == styles.LayoutNarrow
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		bubble := components.NewMessageBubble(msg, m.session.Segments(msg.ID()), m.theme)
		bubble.SetWidth(m.width)
		bubble.ShowTimestamp = m.cfg.UI.ShowTimestamps && !narrow
		bubble.Labels = m.labels
		bubble.SetMarkdown(m.markdown)
		if index, frame, ok := m.session.RevealTarget(msg.ID()); ok {
			bubble.SetReveal(index, frame)
		}
		parts = append(parts, bubble.View())
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) renderIndicator() string {
	if !m.typing.IsActive() {
		return ""
	}
	return m.typing.View()
}

func (m Model) renderInput() string {
	width := maxInt(m.width-2, 1)
	if m.state == StateWaiting {
		return m.theme.InputDisabled.Width(width).Render(m.input.Prompt + m.labels.Waiting)
	}
	return m.theme.InputContainer.Width(width).Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	m.status.Notice = m.notice
	return m.status.View()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
