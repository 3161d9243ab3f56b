// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/reveal"
	"github.com/jeranaias/rigchat/internal/segment"
	"github.com/jeranaias/rigchat/internal/ui/styles"
	"github.com/jeranaias/rigchat/internal/util"
)

// TimeFormat is the layout of bubble timestamps.
const TimeFormat = "15:04"

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one turn of the conversation.
type MessageBubble struct {
	Message       *model.Message
	Segments      []segment.Segment
	Width         int
	ShowTimestamp bool
	Labels        Labels

	// RevealIndex is the segment being revealed, or -1. Frame holds its
	// current prefix.
	RevealIndex int
	Frame       reveal.Frame

	markdown *Markdown
	theme    *styles.Theme
}

// NewMessageBubble creates a bubble for msg. segs is the message's
// segmentation; it is parsed here when nil.
func NewMessageBubble(msg *model.Message, segs []segment.Segment, theme *styles.Theme) *MessageBubble {
	if segs == nil && msg != nil {
		segs = segment.Parse(msg.Text())
	}
	return &MessageBubble{
		Message:       msg,
		Segments:      segs,
		Width:         80,
		ShowTimestamp: true,
		Labels:        EnglishLabels,
		RevealIndex:   -1,
		theme:         theme,
	}
}

// SetWidth sets the bubble width
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// SetReveal marks segment index as revealing with the given frame.
func (b *MessageBubble) SetReveal(index int, frame reveal.Frame) {
	b.RevealIndex = index
	b.Frame = frame
}

// SetMarkdown sets the renderer used for fully revealed plain segments.
// Without one, plain text is only wrapped.
func (b *MessageBubble) SetMarkdown(md *Markdown) {
	b.markdown = md
}

// View renders the message bubble
func (b *MessageBubble) View() string {
	if b.Message == nil {
		return ""
	}
	if b.Message.IsUser() {
		return b.renderUserBubble()
	}
	return b.renderAssistantBubble()
}

// contentWidth is the text width available inside a bubble.
func (b *MessageBubble) contentWidth() int {
	w := b.Width*7/10 - 6
	if w < 20 {
		w = 20
	}
	return w
}

// ==========================================================================
// USER BUBBLE - Blue tones, right-aligned
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	content := util.Wrap(b.Message.Text(), b.contentWidth())
	if strings.TrimSpace(content) == "" {
		content = styles.Ellipsis
	}

	bubble := b.userStyle().Render(content)
	header := b.renderHeader(b.Labels.You)

	block := lipgloss.JoinVertical(lipgloss.Right, header, bubble)
	return lipgloss.PlaceHorizontal(maxInt(b.Width, lipgloss.Width(block)), lipgloss.Right, block)
}

// ==========================================================================
// ASSISTANT BUBBLE - Violet tones, left-aligned
// ==========================================================================

func (b *MessageBubble) renderAssistantBubble() string {
	width := b.contentWidth()

	parts := []string{b.renderHeader(b.Labels.Assistant)}
	for i, seg := range b.Segments {
		if seg.IsCode() {
			cb := NewCodeBlock(seg, b.theme)
			cb.SetMaxWidth(width + 6)
			parts = append(parts, cb.Render())
			continue
		}
		if i == b.RevealIndex {
			parts = append(parts, b.assistantStyle().Render(b.renderRevealing(width)))
			continue
		}
		if seg.IsBlank() {
			continue
		}
		parts = append(parts, b.assistantStyle().Render(b.renderPlain(seg.Content, width)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderRevealing renders the revealed prefix followed by the cursor
// while the reveal is still running.
func (b *MessageBubble) renderRevealing(width int) string {
	text := util.Wrap(b.Frame.Prefix, width)
	if b.Frame.Done {
		return text
	}
	return text + b.cursorStyle().Render(styles.RevealCursor)
}

func (b *MessageBubble) renderPlain(text string, width int) string {
	if b.markdown == nil {
		return util.Wrap(text, width)
	}
	return b.markdown.Render(text, width)
}

// ==========================================================================
// HELPER METHODS
// ==========================================================================

// renderHeader renders the role label followed by HH:MM.
func (b *MessageBubble) renderHeader(role string) string {
	header := b.roleStyle().Render(role)
	if ts := b.renderTimestamp(); ts != "" {
		header += " " + ts
	}
	return header
}

func (b *MessageBubble) renderTimestamp() string {
	if !b.ShowTimestamp {
		return ""
	}
	ts := b.Message.Timestamp()
	if ts.IsZero() {
		return ""
	}
	return b.timestampStyle().Render(ts.Local().Format(TimeFormat))
}

func (b *MessageBubble) userStyle() lipgloss.Style {
	if b.theme != nil {
		return b.theme.UserBubble
	}
	return lipgloss.NewStyle().Padding(0, 2)
}

func (b *MessageBubble) assistantStyle() lipgloss.Style {
	if b.theme != nil {
		return b.theme.AssistantBubble
	}
	return lipgloss.NewStyle().Padding(0, 2)
}

func (b *MessageBubble) roleStyle() lipgloss.Style {
	if b.theme != nil {
		return b.theme.RoleLabel
	}
	return lipgloss.NewStyle()
}

func (b *MessageBubble) timestampStyle() lipgloss.Style {
	if b.theme != nil {
		return b.theme.Timestamp
	}
	return lipgloss.NewStyle()
}

func (b *MessageBubble) cursorStyle() lipgloss.Style {
	if b.theme != nil {
		return b.theme.RevealCursor
	}
	return lipgloss.NewStyle()
}
