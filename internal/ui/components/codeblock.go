// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/segment"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock renders one code segment: a header with the language badge
// and the runnable tag, then the highlighted body with line numbers.
type CodeBlock struct {
	Segment  segment.Segment
	MaxWidth int
	theme    *styles.Theme
}

// NewCodeBlock creates a code block for seg.
func NewCodeBlock(seg segment.Segment, theme *styles.Theme) CodeBlock {
	return CodeBlock{
		Segment:  seg,
		MaxWidth: 80,
		theme:    theme,
	}
}

// SetMaxWidth sets the maximum width for the code block.
func (c *CodeBlock) SetMaxWidth(width int) {
	c.MaxWidth = width
}

// Render renders the code block with styling.
func (c CodeBlock) Render() string {
	code := c.Segment.Content
	highlighted := highlightCode(code, c.Segment.Language, c.chromaStyle(), c.formatter())

	lineNumStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Width(4).
		Align(lipgloss.Right).
		MarginRight(1)

	lines := strings.Split(highlighted, "\n")
	rendered := make([]string, 0, len(lines))
	for i, line := range lines {
		rendered = append(rendered, lineNumStyle.Render(strconv.Itoa(i+1))+line)
	}

	maxWidth := c.MaxWidth - 2
	if maxWidth < 20 {
		maxWidth = 20
	}

	return c.blockStyle().
		MaxWidth(maxWidth).
		Render(c.renderHeader() + "\n" + strings.Join(rendered, "\n"))
}

// renderHeader renders "[lang] [runnable]". Blocks without a language
// show "code".
func (c CodeBlock) renderHeader() string {
	lang := c.Segment.Language
	if lang == "" {
		lang = "code"
	}
	header := c.badgeStyle().Render(lang)
	if c.Segment.Runnable() {
		header += " " + c.runnableStyle().Render("runnable")
	}
	return header
}

func (c CodeBlock) blockStyle() lipgloss.Style {
	if c.theme != nil {
		return c.theme.CodeBlock
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 1)
}

func (c CodeBlock) badgeStyle() lipgloss.Style {
	if c.theme != nil {
		return c.theme.CodeLangBadge
	}
	return lipgloss.NewStyle().Bold(true)
}

func (c CodeBlock) runnableStyle() lipgloss.Style {
	if c.theme != nil {
		return c.theme.RunnableBadge
	}
	return lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
}

func (c CodeBlock) chromaStyle() string {
	if c.theme != nil {
		return c.theme.ChromaStyle()
	}
	return "monokai"
}

func (c CodeBlock) formatter() string {
	if c.theme != nil && c.theme.HasTrueColor {
		return "terminal16m"
	}
	return "terminal256"
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// highlightCode applies syntax highlighting to code using chroma. Unknown
// languages are guessed from the content; any failure returns code as is.
func highlightCode(code, language, styleName, formatterName string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get(formatterName)
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}
