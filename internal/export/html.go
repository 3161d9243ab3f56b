// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/rigchat/internal/segment"
	"github.com/jeranaias/rigchat/internal/storage"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a standalone HTML page with
// embedded CSS and syntax-highlighted code blocks. The page carries no
// scripts.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to HTML format.
func (e *HTMLExporter) Export(conv *storage.StoredConversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}

	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(conv.DisplayTitle())))
	sb.WriteString("    <meta name=\"generator\" content=\"rigchat\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", conv.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(pageCSS)
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", theme))
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString("        <header class=\"header\">\n")
		sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(conv.DisplayTitle())))
		sb.WriteString(fmt.Sprintf("            <div class=\"metadata\">Created %s &middot; %d messages</div>\n",
			formatTimestamp(conv.CreatedAt), len(conv.Messages)))
		sb.WriteString("        </header>\n")
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range conv.Messages {
		role := "assistant"
		if msg.IsUser() {
			role = "user"
		}
		sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", role))
		sb.WriteString("                <div class=\"message-header\">\n")
		sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", roleLabel(msg.IsUser())))
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.Timestamp())))
		}
		sb.WriteString("                </div>\n")
		sb.WriteString("                <div class=\"message-content\">\n")
		sb.WriteString(e.formatContent(msg.Text(), theme))
		sb.WriteString("                </div>\n")
		sb.WriteString("            </div>\n")
	}
	sb.WriteString("        </main>\n")
	sb.WriteString("    </div>\n</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// CONTENT FORMATTING
// =============================================================================

// formatContent renders plain segments as escaped paragraphs and code
// segments as highlighted blocks.
func (e *HTMLExporter) formatContent(text, theme string) string {
	var sb strings.Builder
	for _, s := range segment.Parse(text) {
		if s.Kind == segment.Code {
			sb.WriteString(renderCodeBlock(s, theme))
			continue
		}
		for _, para := range strings.Split(s.Content, "\n\n") {
			if strings.TrimSpace(para) == "" {
				continue
			}
			escaped := html.EscapeString(strings.TrimSpace(para))
			sb.WriteString("<p>" + strings.ReplaceAll(escaped, "\n", "<br>\n") + "</p>\n")
		}
	}
	return sb.String()
}

// renderCodeBlock highlights a code segment with inline styles. HTML
// documents are tagged runnable but never executed.
func renderCodeBlock(s segment.Segment, theme string) string {
	var sb strings.Builder
	sb.WriteString("<div class=\"code-block\">")
	if s.Language != "" || s.Runnable() {
		sb.WriteString("<div class=\"code-lang\">")
		sb.WriteString(html.EscapeString(s.Language))
		if s.Runnable() {
			sb.WriteString(" <span class=\"runnable\">runnable</span>")
		}
		sb.WriteString("</div>")
	}
	sb.WriteString(highlightHTML(s.Content, s.Language, theme))
	sb.WriteString("</div>\n")
	return sb.String()
}

// highlightHTML returns code as a highlighted <pre> block, falling back to
// escaped text if chroma fails.
func highlightHTML(code, language, theme string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	styleName := "monokai"
	if theme == "light" {
		styleName = "github"
	}
	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "<pre><code>" + html.EscapeString(code) + "</code></pre>"
	}

	var sb strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(4))
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return "<pre><code>" + html.EscapeString(code) + "</code></pre>"
	}
	return sb.String()
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const pageCSS = `    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; line-height: 1.6; }
        .dark-theme { background: #1a1b26; color: #c0caf5; }
        .light-theme { background: #f5f5f5; color: #1a1b26; }
        .container { max-width: 900px; margin: 0 auto; padding: 2rem 1rem; }
        .header { margin-bottom: 2rem; border-bottom: 1px solid #414868; padding-bottom: 1rem; }
        .metadata { font-size: 0.85rem; opacity: 0.7; }
        .message { margin-bottom: 1.5rem; padding: 1rem; border-radius: 8px; }
        .dark-theme .user-message { background: #24283b; margin-left: 15%; }
        .dark-theme .assistant-message { background: #1f2335; margin-right: 15%; }
        .light-theme .user-message { background: #dbeafe; margin-left: 15%; }
        .light-theme .assistant-message { background: #ffffff; margin-right: 15%; }
        .message-header { display: flex; justify-content: space-between; font-size: 0.85rem; margin-bottom: 0.5rem; }
        .role-label { font-weight: 600; }
        .timestamp { opacity: 0.6; }
        .message-content p { margin-bottom: 0.75rem; }
        .code-block { margin: 0.75rem 0; border-radius: 6px; overflow: hidden; }
        .code-block pre { padding: 0.75rem; overflow-x: auto; font-size: 0.9rem; }
        .code-lang { font-size: 0.75rem; padding: 0.25rem 0.75rem; background: #414868; color: #c0caf5; }
        .runnable { color: #9ece6a; }
    </style>
`
