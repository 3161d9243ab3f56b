// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package segment

import (
	"fmt"
	"strings"
)

// Fence is the delimiter that opens and closes a code block.
const Fence = "```"

// =============================================================================
// SEGMENT TYPES
// =============================================================================

// Kind tells plain prose apart from code.
type Kind int

const (
	Plain Kind = iota
	Code
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Code:
		return "code"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "plain":
		*k = Plain
	case "code":
		*k = Code
	default:
		return fmt.Errorf("unknown segment kind %q", string(b))
	}
	return nil
}

// Segment is one unit of parsed message content.
// Language is only meaningful for code and may be empty.
type Segment struct {
	Kind     Kind   `json:"kind"`
	Content  string `json:"content"`
	Language string `json:"language,omitempty"`
}

// Text returns a plain segment.
func Text(content string) Segment {
	return Segment{Kind: Plain, Content: content}
}

// Block returns a code segment.
func Block(content, language string) Segment {
	return Segment{Kind: Code, Content: content, Language: language}
}

// IsCode reports whether s is a code block.
func (s Segment) IsCode() bool {
	return s.Kind == Code
}

// IsBlank reports whether the content is empty or whitespace only.
func (s Segment) IsBlank() bool {
	return strings.TrimSpace(s.Content) == ""
}

// Runnable reports whether the block is an HTML document that a browser
// could render on its own.
func (s Segment) Runnable() bool {
	if s.Kind != Code {
		return false
	}
	return strings.EqualFold(s.Language, "html") ||
		strings.Contains(s.Content, "<html") ||
		strings.Contains(s.Content, "<!DOCTYPE")
}

// Fenced returns the segment in its source form: plain text as-is, code
// wrapped in fences with its language tag.
func (s Segment) Fenced() string {
	if s.Kind != Code {
		return s.Content
	}
	var sb strings.Builder
	sb.Grow(len(s.Content) + len(s.Language) + 2*len(Fence) + 2)
	sb.WriteString(Fence)
	sb.WriteString(s.Language)
	sb.WriteByte('\n')
	sb.WriteString(s.Content)
	sb.WriteByte('\n')
	sb.WriteString(Fence)
	return sb.String()
}

// =============================================================================
// SCANNER
// =============================================================================

// match is one complete fenced block located in the source text.
type match struct {
	start     int // first backtick of the opening fence
	bodyStart int // byte after the opening newline
	bodyEnd   int // first backtick of the closing fence
	language  string
}

func (m match) end() int {
	return m.bodyEnd + len(Fence)
}

// Parse splits text into ordered segments in a single left-to-right pass.
//
// Blank text between or around code blocks is dropped and surviving plain
// text is trimmed. Code bodies are trimmed. When the text holds no complete
// fence the result is exactly one plain segment carrying text unchanged,
// even when text is empty.
func Parse(text string) []Segment {
	var segs []Segment
	cursor := 0

	for {
		m, ok := nextMatch(text, cursor)
		if !ok {
			break
		}
		segs = appendPlain(segs, text[cursor:m.start])
		segs = append(segs, Block(strings.TrimSpace(text[m.bodyStart:m.bodyEnd]), m.language))
		cursor = m.end()
	}

	if len(segs) == 0 {
		return []Segment{Text(text)}
	}
	return appendPlain(segs, text[cursor:])
}

// nextMatch finds the first complete fenced block starting at or after from.
// An opening fence needs its language tag to be followed directly by a
// newline; otherwise scanning resumes one byte later. Once an opening fence
// has no closing fence after it, no later one can either.
func nextMatch(text string, from int) (match, bool) {
	i := from
	for i < len(text) {
		j := strings.Index(text[i:], Fence)
		if j < 0 {
			return match{}, false
		}
		start := i + j

		k := start + len(Fence)
		for k < len(text) && isWordByte(text[k]) {
			k++
		}
		if k >= len(text) || text[k] != '\n' {
			i = start + 1
			continue
		}

		bodyStart := k + 1
		c := strings.Index(text[bodyStart:], Fence)
		if c < 0 {
			return match{}, false
		}
		return match{
			start:     start,
			bodyStart: bodyStart,
			bodyEnd:   bodyStart + c,
			language:  text[start+len(Fence) : k],
		}, true
	}
	return match{}, false
}

func appendPlain(segs []Segment, part string) []Segment {
	if trimmed := strings.TrimSpace(part); trimmed != "" {
		segs = append(segs, Text(trimmed))
	}
	return segs
}

// isWordByte matches the ASCII word class [A-Za-z0-9_].
func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// =============================================================================
// HELPERS
// =============================================================================

// Join re-serializes segments, separating them with newlines. Parsing the
// result yields an equivalent sequence. A plain segment that ends in an
// unmatched fence token gets a trailing space so the separator cannot turn
// it into an opening fence.
func Join(segs []Segment) string {
	var sb strings.Builder
	for i, s := range segs {
		if i > 0 {
			if segs[i-1].Kind == Plain && endsWithFenceToken(segs[i-1].Content) {
				sb.WriteByte(' ')
			}
			sb.WriteByte('\n')
		}
		sb.WriteString(s.Fenced())
	}
	return sb.String()
}

// endsWithFenceToken reports whether s ends in three backticks followed by
// an optional language tag.
func endsWithFenceToken(s string) bool {
	i := len(s)
	for i > 0 && isWordByte(s[i-1]) {
		i--
	}
	return strings.HasSuffix(s[:i], Fence)
}

// LastPlainIndex returns the index of the last plain segment, or -1.
func LastPlainIndex(segs []Segment) int {
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i].Kind == Plain {
			return i
		}
	}
	return -1
}

// CodeBlocks returns the code segments in order.
func CodeBlocks(segs []Segment) []Segment {
	var out []Segment
	for _, s := range segs {
		if s.Kind == Code {
			out = append(out, s)
		}
	}
	return out
}
