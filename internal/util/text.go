// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Width returns the display width of s in terminal cells.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate cuts s to at most maxWidth cells, ending in "..." when it had
// to cut and there is room for the ellipsis.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// Wrap breaks s into lines of at most width cells. Existing newlines are
// kept; long lines break at the last space that fits, or mid-word when a
// single word is wider than the line. Trailing spaces at a break are dropped.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	if runewidth.StringWidth(line) <= width {
		return []string{line}
	}

	var out []string
	runes := []rune(line)
	start := 0
	for start < len(runes) {
		w := 0
		end := start
		lastSpace := -1
		for end < len(runes) {
			rw := runewidth.RuneWidth(runes[end])
			if w+rw > width && end > start {
				break
			}
			if runes[end] == ' ' {
				lastSpace = end
			}
			w += rw
			end++
		}
		if end == len(runes) {
			out = append(out, string(runes[start:end]))
			break
		}
		if runes[end] == ' ' {
			lastSpace = end
		}
		if lastSpace > start {
			out = append(out, strings.TrimRight(string(runes[start:lastSpace]), " "))
			start = lastSpace + 1
		} else {
			out = append(out, string(runes[start:end]))
			start = end
		}
		for start < len(runes) && runes[start] == ' ' {
			start++
		}
	}
	return out
}

// PadRight pads s with spaces to width cells.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}
