// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package segment splits chat text into plain-text and fenced-code segments.
//
// A fence is three backticks, an optional language tag of word characters
// and a newline. The body runs to the first following three backticks; fences
// never nest. Text without a complete fence is returned as a single plain
// segment, verbatim.
//
// # Usage
//
//	segs := segment.Parse("Explain:\n```python\nprint(1)\n```\nDone")
//	// [Plain "Explain:"] [Code python "print(1)"] [Plain "Done"]
//
// The rendering layer consumes the segment list directly and must not
// re-implement fence parsing. Join produces the canonical fenced text again.
package segment
