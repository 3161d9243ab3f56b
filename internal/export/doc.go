// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversations to Markdown, JSON and HTML.
//
// Message text goes through the segmenter, so code blocks come out with
// clean fences in Markdown, as structured segments in JSON and as
// highlighted blocks in HTML.
//
// # Usage
//
//	exporter, err := export.ForFormat("markdown", nil)
//	path, err := export.ExportToFile(conv, exporter, &export.Options{OutputDir: "."})
package export
