// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across rigchat.
//
// # Key Functions
//
// Text layout (cell-width aware, via go-runewidth):
//   - Width: display width of a string
//   - Truncate: width-bounded truncation with ellipsis
//   - Wrap: word wrapping for partially revealed replies
//   - PadRight: right padding to a width
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	line := util.Truncate(title, 40)
//	body := util.Wrap(prefix, 72)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
