// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// History is the ordered log of entries sent to the provider as context.
// The zero value is ready to use.
type History struct {
	entries []ConversationEntry
}

// Append adds an entry at the end.
func (h *History) Append(entry ConversationEntry) {
	h.entries = append(h.entries, entry)
}

// Snapshot returns a copy of every entry appended so far, in order. The
// caller may keep or modify it freely.
func (h *History) Snapshot() []ConversationEntry {
	out := make([]ConversationEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Reset drops every entry.
func (h *History) Reset() {
	h.entries = nil
}
