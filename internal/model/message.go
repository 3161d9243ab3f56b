// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// ConversationEntry is the provider-facing view of a message: role and text
// only, without identity, timestamps or reveal state.
type ConversationEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single chat message. Everything except the reveal flag is
// fixed at creation; the flag is owned by the Conversation.
type Message struct {
	id        string
	text      string
	isUser    bool
	timestamp time.Time

	revealing bool
}

// NewUserMessage creates a user message stamped with the current time.
func NewUserMessage(text string) *Message {
	return newMessage(text, true)
}

// NewAssistantMessage creates an assistant message stamped with the current time.
func NewAssistantMessage(text string) *Message {
	return newMessage(text, false)
}

// RestoreMessage rebuilds a message read back from storage.
func RestoreMessage(id, text string, isUser bool, timestamp time.Time) *Message {
	return &Message{
		id:        id,
		text:      text,
		isUser:    isUser,
		timestamp: timestamp,
	}
}

func newMessage(text string, isUser bool) *Message {
	return &Message{
		id:        uuid.NewString(),
		text:      text,
		isUser:    isUser,
		timestamp: time.Now(),
	}
}

// ID returns the message identifier.
func (m *Message) ID() string { return m.id }

// Text returns the full message text.
func (m *Message) Text() string { return m.text }

// IsUser reports whether the user wrote the message.
func (m *Message) IsUser() bool { return m.isUser }

// Timestamp returns the creation time.
func (m *Message) Timestamp() time.Time { return m.timestamp }

// IsRevealing reports whether the typewriter animation is still running.
func (m *Message) IsRevealing() bool { return m.revealing }

// Role returns the sender role.
func (m *Message) Role() Role {
	if m.isUser {
		return RoleUser
	}
	return RoleAssistant
}

// Entry projects the message for the provider.
func (m *Message) Entry() ConversationEntry {
	return ConversationEntry{Role: m.Role(), Content: m.text}
}

// Preview returns a truncated preview of the text.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.text)
	if len(runes) <= maxLen {
		return m.text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

type messageJSON struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// MarshalJSON encodes the persistent fields; reveal state is never encoded.
func (m *Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{
		ID:        m.id,
		Role:      m.Role(),
		Text:      m.text,
		Timestamp: m.timestamp,
	})
}

// UnmarshalJSON decodes a message written by MarshalJSON.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw messageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Message{
		id:        raw.ID,
		text:      raw.Text,
		isUser:    raw.Role == RoleUser,
		timestamp: raw.Timestamp,
	}
	return nil
}
