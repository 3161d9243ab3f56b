// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/rigchat/internal/segment"
	"github.com/jeranaias/rigchat/internal/storage"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports conversations to JSON, including each message's
// segments so other tools need not parse fences.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter. JSON exports always include
// the complete conversation regardless of options.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Document is the JSON export layout.
type Document struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Messages  []DocumentMessage `json:"messages"`
}

// DocumentMessage is one message in a JSON export.
type DocumentMessage struct {
	ID        string            `json:"id"`
	Role      string            `json:"role"`
	Text      string            `json:"text"`
	Timestamp time.Time         `json:"timestamp"`
	Segments  []segment.Segment `json:"segments"`
}

// Export converts a conversation to indented JSON.
func (e *JSONExporter) Export(conv *storage.StoredConversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}

	doc := Document{
		ID:        conv.ID,
		Title:     conv.DisplayTitle(),
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
		Messages:  make([]DocumentMessage, 0, len(conv.Messages)),
	}
	for _, msg := range conv.Messages {
		doc.Messages = append(doc.Messages, DocumentMessage{
			ID:        msg.ID(),
			Role:      string(msg.Role()),
			Text:      msg.Text(),
			Timestamp: msg.Timestamp(),
			Segments:  segment.Parse(msg.Text()),
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
