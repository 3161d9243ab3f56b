// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/storage"
)

// FromConversation converts a live conversation to the stored form, so a
// conversation can be exported before (or without) being persisted.
func FromConversation(conv *model.Conversation) *storage.StoredConversation {
	if conv == nil {
		return nil
	}

	msgs := conv.Messages()
	updated := conv.CreatedAt()
	if last := conv.Last(); last != nil {
		updated = last.Timestamp()
	}

	title := conv.Title()
	if title == model.UntitledConversation {
		title = ""
	}

	return &storage.StoredConversation{
		ConversationMeta: storage.ConversationMeta{
			ID:           conv.ID(),
			Title:        title,
			CreatedAt:    conv.CreatedAt(),
			UpdatedAt:    updated,
			MessageCount: len(msgs),
		},
		Messages: msgs,
	}
}
