// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Message: one chat message; immutable apart from its reveal flag
//   - ConversationEntry: role-tagged projection of a message sent to the provider
//   - History: append-only list of entries with non-aliased snapshots
//   - Conversation: the message log, its history and the reveal of the newest reply
//
// # Usage
//
//	conv := model.NewConversation(loop)
//	conv.AddUser("Hello!")
//	reply := conv.AddAssistant("Hi there")
//	conv.StartReveal(reply.ID(), "Hi there", 30*time.Millisecond)
//
// Only the assistant message whose reveal is running reports IsRevealing.
// Starting a reveal for another message disposes the running one first.
package model
