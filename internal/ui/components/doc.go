// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual building blocks of the chat
// screen: message bubbles, code blocks, the typing indicator, the header,
// the welcome panel and the status bar.
//
// Components render strings; they hold no conversation state of their
// own. A MessageBubble is given a message, its segments and, while the
// reply is typing, the index and frame of the segment being revealed.
package components
