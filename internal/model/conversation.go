// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/rigchat/internal/reveal"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the chat log: messages in send/receive order, the
// provider history derived from them and the reveal of the newest reply.
// It is not safe for concurrent use.
type Conversation struct {
	id        string
	createdAt time.Time

	messages []*Message
	history  History

	sched   reveal.Scheduler
	reveals map[string]*reveal.Controller

	logger       *zap.Logger
	onRevealTick func(*Message, reveal.Frame)
	onRevealDone func(*Message)
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithLogger sets the logger passed down to reveal controllers.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Conversation) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRevealTick registers a callback for every revealed character.
func WithRevealTick(fn func(*Message, reveal.Frame)) Option {
	return func(c *Conversation) {
		c.onRevealTick = fn
	}
}

// WithRevealDone registers a callback fired when a message is fully revealed.
func WithRevealDone(fn func(*Message)) Option {
	return func(c *Conversation) {
		c.onRevealDone = fn
	}
}

// WithIdentity sets the ID and creation time, used when resuming a stored
// conversation.
func WithIdentity(id string, createdAt time.Time) Option {
	return func(c *Conversation) {
		c.id = id
		c.createdAt = createdAt
	}
}

// NewConversation creates an empty conversation whose reveals are paced by sched.
func NewConversation(sched reveal.Scheduler, opts ...Option) *Conversation {
	c := &Conversation{
		id:        uuid.NewString(),
		createdAt: time.Now(),
		sched:     sched,
		reveals:   make(map[string]*reveal.Controller),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the conversation identifier.
func (c *Conversation) ID() string { return c.id }

// CreatedAt returns the creation time.
func (c *Conversation) CreatedAt() time.Time { return c.createdAt }

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddUser appends a user message.
func (c *Conversation) AddUser(text string) *Message {
	return c.Append(NewUserMessage(text))
}

// AddAssistant appends an assistant message.
func (c *Conversation) AddAssistant(text string) *Message {
	return c.Append(NewAssistantMessage(text))
}

// Append adds an existing message, such as one restored from storage, and
// records it in the history.
func (c *Conversation) Append(msg *Message) *Message {
	c.messages = append(c.messages, msg)
	c.history.Append(msg.Entry())
	return msg
}

// Messages returns the messages in order. The slice is a copy.
func (c *Conversation) Messages() []*Message {
	out := make([]*Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.messages) == 0
}

// Get returns a message by ID, or nil.
func (c *Conversation) Get(id string) *Message {
	for _, msg := range c.messages {
		if msg.id == id {
			return msg
		}
	}
	return nil
}

// Last returns the most recent message, or nil if empty.
func (c *Conversation) Last() *Message {
	if len(c.messages) == 0 {
		return nil
	}
	return c.messages[len(c.messages)-1]
}

// UntitledConversation is the title of a conversation without user messages.
const UntitledConversation = "New Conversation"

// Title derives a title from the first user message.
func (c *Conversation) Title() string {
	for _, msg := range c.messages {
		if msg.isUser {
			return msg.Preview(50)
		}
	}
	return UntitledConversation
}

// Snapshot returns the provider history accumulated so far.
func (c *Conversation) Snapshot() []ConversationEntry {
	return c.history.Snapshot()
}

// Remove drops a message from the log and disposes its reveal. The
// provider history is append-only and keeps the entry.
func (c *Conversation) Remove(id string) bool {
	for i, msg := range c.messages {
		if msg.id != id {
			continue
		}
		c.disposeReveal(id)
		c.messages = append(c.messages[:i], c.messages[i+1:]...)
		return true
	}
	return false
}

// Clear disposes every reveal and empties both the log and the history.
func (c *Conversation) Clear() {
	c.Close()
	c.messages = nil
	c.history.Reset()
}

// Close disposes every running reveal.
func (c *Conversation) Close() {
	for id := range c.reveals {
		c.disposeReveal(id)
	}
}

// =============================================================================
// REVEAL BOOKKEEPING
// =============================================================================

// StartReveal animates text for an assistant message. Any reveal already
// running in this conversation is disposed before the new one starts.
// It returns nil for unknown or user messages.
func (c *Conversation) StartReveal(id, text string, interval time.Duration) *reveal.Controller {
	msg := c.Get(id)
	if msg == nil || msg.isUser {
		c.logger.Debug("reveal requested for unknown or user message", zap.String("id", id))
		return nil
	}
	c.Close()

	var ctl *reveal.Controller
	ctl = reveal.New(c.sched,
		reveal.WithInterval(interval),
		reveal.WithLogger(c.logger),
		reveal.WithOnTick(func(f reveal.Frame) {
			if c.onRevealTick != nil {
				c.onRevealTick(msg, f)
			}
		}),
		reveal.WithOnComplete(func() {
			msg.revealing = false
			if c.reveals[id] == ctl {
				delete(c.reveals, id)
			}
			if c.onRevealDone != nil {
				c.onRevealDone(msg)
			}
		}),
	)
	c.reveals[id] = ctl
	msg.revealing = true
	ctl.Start(text, interval)
	return ctl
}

// Reveal returns the running reveal for a message, or nil.
func (c *Conversation) Reveal(id string) *reveal.Controller {
	return c.reveals[id]
}

// Revealing returns the message currently being revealed, or nil.
func (c *Conversation) Revealing() *Message {
	for id := range c.reveals {
		if msg := c.Get(id); msg != nil {
			return msg
		}
	}
	return nil
}

// SkipReveal finishes the running reveal at once.
func (c *Conversation) SkipReveal() {
	for _, ctl := range c.reveals {
		ctl.Skip()
	}
}

func (c *Conversation) disposeReveal(id string) {
	ctl, ok := c.reveals[id]
	if !ok {
		return
	}
	ctl.Dispose()
	delete(c.reveals, id)
	if msg := c.Get(id); msg != nil {
		msg.revealing = false
	}
}
