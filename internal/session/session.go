// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/remote"
	"github.com/jeranaias/rigchat/internal/reveal"
	"github.com/jeranaias/rigchat/internal/segment"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrBusy is returned when a send is attempted while another is outstanding.
	ErrBusy = errors.New("a message is already being sent")

	// ErrEmptyInput is returned for input that is blank after trimming.
	ErrEmptyInput = errors.New("message is empty")

	// ErrStaleRequest is returned by Complete for a request that is no
	// longer pending, for example after Clear.
	ErrStaleRequest = errors.New("request is no longer pending")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session is closed")
)

// =============================================================================
// SESSION
// =============================================================================

// Recorder persists messages as they are added. storage.Store satisfies it.
type Recorder interface {
	SaveMessage(conversationID string, msg *model.Message) error
}

// Request is an outstanding send created by Begin. History holds the turns
// before User and is safe to hand to another goroutine.
type Request struct {
	seq     uint64
	User    *model.Message
	Text    string
	History []model.ConversationEntry
}

// Session runs one conversation thread: it appends turns, calls the
// provider, substitutes fallback text on failure, segments replies and
// starts the reveal of each new reply.
//
// A Session is not safe for concurrent use. In the TUI every call happens
// inside Update and only Request.History crosses into the provider command.
type Session struct {
	conv     *model.Conversation
	client   remote.Client
	logger   *zap.Logger
	recorder Recorder

	revealEnabled bool
	interval      time.Duration
	fallbacks     Fallbacks

	segments map[string][]segment.Segment
	pending  *Request
	seq      uint64
	closed   bool

	onRevealTick     func(*model.Message, reveal.Frame)
	onRevealComplete func(*model.Message)

	convOpts []model.Option
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder persists every message added by the session.
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithReveal sets whether replies are revealed and at what interval.
func WithReveal(enabled bool, interval time.Duration) Option {
	return func(s *Session) {
		s.revealEnabled = enabled
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithLocale selects the fallback texts.
func WithLocale(locale string) Option {
	return func(s *Session) {
		s.fallbacks = FallbacksFor(locale)
	}
}

// WithOnRevealTick registers a callback for every revealed character.
func WithOnRevealTick(fn func(*model.Message, reveal.Frame)) Option {
	return func(s *Session) {
		s.onRevealTick = fn
	}
}

// WithOnRevealComplete registers a callback fired when a reply is fully
// revealed.
func WithOnRevealComplete(fn func(*model.Message)) Option {
	return func(s *Session) {
		s.onRevealComplete = fn
	}
}

// WithIdentity resumes a stored conversation under its original ID.
func WithIdentity(id string, createdAt time.Time) Option {
	return func(s *Session) {
		s.convOpts = append(s.convOpts, model.WithIdentity(id, createdAt))
	}
}

// New creates a session that sends through client and paces reveals with sched.
func New(client remote.Client, sched reveal.Scheduler, opts ...Option) *Session {
	s := &Session{
		client:        client,
		logger:        zap.NewNop(),
		revealEnabled: true,
		interval:      reveal.DefaultInterval,
		fallbacks:     FallbacksFor(""),
		segments:      make(map[string][]segment.Segment),
	}
	for _, opt := range opts {
		opt(s)
	}

	convOpts := append([]model.Option{
		model.WithLogger(s.logger),
		model.WithRevealTick(func(msg *model.Message, f reveal.Frame) {
			if s.onRevealTick != nil {
				s.onRevealTick(msg, f)
			}
		}),
		model.WithRevealDone(func(msg *model.Message) {
			if s.onRevealComplete != nil {
				s.onRevealComplete(msg)
			}
		}),
	}, s.convOpts...)
	s.conv = model.NewConversation(sched, convOpts...)
	return s
}

// Conversation returns the underlying conversation log.
func (s *Session) Conversation() *model.Conversation { return s.conv }

// ID returns the conversation ID.
func (s *Session) ID() string { return s.conv.ID() }

// Messages returns the messages in order.
func (s *Session) Messages() []*model.Message { return s.conv.Messages() }

// Busy reports whether a send is outstanding.
func (s *Session) Busy() bool { return s.pending != nil }

// Pending returns the outstanding request, or nil.
func (s *Session) Pending() *Request { return s.pending }

// Client returns the provider client.
func (s *Session) Client() remote.Client { return s.client }

// SetClient replaces the provider client. An outstanding request still
// completes through Complete.
func (s *Session) SetClient(client remote.Client) {
	s.client = client
}

// SetReveal changes reveal settings for replies that arrive afterwards.
func (s *Session) SetReveal(enabled bool, interval time.Duration) {
	s.revealEnabled = enabled
	if interval > 0 {
		s.interval = interval
	}
}

// SetLocale changes the fallback texts.
func (s *Session) SetLocale(locale string) {
	s.fallbacks = FallbacksFor(locale)
}

// =============================================================================
// SENDING
// =============================================================================

// Send appends text as a user turn, asks the provider and appends the
// reply. The returned message is the assistant turn, which holds fallback
// text if the provider failed or replied with nothing. Provider failures
// are logged and never returned.
func (s *Session) Send(ctx context.Context, text string) (*model.Message, error) {
	req, err := s.Begin(text)
	if err != nil {
		return nil, err
	}
	reply, err := s.client.Send(ctx, req.Text, req.History)
	return s.Complete(req, reply, err)
}

// Begin validates text, appends it as a user turn and marks the session
// busy. The caller sends the request and passes the outcome to Complete.
func (s *Session) Begin(text string) (*Request, error) {
	if s.closed {
		return nil, ErrClosed
	}
	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return nil, ErrEmptyInput
	}
	if s.pending != nil {
		return nil, ErrBusy
	}

	history := s.conv.Snapshot()
	user := s.conv.AddUser(text)
	s.record(user)

	s.seq++
	s.pending = &Request{seq: s.seq, User: user, Text: text, History: history}
	return s.pending, nil
}

// Complete finishes req with the provider's reply or error, appends the
// assistant turn and starts its reveal.
func (s *Session) Complete(req *Request, reply string, sendErr error) (*model.Message, error) {
	if req == nil || s.pending == nil || req.seq != s.pending.seq {
		return nil, ErrStaleRequest
	}
	s.pending = nil

	text := reply
	switch {
	case sendErr != nil:
		s.logger.Warn("send failed, using fallback reply",
			zap.String("conversation", s.conv.ID()),
			zap.Error(sendErr))
		text = s.fallbacks.Failure
	case strings.TrimSpace(reply) == "":
		s.logger.Info("empty reply, using fallback", zap.String("conversation", s.conv.ID()))
		text = s.fallbacks.Empty
	}

	msg := s.conv.AddAssistant(text)
	segs := segment.Parse(text)
	s.segments[msg.ID()] = segs
	s.record(msg)
	s.startReveal(msg, segs)
	return msg, nil
}

// startReveal animates the last plain segment of a reply. Replies without
// one, or with reveal disabled, are shown in full at once.
func (s *Session) startReveal(msg *model.Message, segs []segment.Segment) {
	if !s.revealEnabled {
		return
	}
	idx := segment.LastPlainIndex(segs)
	if idx < 0 {
		return
	}
	s.conv.StartReveal(msg.ID(), segs[idx].Content, s.interval)
}

func (s *Session) record(msg *model.Message) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.SaveMessage(s.conv.ID(), msg); err != nil {
		s.logger.Warn("failed to record message",
			zap.String("conversation", s.conv.ID()),
			zap.String("message", msg.ID()),
			zap.Error(err))
	}
}

// =============================================================================
// PRESENTATION
// =============================================================================

// Segments returns the segmentation of a message, parsing and caching it
// on first use. The slice is shared and must not be modified. It returns
// nil for unknown IDs.
func (s *Session) Segments(id string) []segment.Segment {
	if segs, ok := s.segments[id]; ok {
		return segs
	}
	msg := s.conv.Get(id)
	if msg == nil {
		return nil
	}
	segs := segment.Parse(msg.Text())
	s.segments[id] = segs
	return segs
}

// RevealTarget reports which segment of a message is being revealed and
// its current frame. ok is false when the message is not revealing.
func (s *Session) RevealTarget(id string) (index int, frame reveal.Frame, ok bool) {
	ctl := s.conv.Reveal(id)
	if ctl == nil {
		return -1, reveal.Frame{}, false
	}
	return segment.LastPlainIndex(s.Segments(id)), ctl.Frame(), true
}

// SkipReveal shows the reply being revealed in full.
func (s *Session) SkipReveal() {
	s.conv.SkipReveal()
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Restore appends stored messages without recording or revealing them.
func (s *Session) Restore(msgs ...*model.Message) {
	for _, msg := range msgs {
		s.conv.Append(msg)
	}
}

// Remove drops a message and disposes its reveal.
func (s *Session) Remove(id string) bool {
	delete(s.segments, id)
	return s.conv.Remove(id)
}

// Clear empties the conversation. A request still outstanding becomes
// stale and its reply is discarded.
func (s *Session) Clear() {
	s.conv.Clear()
	s.segments = make(map[string][]segment.Segment)
	s.pending = nil
}

// Close disposes running reveals and rejects further sends.
func (s *Session) Close() {
	s.conv.Close()
	s.pending = nil
	s.closed = true
}
