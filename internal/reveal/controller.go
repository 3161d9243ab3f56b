// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"time"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"go.uber.org/zap"
)

// DefaultInterval is the delay between two revealed characters.
const DefaultInterval = 30 * time.Millisecond

// =============================================================================
// STATE
// =============================================================================

// State is the lifecycle position of a Controller.
type State int

const (
	Idle State = iota
	Revealing
	Complete
	Disposed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Revealing:
		return "revealing"
	case Complete:
		return "complete"
	case Disposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Frame is what the rendering layer needs from a reveal: the text shown so
// far and whether the reveal has finished.
type Frame struct {
	Prefix string
	Done   bool
}

// =============================================================================
// OPTIONS
// =============================================================================

// Option configures a Controller.
type Option func(*Controller)

// WithInterval sets the interval used by Reset and by Start when it is given
// a non-positive interval.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithOnComplete registers a callback fired once per session, inside the
// tick that reveals the last character.
func WithOnComplete(fn func()) Option {
	return func(c *Controller) {
		c.onComplete = fn
	}
}

// WithOnTick registers a callback fired after every revealed character.
func WithOnTick(fn func(Frame)) Option {
	return func(c *Controller) {
		c.onTick = fn
	}
}

// WithLogger sets the logger used for ignored calls.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller reveals a text one grapheme cluster per tick.
//
// Only one session is live at a time. Every session carries a token; the
// token is bumped before a session is replaced or disposed and a tick whose
// token no longer matches does nothing.
type Controller struct {
	sched      Scheduler
	interval   time.Duration
	onComplete func()
	onTick     func(Frame)
	logger     *zap.Logger

	state  State
	source string
	bounds []int // byte offset just past each grapheme cluster
	count  int
	token  uint64
	timer  Timer
}

// New creates an idle controller.
func New(sched Scheduler, opts ...Option) *Controller {
	c := &Controller{
		sched:    sched,
		interval: DefaultInterval,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins a new session revealing text. Any previous session is
// invalidated first. A non-positive interval keeps the current one. Empty
// text completes immediately.
func (c *Controller) Start(text string, interval time.Duration) {
	if c.state == Disposed {
		c.logger.Debug("reveal: start on disposed controller ignored")
		return
	}
	if interval > 0 {
		c.interval = interval
	}
	c.invalidate()

	c.source = text
	c.bounds = clusterBounds(text)
	c.count = 0
	c.state = Revealing

	if len(c.bounds) == 0 {
		c.settle(false)
		return
	}
	c.schedule()
}

// Reset restarts the reveal from an empty prefix when text differs from the
// current source, even mid-reveal. Resetting to the same text is a no-op
// unless the controller has never been started.
func (c *Controller) Reset(text string) {
	switch c.state {
	case Disposed:
		c.logger.Debug("reveal: reset on disposed controller ignored")
		return
	case Idle:
	default:
		if text == c.source {
			return
		}
	}
	c.Start(text, 0)
}

// Skip reveals the rest of the text at once and completes the session.
func (c *Controller) Skip() {
	if c.state != Revealing {
		if c.state == Disposed {
			c.logger.Debug("reveal: skip on disposed controller ignored")
		}
		return
	}
	c.invalidate()
	c.count = len(c.bounds)
	c.settle(true)
}

// Dispose ends the controller for good. No tick fires afterwards and every
// later call is ignored.
func (c *Controller) Dispose() {
	if c.state == Disposed {
		return
	}
	c.invalidate()
	c.state = Disposed
	c.onComplete = nil
	c.onTick = nil
}

// =============================================================================
// OBSERVATION
// =============================================================================

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Source returns the text of the current session.
func (c *Controller) Source() string {
	return c.source
}

// Interval returns the tick interval.
func (c *Controller) Interval() time.Duration {
	return c.interval
}

// Count returns how many characters are revealed.
func (c *Controller) Count() int {
	return c.count
}

// Len returns the length of the source in characters.
func (c *Controller) Len() int {
	return len(c.bounds)
}

// Revealed returns the revealed prefix of the source.
func (c *Controller) Revealed() string {
	if c.count == 0 {
		return ""
	}
	return c.source[:c.bounds[c.count-1]]
}

// Done reports whether the session has revealed every character.
func (c *Controller) Done() bool {
	return c.state == Complete
}

// Frame returns the prefix and completion flag together.
func (c *Controller) Frame() Frame {
	return Frame{Prefix: c.Revealed(), Done: c.Done()}
}

// =============================================================================
// INTERNALS
// =============================================================================

// invalidate stops the pending timer and retires the session token.
func (c *Controller) invalidate() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.token++
}

func (c *Controller) schedule() {
	token := c.token
	c.timer = c.sched.AfterFunc(c.interval, func() {
		c.tick(token)
	})
}

func (c *Controller) tick(token uint64) {
	if token != c.token || c.state != Revealing {
		c.logger.Debug("reveal: stale tick dropped",
			zap.Uint64("token", token),
			zap.Uint64("current", c.token),
			zap.Stringer("state", c.state))
		return
	}
	c.timer = nil
	c.count++
	if c.count >= len(c.bounds) {
		c.settle(true)
		return
	}
	c.emitTick()
	if token == c.token && c.state == Revealing {
		c.schedule()
	}
}

func (c *Controller) emitTick() {
	if c.onTick != nil {
		c.onTick(c.Frame())
	}
}

// settle marks the session complete, reports the final frame and fires
// onComplete, unless a callback has already replaced the session.
func (c *Controller) settle(emit bool) {
	c.state = Complete
	token := c.token
	if emit {
		c.emitTick()
	}
	if token != c.token || c.state != Complete {
		return
	}
	if c.onComplete != nil {
		c.onComplete()
	}
}

// clusterBounds returns the end offset of every extended grapheme cluster.
func clusterBounds(text string) []int {
	if text == "" {
		return nil
	}
	bounds := make([]int, 0, len(text))
	iter := graphemes.FromString(text)
	for iter.Next() {
		bounds = append(bounds, iter.End())
	}
	return bounds
}
