// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/remote"
	"github.com/jeranaias/rigchat/internal/segment"
	"github.com/jeranaias/rigchat/internal/session"
	"github.com/jeranaias/rigchat/internal/ui/components"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// NoticeDuration is how long status bar notices stay visible.
const NoticeDuration = 3 * time.Second

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// State represents the current state of the chat view.
type State int

const (
	StateReady   State = iota // Ready for input
	StateWaiting              // A request is outstanding
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateWaiting:
		return "waiting"
	default:
		return "unknown"
	}
}

// ClientFactory builds a provider client from a (reloaded) configuration.
type ClientFactory func(cfg *config.Config) (remote.Client, error)

// =============================================================================
// OPTIONS
// =============================================================================

type options struct {
	logger    *zap.Logger
	recorder  session.Recorder
	newClient ClientFactory
	resumeID  string
	resumeAt  time.Time
	restore   []*model.Message
}

// Option configures a Model.
type Option func(*options)

// WithLogger sets the logger used by the model and its session.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRecorder persists every message of the conversation.
func WithRecorder(r session.Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithClientFactory lets a config reload that changes [provider] swap the
// client. Without it provider changes take effect on restart.
func WithClientFactory(fn ClientFactory) Option {
	return func(o *options) {
		o.newClient = fn
	}
}

// WithResume continues a stored conversation: its ID and creation time are
// kept and msgs are shown fully revealed.
func WithResume(id string, createdAt time.Time, msgs []*model.Message) Option {
	return func(o *options) {
		o.resumeID = id
		o.resumeAt = createdAt
		o.restore = msgs
	}
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	state State

	// Styling
	theme  *styles.Theme
	labels components.Labels

	// Dimensions
	width  int
	height int

	// Conversation
	cfg       *config.Config
	session   *session.Session
	sched     *teaScheduler
	cancelMgr *cancelManager
	newClient ClientFactory
	logger    *zap.Logger

	// Components
	viewport viewport.Model
	input    textinput.Model
	typing   components.TypingIndicator
	header   *components.Header
	status   *components.StatusBar
	welcome  components.Welcome
	markdown *components.Markdown
	keyMap   KeyMap

	// Status notice
	notice    string
	noticeSeq int
}

// New creates a chat model talking to client with settings from cfg.
func New(theme *styles.Theme, cfg *config.Config, client remote.Client, opts ...Option) Model {
	if cfg == nil {
		cfg = config.Default()
	}
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	sched := newTeaScheduler()
	sessOpts := []session.Option{
		session.WithLogger(o.logger),
		session.WithReveal(cfg.Reveal.Enabled, cfg.Reveal.Interval()),
		session.WithLocale(cfg.UI.Locale),
		session.WithOnRevealComplete(func(msg *model.Message) {
			o.logger.Debug("reveal complete", zap.String("message", msg.ID()))
		}),
	}
	if o.recorder != nil {
		sessOpts = append(sessOpts, session.WithRecorder(o.recorder))
	}
	if o.resumeID != "" {
		sessOpts = append(sessOpts, session.WithIdentity(o.resumeID, o.resumeAt))
	}
	sess := session.New(client, sched, sessOpts...)
	sess.Restore(o.restore...)

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 4096
	ti.Focus()

	m := Model{
		state:     StateReady,
		cfg:       cfg,
		session:   sess,
		sched:     sched,
		cancelMgr: newCancelManager(),
		newClient: o.newClient,
		logger:    o.logger,
		viewport:  viewport.New(80, 20),
		input:     ti,
		keyMap:    DefaultKeyMap(),
	}
	m.applyTheme(theme)
	m.applyLabels(components.LabelsFor(cfg.UI.Locale))
	m.header.SetBackend(cfg.Provider.Kind, cfg.Provider.Model)
	m.updateViewport(true)
	return m
}

// applyTheme rebuilds the themed components.
func (m *Model) applyTheme(theme *styles.Theme) {
	if theme == nil {
		theme = styles.NewTheme(m.cfg.UI.Theme)
	}
	theme.SetSize(m.width, m.height)
	var provider, modelName string
	if m.header != nil {
		provider, modelName = m.header.Provider, m.header.Model
	}

	m.theme = theme
	m.header = components.NewHeader(theme)
	m.header.SetBackend(provider, modelName)
	m.status = components.NewStatusBar(theme)
	m.status.Shortcuts = shortcuts(m.keyMap.ShortHelp())
	m.welcome = components.NewWelcome(theme)
	m.markdown = components.NewMarkdown(theme.GlamourStyle())
	m.typing = components.NewTypingIndicator(theme)
	m.input.PromptStyle = theme.InputPrompt
	if m.width > 0 {
		m.layout()
	}
}

// applyLabels switches the user-facing strings.
func (m *Model) applyLabels(labels components.Labels) {
	m.labels = labels
	m.input.Placeholder = labels.Placeholder
	m.typing.SetLabel(labels.Typing)
	m.welcome.SetLabels(labels)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Session returns the chat session.
func (m Model) Session() *session.Session { return m.session }

// State returns the current state.
func (m Model) State() State { return m.state }

// Notice returns the status bar notice.
func (m Model) Notice() string { return m.notice }

// Close cancels the outstanding request and disposes running reveals.
func (m Model) Close() {
	m.cancelMgr.cancel()
	m.session.Close()
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.sched.drain())
}

// Update handles messages and updates the model. Reveal timers scheduled
// while handling msg are returned as tick commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	return next, tea.Batch(cmd, next.sched.drain())
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case replyMsg:
		return m.handleReply(msg)

	case revealTickMsg:
		if m.sched.fire(msg.id) {
			m.updateViewport(false)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.typing, cmd = m.typing.Update(msg)
		return m, cmd

	case ConfigReloadedMsg:
		return m.applyConfig(msg)

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()

	case key.Matches(msg, m.keyMap.Skip):
		m.session.SkipReveal()
		m.updateViewport(false)
		return m, nil

	case key.Matches(msg, m.keyMap.CopyCode):
		return m.copyLastCode()

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	// Input is disabled while a reply is outstanding.
	if m.state == StateWaiting {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the input line.
func (m Model) submit() (Model, tea.Cmd) {
	req, err := m.session.Begin(m.input.Value())
	switch {
	case errors.Is(err, session.ErrEmptyInput):
		return m, nil
	case errors.Is(err, session.ErrBusy):
		return m.setNotice(m.labels.Waiting)
	case err != nil:
		m.logger.Warn("send rejected", zap.Error(err))
		return m, nil
	}

	m.state = StateWaiting
	m.input.Reset()
	m.input.Blur()
	m.updateViewport(true)
	return m, tea.Batch(m.sendCmd(req), m.typing.Start())
}

// sendCmd calls the provider off the Update goroutine. Only req.History
// and req.Text cross over.
func (m Model) sendCmd(req *session.Request) tea.Cmd {
	client := m.session.Client()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelMgr.set(cancel)
	return func() tea.Msg {
		reply, err := client.Send(ctx, req.Text, req.History)
		return replyMsg{req: req, reply: reply, err: err}
	}
}

func (m Model) handleReply(msg replyMsg) (Model, tea.Cmd) {
	if _, err := m.session.Complete(msg.req, msg.reply, msg.err); err != nil {
		m.logger.Debug("dropping reply", zap.Error(err))
		return m, nil
	}
	m.cancelMgr.cancel()
	m.state = StateReady
	m.typing.Stop()
	m.updateViewport(true)
	return m, m.input.Focus()
}

// =============================================================================
// COPY
// =============================================================================

// lastCodeBlock returns the last code segment of the newest reply that has one.
func (m Model) lastCodeBlock() (segment.Segment, bool) {
	msgs := m.session.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsUser() {
			continue
		}
		blocks := segment.CodeBlocks(m.session.Segments(msgs[i].ID()))
		if len(blocks) > 0 {
			return blocks[len(blocks)-1], true
		}
	}
	return segment.Segment{}, false
}

func (m Model) copyLastCode() (Model, tea.Cmd) {
	block, ok := m.lastCodeBlock()
	if !ok {
		return m.setNotice(m.labels.NoCode)
	}
	if err := writeClipboard(block.Content); err != nil {
		m.logger.Warn("clipboard write failed", zap.Error(err))
		return m.setNotice(m.labels.CopyFailed)
	}
	return m.setNotice(m.labels.Copied)
}

// setNotice shows text in the status bar for NoticeDuration.
func (m Model) setNotice(text string) (Model, tea.Cmd) {
	m.noticeSeq++
	m.notice = text
	seq := m.noticeSeq
	return m, tea.Tick(NoticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func (m Model) applyConfig(msg ConfigReloadedMsg) (Model, tea.Cmd) {
	if msg.Err != nil || msg.Config == nil {
		m.logger.Warn("config reload failed", zap.Error(msg.Err))
		return m.setNotice(m.labels.ReloadFailed)
	}
	cfg := msg.Config
	prev := m.cfg
	m.cfg = cfg

	m.session.SetReveal(cfg.Reveal.Enabled, cfg.Reveal.Interval())
	m.session.SetLocale(cfg.UI.Locale)

	if cfg.UI.Theme != prev.UI.Theme {
		m.applyTheme(styles.NewTheme(cfg.UI.Theme))
	}
	m.applyLabels(components.LabelsFor(cfg.UI.Locale))

	if cfg.Provider != prev.Provider && m.newClient != nil {
		client, err := m.newClient(cfg)
		if err != nil {
			m.logger.Warn("provider reload failed", zap.Error(err))
			m.updateViewport(false)
			return m.setNotice(m.labels.ReloadFailed)
		}
		m.session.SetClient(client)
		m.header.SetBackend(cfg.Provider.Kind, cfg.Provider.Model)
	}

	m.logger.Info("config reloaded")
	m.updateViewport(false)
	return m.setNotice(m.labels.Reloaded)
}
