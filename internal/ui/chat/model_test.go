// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/remote"
	"github.com/jeranaias/rigchat/internal/session"
	"github.com/jeranaias/rigchat/internal/ui/components"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// =============================================================================
// HELPERS
// =============================================================================

func echoClient(reply string) remote.Client {
	return remote.ClientFunc(func(ctx context.Context, userText string, history []model.ConversationEntry) (string, error) {
		return reply, nil
	})
}

func newTestModel(t *testing.T, client remote.Client, opts ...Option) Model {
	t.Helper()
	cfg := config.Default()
	m := New(styles.NewTheme(styles.ThemeDark), cfg, client, opts...)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// send types text, presses enter and delivers reply for the request.
func send(t *testing.T, m Model, text, reply string) Model {
	t.Helper()
	m.input.SetValue(text)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	req := m.session.Pending()
	if req == nil {
		t.Fatalf("no pending request after submitting %q", text)
	}
	return update(t, m, replyMsg{req: req, reply: reply})
}

// finishReveal delivers tick messages until no reveal timer is left.
func finishReveal(t *testing.T, m Model) Model {
	t.Helper()
	for i := 0; i < 1000 && m.sched.active() > 0; i++ {
		m = update(t, m, revealTickMsg{id: m.sched.next})
	}
	if m.sched.active() != 0 {
		t.Fatal("reveal did not finish")
	}
	return m
}

func lastMessage(m Model) *model.Message {
	msgs := m.session.Messages()
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

// =============================================================================
// SUBMIT AND REPLY
// =============================================================================

func TestModel_SubmitWaitsForReply(t *testing.T) {
	m := newTestModel(t, echoClient("hello"))
	m.input.SetValue("hi there")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.State() != StateWaiting {
		t.Errorf("State() = %v, want waiting", m.State())
	}
	if m.input.Value() != "" {
		t.Errorf("input = %q, want cleared", m.input.Value())
	}
	if !m.typing.IsActive() {
		t.Error("typing indicator should be active while waiting")
	}
	msgs := m.session.Messages()
	if len(msgs) != 1 || !msgs[0].IsUser() || msgs[0].Text() != "hi there" {
		t.Fatalf("messages after submit = %v", msgs)
	}
	if !strings.Contains(m.View(), m.labels.Waiting) {
		t.Error("input line should show the waiting label")
	}
}

func TestModel_EmptySubmitIgnored(t *testing.T) {
	m := newTestModel(t, echoClient("unused"))
	m.input.SetValue("   ")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.State() != StateReady {
		t.Errorf("State() = %v, want ready", m.State())
	}
	if len(m.session.Messages()) != 0 {
		t.Error("blank input should not add a message")
	}
}

func TestModel_SendCmdCallsClient(t *testing.T) {
	var gotText string
	var gotHistory int
	client := remote.ClientFunc(func(ctx context.Context, userText string, history []model.ConversationEntry) (string, error) {
		gotText = userText
		gotHistory = len(history)
		return "pong", nil
	})
	m := newTestModel(t, client)
	m = send(t, m, "first", "one")
	m = finishReveal(t, m)

	m.input.SetValue("ping")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	msg := m.sendCmd(m.session.Pending())()

	reply, ok := msg.(replyMsg)
	if !ok {
		t.Fatalf("sendCmd produced %T, want replyMsg", msg)
	}
	if reply.reply != "pong" || reply.err != nil {
		t.Errorf("reply = %q, %v", reply.reply, reply.err)
	}
	if gotText != "ping" {
		t.Errorf("client got text %q, want ping", gotText)
	}
	if gotHistory != 2 {
		t.Errorf("client got %d history entries, want 2", gotHistory)
	}
}

func TestModel_ReplyRevealsThenCompletes(t *testing.T) {
	m := newTestModel(t, nil)
	m = send(t, m, "hi", "Done")

	if m.State() != StateReady {
		t.Errorf("State() = %v, want ready", m.State())
	}
	last := lastMessage(m)
	if last == nil || last.IsUser() || last.Text() != "Done" {
		t.Fatalf("last message = %v", last)
	}
	if !last.IsRevealing() {
		t.Fatal("reply should be revealing")
	}
	if m.sched.active() != 1 {
		t.Errorf("active timers = %d, want 1", m.sched.active())
	}

	m = update(t, m, revealTickMsg{id: m.sched.next})
	if _, frame, ok := m.session.RevealTarget(last.ID()); !ok || frame.Prefix != "D" {
		t.Errorf("after one tick frame = %q (ok=%v), want D", frame.Prefix, ok)
	}

	m = finishReveal(t, m)
	if last.IsRevealing() {
		t.Error("reply still revealing after all ticks")
	}
	if !strings.Contains(m.viewport.View(), "Done") {
		t.Error("transcript should show the full reply")
	}
}

func TestModel_ProviderErrorUsesFallback(t *testing.T) {
	m := newTestModel(t, nil)
	m.input.SetValue("hi")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, replyMsg{req: m.session.Pending(), err: errors.New("boom")})

	if got := lastMessage(m).Text(); got != session.FallbackFailure {
		t.Errorf("reply = %q, want failure fallback", got)
	}
}

func TestModel_StaleReplyIgnored(t *testing.T) {
	m := newTestModel(t, nil)
	m.input.SetValue("hi")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m = update(t, m, replyMsg{req: &session.Request{}, reply: "stale"})
	if m.State() != StateWaiting {
		t.Errorf("State() = %v, want still waiting", m.State())
	}
	if len(m.session.Messages()) != 1 {
		t.Errorf("stale reply added a message")
	}
}

func TestModel_SubmitWhileBusyShowsNotice(t *testing.T) {
	m := newTestModel(t, nil)
	m.input.SetValue("first")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m.input.SetValue("second")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Notice() != m.labels.Waiting {
		t.Errorf("Notice() = %q, want %q", m.Notice(), m.labels.Waiting)
	}
	if len(m.session.Messages()) != 1 {
		t.Errorf("busy submit added a message")
	}
}

func TestModel_TypingIgnoredWhileWaiting(t *testing.T) {
	m := newTestModel(t, nil)
	m.input.SetValue("hi")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.input.Value() != "" {
		t.Errorf("input = %q, want empty while waiting", m.input.Value())
	}
}

// =============================================================================
// SKIP AND COPY
// =============================================================================

func TestModel_EscSkipsReveal(t *testing.T) {
	m := newTestModel(t, nil)
	m = send(t, m, "hi", "A longer reply to skip")
	last := lastMessage(m)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if last.IsRevealing() {
		t.Error("reply still revealing after esc")
	}
	if _, _, ok := m.session.RevealTarget(last.ID()); ok {
		t.Error("RevealTarget should report no reveal after skip")
	}
}

func TestModel_CopyLastCodeBlock(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error { copied = s; return nil }
	defer func() { writeClipboard = orig }()

	m := newTestModel(t, nil)
	m = send(t, m, "code please", "Here:\n```go\nfmt.Println(1)\n```\nand\n```sh\nls -la\n```\nDone")
	m = finishReveal(t, m)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	if copied != "ls -la" {
		t.Errorf("copied %q, want last block", copied)
	}
	if m.Notice() != components.EnglishLabels.Copied {
		t.Errorf("Notice() = %q", m.Notice())
	}
}

func TestModel_CopyWithoutCode(t *testing.T) {
	orig := writeClipboard
	writeClipboard = func(string) error { t.Error("clipboard written"); return nil }
	defer func() { writeClipboard = orig }()

	m := newTestModel(t, nil)
	m = send(t, m, "hi", "plain text only")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	if m.Notice() != components.EnglishLabels.NoCode {
		t.Errorf("Notice() = %q", m.Notice())
	}
}

func TestModel_CopyFailure(t *testing.T) {
	orig := writeClipboard
	writeClipboard = func(string) error { return errors.New("no clipboard") }
	defer func() { writeClipboard = orig }()

	m := newTestModel(t, nil)
	m = send(t, m, "hi", "```\nx\n```")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	if m.Notice() != components.EnglishLabels.CopyFailed {
		t.Errorf("Notice() = %q", m.Notice())
	}
}

// =============================================================================
// NOTICES
// =============================================================================

func TestModel_NoticeExpires(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = m.setNotice("first")
	stale := m.noticeSeq
	m, _ = m.setNotice("second")

	m = update(t, m, noticeExpiredMsg{seq: stale})
	if m.Notice() != "second" {
		t.Errorf("stale expiry cleared notice: %q", m.Notice())
	}
	m = update(t, m, noticeExpiredMsg{seq: m.noticeSeq})
	if m.Notice() != "" {
		t.Errorf("Notice() = %q, want cleared", m.Notice())
	}
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func TestModel_ConfigReloadSwitchesLocale(t *testing.T) {
	m := newTestModel(t, nil)
	cfg := config.Default()
	cfg.UI.Locale = "th"

	m = update(t, m, ConfigReloadedMsg{Config: cfg})
	if m.labels != components.ThaiLabels {
		t.Error("labels not switched to Thai")
	}
	if m.Notice() != components.ThaiLabels.Reloaded {
		t.Errorf("Notice() = %q", m.Notice())
	}

	m.input.SetValue("hi")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, replyMsg{req: m.session.Pending(), err: errors.New("down")})
	if got := lastMessage(m).Text(); got != session.FallbackFailureThai {
		t.Errorf("reply = %q, want Thai fallback", got)
	}
}

func TestModel_ConfigReloadDisablesReveal(t *testing.T) {
	m := newTestModel(t, nil)
	cfg := config.Default()
	cfg.Reveal.Enabled = false
	m = update(t, m, ConfigReloadedMsg{Config: cfg})

	m = send(t, m, "hi", "instant")
	if lastMessage(m).IsRevealing() {
		t.Error("reply revealing with reveal disabled")
	}
}

func TestModel_ConfigReloadSwapsClient(t *testing.T) {
	var built *config.Config
	factory := func(cfg *config.Config) (remote.Client, error) {
		built = cfg
		return echoClient("from new client"), nil
	}
	m := newTestModel(t, echoClient("old"), WithClientFactory(factory))

	cfg := config.Default()
	cfg.Provider.Model = "other-model"
	m = update(t, m, ConfigReloadedMsg{Config: cfg})
	if built != cfg {
		t.Fatal("client factory not called with the reloaded config")
	}
	reply, err := m.session.Client().Send(context.Background(), "x", nil)
	if err != nil || reply != "from new client" {
		t.Errorf("Client().Send = %q, %v", reply, err)
	}
	if m.header.Model != "other-model" {
		t.Errorf("header model = %q", m.header.Model)
	}
}

func TestModel_ConfigReloadError(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, ConfigReloadedMsg{Err: errors.New("bad toml")})
	if m.Notice() != components.EnglishLabels.ReloadFailed {
		t.Errorf("Notice() = %q", m.Notice())
	}
	if m.cfg.UI.Locale != "en" {
		t.Error("failed reload changed the config")
	}
}

// =============================================================================
// VIEW AND LIFECYCLE
// =============================================================================

func TestModel_WelcomeShownWhenEmpty(t *testing.T) {
	m := newTestModel(t, nil)
	if !strings.Contains(m.View(), components.EnglishLabels.WelcomeTitle) {
		t.Error("empty conversation should show the welcome panel")
	}

	m = send(t, m, "hi", "ok")
	if strings.Contains(m.View(), components.EnglishLabels.WelcomeTitle) {
		t.Error("welcome panel shown with messages")
	}
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := New(styles.NewTheme(styles.ThemeDark), nil, nil)
	if m.View() != "Loading..." {
		t.Errorf("View() = %q before the first resize", m.View())
	}
}

func TestModel_ResumeRestoresMessages(t *testing.T) {
	ts := time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC)
	msgs := []*model.Message{
		model.RestoreMessage("m1", "earlier question", true, ts),
		model.RestoreMessage("m2", "earlier answer", false, ts),
	}
	m := newTestModel(t, nil, WithResume("conv-1", ts, msgs))

	if m.Session().ID() != "conv-1" {
		t.Errorf("ID() = %q, want conv-1", m.Session().ID())
	}
	if len(m.Session().Messages()) != 2 {
		t.Fatalf("restored %d messages, want 2", len(m.Session().Messages()))
	}
	if lastMessage(m).IsRevealing() {
		t.Error("restored reply should not reveal")
	}
	if !strings.Contains(m.viewport.View(), "answer") {
		t.Error("restored reply not rendered")
	}
}

func TestModel_QuitClosesSession(t *testing.T) {
	m := newTestModel(t, nil)
	m = send(t, m, "hi", "still revealing")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("ctrl+c returned no command")
	}
	if lastMessage(m).IsRevealing() {
		t.Error("reveal still running after quit")
	}
	if _, err := m.session.Begin("more"); !errors.Is(err, session.ErrClosed) {
		t.Errorf("Begin after quit = %v, want ErrClosed", err)
	}
}
