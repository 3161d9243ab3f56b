// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/remote"
	"github.com/jeranaias/rigchat/internal/reveal"
	"github.com/jeranaias/rigchat/internal/segment"
	"github.com/jeranaias/rigchat/internal/session"
	"github.com/jeranaias/rigchat/internal/storage"
)

// =============================================================================
// HELPERS
// =============================================================================

const testConfig = `
[provider]
kind = "ollama"
endpoint = "http://127.0.0.1:1"
model = "test-model"

[log]
level = "off"

[storage]
enabled = true
path = %q
`

// testEnv isolates the config directory and writes a config file.
func testEnv(t *testing.T) (cfgPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("RIGCHAT_HOME", dir)
	t.Setenv("NO_COLOR", "1")
	for _, key := range []string{"RIGCHAT_PROVIDER", "RIGCHAT_MODEL", "RIGCHAT_API_KEY", "RIGCHAT_ENDPOINT", "RIGCHAT_REVEAL_MS", "RIGCHAT_LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	dbPath = filepath.Join(dir, "history.db")
	cfgPath = filepath.Join(dir, "config.toml")
	content := strings.Replace(testConfig, "%q", `"`+filepath.ToSlash(dbPath)+`"`, 1)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0600))
	return cfgPath, dbPath
}

type fakeClient struct {
	reply string
	err   error
	calls []string
}

func (f *fakeClient) Send(ctx context.Context, userText string, history []model.ConversationEntry) (string, error) {
	f.calls = append(f.calls, userText)
	return f.reply, f.err
}

// run executes the command line with a fake provider and returns stdout.
func run(t *testing.T, client remote.Client, stdin string, args ...string) (string, error) {
	t.Helper()
	a := newApp()
	a.newClient = func(*config.Config) (remote.Client, error) { return client, nil }

	root := a.rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk_PrintsReply(t *testing.T) {
	cfgPath, _ := testEnv(t)
	client := &fakeClient{reply: "Hello there"}

	out, err := run(t, client, "", "--config", cfgPath, "ask", "hi", "you")
	require.NoError(t, err)
	assert.Equal(t, []string{"hi you"}, client.calls)
	assert.Equal(t, "Hello there\n", out)
}

func TestAsk_ReadsStdin(t *testing.T) {
	cfgPath, _ := testEnv(t)
	client := &fakeClient{reply: "ok"}

	_, err := run(t, client, "  from stdin \n", "--config", cfgPath, "ask")
	require.NoError(t, err)
	assert.Equal(t, []string{"from stdin"}, client.calls)
}

func TestAsk_PrintsCodeFenced(t *testing.T) {
	cfgPath, _ := testEnv(t)
	client := &fakeClient{reply: "Run this:\n```go\nfmt.Println(1)\n```\nThat's it."}

	out, err := run(t, client, "", "--config", cfgPath, "ask", "code")
	require.NoError(t, err)
	assert.Equal(t, "Run this:\n\n```go\nfmt.Println(1)\n```\n\nThat's it.\n", out)
}

func TestAsk_ProviderFailureUsesFallback(t *testing.T) {
	cfgPath, _ := testEnv(t)
	client := &fakeClient{err: errors.New("connection refused")}

	out, err := run(t, client, "", "--config", cfgPath, "ask", "hi")
	require.NoError(t, err)
	assert.Equal(t, session.FallbackFailure+"\n", out)
}

func TestAsk_EmptyInput(t *testing.T) {
	cfgPath, _ := testEnv(t)
	_, err := run(t, &fakeClient{}, "   ", "--config", cfgPath, "ask")
	assert.ErrorIs(t, err, session.ErrEmptyInput)
}

func TestAsk_RecordsTranscript(t *testing.T) {
	cfgPath, dbPath := testEnv(t)
	_, err := run(t, &fakeClient{reply: "stored reply"}, "", "--config", cfgPath, "ask", "remember me")
	require.NoError(t, err)

	store, err := storage.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	metas, err := store.ListConversations(0)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "remember me", metas[0].Title)
	assert.Equal(t, 2, metas[0].MessageCount)
}

func TestAskText(t *testing.T) {
	text, err := askText(strings.NewReader("ignored"), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "a b", text)

	text, err = askText(strings.NewReader("piped"), []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, "piped", text)

	text, err = askText(strings.NewReader("piped"), nil)
	require.NoError(t, err)
	assert.Equal(t, "piped", text)
}

// =============================================================================
// REPLY PRINTER
// =============================================================================

func TestReplyPrinter_TypesOutRevealedSegment(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var out bytes.Buffer
	p := newReplyPrinter(&out, "dark")
	loop := reveal.NewLoop()

	client := &fakeClient{reply: "```sh\nls\n```\nDone now"}
	sess := session.New(client, loop,
		session.WithReveal(true, time.Millisecond),
		session.WithOnRevealTick(p.tick))
	defer sess.Close()

	msg, err := sess.Send(context.Background(), "list")
	require.NoError(t, err)
	require.True(t, msg.IsRevealing())

	require.NoError(t, p.print(context.Background(), sess, msg, loop))
	assert.Equal(t, "```sh\nls\n```\n\nDone now\n", out.String())
	assert.False(t, msg.IsRevealing())
}

func TestReplyPrinter_CancelPrintsRest(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var out bytes.Buffer
	p := newReplyPrinter(&out, "dark")
	loop := reveal.NewLoop()

	sess := session.New(&fakeClient{reply: "interrupted reply"}, loop,
		session.WithReveal(true, time.Hour),
		session.WithOnRevealTick(p.tick))
	defer sess.Close()

	msg, err := sess.Send(context.Background(), "hi")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = p.print(ctx, sess, msg, loop)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "interrupted reply\n", out.String())
	assert.False(t, msg.IsRevealing())
}

// =============================================================================
// REPL
// =============================================================================

type scriptedInput struct {
	lines   []string
	history []string
}

func (s *scriptedInput) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedInput) AppendHistory(item string) {
	s.history = append(s.history, item)
}

func setupApp(t *testing.T, cfgPath string, client remote.Client) *app {
	t.Helper()
	a := newApp()
	a.flags.ConfigPath = cfgPath
	a.newClient = func(*config.Config) (remote.Client, error) { return client, nil }
	require.NoError(t, a.setup())
	return a
}

func TestREPL_SendsLinesUntilQuit(t *testing.T) {
	cfgPath, _ := testEnv(t)
	client := &fakeClient{reply: "pong"}
	a := setupApp(t, cfgPath, client)

	in := &scriptedInput{lines: []string{"ping", "", "/help", "again", "/quit", "never"}}
	var out bytes.Buffer
	require.NoError(t, a.runREPL(context.Background(), in, &out))

	assert.Equal(t, []string{"ping", "again"}, client.calls)
	assert.Contains(t, out.String(), "pong")
	assert.Contains(t, out.String(), "/export")
	assert.Equal(t, []string{"never"}, in.lines)
}

func TestREPL_ClearStartsNewConversation(t *testing.T) {
	cfgPath, dbPath := testEnv(t)
	a := setupApp(t, cfgPath, &fakeClient{reply: "ok"})

	in := &scriptedInput{lines: []string{"first", "/clear", "second"}}
	require.NoError(t, a.runREPL(context.Background(), in, io.Discard))

	store, err := storage.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()
	metas, err := store.ListConversations(0)
	require.NoError(t, err)
	assert.Len(t, metas, 2)
}

func TestREPL_UnknownCommand(t *testing.T) {
	cfgPath, _ := testEnv(t)
	a := setupApp(t, cfgPath, &fakeClient{})

	var out bytes.Buffer
	in := &scriptedInput{lines: []string{"/bogus"}}
	require.NoError(t, a.runREPL(context.Background(), in, &out))
	assert.Contains(t, out.String(), "unknown command /bogus")
}

// =============================================================================
// SEGMENT
// =============================================================================

func TestSegmentCmd_PrintsJSON(t *testing.T) {
	cfgPath, _ := testEnv(t)
	input := "Intro\n```html\n<html></html>\n```\nOutro"

	out, err := run(t, &fakeClient{}, input, "--config", cfgPath, "segment")
	require.NoError(t, err)

	var got []struct {
		Kind     string `json:"kind"`
		Content  string `json:"content"`
		Language string `json:"language"`
		Runnable bool   `json:"runnable"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "plain", got[0].Kind)
	assert.Equal(t, "Intro", got[0].Content)
	assert.Equal(t, "code", got[1].Kind)
	assert.Equal(t, "html", got[1].Language)
	assert.True(t, got[1].Runnable)
	assert.Equal(t, "Outro", got[2].Content)
}

func TestWriteSegments_Compact(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeSegments(&out, "just text", true))
	assert.Equal(t, `[{"kind":"plain","content":"just text"}]`+"\n", out.String())

	var segs []segment.Segment
	require.NoError(t, json.Unmarshal(out.Bytes(), &segs))
	assert.Equal(t, []segment.Segment{segment.Text("just text")}, segs)
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfigCmd_SetThenGet(t *testing.T) {
	cfgPath, _ := testEnv(t)

	_, err := run(t, &fakeClient{}, "", "--config", cfgPath, "config", "set", "ui.locale", "th")
	require.NoError(t, err)

	out, err := run(t, &fakeClient{}, "", "--config", cfgPath, "config", "get", "ui.locale")
	require.NoError(t, err)
	assert.Equal(t, "th\n", out)

	cfg, err := config.LoadFromPath(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "test-model", cfg.Provider.Model, "other keys survive")
}

func TestConfigCmd_SetRejectsInvalid(t *testing.T) {
	cfgPath, _ := testEnv(t)
	before, err := os.ReadFile(cfgPath)
	require.NoError(t, err)

	_, err = run(t, &fakeClient{}, "", "--config", cfgPath, "config", "set", "reveal.interval_ms", "5000")
	assert.Error(t, err)
	_, err = run(t, &fakeClient{}, "", "--config", cfgPath, "config", "set", "no.such", "1")
	assert.Error(t, err)

	after, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestConfigCmd_RedactsAPIKey(t *testing.T) {
	cfgPath, _ := testEnv(t)
	t.Setenv("RIGCHAT_API_KEY", "sk-secret")

	out, err := run(t, &fakeClient{}, "", "--config", cfgPath, "config", "get", "provider.api_key")
	require.NoError(t, err)
	assert.Equal(t, "[REDACTED]\n", out)

	out, err = run(t, &fakeClient{}, "", "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "sk-secret")
}

func TestConfigCmd_Path(t *testing.T) {
	cfgPath, _ := testEnv(t)
	out, err := run(t, &fakeClient{}, "", "--config", cfgPath, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, cfgPath+"\n", out)
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfgPath, _ := testEnv(t)
	a := newApp()
	a.flags = Globals{ConfigPath: cfgPath, Model: "flag-model", NoReveal: true}
	require.NoError(t, a.setup())

	assert.Equal(t, "flag-model", a.cfg.Provider.Model)
	assert.False(t, a.cfg.Reveal.Enabled)

	reloaded := config.Default()
	a.applyFlags(reloaded)
	assert.Equal(t, "flag-model", reloaded.Provider.Model)
}

func TestSetup_InvalidFlag(t *testing.T) {
	cfgPath, _ := testEnv(t)
	a := newApp()
	a.flags = Globals{ConfigPath: cfgPath, Provider: "carrier-pigeon"}
	assert.Error(t, a.setup())
}

// =============================================================================
// HISTORY
// =============================================================================

func TestHistoryCmd_ListShowExportDelete(t *testing.T) {
	cfgPath, dbPath := testEnv(t)
	_, err := run(t, &fakeClient{reply: "Use ```go\nx := 1\n```"}, "", "--config", cfgPath, "ask", "how to declare")
	require.NoError(t, err)

	out, err := run(t, &fakeClient{}, "", "--config", cfgPath, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "how to declare")

	store, err := storage.Open(dbPath)
	require.NoError(t, err)
	metas, err := store.ListConversations(0)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.Len(t, metas, 1)
	prefix := metas[0].ID[:8]

	out, err = run(t, &fakeClient{}, "", "--config", cfgPath, "history", "show", prefix)
	require.NoError(t, err)
	assert.Contains(t, out, "how to declare")
	assert.Contains(t, out, "x := 1")

	out, err = run(t, &fakeClient{}, "", "--config", cfgPath, "history", "export", prefix, "--format", "json", "--stdout")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), "export is JSON")
	assert.Contains(t, out, metas[0].ID)

	dir := t.TempDir()
	out, err = run(t, &fakeClient{}, "", "--config", cfgPath, "history", "export", prefix, "--output", dir)
	require.NoError(t, err)
	_, err = os.Stat(strings.TrimSpace(out))
	assert.NoError(t, err, "markdown file written")

	_, err = run(t, &fakeClient{}, "", "--config", cfgPath, "history", "delete", prefix)
	require.NoError(t, err)
	_, err = run(t, &fakeClient{}, "", "--config", cfgPath, "history", "show", prefix)
	assert.ErrorIs(t, err, storage.ErrConversationNotFound)
}

func TestStatusLines_PlainKeepsIndicator(t *testing.T) {
	assert.Equal(t, "[OK] saved", success(false, "saved"))
	assert.Equal(t, "[X] failed", failure(false, "failed"))
	assert.Equal(t, "[!] careful", warning(false, "careful"))
	assert.Equal(t, "[i] note", info(false, "note"))
	assert.Contains(t, success(true, "saved"), "saved")
}
