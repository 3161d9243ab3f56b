// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/export"
	"github.com/jeranaias/rigchat/internal/reveal"
	"github.com/jeranaias/rigchat/internal/session"
)

// HistoryFileName is the REPL input history file inside the config directory.
const HistoryFileName = "repl_history"

// =============================================================================
// LINE EDITOR
// =============================================================================

// lineReader is the part of liner.State the REPL uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// ChatCLI provides input history and line editing for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor with history loaded from the config
// directory.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, HistoryFileName),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// Prompt reads one line.
func (c *ChatCLI) Prompt(prompt string) (string, error) {
	return c.line.Prompt(prompt)
}

// AppendHistory records a non-empty line.
func (c *ChatCLI) AppendHistory(item string) {
	if strings.TrimSpace(item) != "" {
		c.line.AppendHistory(item)
	}
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// REPL COMMAND
// =============================================================================

// replCmd is a line-based chat for terminals where the full-screen UI is
// not wanted.
func (a *app) replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start a line-based chat session",
		Long: `Starts a line-based chat with input history.

Commands:
  /help           Show commands
  /clear          Start a new conversation
  /export [fmt]   Export the conversation (markdown, json, html)
  /quit           Exit (also ctrl+d)

ctrl+c while a reply is typed out shows the rest at once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			editor := NewChatCLI()
			defer editor.Close()
			return a.runREPL(cmd.Context(), editor, cmd.OutOrStdout())
		},
	}
}

// runREPL reads lines from in until /quit or EOF.
func (a *app) runREPL(ctx context.Context, in lineReader, out io.Writer) error {
	client, err := a.newClient(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to create provider client: %w", err)
	}

	printer := newReplyPrinter(out, a.cfg.UI.Theme)

	store, err := a.openStore()
	if err != nil {
		a.logger.Warn("transcript storage unavailable", zap.Error(err))
		fmt.Fprintln(out, warning(printer.colored, "History will not be saved: "+err.Error()))
	}
	if store != nil {
		defer store.Close()
	}

	loop := reveal.NewLoop()
	sess := a.newCLISession(client, loop, printer, store, isTerminal(out))
	defer func() { sess.Close() }()

	colored := printer.colored
	prompt := "> "
	fmt.Fprintln(out, render(colored, TitleStyle, "rigchat")+" "+
		render(colored, DimStyle, fmt.Sprintf("%s / %s  (/help for commands)", a.cfg.Provider.Kind, a.cfg.Provider.Model)))

	for {
		line, err := in.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return err
		}
		in.AppendHistory(line)

		text := strings.TrimSpace(line)
		if strings.HasPrefix(text, "/") {
			action, err := a.replCommand(text, sess, out, colored)
			if err != nil {
				fmt.Fprintln(out, failure(colored, err.Error()))
			}
			switch action {
			case replQuit:
				return nil
			case replReset:
				// A fresh session gets a new conversation ID in the store.
				sess.Close()
				sess = a.newCLISession(client, loop, printer, store, isTerminal(out))
			}
			continue
		}

		reqCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		msg, err := sess.Send(reqCtx, text)
		if errors.Is(err, session.ErrEmptyInput) {
			stop()
			continue
		}
		if err != nil {
			stop()
			return err
		}
		err = printer.print(reqCtx, sess, msg, loop)
		stop()
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
}

// replAction tells the REPL loop what to do after a slash command.
type replAction int

const (
	replContinue replAction = iota
	replQuit
	replReset
)

// replCommand runs a slash command.
func (a *app) replCommand(text string, sess *session.Session, out io.Writer, colored bool) (replAction, error) {
	fields := strings.Fields(text)
	switch fields[0] {
	case "/quit", "/q", "/exit":
		return replQuit, nil

	case "/help", "/h":
		fmt.Fprintln(out, "/clear          Start a new conversation")
		fmt.Fprintln(out, "/export [fmt]   Export the conversation (markdown, json, html)")
		fmt.Fprintln(out, "/quit           Exit")
		return replContinue, nil

	case "/clear", "/c":
		fmt.Fprintln(out, info(colored, "Conversation cleared."))
		return replReset, nil

	case "/export":
		format := "markdown"
		if len(fields) > 1 {
			format = fields[1]
		}
		opts := export.DefaultOptions()
		opts.Theme = a.cfg.UI.Theme
		exporter, err := export.ForFormat(format, opts)
		if err != nil {
			return replContinue, err
		}
		path, err := export.ExportToFile(export.FromConversation(sess.Conversation()), exporter, opts)
		if err != nil {
			return replContinue, err
		}
		fmt.Fprintln(out, success(colored, "Exported to "+path))
		return replContinue, nil

	default:
		return replContinue, fmt.Errorf("unknown command %s (try /help)", fields[0])
	}
}
