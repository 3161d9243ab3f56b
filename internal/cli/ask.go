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
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/rigchat/internal/remote"
	"github.com/jeranaias/rigchat/internal/reveal"
	"github.com/jeranaias/rigchat/internal/session"
	"github.com/jeranaias/rigchat/internal/storage"
)

// askCmd sends one message and prints the reply.
func (a *app) askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [message...]",
		Short: "Send one message and print the reply",
		Long: `Sends a single message to the configured provider and prints the reply.

With no arguments, or "-", the message is read from stdin. The reply is typed
out when stdout is a terminal and shown at once when it is piped.`,
		Example: `  rigchat ask "How do I reverse a slice in Go?"
  echo "Write a haiku about tea" | rigchat ask
  rigchat ask --provider openai --model gpt-4o-mini "hello"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := askText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return a.runAsk(cmd, text)
		},
	}
}

// askText joins args, or reads stdin when there are none or the only one
// is "-".
func askText(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func (a *app) runAsk(cmd *cobra.Command, text string) error {
	client, err := a.newClient(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to create provider client: %w", err)
	}

	store, err := a.openStore()
	if err != nil {
		a.logger.Warn("transcript storage unavailable", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
	}

	out := cmd.OutOrStdout()
	printer := newReplyPrinter(out, a.cfg.UI.Theme)
	loop := reveal.NewLoop()
	sess := a.newCLISession(client, loop, printer, store, isTerminal(out))
	defer sess.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	msg, err := sess.Send(ctx, text)
	if err != nil {
		return err
	}
	if err := printer.print(ctx, sess, msg, loop); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newCLISession builds a session for line-oriented output. Reveal runs only
// when animate is set and the config enables it.
func (a *app) newCLISession(client remote.Client, loop *reveal.Loop, printer *replyPrinter, store *storage.Store, animate bool) *session.Session {
	opts := []session.Option{
		session.WithLogger(a.logger),
		session.WithReveal(animate && a.cfg.Reveal.Enabled, a.cfg.Reveal.Interval()),
		session.WithLocale(a.cfg.UI.Locale),
		session.WithOnRevealTick(printer.tick),
	}
	if store != nil {
		opts = append(opts, session.WithRecorder(store))
	}
	return session.New(client, loop, opts...)
}
