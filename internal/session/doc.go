// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session runs a single chat thread against a remote provider.
//
// A Session owns the conversation log and the provider client. Each send
// appends the user turn, passes the earlier history to the provider and
// appends the reply, then segments it and starts the typewriter reveal of
// its last plain-text segment.
//
// # Usage
//
// Blocking form, used by the CLI:
//
//	loop := reveal.NewLoop()
//	sess := session.New(client, loop)
//	reply, err := sess.Send(ctx, "What is a goroutine?")
//	loop.Run(ctx) // drive the reveal
//
// Split form, used by the TUI so the provider call runs in a tea.Cmd:
//
//	req, err := sess.Begin(text)
//	// ... later, inside Update:
//	msg, err := sess.Complete(req, reply, sendErr)
//
// # Failures
//
// Provider failures never reach the caller as errors. They are logged and
// replaced with a fixed assistant turn (FallbackFailure); a blank reply is
// replaced with FallbackEmpty. Only input errors (ErrEmptyInput, ErrBusy)
// are returned.
package session
