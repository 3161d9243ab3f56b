// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat screen of the rigchat TUI.

# Key Components

## Model (model.go)

Model is the Bubble Tea model for one conversation. It owns a
session.Session and drives it from Update:
  - enter sends the input line; the provider call runs as a tea.Cmd and its
    replyMsg is handed back to Session.Complete
  - esc shows the reply being revealed in full
  - ctrl+y copies the last code block of the newest reply
  - ConfigReloadedMsg applies reveal, locale, theme and provider changes

## Scheduler (scheduler.go)

teaScheduler implements reveal.Scheduler on top of tea.Tick so that every
reveal step runs inside Update. Commands it queues are returned with the
result of each Update.

## View (view.go)

Layout, top to bottom: header, transcript (or the welcome panel while the
conversation is empty), typing indicator, input line, status bar.

# Usage

	m := chat.New(theme, cfg, client, chat.WithLogger(logger))
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
*/
package chat
