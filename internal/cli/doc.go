// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the rigchat command line.
//
// # Commands
//
//   - rigchat: full-screen chat (ui/chat), --resume continues a stored conversation
//   - ask: send one message and print the reply
//   - repl: line-based chat with input history
//   - segment: print the plain/code segmentation of text as JSON
//   - config: show, get, set, path, keys
//   - history: list, show, export, delete stored conversations
//
// # Output
//
// Replies printed by ask and repl are typed out with the same reveal
// controller the TUI uses, driven by a reveal.Loop on the wall clock.
// When stdout is not a terminal the reply is printed at once and without
// colors. NO_COLOR and FORCE_COLOR are honored.
//
// # Usage
//
//	if err := cli.Execute(); err != nil {
//	    fmt.Fprintln(os.Stderr, err)
//	    os.Exit(1)
//	}
package cli
