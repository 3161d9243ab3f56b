// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal drives the typewriter animation for assistant replies.
//
// A Controller reveals one text, one character per tick, where a character
// is a user-perceived grapheme cluster. Ticks come from a Scheduler so the
// pacing can be driven by the Bubble Tea event loop, by the wall clock, or
// by a test advancing virtual time.
//
// # States
//
//	Idle --Start--> Revealing --tick*--> Complete
//	any --Reset(new text)--> Revealing
//	any --Dispose--> Disposed (terminal)
//
// Starting a new session, resetting or disposing always invalidates the
// pending tick of the previous session before anything else happens, so a
// stale callback can never touch the revealed prefix. Calls on a disposed
// controller are silent no-ops.
//
// # Usage
//
//	loop := reveal.NewLoop()
//	c := reveal.New(loop, reveal.WithOnComplete(func() { fmt.Println("done") }))
//	c.Start("hello", 30*time.Millisecond)
//	loop.Advance(150 * time.Millisecond) // prints "done"
package reveal
