// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigchat/internal/reveal"
)

// =============================================================================
// BUBBLE TEA SCHEDULER
// =============================================================================

// revealTickMsg fires the reveal timer with the given ID.
type revealTickMsg struct {
	id uint64
}

// teaScheduler runs reveal timers through Bubble Tea. AfterFunc queues a
// tea.Tick command; when its revealTickMsg comes back through Update the
// callback runs there, on the same goroutine as every other Model change.
//
// Queued commands are collected with drain after each Update. Must be used
// as a pointer so that Model copies share one timer table.
type teaScheduler struct {
	next    uint64
	timers  map[uint64]func()
	pending []tea.Cmd
}

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{timers: make(map[uint64]func())}
}

// AfterFunc implements reveal.Scheduler.
func (s *teaScheduler) AfterFunc(d time.Duration, fn func()) reveal.Timer {
	s.next++
	id := s.next
	s.timers[id] = fn
	if d <= 0 {
		s.pending = append(s.pending, func() tea.Msg { return revealTickMsg{id: id} })
	} else {
		s.pending = append(s.pending, tea.Tick(d, func(time.Time) tea.Msg {
			return revealTickMsg{id: id}
		}))
	}
	return teaTimer{s: s, id: id}
}

// fire runs the callback for id. Stopped or already fired timers are
// ignored and report false.
func (s *teaScheduler) fire(id uint64) bool {
	fn, ok := s.timers[id]
	if !ok {
		return false
	}
	delete(s.timers, id)
	fn()
	return true
}

// drain returns the commands queued since the last call.
func (s *teaScheduler) drain() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	if len(cmds) == 1 {
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

// active returns the number of timers that have not fired or been stopped.
func (s *teaScheduler) active() int {
	return len(s.timers)
}

type teaTimer struct {
	s  *teaScheduler
	id uint64
}

// Stop implements reveal.Timer. The tick command may still arrive; fire
// then finds nothing to run.
func (t teaTimer) Stop() bool {
	if _, ok := t.s.timers[t.id]; !ok {
		return false
	}
	delete(t.s.timers, t.id)
	return true
}
