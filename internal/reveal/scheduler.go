// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"container/heap"
	"context"
	"time"
)

// =============================================================================
// SCHEDULER INTERFACE
// =============================================================================

// Scheduler runs a callback once after a delay. Implementations must invoke
// callbacks on the same logical thread that calls Controller methods.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a pending callback returned by a Scheduler.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or was already stopped.
	Stop() bool
}

// =============================================================================
// LOOP
// =============================================================================

// Loop is a single-goroutine timer queue running on virtual time.
//
// Tests call Advance to move time forward deterministically. Command-line
// callers use Run, which sleeps on the wall clock between deadlines.
// A Loop is not safe for concurrent use.
type Loop struct {
	now   time.Time
	seq   uint64
	queue timerQueue
}

// NewLoop creates an empty loop whose clock starts at the zero time.
func NewLoop() *Loop {
	return &Loop{}
}

// Now returns the loop's current virtual time.
func (l *Loop) Now() time.Time {
	return l.now
}

// Pending returns the number of timers waiting to fire.
func (l *Loop) Pending() int {
	return len(l.queue)
}

// AfterFunc schedules fn to run once virtual time has advanced by d.
// Non-positive delays fire on the next Advance call, including Advance(0).
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	l.seq++
	t := &loopTimer{
		loop:  l,
		when:  l.now.Add(d),
		seq:   l.seq,
		fn:    fn,
		index: -1,
	}
	heap.Push(&l.queue, t)
	return t
}

// Advance moves virtual time forward by d, running every timer whose
// deadline falls within the window in deadline order. Timers scheduled by
// those callbacks also run if they fall inside the window. It returns the
// number of callbacks run.
func (l *Loop) Advance(d time.Duration) int {
	target := l.now.Add(d)
	fired := 0
	for len(l.queue) > 0 {
		next := l.queue[0]
		if next.when.After(target) {
			break
		}
		heap.Pop(&l.queue)
		if next.when.After(l.now) {
			l.now = next.when
		}
		next.fired = true
		next.fn()
		fired++
	}
	if target.After(l.now) {
		l.now = target
	}
	return fired
}

// Run drives the loop from the wall clock until no timers remain or ctx is
// done. It returns ctx.Err() when cancelled and nil when the queue drains.
func (l *Loop) Run(ctx context.Context) error {
	for len(l.queue) > 0 {
		wait := l.queue[0].when.Sub(l.now)
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		l.Advance(max(wait, 0))
	}
	return nil
}

// =============================================================================
// TIMER QUEUE
// =============================================================================

type loopTimer struct {
	loop    *Loop
	when    time.Time
	seq     uint64
	fn      func()
	index   int
	fired   bool
	stopped bool
}

func (t *loopTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	if t.index >= 0 {
		heap.Remove(&t.loop.queue, t.index)
	}
	return true
}

// timerQueue orders timers by deadline, then by scheduling order.
type timerQueue []*loopTimer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].when.Equal(q[j].when) {
		return q[i].seq < q[j].seq
	}
	return q[i].when.Before(q[j].when)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*loopTimer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
