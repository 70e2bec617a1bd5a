// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package settimeout

import (
	"fmt"
	"sync"
	"time"
)

// State is the lifecycle state of a [Timer].
type State uint8

const (
	// Idle is the state of a Timer that has never been polled.
	Idle State = iota
	// Armed is the state of a Timer whose worker is waiting for the deadline.
	Armed
	// Fired is the terminal state of a Timer whose deadline has elapsed.
	Fired
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Fired:
		return "fired"
	default:
		return "unknown"
	}
}

// Timer is a [Future] that becomes [Ready] once its duration has elapsed,
// counted from the first time it is polled.
//
// The first poll arms the Timer: a single worker is handed to the Scheduler's
// pool which sleeps for the duration, marks the Timer as fired and calls the
// Waker captured on that first poll. Later polls never spawn another worker,
// and once fired, every poll reports Ready without side effects.
//
// A Timer cannot be cancelled. Dropping it before it fires does not stop the
// worker, which still runs to completion.
//
// Timers must be created with [New], [SetTimeout] or [Scheduler.Timer].
type Timer struct {
	duration  time.Duration
	state     *timerState
	scheduler *Scheduler
}

// timerState is shared between a Timer and its worker.
type timerState struct {
	mx sync.Mutex

	// timedOut is only ever set by the worker, and never reset.
	timedOut bool
	// polled is set by the first poll, before the worker is spawned.
	polled bool
}

// New creates a new [Timer] that becomes ready d after it is first polled.
// Negative durations are treated as zero.
//
// The Timer uses [DefaultScheduler] to run its worker.
func New(d time.Duration) *Timer {
	return DefaultScheduler().Timer(d)
}

// SetTimeout returns a [Future] that becomes ready d after it is first polled.
// It is equivalent to New(d).
func SetTimeout(d time.Duration) Future {
	return New(d)
}

func newTimer(s *Scheduler, d time.Duration) *Timer {
	if d < 0 {
		d = 0
	}
	return &Timer{
		duration:  d,
		state:     &timerState{},
		scheduler: s,
	}
}

// Poll implements [Future].
//
// Poll panics if the Scheduler fails to start the worker.
func (t *Timer) Poll(cx *Context) Poll {
	t.state.mx.Lock()
	defer t.state.mx.Unlock()

	if t.state.timedOut {
		return Ready
	}
	if t.state.polled {
		return Pending
	}

	// Marking the timer as polled under the same lock as the check above
	// guarantees that concurrent polls spawn at most one worker.
	t.state.polled = true
	t.scheduler.spawn(t.state, t.duration, cx.Waker())
	return Pending
}

// Duration returns the duration the Timer waits for once armed.
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// State returns the current lifecycle state of the Timer.
func (t *Timer) State() State {
	t.state.mx.Lock()
	defer t.state.mx.Unlock()

	switch {
	case t.state.timedOut:
		return Fired
	case t.state.polled:
		return Armed
	default:
		return Idle
	}
}

func (t *Timer) String() string {
	return fmt.Sprintf("Timer{duration: %s, state: %s}", t.duration, t.State())
}

// fire commits the terminal state. It is called by the worker only.
func (s *timerState) fire() {
	s.mx.Lock()
	s.timedOut = true
	s.mx.Unlock()
}
