// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package wait

import "context"

// ConditionWithWakeFunc returns true if the condition is satisfied, or an error
// if the loop should be aborted.
//
// The caller passes along a context and a wake function. The condition hands
// wake to whatever it is waiting on; calling wake asks the loop to invoke the
// condition again. wake is safe to call from any goroutine, any number of
// times, including after the loop has returned.
type ConditionWithWakeFunc func(ctx context.Context, wake func()) (done bool, err error)

// loopConditionUntilContext executes the provided condition every time it is
// woken until the provided context is cancelled, the condition returns true, or
// the condition returns an error. The condition is always invoked at least
// once, regardless of whether the context has been cancelled. The returned
// error is the error returned by the last condition or the context error if
// the context was terminated.
//
// Wakes are coalesced: any number of wakes delivered while the condition runs
// (or before the loop parks) result in exactly one more invocation.
//
// This is the common loop construct for all polling in the wait package.
func loopConditionUntilContext(ctx context.Context, condition ConditionWithWakeFunc) error {
	signal := make(chan struct{}, 1)
	wake := func() {
		select {
		case signal <- struct{}{}:
		default:
		}
	}

	doneCh := ctx.Done()

	for {
		if ok, err := condition(ctx, wake); err != nil || ok {
			return err
		}

		// Park until either the context is cancelled or somebody wakes us.
		select {
		case <-doneCh:
			return ctx.Err()
		case <-signal:
		}

		// A wake and a cancellation may become ready at the same time and select
		// picks randomly between them, so the context is checked explicitly to
		// guarantee the condition is not invoked again after cancellation.
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
