// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package settimeout

import (
	"context"
	"time"

	"github.com/matthewpi/settimeout/internal/wait"
)

// BlockOn polls f on the calling goroutine until it is [Ready] or ctx is done.
// Between polls the goroutine parks until the Waker handed to f is called.
//
// f is always polled at least once, even if ctx is already done. The returned
// error is nil once f is ready, otherwise it is ctx.Err().
//
// A Future abandoned because ctx ended keeps whatever Waker it captured, so it
// should not be handed to another BlockOn call if it may already be pending.
func BlockOn(ctx context.Context, f Future) error {
	return wait.PollUntilContextCancel(ctx, pollFuture(f))
}

// BlockOnTimeout is like [BlockOn] but gives up after timeout. It is
// equivalent to:
//
//	deadlineCtx, deadlineCancel := context.WithTimeout(ctx, timeout)
//	err := BlockOn(deadlineCtx, f)
func BlockOnTimeout(ctx context.Context, timeout time.Duration, f Future) error {
	return wait.PollUntilContextTimeout(ctx, timeout, pollFuture(f))
}

func pollFuture(f Future) wait.ConditionWithWakeFunc {
	var cx *Context
	return func(_ context.Context, wake func()) (bool, error) {
		// wake is the same function for the lifetime of the loop.
		if cx == nil {
			cx = NewContext(WakerFunc(wake))
		}
		return f.Poll(cx) == Ready, nil
	}
}
