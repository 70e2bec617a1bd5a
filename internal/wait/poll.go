// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package wait

import (
	"context"
	"time"
)

// PollUntilContextCancel tries a condition func until it returns true, an error,
// or the context is cancelled or hits a deadline. Unlike interval based polling
// the condition is only re-invoked after it has been woken through the wake
// function it was handed. The returned error will be from ctx.Err(), the
// condition's err return value, or nil. condition is guaranteed to be invoked
// at least once.
func PollUntilContextCancel(ctx context.Context, condition ConditionWithWakeFunc) error {
	return loopConditionUntilContext(ctx, condition)
}

// PollUntilContextTimeout will terminate polling after timeout duration by
// setting a context timeout. This is provided as a convenience function for
// callers not currently executing under a deadline and is equivalent to:
//
//	deadlineCtx, deadlineCancel := context.WithTimeout(ctx, timeout)
//	err := PollUntilContextCancel(deadlineCtx, condition)
//
// The deadline context will be cancelled if the Poll succeeds before the
// timeout, simplifying inline usage. All other behavior is identical to
// PollUntilContextCancel.
func PollUntilContextTimeout(ctx context.Context, timeout time.Duration, condition ConditionWithWakeFunc) error {
	deadlineCtx, deadlineCancel := context.WithTimeout(ctx, timeout)
	defer deadlineCancel()

	return loopConditionUntilContext(deadlineCtx, condition)
}
