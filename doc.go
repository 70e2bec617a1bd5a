// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

// Package settimeout provides a single-shot delay that can be awaited by
// cooperatively scheduled tasks without blocking the goroutine driving them.
//
// A [Timer] is a [Future]: the first call to Poll arms it by handing a worker
// to a goroutine pool, the worker sleeps for the requested duration, marks the
// timer as fired and then wakes the task through the [Waker] captured on that
// first poll. Polling a fired timer always reports [Ready].
//
// For callers without an executor of their own, [BlockOn] drives a Future to
// completion on the calling goroutine:
//
//	if err := settimeout.BlockOn(ctx, settimeout.SetTimeout(5*time.Second)); err != nil {
//		return err
//	}
package settimeout
