// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package wait

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollUntilContextCancelInvokesOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := PollUntilContextCancel(ctx, func(context.Context, func()) (bool, error) {
		calls++
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPollUntilContextCancelWakeBeforePark(t *testing.T) {
	calls := 0
	err := PollUntilContextTimeout(context.Background(), 5*time.Second, func(_ context.Context, wake func()) (bool, error) {
		calls++
		if calls == 1 {
			// Woken before the loop had a chance to park.
			wake()
			return false, nil
		}
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestPollUntilContextCancelWakeFromGoroutine(t *testing.T) {
	calls := 0
	err := PollUntilContextTimeout(context.Background(), 5*time.Second, func(_ context.Context, wake func()) (bool, error) {
		calls++
		if calls == 1 {
			time.AfterFunc(5*time.Millisecond, wake)
			return false, nil
		}
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestPollUntilContextCancelCoalescesWakes(t *testing.T) {
	calls := 0
	err := PollUntilContextTimeout(context.Background(), 50*time.Millisecond, func(_ context.Context, wake func()) (bool, error) {
		calls++
		if calls == 1 {
			for i := 0; i < 5; i++ {
				wake()
			}
		}
		return false, nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, calls)
}

func TestPollUntilContextCancelConditionError(t *testing.T) {
	errCondition := errors.New("condition failed")

	err := PollUntilContextCancel(context.Background(), func(context.Context, func()) (bool, error) {
		return false, errCondition
	})
	assert.ErrorIs(t, err, errCondition)
}

func TestPollUntilContextTimeoutWithoutWake(t *testing.T) {
	calls := 0
	err := PollUntilContextTimeout(context.Background(), 10*time.Millisecond, func(context.Context, func()) (bool, error) {
		calls++
		return false, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
}
