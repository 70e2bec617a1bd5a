// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package settimeout

// Poll is the result of a single call to [Future.Poll].
type Poll uint8

const (
	// Pending reports that the result is not available yet. The Future has
	// arranged for the Waker of the polling Context to be called once progress
	// may have been made.
	Pending Poll = iota
	// Ready reports that the Future has completed.
	Ready
)

func (p Poll) String() string {
	switch p {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Waker is used by a Future to ask its executor to poll it again.
//
// Wake may be called from any goroutine, any number of times.
type Waker interface {
	Wake()
}

// WakerFunc adapts an ordinary function to the [Waker] interface.
type WakerFunc func()

// Wake calls f().
func (f WakerFunc) Wake() {
	f()
}

type noopWaker struct{}

func (noopWaker) Wake() {}

// NoopWaker returns a [Waker] that does nothing when woken.
func NoopWaker() Waker {
	return noopWaker{}
}

// Context is handed to [Future.Poll] by the executor polling the Future.
type Context struct {
	waker Waker
}

// NewContext returns a Context exposing the given waker. A nil waker is
// replaced with [NoopWaker].
func NewContext(w Waker) *Context {
	if w == nil {
		w = NoopWaker()
	}
	return &Context{waker: w}
}

// Waker returns the waker for the task currently being polled.
func (cx *Context) Waker() Waker {
	return cx.waker
}

// Future is a value that may not have finished computing yet.
//
// Poll must not block. When it returns [Pending] the Future is responsible for
// eventually calling the Waker of cx, after which the executor polls again.
type Future interface {
	Poll(cx *Context) Poll
}
