// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package settimeout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Options controls options for a [Scheduler]. Changes to Options are ignored
// after being provided to a [Scheduler].
type Options struct {
	// Logger to use for the [Scheduler] instance.
	Logger *slog.Logger

	// MeterProvider used to create the Scheduler's instruments. If nil, the
	// global provider is used.
	MeterProvider metric.MeterProvider
}

// Scheduler runs the workers of the timers created through it.
//
// Every armed [Timer] occupies one pool goroutine for its whole duration. The
// pool is unbounded, so arming never waits for another timer to fire.
type Scheduler struct {
	logger *slog.Logger

	pool   *ants.Pool
	submit func(task func()) error

	meter             metric.Meter
	armedCounter      metric.Int64Counter
	firedCounter      metric.Int64Counter
	pendingCounter    metric.Int64UpDownCounter
	latenessHistogram metric.Float64Histogram
}

var (
	defaultScheduler     *Scheduler
	defaultSchedulerOnce sync.Once
)

// DefaultScheduler returns the [Scheduler] used by [New] and [SetTimeout]. It
// is created with a zero [Options] on first use.
func DefaultScheduler() *Scheduler {
	defaultSchedulerOnce.Do(func() {
		s, err := NewScheduler(Options{})
		if err != nil {
			panic(err)
		}
		defaultScheduler = s
	})
	return defaultScheduler
}

// NewScheduler creates a new [Scheduler].
func NewScheduler(options Options) (*Scheduler, error) {
	s := &Scheduler{
		logger: options.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	provider := options.MeterProvider
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	s.meter = provider.Meter("github.com/matthewpi/settimeout")

	var err error
	s.armedCounter, err = s.meter.Int64Counter(
		"settimeout.timers.armed",
		metric.WithDescription("Number of timers armed by their first poll."),
	)
	if err != nil {
		return nil, fmt.Errorf("settimeout: failed to create otel meter: %w", err)
	}
	s.firedCounter, err = s.meter.Int64Counter(
		"settimeout.timers.fired",
		metric.WithDescription("Number of timers whose deadline elapsed."),
	)
	if err != nil {
		return nil, fmt.Errorf("settimeout: failed to create otel meter: %w", err)
	}
	s.pendingCounter, err = s.meter.Int64UpDownCounter(
		"settimeout.timers.pending",
		metric.WithDescription("Number of armed timers that have not fired yet."),
	)
	if err != nil {
		return nil, fmt.Errorf("settimeout: failed to create otel meter: %w", err)
	}
	s.latenessHistogram, err = s.meter.Float64Histogram(
		"settimeout.timer.lateness",
		metric.WithDescription("Time between a timer's deadline and the moment it fired."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("settimeout: failed to create otel meter: %w", err)
	}

	// A capacity of zero leaves the pool unbounded. Panics raised by a worker
	// (including ones from a wake callback) are re-raised so they terminate the
	// process instead of being swallowed by the pool.
	s.pool, err = ants.NewPool(
		0,
		ants.WithLogger(poolLogger{logger: s.logger}),
		ants.WithPanicHandler(func(p any) {
			panic(p)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("settimeout: failed to create worker pool: %w", err)
	}
	s.submit = s.pool.Submit
	return s, nil
}

// Timer creates a new [Timer] whose worker runs on this Scheduler. Negative
// durations are treated as zero.
func (s *Scheduler) Timer(d time.Duration) *Timer {
	return newTimer(s, d)
}

// Close releases the Scheduler's worker pool. Workers that are already running
// still fire, but arming a Timer created by this Scheduler afterwards panics.
func (s *Scheduler) Close() {
	s.pool.Release()
}

// spawn hands a worker for the given timer state to the pool. It must be
// called at most once per timer, while holding the timer's lock.
func (s *Scheduler) spawn(state *timerState, d time.Duration, waker Waker) {
	ctx := context.Background()
	s.armedCounter.Add(ctx, 1)
	s.pendingCounter.Add(ctx, 1)
	s.logger.LogAttrs(ctx, slog.LevelDebug, "timer armed", slog.Duration("duration", d))

	armedAt := time.Now()
	if err := s.submit(func() {
		s.run(ctx, state, d, armedAt, waker)
	}); err != nil {
		s.pendingCounter.Add(ctx, -1)
		panic(fmt.Errorf("settimeout: failed to spawn timer worker: %w", err))
	}
}

// run is the body of a timer worker.
func (s *Scheduler) run(ctx context.Context, state *timerState, d time.Duration, armedAt time.Time, waker Waker) {
	time.Sleep(d)

	// The wake must only happen once the fired state has been committed, so a
	// poll caused by the wake always observes it.
	state.fire()

	elapsed := time.Since(armedAt)
	s.firedCounter.Add(ctx, 1)
	s.pendingCounter.Add(ctx, -1)
	s.latenessHistogram.Record(ctx, (elapsed - d).Seconds())
	s.logger.LogAttrs(
		ctx,
		slog.LevelDebug,
		"timer fired",
		slog.Duration("duration", d),
		slog.Duration("elapsed", elapsed),
	)

	waker.Wake()
}

// poolLogger forwards the worker pool's log output to slog.
type poolLogger struct {
	logger *slog.Logger
}

func (l poolLogger) Printf(format string, args ...any) {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	l.logger.LogAttrs(context.Background(), slog.LevelWarn, msg, slog.String("component", "worker_pool"))
}
