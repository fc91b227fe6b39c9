package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

// DefaultInterval is the time between monitor cycles.
const DefaultInterval = 300 * time.Second

// Cycle is one full check. run starts at 1 and increments every cycle.
type Cycle func(ctx context.Context, run int) error

// Scheduler repeats a [Cycle] at a fixed interval until its context is done.
//
// Cycles never overlap: the next one starts only after the previous cycle has
// returned and the full interval has elapsed. A cycle that fails or panics is
// logged and aborts only itself; the scheduler keeps going.
type Scheduler struct {
	interval time.Duration
	sleep    SleepFunc
	logger   *slog.Logger
}

// SchedulerOption configures a [Scheduler].
type SchedulerOption func(*Scheduler)

// WithSchedulerSleep replaces the function used to wait between cycles.
func WithSchedulerSleep(fn SleepFunc) SchedulerOption {
	return func(s *Scheduler) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// NewScheduler creates a new [Scheduler]. A non-positive interval falls back
// to [DefaultInterval].
func NewScheduler(interval time.Duration, logger *slog.Logger, opts ...SchedulerOption) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		interval: interval,
		sleep:    Sleep,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the time between cycles.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Run executes cycle immediately, then once per interval, until ctx is done.
// It blocks and returns the number of cycles started.
func (s *Scheduler) Run(ctx context.Context, cycle Cycle) int {
	runs := 0
	for {
		if ctx.Err() != nil {
			return runs
		}

		runs++
		if err := s.runCycle(ctx, cycle, runs); err != nil {
			if ctx.Err() != nil {
				return runs
			}
			s.logger.Warn("check cycle aborted", "run", runs, "error", err.Error())
		}

		if err := s.sleep(ctx, s.interval); err != nil {
			return runs
		}
	}
}

// runCycle calls cycle with panic recovery. A panic is logged with its stack
// and a correlation id, and surfaces as an error carrying the id.
func (s *Scheduler) runCycle(ctx context.Context, cycle Cycle, run int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			s.logger.Error("check cycle panic",
				"correlation_id", correlationID,
				"run", run,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("check cycle panic (correlation_id: %s)", correlationID)
		}
	}()
	return cycle(ctx, run)
}
