package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewScheduler_DefaultInterval(t *testing.T) {
	s := NewScheduler(0, testLogger())
	if s.Interval() != DefaultInterval {
		t.Errorf("Interval() = %v, want %v", s.Interval(), DefaultInterval)
	}
}

func TestScheduler_RunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sleep, calls := recordingSleep()
	s := NewScheduler(time.Second, testLogger(), WithSchedulerSleep(sleep))

	var seen []int
	runs := s.Run(ctx, func(ctx context.Context, run int) error {
		seen = append(seen, run)
		if run == 3 {
			cancel()
		}
		return nil
	})

	if runs != 3 {
		t.Errorf("Run() = %d, want 3", runs)
	}
	if len(seen) != 3 || seen[0] != 1 || seen[2] != 3 {
		t.Errorf("run numbers = %v, want [1 2 3]", seen)
	}

	// two full waits between three cycles; the third wait is cut by cancel
	got := calls()
	if len(got) != 3 {
		t.Fatalf("sleep called %d times, want 3", len(got))
	}
	for i, d := range got {
		if d != time.Second {
			t.Errorf("sleep[%d] = %v, want 1s", i, d)
		}
	}
}

func TestScheduler_CycleErrorDoesNotStopLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sleep, _ := recordingSleep()
	s := NewScheduler(time.Second, testLogger(), WithSchedulerSleep(sleep))

	runs := s.Run(ctx, func(ctx context.Context, run int) error {
		if run == 2 {
			cancel()
			return nil
		}
		return errors.New("no active exam periods found")
	})

	if runs != 2 {
		t.Errorf("Run() = %d, want 2", runs)
	}
}

func TestScheduler_RecoversFromPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sleep, _ := recordingSleep()
	s := NewScheduler(time.Second, testLogger(), WithSchedulerSleep(sleep))

	runs := s.Run(ctx, func(ctx context.Context, run int) error {
		if run == 1 {
			panic("boom")
		}
		cancel()
		return nil
	})

	if runs != 2 {
		t.Errorf("Run() = %d, want 2 (panic should not stop the loop)", runs)
	}
}

func TestScheduler_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScheduler(time.Second, testLogger())
	runs := s.Run(ctx, func(ctx context.Context, run int) error {
		t.Error("cycle should not run with a cancelled context")
		return nil
	})

	if runs != 0 {
		t.Errorf("Run() = %d, want 0", runs)
	}
}
