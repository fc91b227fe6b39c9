package slotwatch

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jpalmerr/slotwatch/internal/poller"
)

const (
	// DefaultInterval is the time between monitor cycles.
	DefaultInterval = poller.DefaultInterval

	// unknownLocationName is shown when a filtered location id is absent
	// from the batch's location list.
	unknownLocationName = "Unknown Location"
)

// watcherConfig holds mutable state during Watcher construction.
type watcherConfig struct {
	batchCode       string
	locationID      ID
	status          string
	allBatches      bool
	showBatches     bool
	monitor         bool
	verbose         bool
	emailDisabled   bool
	interval        time.Duration
	logger          *slog.Logger
	results         ResultLog
	notifier        Notifier
	alerter         Alerter
	now             func() time.Time
	sleep           poller.SleepFunc
	resultCallbacks []func(LocationResult)
	reportCallbacks []func(RunReport)
}

// Option is a function that configures a [Watcher] during construction.
//
// Options return an error if validation fails.
type Option func(*watcherConfig) error

// WithBatchCode selects the batch with exactly this code in single-batch mode.
// Without it, the first OPENING batch is used.
func WithBatchCode(code string) Option {
	return func(cfg *watcherConfig) error {
		cfg.batchCode = code
		return nil
	}
}

// WithLocationID restricts every batch check to a single location.
func WithLocationID(id string) Option {
	return func(cfg *watcherConfig) error {
		cfg.locationID = ID(id)
		return nil
	}
}

// WithStatusFilter sets the status matched in all-batches mode.
// Matching is exact and case-sensitive. Defaults to [StatusOpening].
//
// Returns an error if status is empty.
func WithStatusFilter(status string) Option {
	return func(cfg *watcherConfig) error {
		if status == "" {
			return errors.New("status filter cannot be empty")
		}
		cfg.status = status
		return nil
	}
}

// WithAllBatches checks every batch matching the status filter instead of one.
func WithAllBatches(enabled bool) Option {
	return func(cfg *watcherConfig) error {
		cfg.allBatches = enabled
		return nil
	}
}

// WithShowBatches makes [Watcher.Run] list the period's batches and stop.
func WithShowBatches(enabled bool) Option {
	return func(cfg *watcherConfig) error {
		cfg.showBatches = enabled
		return nil
	}
}

// WithMonitor makes [Watcher.Run] repeat the check until its context is done.
func WithMonitor(enabled bool) Option {
	return func(cfg *watcherConfig) error {
		cfg.monitor = enabled
		return nil
	}
}

// WithInterval sets the time between monitor cycles. Defaults to 300 seconds.
//
// Returns an error if the duration is zero or negative.
func WithInterval(d time.Duration) Option {
	return func(cfg *watcherConfig) error {
		if d <= 0 {
			return errors.New("monitor interval must be positive")
		}
		cfg.interval = d
		return nil
	}
}

// WithVerbose prints per-location detail, including locations without
// availability.
func WithVerbose(enabled bool) Option {
	return func(cfg *watcherConfig) error {
		cfg.verbose = enabled
		return nil
	}
}

// WithEmailDisabled suppresses the notifier. The audible alert still fires.
func WithEmailDisabled(disabled bool) Option {
	return func(cfg *watcherConfig) error {
		cfg.emailDisabled = disabled
		return nil
	}
}

// WithNotifier sets the notifier invoked once per run with availability.
func WithNotifier(n Notifier) Option {
	return func(cfg *watcherConfig) error {
		cfg.notifier = n
		return nil
	}
}

// WithAlerter sets the audible alert invoked once per run with availability.
func WithAlerter(a Alerter) Option {
	return func(cfg *watcherConfig) error {
		cfg.alerter = a
		return nil
	}
}

// WithResultLog sets where run events are recorded.
//
// Returns an error if the log is nil.
func WithResultLog(l ResultLog) Option {
	return func(cfg *watcherConfig) error {
		if l == nil {
			return errors.New("result log cannot be nil")
		}
		cfg.results = l
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for diagnostics.
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *watcherConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(cfg *watcherConfig) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.now = now
		return nil
	}
}

// WithSleep replaces the function used to wait between monitor cycles.
func WithSleep(fn poller.SleepFunc) Option {
	return func(cfg *watcherConfig) error {
		if fn == nil {
			return errors.New("sleep function cannot be nil")
		}
		cfg.sleep = fn
		return nil
	}
}

// WithResultCallback registers a function invoked after every location check.
//
// Callbacks run synchronously on the check path, so they should be fast.
// A panicking callback is recovered and logged.
//
// Returns an error if the callback is nil.
func WithResultCallback(cb func(LocationResult)) Option {
	return func(cfg *watcherConfig) error {
		if cb == nil {
			return errors.New("result callback cannot be nil")
		}
		cfg.resultCallbacks = append(cfg.resultCallbacks, cb)
		return nil
	}
}

// WithReportCallback registers a function invoked after every completed run.
//
// Returns an error if the callback is nil.
func WithReportCallback(cb func(RunReport)) Option {
	return func(cfg *watcherConfig) error {
		if cb == nil {
			return errors.New("report callback cannot be nil")
		}
		cfg.reportCallbacks = append(cfg.reportCallbacks, cb)
		return nil
	}
}
