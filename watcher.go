package slotwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jpalmerr/slotwatch/internal/poller"
	"github.com/jpalmerr/slotwatch/internal/resultlog"
)

const (
	doubleRule = "===================================================================="
	singleRule = "--------------------------------------------------------------------"
)

// RunContext is the resolved state a run operates on.
//
// It is built once by [Watcher.Prepare] and copied, never mutated, for each
// run: [RunContext.Next] stamps a fresh run id and start time.
type RunContext struct {
	RunID     string
	Run       int
	StartedAt time.Time
	PeriodID  ID

	// Batches is the batch list fetched during preparation. It is empty in
	// all-batches mode unless batches were shown.
	Batches []Batch

	// Selected is the batch checked in single-batch mode; nil otherwise.
	Selected *Batch
}

// Next returns a copy of rc for run number run, started at now.
func (rc RunContext) Next(run int, now time.Time) RunContext {
	next := rc
	next.RunID = uuid.NewString()
	next.Run = run
	next.StartedAt = now
	return next
}

// Watcher is the availability poller.
//
// A Watcher resolves the active period and target batches, walks every
// location, and turns the slot lists into a single "availability found"
// signal. Remote calls are made one at a time through the [Registry].
// It is created using [New] with functional options and driven by
// [Watcher.Run], or step by step through its exported operations.
type Watcher struct {
	registry        Registry
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

// New creates a [Watcher] reading from registry.
//
// Defaults:
//   - Status filter: OPENING
//   - Monitor interval: 300 seconds
//   - Result log: console only
//   - No notifier or alerter
//
// Returns an error if registry is nil or any option is invalid.
func New(registry Registry, opts ...Option) (*Watcher, error) {
	if registry == nil {
		return nil, errors.New("registry is required")
	}

	cfg := &watcherConfig{
		status:   StatusOpening,
		interval: DefaultInterval,
		now:      time.Now,
		sleep:    poller.Sleep,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	results := cfg.results
	if results == nil {
		results = resultlog.New(os.Stdout, "", resultlog.WithLogger(logger))
	}

	return &Watcher{
		registry:        registry,
		batchCode:       cfg.batchCode,
		locationID:      cfg.locationID,
		status:          cfg.status,
		allBatches:      cfg.allBatches,
		showBatches:     cfg.showBatches,
		monitor:         cfg.monitor,
		verbose:         cfg.verbose,
		emailDisabled:   cfg.emailDisabled,
		interval:        cfg.interval,
		logger:          logger,
		results:         results,
		notifier:        cfg.notifier,
		alerter:         cfg.alerter,
		now:             cfg.now,
		sleep:           cfg.sleep,
		resultCallbacks: cfg.resultCallbacks,
		reportCallbacks: cfg.reportCallbacks,
	}, nil
}

// Run performs the configured work and blocks until it is done.
//
// It resolves the period and batches, then either lists the batches, runs a
// single check, or, in monitor mode, repeats the check every interval until
// ctx is cancelled. Resolution failures before the first check are returned;
// in monitor mode a failing cycle is logged and the next one still runs.
func (w *Watcher) Run(ctx context.Context) error {
	rc, err := w.Prepare(ctx)
	if err != nil {
		return err
	}

	if w.showBatches {
		w.ShowBatches(rc.Batches)
		return nil
	}

	if !w.monitor {
		_, err := w.RunOnce(ctx, rc.Next(1, w.now()))
		return err
	}

	return w.runMonitor(ctx, rc)
}

// runMonitor repeats RunOnce on the configured interval until ctx is done.
func (w *Watcher) runMonitor(ctx context.Context, base RunContext) error {
	secs := int(w.interval / time.Second)
	w.results.Print(fmt.Sprintf("Starting monitoring mode. Will check every %d seconds.", secs))
	w.results.Print("Press Ctrl+C to stop.")

	scheduler := poller.NewScheduler(w.interval, w.logger, poller.WithSchedulerSleep(w.sleep))
	runs := scheduler.Run(ctx, func(ctx context.Context, run int) error {
		now := w.now()
		w.results.Print(fmt.Sprintf("Run #%d at %s", run, now.Format(resultlog.TimestampLayout)))

		_, err := w.RunOnce(ctx, base.Next(run, now))
		if ctx.Err() == nil {
			w.results.Print(fmt.Sprintf("Next check in %d seconds. Press Ctrl+C to stop.", secs))
		}
		return err
	})

	w.results.Print("")
	w.results.Print("Monitoring stopped by user.")
	w.logger.Info("monitoring stopped", "runs", runs)
	return nil
}

// RunOnce performs one check in the configured mode.
func (w *Watcher) RunOnce(ctx context.Context, rc RunContext) (RunReport, error) {
	if w.allBatches {
		return w.RunAllBatches(ctx, rc)
	}
	return w.RunSingleBatch(ctx, rc)
}

// Prepare resolves everything a run needs before checking starts.
//
// It always resolves the period. Batches are fetched when they will be shown
// or when a single batch must be selected; in all-batches mode they are
// fetched afresh by every run instead.
func (w *Watcher) Prepare(ctx context.Context) (RunContext, error) {
	w.results.Print("Fetching available exam periods...")
	period, err := w.ResolvePeriod(ctx)
	if err != nil {
		return RunContext{}, err
	}
	w.results.Print(fmt.Sprintf("Found period ID: %s", period.ID))

	rc := RunContext{PeriodID: period.ID}

	if !w.showBatches && w.allBatches {
		w.results.Print(fmt.Sprintf("Will check ALL batches with status: %s", w.status))
		return rc, nil
	}

	rc.Batches = w.ResolveBatches(ctx, period.ID)
	if w.showBatches {
		return rc, nil
	}

	batch, warnings, err := SelectBatch(rc.Batches, w.batchCode)
	if err != nil {
		w.ShowBatches(rc.Batches)
		return RunContext{}, err
	}
	for _, warning := range warnings {
		w.results.Print("Warning: " + warning)
		w.logger.Warn(warning, "batch_code", batch.Code, "status", batch.Status)
	}
	w.results.Print(fmt.Sprintf("Using batch: %s (Code: %s, ID: %s)", batch.Name, batch.Code, batch.ID))

	rc.Selected = &batch
	return rc, nil
}

// ResolvePeriod returns the active period, which is the first one listed.
// It fails with [ErrNoPeriod] when the list is empty or could not be fetched.
func (w *Watcher) ResolvePeriod(ctx context.Context) (Period, error) {
	periods, _ := w.registry.Periods(ctx)
	if len(periods) == 0 {
		return Period{}, ErrNoPeriod
	}
	return periods[0], nil
}

// ResolveBatches lists the batches of a period. A failed call yields nil.
func (w *Watcher) ResolveBatches(ctx context.Context, periodID ID) []Batch {
	batches, _ := w.registry.Batches(ctx, periodID)
	return batches
}

// SelectBatch picks the batch for a single-batch run.
//
// With a code, the first batch whose code equals it exactly is returned, or
// [ErrBatchNotFound]. A match that is not OPENING is still returned, with a
// warning. Without a code, the first OPENING batch is returned, or
// [ErrNoOpeningBatch].
func SelectBatch(batches []Batch, code string) (Batch, []string, error) {
	if code != "" {
		for _, b := range batches {
			if b.Code != code {
				continue
			}
			var warnings []string
			if !b.IsOpening() {
				warnings = append(warnings, fmt.Sprintf(
					"Batch '%s' (Code: %s) is not in %s status. Current status: %s",
					b.Name, b.Code, StatusOpening, b.Status))
			}
			return b, warnings, nil
		}
		return Batch{}, nil, fmt.Errorf("%w: %q", ErrBatchNotFound, code)
	}

	for _, b := range batches {
		if b.IsOpening() {
			return b, nil, nil
		}
	}
	return Batch{}, nil, ErrNoOpeningBatch
}

// FilterBatches returns the batches whose status equals status exactly,
// preserving order.
func FilterBatches(batches []Batch, status string) []Batch {
	var out []Batch
	for _, b := range batches {
		if b.Status == status {
			out = append(out, b)
		}
	}
	return out
}

// ShowBatches prints the batch table.
func (w *Watcher) ShowBatches(batches []Batch) {
	w.results.Print(doubleRule)
	w.results.Print("AVAILABLE BATCHES:")
	w.results.Print(doubleRule)
	for _, b := range batches {
		w.results.Print(fmt.Sprintf(
			"Code: %s | ID: %s | Name: %s | Status: %s | Start: %s | End: %s | Reg ends: %s",
			orNA(b.Code), orNA(b.ID.String()), orNA(b.Name), orNA(b.Status),
			orNA(b.Config.StartDate), orNA(b.Config.EndDate), orNA(b.Config.RegistrationEndDateTime),
		))
	}
	w.results.Print(doubleRule)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
