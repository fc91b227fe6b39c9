package slotwatch

import (
	"context"
	"fmt"
	"log/slog"
)

// RunSingleBatch checks the batch selected during preparation.
//
// When any location has availability the notifier is called once, with the
// batch name and code, followed by the alerter.
func (w *Watcher) RunSingleBatch(ctx context.Context, rc RunContext) (RunReport, error) {
	report := w.newReport(rc, ModeSingle)
	if rc.Selected == nil {
		return report, fmt.Errorf("%w: no batch selected", ErrNoOpeningBatch)
	}
	batch := *rc.Selected

	w.header()

	br, err := w.CheckBatch(ctx, batch)
	report.addBatch(br)
	if err != nil {
		return report, err
	}

	if report.Found {
		w.notify(ctx, Notification{
			RunID:     rc.RunID,
			At:        w.now(),
			BatchName: batch.Name,
			BatchCode: batch.Code,
			Findings:  report.Findings(),
		})
	} else {
		w.results.Event("No available slots found.")
	}

	w.footer()
	return w.finish(report), nil
}

// RunAllBatches fetches the period's batches afresh, checks every batch
// whose status matches the filter, and reports an overall summary.
//
// An empty match is not an error: the run ends early with nothing found and
// no notification. Otherwise the notifier and alerter are called once if any
// batch had availability.
func (w *Watcher) RunAllBatches(ctx context.Context, rc RunContext) (RunReport, error) {
	report := w.newReport(rc, ModeAll)

	w.header()

	matching := FilterBatches(w.ResolveBatches(ctx, rc.PeriodID), w.status)
	if len(matching) == 0 {
		w.results.Event(fmt.Sprintf("No batches with status '%s' found.", w.status))
		return w.finish(report), nil
	}

	w.results.Event(fmt.Sprintf("Checking %d batches with status '%s'", len(matching), w.status))

	for _, batch := range matching {
		br, err := w.CheckBatch(ctx, batch)
		report.addBatch(br)
		if err != nil {
			return report, err
		}
		w.results.Event(singleRule)
	}

	w.results.Event(doubleRule)
	w.results.Event("OVERALL RESULTS SUMMARY:")
	w.results.Event(doubleRule)
	w.results.Event(fmt.Sprintf("Total batches checked: %d", report.BatchesChecked))
	w.results.Event(fmt.Sprintf("Batches with available slots: %d", report.BatchesWithSlots))
	w.results.Event(singleRule)

	if report.Found {
		w.notify(ctx, Notification{
			RunID:    rc.RunID,
			At:       w.now(),
			Findings: report.Findings(),
		})
	} else {
		w.results.Event("No available slots found in any batch.")
	}

	w.footer()
	return w.finish(report), nil
}

// CheckBatch checks every location of a batch, or only the configured
// location when a location filter is set.
//
// The returned error is non-nil only when ctx is cancelled between
// locations; a failed remote call degrades to "no availability" instead.
func (w *Watcher) CheckBatch(ctx context.Context, batch Batch) (BatchReport, error) {
	report := BatchReport{Batch: batch}

	w.results.Event(fmt.Sprintf("Starting check for Batch: %s (Code: %s, ID: %s)", batch.Name, batch.Code, batch.ID))
	w.results.Event(singleRule)

	if w.locationID != "" {
		w.results.Event(fmt.Sprintf("Checking specific location ID: %s", w.locationID))

		locations, _ := w.registry.Locations(ctx, batch.ID)
		location := Location{ID: w.locationID, Name: unknownLocationName}
		for _, l := range locations {
			if l.ID == w.locationID {
				location.Name = l.Name
				break
			}
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		report.add(w.CheckLocation(ctx, location, &batch))
		return report, nil
	}

	locations, _ := w.registry.Locations(ctx, batch.ID)
	if len(locations) == 0 {
		w.results.Event(fmt.Sprintf("Error: Failed to fetch locations for batch %s or empty response", batch.Code))
		return report, nil
	}

	w.results.Event(fmt.Sprintf("Processing all locations in batch %s...", batch.Code))

	total := len(locations)
	for i, location := range locations {
		if err := ctx.Err(); err != nil {
			w.results.ClearProgress()
			return report, err
		}

		if w.verbose {
			w.results.Progress(fmt.Sprintf("Checking location %d/%d: %s...", i+1, total, location.Name))
		} else {
			w.results.Progress(fmt.Sprintf("Checking location %d/%d...", i+1, total))
		}

		report.add(w.CheckLocation(ctx, location, &batch))
	}
	w.results.ClearProgress()

	w.results.Event(singleRule)
	w.results.Event(fmt.Sprintf("Batch: %s (Code: %s)", batch.Name, batch.Code))
	w.results.Event(fmt.Sprintf("Total locations checked: %d", report.LocationsChecked))
	w.results.Event(fmt.Sprintf("Locations with available slots: %d", report.LocationsWithSlots))
	w.results.Event(singleRule)

	return report, nil
}

// CheckLocation fetches the slot list of a location and records which slots
// have free seats. batch may be nil when the location is checked on its own.
//
// A failed fetch is logged and reported as FetchFailed with no availability.
// A location without free seats is logged to the console in verbose mode and
// to the result file only otherwise.
func (w *Watcher) CheckLocation(ctx context.Context, location Location, batch *Batch) LocationResult {
	result := LocationResult{Location: location}
	if batch != nil {
		result.BatchName = batch.Name
		result.BatchCode = batch.Code
	}

	slots, ok := w.registry.Slots(ctx, location.ID)
	result.CheckedAt = w.now()

	switch {
	case !ok:
		result.FetchFailed = true
		w.results.Event(result.FetchFailedLine())

	default:
		for _, s := range slots {
			if s.Available() > 0 {
				result.Slots = append(result.Slots, newSlotAvailability(s))
			}
		}

		if !result.HasAvailability() {
			if w.verbose {
				w.results.Event(result.NoAvailabilityLine())
			} else {
				w.results.FileOnly(result.NoAvailabilityLine())
			}
			break
		}

		w.results.Event(result.SummaryLine())
		for _, line := range result.SlotLines() {
			w.results.Event(line)
		}
		w.logger.Info("availability found",
			"location_id", location.ID.String(),
			"location", location.Name,
			"batch_code", result.BatchCode,
			"sessions", len(result.Slots),
		)
	}

	for _, cb := range w.resultCallbacks {
		invokeCallbackSafe(cb, result, w.logger)
	}
	return result
}

// notify triggers the notifier and the alerter. Both are best-effort: a
// failure is logged and never changes the run outcome.
func (w *Watcher) notify(ctx context.Context, n Notification) {
	if w.notifier != nil && !w.emailDisabled {
		if err := w.notifier.Notify(ctx, n); err != nil {
			w.results.Event(fmt.Sprintf("Failed to send notification: %v", err))
			w.logger.Error("notification failed", "run_id", n.RunID, "error", err.Error())
		} else {
			w.results.Event("Notification sent.")
		}
	}

	if w.alerter != nil {
		if err := w.alerter.Alert(ctx); err != nil {
			w.logger.Warn("failed to play notification sound", "error", err.Error())
		}
	}
}

func (w *Watcher) header() {
	w.results.Event(doubleRule)
	w.results.Event("STARTING SLOT CHECK")
	w.results.Event(doubleRule)
}

func (w *Watcher) footer() {
	w.results.Event(doubleRule)
	w.results.Event(fmt.Sprintf("Check completed at %s", w.now().Format("2006-01-02 15:04:05")))
}

func (w *Watcher) newReport(rc RunContext, mode Mode) RunReport {
	started := rc.StartedAt
	if started.IsZero() {
		started = w.now()
	}
	return RunReport{
		RunID:     rc.RunID,
		Run:       rc.Run,
		Mode:      mode,
		StartedAt: started,
	}
}

// finish stamps the report and hands it to the report callbacks.
func (w *Watcher) finish(report RunReport) RunReport {
	report.FinishedAt = w.now()
	w.logger.Info("check completed",
		"run_id", report.RunID,
		"run", report.Run,
		"mode", string(report.Mode),
		"batches_checked", report.BatchesChecked,
		"batches_with_slots", report.BatchesWithSlots,
		"found", report.Found,
	)
	for _, cb := range w.reportCallbacks {
		invokeCallbackSafe(cb, report, w.logger)
	}
	return report
}

// invokeCallbackSafe calls a callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe[T any](cb func(T), value T, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("callback panicked", "panic", r)
		}
	}()
	cb(value)
}
