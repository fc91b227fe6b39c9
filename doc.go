// Package slotwatch watches the HSA exam registration service for newly
// opened exam slots.
//
// A [Watcher] resolves the active registration period, picks one batch (or
// every batch with a given status), walks the batch's locations and reads
// each location's slot list. Any slot with free seats flips the run's
// "availability found" signal, which triggers the configured [Notifier] and
// [Alerter].
//
// # Quick Start
//
//	client := poller.NewClient(poller.WithHeaders(hsa.DefaultHeaders))
//	client.SetToken(token)
//	api := hsa.New(client, hsa.DefaultBaseURL, logger)
//
//	w, err := slotwatch.New(api,
//	    slotwatch.WithBatchCode("502"),
//	    slotwatch.WithMonitor(true),
//	    slotwatch.WithInterval(5*time.Minute),
//	)
//	if err != nil {
//	    return err
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//	return w.Run(ctx)
//
// # Sequencing
//
// Checks are strictly sequential. The registry client pauses after every
// call and never has two requests in flight, so a full run over N locations
// takes at least N times the configured delay. In monitor mode the whole run
// repeats after the interval; the single-batch selection is made once up
// front, while all-batches mode rediscovers matching batches every cycle.
//
// # Failure handling
//
// Failing to resolve a period or a batch aborts the run with one of the
// sentinel errors ([ErrNoPeriod], [ErrBatchNotFound], [ErrNoOpeningBatch]).
// A failed location or slot call only marks that location as having no
// availability. Notification and alert failures are logged and ignored.
package slotwatch
