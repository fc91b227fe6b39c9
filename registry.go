package slotwatch

import "context"

// Registry is the read side of the exam registration service.
//
// Every method returns ok=false when the underlying call failed. Callers
// treat a failed call the same as an empty result and carry on; the
// distinction only changes what gets logged.
type Registry interface {
	Periods(ctx context.Context) (periods []Period, ok bool)
	Batches(ctx context.Context, periodID ID) (batches []Batch, ok bool)
	Locations(ctx context.Context, batchID ID) (locations []Location, ok bool)
	Slots(ctx context.Context, locationID ID) (slots []Slot, ok bool)
}

// Notifier delivers an availability notification, typically by email.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Alerter raises a local, audible alert.
type Alerter interface {
	Alert(ctx context.Context) error
}

// ResultLog records run events for the user.
//
// Event lines go to the console and the persisted log, FileOnly lines to the
// persisted log alone. Print writes to the console without persisting.
// Progress overwrites the current console line in place.
type ResultLog interface {
	Event(msg string)
	FileOnly(msg string)
	Print(msg string)
	Progress(msg string)
	ClearProgress()
}
