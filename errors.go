package slotwatch

import "errors"

var (
	// ErrNoToken is returned when neither a token nor usable credentials are available.
	ErrNoToken = errors.New("no authentication token available")

	// ErrNoPeriod is returned when the remote service lists no active period.
	ErrNoPeriod = errors.New("no active exam periods found")

	// ErrBatchNotFound is returned when an explicit batch code matches no batch.
	ErrBatchNotFound = errors.New("batch code not found")

	// ErrNoOpeningBatch is returned when no batch code is given and no batch is OPENING.
	ErrNoOpeningBatch = errors.New("no OPENING batches found")
)
