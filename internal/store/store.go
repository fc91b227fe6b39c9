package store

import (
	"time"

	"github.com/jpalmerr/slotwatch"
)

// Location states.
const (
	StatusAvailable = "available"
	StatusFull      = "full"
	StatusError     = "error"
)

// SlotStatus is one session with free seats.
type SlotStatus struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Available int    `json:"available"`
	Total     int    `json:"total"`
}

// LocationStatus is the latest known availability of a location.
//
// It is the storage representation of a [slotwatch.LocationResult],
// shaped for JSON (used by the REST API and SSE).
type LocationStatus struct {
	// Key identifies the location within its batch: "<batchCode>/<locationID>".
	Key string `json:"key"`

	BatchCode    string `json:"batch_code"`
	BatchName    string `json:"batch_name"`
	LocationID   string `json:"location_id"`
	LocationName string `json:"location_name"`

	// Status is one of "available", "full" or "error".
	Status string `json:"status"`

	// Available is the total number of free seats across Slots.
	Available int          `json:"available"`
	Slots     []SlotStatus `json:"slots"`
	CheckedAt time.Time    `json:"checked_at"`

	// Error is set when the slot list could not be fetched.
	Error *string `json:"error"`
}

// FromResult converts a location check into its stored form.
func FromResult(r slotwatch.LocationResult) LocationStatus {
	status := LocationStatus{
		Key:          Key(r.BatchCode, r.Location.ID.String()),
		BatchCode:    r.BatchCode,
		BatchName:    r.BatchName,
		LocationID:   r.Location.ID.String(),
		LocationName: r.Location.Name,
		Status:       StatusFull,
		Slots:        make([]SlotStatus, 0, len(r.Slots)),
		CheckedAt:    r.CheckedAt,
	}

	for _, s := range r.Slots {
		status.Slots = append(status.Slots, SlotStatus{
			ID:        s.Slot.ID.String(),
			Name:      s.Slot.Name,
			Available: s.Available,
			Total:     s.Total,
		})
		status.Available += s.Available
	}

	switch {
	case r.FetchFailed:
		status.Status = StatusError
		msg := "failed to fetch slots"
		status.Error = &msg
	case r.HasAvailability():
		status.Status = StatusAvailable
	}
	return status
}

// Key builds the store key of a location within a batch.
func Key(batchCode, locationID string) string {
	return batchCode + "/" + locationID
}

// Store defines the interface for storing and subscribing to location updates.
//
// Store implementations must be safe for concurrent access. The pub/sub
// mechanism allows real-time updates to be pushed to connected clients
// (e.g., via Server-Sent Events).
type Store interface {
	// Update stores a location status and notifies all subscribers.
	// The status is keyed by Key, so later updates replace earlier ones.
	Update(status LocationStatus)

	// GetAll returns all stored statuses ordered by Key.
	// The returned slice is a snapshot; modifications do not affect the store.
	GetAll() []LocationStatus

	// Subscribe returns a channel that receives status updates.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan LocationStatus

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan LocationStatus)
}
