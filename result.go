package slotwatch

import (
	"fmt"
	"time"
)

// Mode identifies how a run selected its batches.
type Mode string

const (
	// ModeSingle checks one pre-resolved batch.
	ModeSingle Mode = "single"

	// ModeAll checks every batch matching the status filter.
	ModeAll Mode = "all"
)

// SlotAvailability is a slot with free seats, as reported by a location check.
type SlotAvailability struct {
	Slot      Slot
	Available int
	Total     int
}

// newSlotAvailability derives the availability record for a slot.
func newSlotAvailability(s Slot) SlotAvailability {
	return SlotAvailability{
		Slot:      s,
		Available: s.Available(),
		Total:     s.NumberOfSeats,
	}
}

// LocationResult is the outcome of checking a single location.
//
// Slots holds only the slots that have at least one free seat. BatchName and
// BatchCode are empty when the location was checked outside a batch.
type LocationResult struct {
	Location    Location
	BatchName   string
	BatchCode   string
	FetchFailed bool
	Slots       []SlotAvailability
	CheckedAt   time.Time
}

// HasAvailability reports whether any slot at the location has free seats.
func (r LocationResult) HasAvailability() bool {
	return len(r.Slots) > 0
}

// batchInfo renders the optional " for <name> (Code: <code>)" suffix.
func (r LocationResult) batchInfo() string {
	if r.BatchName == "" || r.BatchCode == "" {
		return ""
	}
	return fmt.Sprintf(" for %s (Code: %s)", r.BatchName, r.BatchCode)
}

// SummaryLine renders the availability line for the location.
//
// The shape of this line is stable: it is the line users grep the result
// log for, and the email summary repeats it verbatim.
func (r LocationResult) SummaryLine() string {
	return fmt.Sprintf("✓ %s (ID: %s)%s has %d available session(s):",
		r.Location.Name, r.Location.ID, r.batchInfo(), len(r.Slots))
}

// SlotLines renders one line per available slot.
func (r LocationResult) SlotLines() []string {
	prefix := ""
	if r.BatchCode != "" {
		prefix = "[" + r.BatchCode + "] "
	}

	lines := make([]string, 0, len(r.Slots))
	for _, s := range r.Slots {
		lines = append(lines, fmt.Sprintf("→ %s%s (ID: %s): %d/%d",
			prefix, s.Slot.Name, s.Slot.ID, s.Available, s.Total))
	}
	return lines
}

// NoAvailabilityLine renders the line logged when no slot has free seats.
func (r LocationResult) NoAvailabilityLine() string {
	return fmt.Sprintf("× No available slots at %s (ID: %s)%s",
		r.Location.Name, r.Location.ID, r.batchInfo())
}

// FetchFailedLine renders the line logged when the slot list could not be fetched.
func (r LocationResult) FetchFailedLine() string {
	return fmt.Sprintf("× Failed to fetch slots for %s (ID: %s)", r.Location.Name, r.Location.ID)
}

// BatchReport aggregates the location results of one batch.
type BatchReport struct {
	Batch              Batch
	LocationsChecked   int
	LocationsWithSlots int
	Locations          []LocationResult
}

// HasAvailability reports whether any location in the batch has free seats.
func (b BatchReport) HasAvailability() bool {
	return b.LocationsWithSlots > 0
}

func (b *BatchReport) add(r LocationResult) {
	b.LocationsChecked++
	if r.HasAvailability() {
		b.LocationsWithSlots++
	}
	b.Locations = append(b.Locations, r)
}

// RunReport is the outcome of one end-to-end check.
type RunReport struct {
	RunID            string
	Run              int
	Mode             Mode
	StartedAt        time.Time
	FinishedAt       time.Time
	Batches          []BatchReport
	BatchesChecked   int
	BatchesWithSlots int
	Found            bool
}

func (r *RunReport) addBatch(b BatchReport) {
	r.BatchesChecked++
	if b.HasAvailability() {
		r.BatchesWithSlots++
		r.Found = true
	}
	r.Batches = append(r.Batches, b)
}

// Findings returns every location result with availability, in check order.
func (r RunReport) Findings() []LocationResult {
	var out []LocationResult
	for _, b := range r.Batches {
		for _, l := range b.Locations {
			if l.HasAvailability() {
				out = append(out, l)
			}
		}
	}
	return out
}

// Notification is what the notifier receives when availability is found.
//
// BatchName and BatchCode are set for single-batch runs and empty when the
// findings span multiple batches.
type Notification struct {
	RunID     string
	At        time.Time
	BatchName string
	BatchCode string
	Findings  []LocationResult
}
