package slotwatch

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StatusOpening is the batch status that marks a registration round as open.
const StatusOpening = "OPENING"

// ID is a remote record identifier.
//
// The registration API is inconsistent about identifier types: some records
// carry numeric ids, others strings. ID accepts both when decoding JSON and
// is always compared as a string.
type ID string

// UnmarshalJSON implements json.Unmarshaler for ID.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number, got %s", data)
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier as a string.
func (id ID) String() string {
	return string(id)
}

// Period is an exam registration cycle. Only its identifier is consumed.
type Period struct {
	ID ID `json:"id"`
}

// BatchConfig carries the schedule of a batch. It is used for display only.
type BatchConfig struct {
	StartDate               string `json:"startDate"`
	EndDate                 string `json:"endDate"`
	RegistrationEndDateTime string `json:"registrationEndDateTime"`
}

// Batch is a named registration round within a period.
type Batch struct {
	ID     ID          `json:"id"`
	Code   string      `json:"code"`
	Name   string      `json:"name"`
	Status string      `json:"status"`
	Config BatchConfig `json:"config"`
}

// IsOpening reports whether the batch status is exactly [StatusOpening].
func (b Batch) IsOpening() bool {
	return b.Status == StatusOpening
}

// Location is a test-taking site associated with a batch.
type Location struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Slot is an exam session at a location with a fixed seat capacity.
type Slot struct {
	ID              ID     `json:"id"`
	Name            string `json:"name"`
	NumberOfSeats   int    `json:"numberOfSeats"`
	RegisteredSlots int    `json:"registeredSlots"`
}

// Available returns the number of free seats in the slot.
//
// The result is clamped at zero: an over-registered slot reports no
// availability rather than a negative count.
func (s Slot) Available() int {
	seats := max(s.NumberOfSeats, 0)
	registered := max(s.RegisteredSlots, 0)
	return max(seats-registered, 0)
}
