package store

import (
	"sort"
	"sync"

	"github.com/jpalmerr/slotwatch"
)

const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// Statuses are keyed by "<batchCode>/<locationID>", with new values
// replacing previous ones. Subscribers receive updates via buffered channels;
// when a subscriber's buffer is full the update is dropped for that
// subscriber so the check loop never blocks.
type MemoryStore struct {
	mu          sync.RWMutex
	statuses    map[string]LocationStatus
	subscribers map[chan LocationStatus]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory [Store] implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		statuses:    make(map[string]LocationStatus),
		subscribers: make(map[chan LocationStatus]struct{}),
	}
}

// Update stores a [LocationStatus] and notifies all subscribers.
func (m *MemoryStore) Update(status LocationStatus) {
	if status.Key == "" {
		status.Key = Key(status.BatchCode, status.LocationID)
	}

	m.mu.Lock()
	m.statuses[status.Key] = status
	m.mu.Unlock()

	m.notifySubscribers(status)
}

// Record stores the outcome of a location check. It matches the signature
// of a watcher result callback.
func (m *MemoryStore) Record(r slotwatch.LocationResult) {
	m.Update(FromResult(r))
}

// GetAll returns a snapshot of all stored statuses, ordered by key.
func (m *MemoryStore) GetAll() []LocationStatus {
	m.mu.RLock()
	out := make([]LocationStatus, 0, len(m.statuses))
	for _, status := range m.statuses {
		out = append(out, status)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Subscribe creates a new subscription and returns a channel for receiving updates.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan LocationStatus {
	ch := make(chan LocationStatus, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan LocationStatus) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends without blocking; a full buffer drops the update.
func (m *MemoryStore) notifySubscribers(status LocationStatus) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- status:
		default:
			// subscriber is slow, drop the message
		}
	}
}
