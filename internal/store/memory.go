package store

import (
	"sync"
)

// subscriberBuffer is the number of batches a slow subscriber may lag behind.
const subscriberBuffer = 16

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore keeps the latest update of every name. Subscribers receive
// whole batches via buffered channels. Sends are non-blocking; if a
// subscriber's buffer is full the batch is dropped for that subscriber
// rather than blocking the publishing tick.
type MemoryStore struct {
	mu      sync.RWMutex
	updates map[string]Update
	order   []string

	subMu       sync.RWMutex
	subscribers map[chan []Update]struct{}
}

// NewMemoryStore creates a new in-memory [Store] implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		updates:     make(map[string]Update),
		subscribers: make(map[chan []Update]struct{}),
	}
}

// Publish stores a batch atomically and notifies all subscribers.
//
// Names not present in the batch keep their previous value.
func (m *MemoryStore) Publish(batch []Update) {
	if len(batch) == 0 {
		return
	}
	cp := copyBatch(batch)

	m.mu.Lock()
	for _, u := range cp {
		if _, exists := m.updates[u.Name]; !exists {
			m.order = append(m.order, u.Name)
		}
		m.updates[u.Name] = u
	}
	m.mu.Unlock()

	m.notifySubscribers(cp)
}

// GetAll returns a snapshot of the latest update of every name.
func (m *MemoryStore) GetAll() []Update {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Update, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.updates[name])
	}
	return out
}

// Get returns the latest update with the given name.
func (m *MemoryStore) Get(name string) (Update, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.updates[name]
	return u, ok
}

// Subscribe creates a new subscription and returns a channel for receiving
// batches.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan []Update {
	ch := make(chan []Update, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan []Update) {
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

// notifySubscribers sends the batch to all active subscribers without blocking.
func (m *MemoryStore) notifySubscribers(batch []Update) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- batch:
		default:
			// subscriber is slow, drop the batch
		}
	}
}

// copyBatch copies the batch slice so callers cannot mutate stored data.
func copyBatch(batch []Update) []Update {
	cp := make([]Update, len(batch))
	copy(cp, batch)
	return cp
}
