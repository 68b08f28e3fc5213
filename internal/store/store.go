package store

import (
	"encoding/json"
	"time"
)

// Update is one named dashboard event as held in storage.
//
// The payload is kept pre-encoded so that every transport (REST, SSE,
// WebSocket) sends byte-identical data for the same tick.
type Update struct {
	// Name is the dashboard event name, e.g. "sensu-status".
	Name string `json:"name"`

	// Payload is the JSON-encoded event body.
	Payload json.RawMessage `json:"payload"`

	// PublishedAt is when the tick that produced the update was published.
	PublishedAt time.Time `json:"published_at"`
}

// Store defines the interface for storing and subscribing to dashboard updates.
//
// Updates arrive in batches, one batch per tick. Implementations must make a
// batch visible atomically: readers observe either all updates of a tick or
// none of them.
type Store interface {
	// Publish replaces the stored updates with the batch, keyed by name,
	// and notifies all subscribers with the whole batch.
	Publish(batch []Update)

	// GetAll returns the latest update of every name, in the order they
	// were last published. The returned slice is a snapshot.
	GetAll() []Update

	// Get returns the latest update with the given name.
	Get(name string) (Update, bool)

	// Subscribe returns a channel that receives published batches.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan []Update

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan []Update)
}
