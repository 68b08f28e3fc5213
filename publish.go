package fleximon

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fleximon/fleximon/internal/store"
)

// Dashboard event names. Every completed tick publishes exactly these four
// updates, in this order.
const (
	EventStatus   = "sensu-status"
	EventWarnList = "sensu-warn-list"
	EventCritList = "sensu-crit-list"
	EventTable    = "sensu-table"
)

// StatusPayload is the body of the [EventStatus] update.
//
// The *_tmp field names are kept for compatibility with existing dashboard
// widgets, which sort and filter them client-side.
type StatusPayload struct {
	Criticals int   `json:"criticals_tmp"`
	Warnings  int   `json:"warnings_tmp"`
	Unknowns  int   `json:"unknowns_tmp"`
	Status    Color `json:"status"`

	// SourcesTotal and Unreachable let the dashboard flag partial data.
	SourcesTotal int      `json:"sources_total"`
	Unreachable  []string `json:"unreachable"`
}

// ListPayload is the body of the [EventWarnList] and [EventCritList] updates.
type ListPayload struct {
	Items []Item `json:"items"`
}

// TablePayload is the body of the [EventTable] update.
type TablePayload struct {
	HRows []Header `json:"hrows_tmp"`
	Rows  []Row    `json:"rows_tmp"`
}

// Update is one named dashboard event.
type Update struct {
	// Name is one of the Event* constants.
	Name string `json:"name"`

	// Payload is one of [StatusPayload], [ListPayload] or [TablePayload].
	Payload any `json:"payload"`
}

// Updates derives the four dashboard updates of a tick from its result.
func (r Result) Updates() []Update {
	return []Update{
		{Name: EventStatus, Payload: StatusPayload{
			Criticals:    r.Critical,
			Warnings:     r.Warning,
			Unknowns:     r.Unknown,
			Status:       r.Status,
			SourcesTotal: r.Sources,
			Unreachable:  r.Unreachable,
		}},
		{Name: EventWarnList, Payload: ListPayload{Items: r.WarningClients}},
		{Name: EventCritList, Payload: ListPayload{Items: r.CriticalClients}},
		{Name: EventTable, Payload: TablePayload{
			HRows: []Header{r.Header},
			Rows:  r.Rows,
		}},
	}
}

// Publisher receives the updates of every completed tick.
//
// Publish is called once per tick with the whole batch; implementations must
// treat the batch as a unit. Publishers are called sequentially from the tick
// goroutine and should return promptly.
type Publisher interface {
	Publish(ctx context.Context, updates []Update) error
}

// PublisherFunc adapts a function to the [Publisher] interface.
type PublisherFunc func(ctx context.Context, updates []Update) error

// Publish calls f(ctx, updates).
func (f PublisherFunc) Publish(ctx context.Context, updates []Update) error {
	return f(ctx, updates)
}

// storePublisher publishes updates into the dashboard store.
type storePublisher struct {
	store store.Store
	now   func() time.Time
}

// Publish encodes every payload and hands the batch to the store. Nothing is
// stored if any payload fails to encode.
func (p storePublisher) Publish(_ context.Context, updates []Update) error {
	batch, err := encodeUpdates(updates, p.now())
	if err != nil {
		return err
	}
	p.store.Publish(batch)
	return nil
}

// encodeUpdates converts updates to their stored, pre-encoded form.
func encodeUpdates(updates []Update, at time.Time) ([]store.Update, error) {
	batch := make([]store.Update, len(updates))
	for i, u := range updates {
		payload, err := json.Marshal(u.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", u.Name, err)
		}
		batch[i] = store.Update{Name: u.Name, Payload: payload, PublishedAt: at}
	}
	return batch, nil
}
