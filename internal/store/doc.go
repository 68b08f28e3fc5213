// Package store provides storage and pub/sub for dashboard updates.
//
// This package is internal to Fleximon and keeps the latest published value
// of every named dashboard event. Updates are published in batches, one per
// tick, and each batch becomes visible atomically so that readers never see
// a status summary from one tick next to a table from another.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [Update]: One named, pre-encoded dashboard event
//
// Subscribers receive batches via channels with non-blocking sends (slow
// subscribers miss batches rather than block the tick).
package store
