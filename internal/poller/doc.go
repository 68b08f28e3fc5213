// Package poller drives Fleximon's periodic ticks.
//
// This package is internal to Fleximon. [Scheduler] runs a tick function
// once immediately and then on a cron schedule (robfig/cron), guaranteeing
// that ticks never overlap: a tick that comes due while the previous one is
// still running is skipped, not queued.
//
// Users of the fleximon library should not need to interact with this
// package directly. Scheduling is configured through the main package.
package poller
