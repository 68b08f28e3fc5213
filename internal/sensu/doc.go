// Package sensu fetches and decodes events from Sensu monitoring APIs.
//
// This package is internal to Fleximon. It performs exactly one
// authenticated GET against an environment's /events endpoint per call and
// reports the outcome as a [Result] value rather than an error return, so
// that a failing environment can be folded into a tick as "zero events".
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with per-request timeouts and size limits
//   - [Source]: Connection details for one environment
//   - [Event]: One alert/check record as returned by the API
//   - [Result]: Outcome of fetching one source, either events or a [FetchError]
package sensu
