// Package server provides the HTTP server for the Fleximon dashboard and API.
//
// This package is internal to Fleximon and handles all HTTP concerns:
//
//   - Dashboard serving: Serves the embedded HTML/CSS/JS dashboard at "/"
//   - REST API: JSON snapshot at "/api/events", team-filtered table at "/api/table"
//   - Streaming: named Server-Sent Events at "/api/sse", WebSocket at "/api/ws"
//   - Operations: "/healthz" and Prometheus "/metrics"
//
// Updates are read from a [store.Store] holding pre-encoded payloads, so
// every transport sends the same bytes for the same tick.
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
package server
