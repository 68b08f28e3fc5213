// Package fleximon provides an embeddable live dashboard that aggregates
// check events from one or more Sensu monitoring APIs.
//
// On every tick Fleximon polls the /events endpoint of each configured
// environment, classifies every event by severity, projects the configured
// columns and publishes four dashboard updates: an overall status, the
// warning and critical client lists and an events table.
//
// # Quick Start
//
// Create environments and start the dashboard with graceful shutdown:
//
//	prod, _ := fleximon.NewEnvironment("prod", "sensu.prod.internal", "4567")
//	m, _ := fleximon.New(fleximon.WithEnvironment(prod))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	m.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// Fleximon uses the functional options pattern for configuration:
//
//	m, err := fleximon.New(
//	    fleximon.WithEnvironments(prod, staging),
//	    fleximon.WithColumns(fleximon.ColumnHostname, fleximon.ColumnCheck, fleximon.ColumnOutput),
//	    fleximon.WithPollingInterval(30 * time.Second),
//	    fleximon.WithPort(9090),
//	    fleximon.WithMaxConcurrency(5),
//	)
//
// Environments can also be configured with options:
//
//	env, err := fleximon.NewEnvironment("staging", "proxy.internal", "443",
//	    fleximon.WithBasicAuth("admin", os.Getenv("SENSU_PASSWORD")),
//	    fleximon.WithPath("/sensu"),
//	    fleximon.WithTimeout(5 * time.Second),
//	)
//
// # Severity
//
// Each event's check status is mapped by [Classify]: 0 is ok, 1 warning,
// 2 critical and anything else unknown. The overall color is red when any
// event is critical, yellow when any is a warning and green otherwise.
// Unknown events are counted but never change the color.
//
// # Updates
//
// Every completed tick produces exactly four updates, see [Result.Updates].
// They are served to browsers over Server-Sent Events and WebSocket and
// handed to any extra [Publisher] registered with [WithPublisher].
// An environment that cannot be reached contributes no events and is named
// in the status update so partial data is visible.
//
// # Architecture
//
// Fleximon consists of several internal packages (under internal/):
//
//   - internal/sensu: HTTP client for the /events endpoint
//   - internal/poller: Cron-driven tick scheduler
//   - internal/store: In-memory storage with pub/sub for real-time updates
//   - internal/server: HTTP server with REST API, SSE and WebSocket
//   - internal/metrics: Prometheus collectors
//   - internal/kafka: Publisher forwarding updates to a Kafka topic
//   - dashboard: Embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice.
package fleximon
