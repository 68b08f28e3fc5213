package fleximon

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/fleximon/fleximon/dashboard"
	"github.com/fleximon/fleximon/internal/metrics"
	"github.com/fleximon/fleximon/internal/poller"
	"github.com/fleximon/fleximon/internal/sensu"
	"github.com/fleximon/fleximon/internal/server"
	"github.com/fleximon/fleximon/internal/store"
)

const (
	defaultPollingInterval = 60 * time.Second
	defaultPort            = 8080
	defaultMaxConcurrency  = 10
)

// Monitor is the main orchestrator: it polls the configured environments on
// every tick, aggregates their events and publishes the dashboard updates.
//
// Monitor is created using [New] with functional options and started with
// [Monitor.Start]. A single tick can also be computed without publishing
// using [Monitor.Run].
//
// The typical lifecycle is:
//
//	m, err := fleximon.New(fleximon.WithEnvironment(env))
//	if err != nil {
//	    slog.Error("failed to create monitor", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	m.Start(ctx) // blocks until ctx is cancelled
type Monitor struct {
	title          string
	environments   []Environment
	columns        []string
	schedule       string
	port           int
	maxConcurrency int
	logger         *slog.Logger
	publishers     []Publisher
	tickCallbacks  []func(Result)
	registry       *prometheus.Registry
	metrics        *metrics.Metrics
	allowedOrigins []string
	client         fetcher
}

// New creates a new [Monitor] with the given options.
//
// Defaults:
//   - Polling interval: 60 seconds, first tick immediately
//   - Columns: hostname, check, output, team, category
//   - Port: 8080
//   - Max concurrency: 10 simultaneous environment fetches
//
// Zero environments is a valid configuration: every tick then publishes an
// empty table and a green status.
//
// Returns an error if an option is invalid or two environments share a name.
func New(opts ...Option) (*Monitor, error) {
	cfg := &monitorConfig{
		pollingInterval: defaultPollingInterval,
		port:            defaultPort,
		maxConcurrency:  defaultMaxConcurrency,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// environment names key the configuration and the unreachable list
	seen := make(map[string]bool, len(cfg.environments))
	for _, env := range cfg.environments {
		if seen[env.name] {
			return nil, fmt.Errorf("duplicate environment name: %q", env.name)
		}
		seen[env.name] = true
	}

	if cfg.port < 1 || cfg.port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.port)
	}

	columns := cfg.columns
	if columns == nil {
		columns = KnownColumns()
	}

	schedule := cfg.schedule
	if schedule == "" {
		schedule = poller.EverySpec(cfg.pollingInterval)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := cfg.registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return &Monitor{
		title:          cfg.title,
		environments:   cfg.environments,
		columns:        columns,
		schedule:       schedule,
		port:           cfg.port,
		maxConcurrency: cfg.maxConcurrency,
		logger:         logger,
		publishers:     cfg.publishers,
		tickCallbacks:  cfg.tickCallbacks,
		registry:       registry,
		metrics:        m,
		allowedOrigins: cfg.allowedOrigins,
		client:         sensu.NewClient(logger),
	}, nil
}

// Start begins ticking and serving the dashboard.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - The first tick runs immediately, then on the configured schedule
//   - Ticks never overlap; a tick due while another runs is skipped
//   - The dashboard is available at http://localhost:<port>
//   - Prometheus metrics are served at /metrics
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server fails
// to start.
func (m *Monitor) Start(ctx context.Context) error {
	m.logger.Info("fleximon starting", "environment_count", len(m.environments), "columns", m.columns)
	m.logger.Info("polling configured", "schedule", m.schedule)
	m.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", m.port))

	if len(m.environments) == 0 {
		m.logger.Warn("no environments configured, dashboard will stay empty")
	}
	for _, column := range m.columns {
		if !IsKnownColumn(column) {
			m.logger.Warn("unrecognized column will render empty", "column", column)
		}
	}

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	dashboardStore := store.NewMemoryStore()
	publishers := append([]Publisher{storePublisher{store: dashboardStore, now: time.Now}}, m.publishers...)

	scheduler, err := poller.NewScheduler(m.schedule, func(tickCtx context.Context) {
		m.tick(tickCtx, publishers)
	}, m.metrics.TickSkipped, m.logger)
	if err != nil {
		return err
	}

	httpServer := server.NewServer(dashboardStore, server.Config{
		Port:           m.port,
		Assets:         dashboard.Assets,
		Title:          m.title,
		Gatherer:       m.registry,
		AllowedOrigins: m.allowedOrigins,
	}, m.logger)
	if err := httpServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	scheduler.Start(ctx)

	<-ctx.Done()
	scheduler.Stop()
	if c, ok := m.client.(*sensu.Client); ok {
		c.Close()
	}
	m.logger.Info("fleximon stopped")
	return nil
}

// Run computes one tick's [Result] without publishing it. Failed fetches
// are still logged and counted in the fetch failure metric.
//
// Run fetches every environment (concurrently, bounded by the configured
// max concurrency) and aggregates the events. It never fails: environments
// that cannot be fetched contribute no rows and are listed in
// Result.Unreachable.
func (m *Monitor) Run(ctx context.Context) Result {
	results := collect(ctx, m.client, m.environments, m.maxConcurrency)
	for _, res := range results {
		if res.Failed() {
			m.metrics.FetchFailed(res.Source, string(res.Err.Kind))
		}
	}
	return aggregate(results, m.columns)
}

// tick runs one full poll-aggregate-publish cycle.
//
// Updates are only published when the run completed; a tick interrupted by
// shutdown publishes nothing.
func (m *Monitor) tick(ctx context.Context, publishers []Publisher) {
	tickID := uuid.NewString()
	logger := m.logger.With("tick_id", tickID)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("tick panicked",
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()

	result := m.Run(ctx)
	if ctx.Err() != nil {
		logger.Info("tick interrupted, nothing published", "error", ctx.Err().Error())
		return
	}

	updates := result.Updates()
	for _, p := range publishers {
		if err := p.Publish(ctx, updates); err != nil {
			logger.Error("failed to publish updates", "error", err.Error())
		}
	}

	for _, cb := range m.tickCallbacks {
		invokeCallbackSafe(cb, result, logger)
	}

	duration := time.Since(start)
	m.metrics.TickCompleted(duration, map[string]int{
		LabelCritical.String(): result.Critical,
		LabelWarning.String():  result.Warning,
		LabelUnknown.String():  result.Unknown,
	}, len(result.Unreachable))

	logAttrs := []any{
		"status", result.Status.String(),
		"rows", len(result.Rows),
		"critical", result.Critical,
		"warning", result.Warning,
		"unknown", result.Unknown,
		"duration_ms", duration.Milliseconds(),
	}
	if len(result.Unreachable) > 0 {
		logger.Warn("tick completed with unreachable environments", append(logAttrs, "unreachable", result.Unreachable)...)
	} else {
		logger.Info("tick completed", logAttrs...)
	}
}

// Environments returns a copy of the configured environments.
func (m *Monitor) Environments() []Environment {
	cp := make([]Environment, len(m.environments))
	copy(cp, m.environments)
	return cp
}

// Columns returns a copy of the configured column names.
func (m *Monitor) Columns() []string {
	cp := make([]string, len(m.columns))
	copy(cp, m.columns)
	return cp
}

// Schedule returns the cron spec driving the ticks.
func (m *Monitor) Schedule() string {
	return m.schedule
}

// Port returns the configured HTTP port for the dashboard server.
func (m *Monitor) Port() int {
	return m.port
}

// invokeCallbackSafe calls a tick callback with panic recovery.
// Panics are logged with a correlation ID but do not propagate.
func invokeCallbackSafe(cb func(Result), result Result, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("tick callback panicked",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
			)
		}
	}()
	cb(result)
}
