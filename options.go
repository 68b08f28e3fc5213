package fleximon

import (
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fleximon/fleximon/internal/poller"
)

// monitorConfig holds mutable state during Monitor construction.
type monitorConfig struct {
	title           string
	environments    []Environment
	columns         []string
	pollingInterval time.Duration
	schedule        string
	port            int
	maxConcurrency  int
	logger          *slog.Logger
	publishers      []Publisher
	tickCallbacks   []func(Result)
	registry        *prometheus.Registry
	allowedOrigins  []string
}

// Option is a function that configures a [Monitor] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*monitorConfig) error

// WithEnvironment adds a single [Environment] to the polling list.
//
// Can be called multiple times. Environments are polled concurrently but
// their events always appear in the order the environments were added.
//
// Example:
//
//	m, err := fleximon.New(
//	    fleximon.WithEnvironment(prod),
//	    fleximon.WithEnvironment(staging),
//	)
func WithEnvironment(e Environment) Option {
	return func(cfg *monitorConfig) error {
		cfg.environments = append(cfg.environments, e)
		return nil
	}
}

// WithEnvironments adds multiple [Environment] values to the polling list.
//
// Equivalent to calling [WithEnvironment] once per value.
func WithEnvironments(envs ...Environment) Option {
	return func(cfg *monitorConfig) error {
		cfg.environments = append(cfg.environments, envs...)
		return nil
	}
}

// WithColumns sets the table columns, in display order.
//
// Recognized names are returned by [KnownColumns]. Unrecognized names are
// accepted and render as empty cells. Calling WithColumns with no names
// produces a table with no columns. Defaults to all known columns.
//
// Example:
//
//	m, err := fleximon.New(
//	    fleximon.WithEnvironment(prod),
//	    fleximon.WithColumns(fleximon.ColumnHostname, fleximon.ColumnCheck, fleximon.ColumnOutput),
//	)
func WithColumns(columns ...string) Option {
	return func(cfg *monitorConfig) error {
		cfg.columns = append(make([]string, 0, len(columns)), columns...)
		return nil
	}
}

// WithPollingInterval sets how often all environments are polled.
//
// Defaults to 60 seconds. Ignored when [WithSchedule] is also given.
//
// Returns an error if the duration is zero or negative.
func WithPollingInterval(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return errors.New("polling interval must be positive")
		}
		cfg.pollingInterval = d
		return nil
	}
}

// WithSchedule drives ticks from a cron expression instead of a fixed
// interval.
//
// Accepts standard five-field expressions and descriptors such as "@hourly"
// or "@every 30s". The first tick still runs immediately on start.
//
// Example:
//
//	m, err := fleximon.New(
//	    fleximon.WithEnvironment(prod),
//	    fleximon.WithSchedule("*/5 * * * *"),
//	)
//
// Returns an error if the expression cannot be parsed.
func WithSchedule(spec string) Option {
	return func(cfg *monitorConfig) error {
		if _, err := poller.ParseSpec(spec); err != nil {
			return err
		}
		cfg.schedule = spec
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard server.
//
// Defaults to 8080.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *monitorConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithMaxConcurrency sets how many environments are fetched simultaneously.
//
// Defaults to 10.
//
// Returns an error if the value is zero or negative.
func WithMaxConcurrency(n int) Option {
	return func(cfg *monitorConfig) error {
		if n <= 0 {
			return errors.New("max concurrency must be positive")
		}
		cfg.maxConcurrency = n
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Monitor instance.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *monitorConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and header.
//
// If not specified, defaults to "Fleximon".
func WithTitle(title string) Option {
	return func(cfg *monitorConfig) error {
		cfg.title = title
		return nil
	}
}

// WithPublisher adds a [Publisher] that receives the updates of every
// completed tick, after the built-in dashboard store.
//
// Publish errors are logged and never stop the tick or the other publishers.
//
// Example:
//
//	m, err := fleximon.New(
//	    fleximon.WithEnvironment(prod),
//	    fleximon.WithPublisher(fleximon.PublisherFunc(func(ctx context.Context, updates []fleximon.Update) error {
//	        return forward(ctx, updates)
//	    })),
//	)
//
// Returns an error if the publisher is nil.
func WithPublisher(p Publisher) Option {
	return func(cfg *monitorConfig) error {
		if p == nil {
			return errors.New("publisher cannot be nil")
		}
		cfg.publishers = append(cfg.publishers, p)
		return nil
	}
}

// WithTickCallback registers a function to be called with the [Result] of
// every completed tick.
//
// Multiple callbacks may be registered; they execute in registration order,
// after the updates have been published.
//
// IMPORTANT: Callbacks run on the tick goroutine. A slow callback delays the
// end of the tick and may cause the next one to be skipped.
//
// Panics within callbacks are recovered and logged; they do not stop the
// scheduler. Nil callbacks are silently ignored.
func WithTickCallback(cb func(Result)) Option {
	return func(cfg *monitorConfig) error {
		if cb == nil {
			return nil
		}
		cfg.tickCallbacks = append(cfg.tickCallbacks, cb)
		return nil
	}
}

// WithRegistry sets the Prometheus registry the Monitor registers its
// collectors with and serves at /metrics.
//
// Defaults to a private registry that also carries the Go runtime and
// process collectors.
//
// Returns an error if the registry is nil.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(cfg *monitorConfig) error {
		if reg == nil {
			return errors.New("registry cannot be nil")
		}
		cfg.registry = reg
		return nil
	}
}

// WithAllowedOrigins lets browser pages served from the given origins read
// the /api endpoints cross-origin.
//
// Localhost origins are always allowed.
func WithAllowedOrigins(origins ...string) Option {
	return func(cfg *monitorConfig) error {
		cfg.allowedOrigins = append(cfg.allowedOrigins, origins...)
		return nil
	}
}
