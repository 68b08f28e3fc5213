package fleximon

import (
	"errors"
	"strings"
	"time"
)

// environmentConfig holds mutable state during environment construction.
type environmentConfig struct {
	user     string
	password string
	path     string
	timeout  time.Duration
}

// EnvironmentOption is a function that configures an [Environment] during
// construction.
//
// Built-in options: [WithBasicAuth], [WithPath], [WithTimeout].
type EnvironmentOption func(*environmentConfig) error

// WithBasicAuth sets the credentials sent to the monitoring API.
//
// Basic authentication is only applied when both user and password are
// non-empty; otherwise requests are sent unauthenticated. This mirrors
// configuration files that leave one of the fields blank.
//
// Example:
//
//	env, err := fleximon.NewEnvironment("prod", "sensu.internal", "4567",
//	    fleximon.WithBasicAuth("admin", "secret"),
//	)
func WithBasicAuth(user, password string) EnvironmentOption {
	return func(cfg *environmentConfig) error {
		cfg.user = user
		cfg.password = password
		return nil
	}
}

// WithPath sets a path prefix inserted between host:port and /events.
//
// Use this when the API is served behind a reverse proxy under a subpath.
// A trailing slash is removed. An empty path is the default.
//
// Returns an error if a non-empty path does not start with "/".
func WithPath(path string) EnvironmentOption {
	return func(cfg *environmentConfig) error {
		if path != "" && !strings.HasPrefix(path, "/") {
			return errors.New("path must start with /")
		}
		cfg.path = strings.TrimSuffix(path, "/")
		return nil
	}
}

// WithTimeout sets the request timeout for this environment.
//
// If the API does not respond within this duration the fetch fails and the
// environment contributes no events to the tick. Defaults to 10 seconds.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) EnvironmentOption {
	return func(cfg *environmentConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}
