package fleximon

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/fleximon/fleximon/internal/sensu"
)

const defaultFetchTimeout = sensu.DefaultTimeout

// Environment is one independently configured monitoring API to poll.
//
// Environment is immutable after creation via [NewEnvironment]. Fields are
// private with getter methods; options such as [WithBasicAuth], [WithPath]
// and [WithTimeout] configure it at construction time.
type Environment struct {
	name     string
	host     string
	port     string
	user     string
	password string
	path     string
	timeout  time.Duration
}

// Name returns the environment's configuration key.
func (e Environment) Name() string {
	return e.name
}

// Host returns the API host.
func (e Environment) Host() string {
	return e.host
}

// Port returns the API port as text.
func (e Environment) Port() string {
	return e.port
}

// User returns the basic auth user, or empty string.
func (e Environment) User() string {
	return e.user
}

// Path returns the path prefix placed before /events, or empty string.
func (e Environment) Path() string {
	return e.path
}

// Timeout returns the per-fetch timeout. Defaults to 10 seconds.
func (e Environment) Timeout() time.Duration {
	return e.timeout
}

// URL returns the events URL polled for this environment.
func (e Environment) URL() string {
	return e.source().URL()
}

// source converts the environment to the fetcher's representation.
func (e Environment) source() sensu.Source {
	return sensu.Source{
		Name:     e.name,
		Host:     e.host,
		Port:     e.port,
		User:     e.user,
		Password: e.password,
		Path:     e.path,
		Timeout:  e.timeout,
	}
}

// NewEnvironment creates an [Environment] with the given name, host, port
// and options.
//
// The port must be a number between 1 and 65535. Options are applied in order.
//
// Example:
//
//	env, err := fleximon.NewEnvironment("production", "sensu.prod.internal", "4567",
//	    fleximon.WithBasicAuth("admin", os.Getenv("SENSU_PASSWORD")),
//	    fleximon.WithTimeout(5 * time.Second),
//	)
//
// Returns an error if the name or host is empty, the host carries a scheme,
// path or port, or the port is invalid.
func NewEnvironment(name, host, port string, opts ...EnvironmentOption) (Environment, error) {
	if name == "" {
		return Environment{}, errors.New("environment name cannot be empty")
	}
	if host == "" {
		return Environment{}, fmt.Errorf("environment %q: host cannot be empty", name)
	}
	if strings.ContainsAny(host, "/?#") {
		return Environment{}, fmt.Errorf("environment %q: host must not contain a scheme or path, got %q", name, host)
	}
	// only IPv6 literals may contain a colon; anything else carries a port
	if strings.Contains(host, ":") && net.ParseIP(host) == nil {
		return Environment{}, fmt.Errorf("environment %q: host must not contain a port, got %q", name, host)
	}

	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return Environment{}, fmt.Errorf("environment %q: port must be between 1 and 65535, got %q", name, port)
	}

	cfg := &environmentConfig{
		timeout: defaultFetchTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Environment{}, fmt.Errorf("environment %q: %w", name, err)
		}
	}

	return Environment{
		name:     name,
		host:     host,
		port:     port,
		user:     cfg.user,
		password: cfg.password,
		path:     cfg.path,
		timeout:  cfg.timeout,
	}, nil
}
