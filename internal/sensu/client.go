package sensu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// maxResponseBodySize bounds a single /events response. Larger bodies are
// truncated and then fail to parse.
const maxResponseBodySize = 32 << 20 // 32MB

// DefaultTimeout is the per-request timeout used when a [Source] does not
// set one.
const DefaultTimeout = 10 * time.Second

// connection pooling limits; one connection per environment is the common case
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 2
	defaultMaxConnsPerHost     = 4
	defaultIdleConnTimeout     = 90 * time.Second
)

// eventsPath is appended to every source base URL.
const eventsPath = "/events"

// Source holds the connection details of one monitoring environment.
type Source struct {
	// Name is the environment key from configuration.
	Name string

	// Host and Port locate the API. Port is kept as text so configuration
	// can supply either a number or a string.
	Host string
	Port string

	// User and Password enable basic authentication when both are non-empty.
	User     string
	Password string

	// Path is an optional prefix inserted before /events.
	Path string

	// Timeout bounds the request. Zero means [DefaultTimeout].
	Timeout time.Duration
}

// URL returns the events URL for the source: http://{host}:{port}{path}/events.
func (s Source) URL() string {
	return "http://" + net.JoinHostPort(s.Host, s.Port) + s.Path + eventsPath
}

// Client fetches events from monitoring APIs.
//
// Client uses per-request timeouts via context rather than a global timeout,
// so each [Source] can carry its own. Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new [Client] logging to logger.
//
// The client is configured with connection pooling so repeated ticks reuse
// connections to the same environment.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
		logger: logger,
	}
}

// Fetch performs a single GET against the source's /events endpoint.
//
// Fetch never retries and always returns a [Result]. Transport errors,
// non-2xx responses and undecodable bodies are logged and reported through
// Result.Err with no events. An empty JSON array is a success with zero events.
func (c *Client) Fetch(ctx context.Context, src Source) Result {
	timeout := src.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := src.URL()
	start := time.Now()

	c.logger.Debug("fetching events", "source", src.Name, "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return c.fail(src, KindConnect, err, start)
	}
	req.Header.Set("Accept", "application/json")
	if src.User != "" && src.Password != "" {
		req.SetBasicAuth(src.User, src.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(src, KindConnect, err, start)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodySize))
		return c.fail(src, KindStatus, fmt.Errorf("unexpected status %d", resp.StatusCode), start)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return c.fail(src, KindRead, err, start)
	}

	var events []Event
	if err := json.Unmarshal(body, &events); err != nil {
		return c.fail(src, KindParse, err, start)
	}

	latency := time.Since(start)
	c.logger.Debug("fetched events",
		"source", src.Name,
		"events", len(events),
		"latency_ms", latency.Milliseconds(),
	)

	return Result{
		Source:  src.Name,
		Events:  events,
		Latency: latency,
	}
}

// fail logs a fetch failure and wraps it into a failed [Result].
func (c *Client) fail(src Source, kind ErrorKind, cause error, start time.Time) Result {
	fetchErr := &FetchError{Source: src.Name, Kind: kind, Err: cause}

	c.logger.Error("failed to fetch events",
		"source", src.Name,
		"url", src.URL(),
		"error_kind", string(kind),
		"error_type", fmt.Sprintf("%T", cause),
		"error", cause.Error(),
	)

	return Result{
		Source:  src.Name,
		Latency: time.Since(start),
		Err:     fetchErr,
	}
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times and on a nil receiver. The client remains
// usable afterwards.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
