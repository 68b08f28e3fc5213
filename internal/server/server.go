package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleximon/fleximon/internal/store"
)

const (
	// streamWriteTimeout is the maximum time allowed for a single SSE or
	// WebSocket write. It keeps slow or vanished clients from pinning a
	// handler goroutine, and must be <= shutdownTimeout.
	streamWriteTimeout = 5 * time.Second

	// shutdownTimeout bounds graceful shutdown of in-flight requests.
	shutdownTimeout = 5 * time.Second

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "Fleximon"

	// titlePlaceholder is the marker in HTML that gets replaced with the actual title.
	titlePlaceholder = "{{.Title}}"

	// tableEvent is the update carrying the events table.
	tableEvent = "sensu-table"

	// teamColumn is the header value of the column the table filter matches.
	teamColumn = "team"
)

// Config holds the static settings of a [Server].
type Config struct {
	// Port is the TCP port to listen on. 0 lets the OS pick one.
	Port int

	// Assets contains assets/index.html. May be nil, in which case "/"
	// reports an error.
	Assets fs.FS

	// Title replaces {{.Title}} in the dashboard (defaults to "Fleximon").
	Title string

	// Gatherer is served at /metrics. May be nil to disable the endpoint.
	Gatherer prometheus.Gatherer

	// AllowedOrigins lists browser origins, besides localhost and the
	// server's own host, that may use /api cross-origin.
	AllowedOrigins []string
}

// Server handles HTTP requests for the Fleximon dashboard and API.
//
// Routes:
//   - GET /: Serves the embedded dashboard HTML
//   - GET /healthz: Liveness probe
//   - GET /metrics: Prometheus metrics
//   - GET /api/events: Latest update of every dashboard event as JSON
//   - GET /api/table: Latest events table, optionally filtered by ?team=
//   - GET /api/sse: Server-Sent Events stream of named updates
//   - GET /api/ws: WebSocket stream of updates
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	store      store.Store
	cfg        Config
	httpServer *http.Server
	upgrader   websocket.Upgrader
	allowed    map[string]bool
	logger     *slog.Logger
}

// NewServer creates a new HTTP [Server] reading updates from st.
//
// The server is not started until [Server.Start] is called.
func NewServer(st store.Store, cfg Config, logger *slog.Logger) *Server {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	s := &Server{
		store:   st,
		cfg:     cfg,
		allowed: allowed,
		logger:  logger,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return s.originAllowed(r, r.Header.Get("Origin"))
		},
	}
	return s
}

// Routes builds the HTTP handler serving every route of the server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleDashboard)
	r.Get("/healthz", s.handleHealth)
	if s.cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowOriginFunc: s.originAllowed,
			AllowedMethods:  []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders:  []string{"Accept", "Cache-Control", "Last-Event-ID"},
			MaxAge:          300,
		}))
		r.Get("/events", s.handleEvents)
		r.Get("/table", s.handleTable)
		r.Get("/sse", s.handleSSE)
		r.Get("/ws", s.handleWS)
	})

	return r
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.cfg.Port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// BaseContext derives all request contexts from the server context.
		// When ctx is cancelled, all request contexts are also cancelled,
		// which ends long-running SSE and WebSocket handlers.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// originAllowed reports whether a browser origin may read the API.
//
// Requests without an Origin header (curl, other services) are allowed, as
// are localhost, the server's own host and the configured origins.
func (s *Server) originAllowed(r *http.Request, origin string) bool {
	if origin == "" {
		return true
	}
	if s.allowed[strings.TrimRight(origin, "/")] {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// handleDashboard serves the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if s.cfg.Assets == nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	content, err := fs.ReadFile(s.cfg.Assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// apply title substitution with HTML escaping to prevent XSS
	title := s.cfg.Title
	if title == "" {
		title = defaultTitle
	}
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, html.EscapeString(title))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write dashboard response", "error", err)
	}
}

// handleHealth reports that the process is serving.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleEvents returns the latest update of every dashboard event as JSON.
func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	if err := json.NewEncoder(w).Encode(s.store.GetAll()); err != nil {
		s.logger.Error("failed to encode events response", "error", err)
	}
}

// tableCell, tableRow and tablePayload mirror the encoded events table. Only
// the fields needed for filtering are typed; cells are re-encoded unchanged.
type tableCell struct {
	Class string `json:"class,omitempty"`
	Value string `json:"value"`
}

type tableRow struct {
	Cols []tableCell `json:"cols"`
}

type tablePayload struct {
	HRows []tableRow `json:"hrows_tmp"`
	Rows  []tableRow `json:"rows_tmp"`
}

// handleTable returns the latest events table.
//
// With ?team=<name>, only rows whose team cell equals name (ignoring case)
// are returned. The filter is ignored when no team column is configured.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	update, ok := s.store.Get(tableEvent)
	if !ok {
		http.Error(w, "No table published yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	team := strings.TrimSpace(r.URL.Query().Get("team"))
	if team == "" {
		_, _ = w.Write(update.Payload)
		return
	}

	var table tablePayload
	if err := json.Unmarshal(update.Payload, &table); err != nil {
		s.logger.Error("failed to decode stored table", "error", err)
		http.Error(w, "Invalid stored table", http.StatusInternalServerError)
		return
	}

	idx := teamIndex(table.HRows)
	if idx >= 0 {
		filtered := make([]tableRow, 0, len(table.Rows))
		for _, row := range table.Rows {
			if idx < len(row.Cols) && strings.EqualFold(row.Cols[idx].Value, team) {
				filtered = append(filtered, row)
			}
		}
		table.Rows = filtered
	}

	if err := json.NewEncoder(w).Encode(table); err != nil {
		s.logger.Error("failed to encode table response", "error", err)
	}
}

// teamIndex returns the position of the team column, or -1.
func teamIndex(hrows []tableRow) int {
	if len(hrows) == 0 {
		return -1
	}
	for i, cell := range hrows[0].Cols {
		if cell.Value == teamColumn {
			return i
		}
	}
	return -1
}

// handleSSE streams dashboard updates via Server-Sent Events.
//
// Every update is written as a named event:
//
//	event: sensu-status
//	data: {"criticals_tmp":0,...}
//
// The latest snapshot is replayed on connect. The handler uses write
// deadlines so that a blocked write cannot keep it from noticing shutdown.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	// check if flushing is supported
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	writeAndFlush := func(u store.Update) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", u.Name, u.Payload); err != nil {
			return err
		}

		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// subscribe before reading the snapshot so no batch is missed in between
	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	for _, u := range s.store.GetAll() {
		if err := writeAndFlush(u); err != nil {
			return
		}
	}
	// commit headers even when there is nothing to replay yet
	if err := rc.Flush(); err != nil {
		return
	}

	for {
		select {
		case batch, ok := <-ch:
			if !ok {
				return
			}
			for _, u := range batch {
				if err := writeAndFlush(u); err != nil {
					return
				}
			}

		case <-r.Context().Done():
			// request context is derived from server context via BaseContext,
			// so this fires on both client disconnect AND server shutdown
			return
		}
	}
}

// handleWS streams dashboard updates over a WebSocket.
//
// Each update is sent as one JSON text message {"name", "payload",
// "published_at"}. The latest snapshot is replayed on connect. Messages from
// the client are read and discarded; reading only serves to detect close.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(u store.Update) error {
		if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
			return err
		}
		return conn.WriteJSON(u)
	}

	for _, u := range s.store.GetAll() {
		if err := send(u); err != nil {
			return
		}
	}

	for {
		select {
		case batch, ok := <-ch:
			if !ok {
				return
			}
			for _, u := range batch {
				if err := send(u); err != nil {
					return
				}
			}

		case <-closed:
			return

		case <-r.Context().Done():
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		}
	}
}
