package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
)

// mockCheck is one simulated check whose status changes over time.
type mockCheck struct {
	client       string
	check        string
	team         string
	category     string
	status       int
	nextChangeAt time.Time
}

// mockOutputs maps a status code to the check output reported with it.
var mockOutputs = map[int]string{
	0: "OK: all good",
	1: "WARNING: threshold exceeded",
	2: "CRITICAL: service not responding",
	3: "UNKNOWN: check timed out",
}

// newMockChecks returns the checks simulated for one environment.
func newMockChecks(env string) []*mockCheck {
	next := func() time.Time {
		return time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second)
	}
	return []*mockCheck{
		{client: env + "-web-1", check: "check_http", team: "web", category: "availability", nextChangeAt: next()},
		{client: env + "-web-2", check: "check_http", team: "web", category: "availability", status: 1, nextChangeAt: next()},
		{client: env + "-db-1", check: "check_disk", team: "ops", category: "capacity", nextChangeAt: next()},
		{client: env + "-db-1", check: "check_replication", team: "ops", category: "availability", status: 2, nextChangeAt: next()},
		{client: env + "-queue-1", check: "check_lag", team: "data", category: "latency", nextChangeAt: next()},
	}
}

// StartMockSensuServer runs a mock Sensu API serving GET /{env}/events.
// Every check changes status every 20-60 seconds.
// Call this in a goroutine before starting the monitor.
func StartMockSensuServer(addr string, envs ...string) {
	var (
		checks = make(map[string][]*mockCheck, len(envs))
		mu     sync.Mutex
	)
	for _, env := range envs {
		checks[env] = newMockChecks(env)
	}

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		env, ok := strings.CutSuffix(strings.Trim(r.URL.Path, "/"), "/events")
		if !ok {
			http.NotFound(w, r)
			return
		}

		mu.Lock()
		envChecks, exists := checks[env]
		if !exists {
			mu.Unlock()
			http.NotFound(w, r)
			return
		}

		// simulate small latency variance
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		events := make([]map[string]any, 0, len(envChecks))
		for _, c := range envChecks {
			if time.Now().After(c.nextChangeAt) {
				old := c.status
				c.status = rand.Intn(4)
				c.nextChangeAt = time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second)
				slog.Info("status change", "env", env, "client", c.client, "check", c.check, "from", old, "to", c.status)
			}
			events = append(events, map[string]any{
				"client": map[string]any{"name": c.client},
				"check": map[string]any{
					"name":     c.check,
					"output":   mockOutputs[c.status],
					"status":   c.status,
					"team":     c.team,
					"category": c.category,
				},
			})
		}
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(events); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
