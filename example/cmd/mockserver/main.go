// Standalone mock Sensu API for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/fleximon serve -c example/fleximon.yaml
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// event mirrors the subset of a Sensu event the dashboard reads.
type event struct {
	Client struct {
		Name string `json:"name"`
	} `json:"client"`
	Check struct {
		Name   string `json:"name"`
		Output string `json:"output"`
		Status int    `json:"status"`
		Team   string `json:"team"`
	} `json:"check"`
}

type mockState struct {
	events       []event
	nextChangeAt time.Time
}

func main() {
	addr := flag.String("addr", ":9999", "listen address")
	envList := flag.String("envs", "prod,staging", "comma separated environment names")
	flag.Parse()

	var (
		states = make(map[string]*mockState)
		mu     sync.Mutex
	)
	for _, env := range strings.Split(*envList, ",") {
		states[strings.TrimSpace(env)] = &mockState{}
	}

	fmt.Printf("Mock Sensu API starting on %s\n", *addr)
	fmt.Printf("Environments: %s (GET /{env}/events)\n", *envList)
	fmt.Println("Events are regenerated every 20-60 seconds")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	r := chi.NewRouter()
	r.Get("/{env}/events", func(w http.ResponseWriter, r *http.Request) {
		env := chi.URLParam(r, "env")

		mu.Lock()
		state, ok := states[env]
		if !ok {
			mu.Unlock()
			http.NotFound(w, r)
			return
		}
		if time.Now().After(state.nextChangeAt) {
			state.events = randomEvents(env)
			state.nextChangeAt = time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second)
			slog.Info("events regenerated", "env", env, "count", len(state.events))
		}
		events := state.events
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(events)
	})

	if err := http.ListenAndServe(*addr, r); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// randomEvents returns between one and six events with random statuses.
func randomEvents(env string) []event {
	teams := []string{"web", "ops", "data"}
	checks := []string{"check_http", "check_disk", "check_load", "check_ntp"}

	events := make([]event, 1+rand.Intn(6))
	for i := range events {
		events[i].Client.Name = fmt.Sprintf("%s-host-%d", env, i+1)
		events[i].Check.Name = checks[rand.Intn(len(checks))]
		events[i].Check.Status = rand.Intn(4)
		events[i].Check.Team = teams[rand.Intn(len(teams))]
		events[i].Check.Output = fmt.Sprintf("%s returned %d", events[i].Check.Name, events[i].Check.Status)
	}
	return events
}
