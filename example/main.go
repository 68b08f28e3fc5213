package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleximon/fleximon"
)

func main() {
	// start mock server (see mock_server.go)
	go StartMockSensuServer(":9999", "prod", "staging")
	time.Sleep(100 * time.Millisecond)

	prod, err := fleximon.NewEnvironment("prod", "localhost", "9999", fleximon.WithPath("/prod"))
	if err != nil {
		slog.Error("failed to create environment", "error", err)
		os.Exit(1)
	}
	staging, err := fleximon.NewEnvironment("staging", "localhost", "9999",
		fleximon.WithPath("/staging"),
		fleximon.WithTimeout(2*time.Second),
	)
	if err != nil {
		slog.Error("failed to create environment", "error", err)
		os.Exit(1)
	}

	// this one is never reachable and shows up in the unreachable list
	lab, _ := fleximon.NewEnvironment("lab", "localhost", "9998",
		fleximon.WithTimeout(time.Second),
	)

	m, err := fleximon.New(
		fleximon.WithTitle("Fleximon Demo"),
		fleximon.WithEnvironments(prod, staging, lab),
		fleximon.WithColumns(fleximon.ColumnHostname, fleximon.ColumnCheck, fleximon.ColumnOutput, fleximon.ColumnTeam),
		fleximon.WithPollingInterval(5*time.Second),
		fleximon.WithPort(8080),
		fleximon.WithTickCallback(func(r fleximon.Result) {
			slog.Info("tick", "status", r.Status, "critical", r.Critical, "warning", r.Warning, "unknown", r.Unknown)
		}),
	)
	if err != nil {
		slog.Error("failed to create monitor", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Fleximon Demo                                       ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Environments:                                       ║")
	fmt.Println("  ║   • prod, staging (mock Sensu on :9999)               ║")
	fmt.Println("  ║   • lab (unreachable)                                 ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := m.Start(ctx); err != nil {
		slog.Error("fleximon error", "error", err)
		os.Exit(1)
	}
}
