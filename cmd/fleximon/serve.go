package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fleximon/fleximon"
	"github.com/fleximon/fleximon/config"
	"github.com/fleximon/fleximon/internal/kafka"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newLogger creates a JSON logger for CLI use.
func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	})), nil
}

// serveCmd starts the Fleximon dashboard server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: `Start the Fleximon dashboard server.

The server will:
  - Load variables from the env file, if present
  - Load configuration and the environments and columns files
  - Poll every environment immediately, then on every tick
  - Serve the dashboard UI on the configured port
  - Forward every update to Kafka, if configured

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  fleximon serve
  fleximon serve -c /etc/fleximon/fleximon.yaml --env-file /etc/fleximon/.env`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (default: environments.json and columns.json in the working directory)")
	serveCmd.Flags().String("env-file", "", "dotenv file loaded before configuration (default: .env if present)")
	serveCmd.Flags().String("log-level", "info", "log level: debug, info, warn or error")
}

func runServe(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	logger, err := newLogger(level)
	if err != nil {
		return err
	}

	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile, envFile != ""); err != nil {
		return err
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"environments", len(cfg.Environments),
		"columns", cfg.Columns,
	)

	opts, err := config.BuildOptions(cfg)
	if err != nil {
		return fmt.Errorf("failed to build environments: %w", err)
	}
	opts = append(opts, fleximon.WithLogger(logger))

	if cfg.Kafka.Enabled() {
		sink, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			return fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Error("failed to close kafka publisher", "error", err.Error())
			}
		}()
		opts = append(opts, fleximon.WithPublisher(sink))
		logger.Info("kafka forwarding enabled", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	}

	m, err := fleximon.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start server - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- m.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
