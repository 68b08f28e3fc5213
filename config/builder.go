package config

import (
	"fmt"
	"time"

	"github.com/fleximon/fleximon"
)

// BuildEnvironments converts parsed configuration into SDK Environment
// values, preserving file order.
func BuildEnvironments(cfg *Config) ([]fleximon.Environment, error) {
	envs := make([]fleximon.Environment, 0, len(cfg.Environments))
	for _, ec := range cfg.Environments {
		env, err := buildEnvironment(ec, cfg.FetchTimeout.Duration())
		if err != nil {
			return nil, fmt.Errorf("environment %q: %w", ec.Name, err)
		}
		envs = append(envs, env)
	}
	return envs, nil
}

// buildEnvironment converts a single EnvironmentConfig to an SDK Environment.
func buildEnvironment(ec EnvironmentConfig, defaultTimeout time.Duration) (fleximon.Environment, error) {
	var opts []fleximon.EnvironmentOption

	if ec.User != "" || ec.Password != "" {
		opts = append(opts, fleximon.WithBasicAuth(ec.User, ec.Password))
	}

	if ec.Path != "" {
		opts = append(opts, fleximon.WithPath(ec.Path))
	}

	timeout := ec.Timeout.Duration()
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if timeout > 0 {
		opts = append(opts, fleximon.WithTimeout(timeout))
	}

	return fleximon.NewEnvironment(ec.Name, ec.Host, ec.Port, opts...)
}

// BuildOptions converts parsed configuration into [fleximon.Option] values
// for [fleximon.New]. Logger, publishers and callbacks are left to the caller.
func BuildOptions(cfg *Config) ([]fleximon.Option, error) {
	envs, err := BuildEnvironments(cfg)
	if err != nil {
		return nil, err
	}

	opts := []fleximon.Option{
		fleximon.WithEnvironments(envs...),
		fleximon.WithPort(cfg.Port),
		fleximon.WithPollingInterval(cfg.PollInterval.Duration()),
		fleximon.WithMaxConcurrency(cfg.MaxConcurrency),
	}

	// nil means no columns file was loaded; an empty set is a valid choice
	if cfg.Columns != nil {
		opts = append(opts, fleximon.WithColumns(cfg.Columns...))
	}
	if cfg.Title != "" {
		opts = append(opts, fleximon.WithTitle(cfg.Title))
	}
	if cfg.Schedule != "" {
		opts = append(opts, fleximon.WithSchedule(cfg.Schedule))
	}
	if len(cfg.AllowedOrigins) > 0 {
		opts = append(opts, fleximon.WithAllowedOrigins(cfg.AllowedOrigins...))
	}

	return opts, nil
}
