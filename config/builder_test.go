package config

import (
	"strings"
	"testing"
	"time"

	"github.com/fleximon/fleximon"
)

func TestBuildEnvironments_Single(t *testing.T) {
	cfg := &Config{
		Environments: []EnvironmentConfig{
			{Name: "prod", Host: "sensu.prod", Port: "4567"},
		},
	}

	envs, err := BuildEnvironments(cfg)
	if err != nil {
		t.Fatalf("BuildEnvironments() error = %v", err)
	}
	if len(envs) != 1 {
		t.Fatalf("len(envs) = %d, want 1", len(envs))
	}

	env := envs[0]
	if env.Name() != "prod" {
		t.Errorf("Name() = %q, want prod", env.Name())
	}
	if env.URL() != "http://sensu.prod:4567/events" {
		t.Errorf("URL() = %q", env.URL())
	}
	if env.User() != "" {
		t.Errorf("User() = %q, want empty", env.User())
	}
}

func TestBuildEnvironments_AllOptions(t *testing.T) {
	cfg := &Config{
		Environments: []EnvironmentConfig{
			{
				Name:     "staging",
				Host:     "sensu.staging",
				Port:     "8080",
				User:     "admin",
				Password: "secret",
				Path:     "/sensu",
				Timeout:  Duration(3 * time.Second),
			},
		},
	}

	envs, err := BuildEnvironments(cfg)
	if err != nil {
		t.Fatalf("BuildEnvironments() error = %v", err)
	}

	env := envs[0]
	if env.URL() != "http://sensu.staging:8080/sensu/events" {
		t.Errorf("URL() = %q", env.URL())
	}
	if env.User() != "admin" {
		t.Errorf("User() = %q, want admin", env.User())
	}
	if env.Timeout() != 3*time.Second {
		t.Errorf("Timeout() = %v, want 3s", env.Timeout())
	}
}

func TestBuildEnvironments_TimeoutFallback(t *testing.T) {
	tests := []struct {
		name        string
		global      time.Duration
		perEnv      time.Duration
		wantTimeout time.Duration
	}{
		{name: "sdk default", wantTimeout: 10 * time.Second},
		{name: "global", global: 5 * time.Second, wantTimeout: 5 * time.Second},
		{name: "per environment wins", global: 5 * time.Second, perEnv: 2 * time.Second, wantTimeout: 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				FetchTimeout: Duration(tt.global),
				Environments: []EnvironmentConfig{
					{Name: "prod", Host: "h", Port: "1", Timeout: Duration(tt.perEnv)},
				},
			}

			envs, err := BuildEnvironments(cfg)
			if err != nil {
				t.Fatalf("BuildEnvironments() error = %v", err)
			}
			if got := envs[0].Timeout(); got != tt.wantTimeout {
				t.Errorf("Timeout() = %v, want %v", got, tt.wantTimeout)
			}
		})
	}
}

func TestBuildEnvironments_PreservesOrder(t *testing.T) {
	cfg := &Config{
		Environments: []EnvironmentConfig{
			{Name: "b", Host: "b", Port: "1"},
			{Name: "a", Host: "a", Port: "1"},
		},
	}

	envs, err := BuildEnvironments(cfg)
	if err != nil {
		t.Fatalf("BuildEnvironments() error = %v", err)
	}
	if envs[0].Name() != "b" || envs[1].Name() != "a" {
		t.Errorf("order = [%s %s], want [b a]", envs[0].Name(), envs[1].Name())
	}
}

func TestBuildEnvironments_InvalidPort(t *testing.T) {
	cfg := &Config{
		Environments: []EnvironmentConfig{
			{Name: "prod", Host: "h", Port: "not-a-port"},
		},
	}

	_, err := BuildEnvironments(cfg)
	if err == nil {
		t.Fatal("BuildEnvironments() expected error for invalid port")
	}
	if !strings.Contains(err.Error(), `"prod"`) {
		t.Errorf("error should name the environment, got %v", err)
	}
}

func TestBuildEnvironments_Empty(t *testing.T) {
	envs, err := BuildEnvironments(&Config{})
	if err != nil {
		t.Fatalf("BuildEnvironments() error = %v", err)
	}
	if len(envs) != 0 {
		t.Errorf("len(envs) = %d, want 0", len(envs))
	}
}

func TestBuildOptions(t *testing.T) {
	cfg, err := Parse([]byte(`
title: Ops
port: 9191
schedule: "@every 30s"
max_concurrency: 3
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	cfg.Environments = []EnvironmentConfig{{Name: "prod", Host: "h", Port: "1"}}
	cfg.Columns = []string{"hostname", "team"}

	opts, err := BuildOptions(cfg)
	if err != nil {
		t.Fatalf("BuildOptions() error = %v", err)
	}

	m, err := fleximon.New(opts...)
	if err != nil {
		t.Fatalf("fleximon.New() error = %v", err)
	}

	if m.Port() != 9191 {
		t.Errorf("Port() = %d, want 9191", m.Port())
	}
	if m.Schedule() != "@every 30s" {
		t.Errorf("Schedule() = %q", m.Schedule())
	}
	if len(m.Environments()) != 1 {
		t.Errorf("len(Environments()) = %d, want 1", len(m.Environments()))
	}
	if got := strings.Join(m.Columns(), ","); got != "hostname,team" {
		t.Errorf("Columns() = %s", got)
	}
}

func TestBuildOptions_DefaultColumnsWithoutFile(t *testing.T) {
	opts, err := BuildOptions(Default())
	if err != nil {
		t.Fatalf("BuildOptions() error = %v", err)
	}

	m, err := fleximon.New(opts...)
	if err != nil {
		t.Fatalf("fleximon.New() error = %v", err)
	}
	if len(m.Columns()) != len(fleximon.KnownColumns()) {
		t.Errorf("Columns() = %v, want known columns", m.Columns())
	}
	if m.Schedule() != "@every 1m0s" {
		t.Errorf("Schedule() = %q, want @every 1m0s", m.Schedule())
	}
}

func TestBuildOptions_InvalidSchedule(t *testing.T) {
	cfg := Default()
	cfg.Schedule = "not a cron"

	opts, err := BuildOptions(cfg)
	if err != nil {
		t.Fatalf("BuildOptions() error = %v", err)
	}
	if _, err := fleximon.New(opts...); err == nil {
		t.Error("fleximon.New() expected error for invalid schedule")
	}
}
