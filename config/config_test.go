package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(``))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.PollInterval.Duration() != 60*time.Second {
		t.Errorf("PollInterval = %v, want 60s", cfg.PollInterval.Duration())
	}
	if cfg.MaxConcurrency != 10 {
		t.Errorf("MaxConcurrency = %d, want 10", cfg.MaxConcurrency)
	}
	if cfg.EnvironmentsFile != "environments.json" {
		t.Errorf("EnvironmentsFile = %q, want environments.json", cfg.EnvironmentsFile)
	}
	if cfg.ColumnsFile != "columns.json" {
		t.Errorf("ColumnsFile = %q, want columns.json", cfg.ColumnsFile)
	}
	if cfg.ColumnSet != "default" {
		t.Errorf("ColumnSet = %q, want default", cfg.ColumnSet)
	}
	if cfg.Kafka.Enabled() {
		t.Error("Kafka.Enabled() = true, want false")
	}
}

func TestDefault_MatchesEmptyParse(t *testing.T) {
	parsed, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	def := Default()

	if def.Port != parsed.Port || def.PollInterval != parsed.PollInterval || def.ColumnSet != parsed.ColumnSet {
		t.Errorf("Default() = %+v, want %+v", def, parsed)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
title: Sensu Overview
port: 9090
poll_interval: 30s
schedule: "*/5 * * * *"
max_concurrency: 4
fetch_timeout: 3s
environments_file: envs.yaml
columns_file: cols.yaml
column_set: ops
allowed_origins:
  - https://wall.example.com
kafka:
  brokers: [kafka-1:9092, kafka-2:9092]
  topic: sensu-dashboard
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Title != "Sensu Overview" {
		t.Errorf("Title = %q", cfg.Title)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.PollInterval.Duration() != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.PollInterval.Duration())
	}
	if cfg.Schedule != "*/5 * * * *" {
		t.Errorf("Schedule = %q", cfg.Schedule)
	}
	if cfg.MaxConcurrency != 4 {
		t.Errorf("MaxConcurrency = %d, want 4", cfg.MaxConcurrency)
	}
	if cfg.FetchTimeout.Duration() != 3*time.Second {
		t.Errorf("FetchTimeout = %v, want 3s", cfg.FetchTimeout.Duration())
	}
	if cfg.EnvironmentsFile != "envs.yaml" || cfg.ColumnsFile != "cols.yaml" || cfg.ColumnSet != "ops" {
		t.Errorf("files = %q %q %q", cfg.EnvironmentsFile, cfg.ColumnsFile, cfg.ColumnSet)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://wall.example.com" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if !cfg.Kafka.Enabled() || len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Topic != "sensu-dashboard" {
		t.Errorf("Kafka = %+v", cfg.Kafka)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		wantErrLike string
	}{
		{
			name:        "port out of range",
			yaml:        `port: 70000`,
			wantErrLike: "port must be between",
		},
		{
			name:        "poll interval too short",
			yaml:        `poll_interval: 500ms`,
			wantErrLike: "poll_interval must be at least",
		},
		{
			name:        "negative concurrency",
			yaml:        `max_concurrency: -1`,
			wantErrLike: "max_concurrency cannot be negative",
		},
		{
			name:        "negative fetch timeout",
			yaml:        `fetch_timeout: -1s`,
			wantErrLike: "fetch_timeout cannot be negative",
		},
		{
			name: "kafka without topic",
			yaml: `
kafka:
  brokers: [localhost:9092]
`,
			wantErrLike: "topic is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErrLike) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.wantErrLike)
			}
		})
	}
}

func TestParse_PollIntervalMinimum(t *testing.T) {
	tests := []struct {
		interval string
		wantErr  bool
	}{
		{"1s", false},
		{"999ms", true},
		{"1m", false},
	}

	for _, tt := range tests {
		t.Run(tt.interval, func(t *testing.T) {
			_, err := Parse([]byte("poll_interval: " + tt.interval))
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("port: [unclosed"))
	if err == nil {
		t.Fatal("Parse() expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("error = %v", err)
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	_, err := Parse([]byte("poll_interval: soon"))
	if err == nil {
		t.Fatal("Parse() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("error = %v", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FLEXIMON_TEST_HOST", "sensu.internal")
	t.Setenv("FLEXIMON_TEST_EMPTY", "")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "no vars", input: "plain", want: "plain"},
		{name: "set var", input: "${FLEXIMON_TEST_HOST}", want: "sensu.internal"},
		{name: "embedded", input: "http://${FLEXIMON_TEST_HOST}:4567", want: "http://sensu.internal:4567"},
		{name: "default used", input: "${FLEXIMON_TEST_UNSET:-fallback}", want: "fallback"},
		{name: "empty default", input: "${FLEXIMON_TEST_UNSET:-}", want: ""},
		{name: "set but empty wins over default", input: "${FLEXIMON_TEST_EMPTY:-fallback}", want: ""},
		{name: "missing", input: "${FLEXIMON_TEST_UNSET}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnvVars(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expandEnvVars() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.want)
			}
		})
	}
}

// writeFile writes content to name inside dir.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoad_ResolvesRelativeFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "environments.json", `{"config": {
	"prod": {"host": "sensu.prod", "port": "4567", "user": "", "password": ""}
}}`)
	writeFile(t, dir, "columns.json", `{"config": {"default": ["hostname", "check"]}}`)
	path := writeFile(t, dir, "fleximon.yaml", "title: Test\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Environments) != 1 || cfg.Environments[0].Name != "prod" {
		t.Errorf("Environments = %+v", cfg.Environments)
	}
	if len(cfg.Columns) != 2 || cfg.Columns[1] != "check" {
		t.Errorf("Columns = %v", cfg.Columns)
	}
}

func TestLoad_MissingSourceFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "columns.json", `{"config": {"default": ["hostname"]}}`)
	path := writeFile(t, dir, "fleximon.yaml", "")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected error for missing environments file")
	}
	if !strings.Contains(err.Error(), "environments file") {
		t.Errorf("error = %v", err)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		baseDir string
		path    string
		want    string
	}{
		{"/etc/fleximon", "environments.json", "/etc/fleximon/environments.json"},
		{"/etc/fleximon", "/srv/envs.json", "/srv/envs.json"},
		{"", "environments.json", "environments.json"},
	}

	for _, tt := range tests {
		if got := resolvePath(tt.baseDir, tt.path); got != tt.want {
			t.Errorf("resolvePath(%q, %q) = %q, want %q", tt.baseDir, tt.path, got, tt.want)
		}
	}
}
