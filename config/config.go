// Package config provides YAML configuration parsing for Fleximon.
//
// This package enables running Fleximon as a standalone binary with
// configuration files, as an alternative to the programmatic SDK approach.
// Three files are involved:
//
// The main configuration (optional; every field has a default):
//
//	title: Sensu Overview
//	port: 8080
//	poll_interval: 60s
//	max_concurrency: 10
//	fetch_timeout: 10s
//	environments_file: environments.json
//	columns_file: columns.json
//	column_set: default
//	kafka:
//	  brokers: [kafka-1:9092]
//	  topic: sensu-dashboard
//
// The environments file, JSON or YAML, keyed by environment name. Key order
// is the polling order:
//
//	{"config": {
//	  "prod":    {"host": "sensu.prod", "port": "4567", "user": "admin", "password": "${SENSU_PROD_PASSWORD}"},
//	  "staging": {"host": "sensu.staging", "port": "4567", "user": "", "password": "", "path": "/sensu"}
//	}}
//
// The columns file, holding one or more named column sets:
//
//	{"config": {"default": ["hostname", "check", "output", "team", "category"]}}
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// minPollInterval prevents accidental hammering of the monitoring APIs.
	minPollInterval = 1 * time.Second

	defaultPort             = 8080
	defaultPollInterval     = 60 * time.Second
	defaultMaxConcurrency   = 10
	defaultEnvironmentsFile = "environments.json"
	defaultColumnsFile      = "columns.json"
	defaultColumnSet        = "default"
)

// Config is the root configuration structure for Fleximon.
//
// The scalar fields map directly to the main YAML file. Environments and
// Columns are filled from the files it references by [Load] or
// [Config.LoadSources].
type Config struct {
	// Title is the dashboard title. Defaults to "Fleximon" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// PollInterval is the time between ticks. Defaults to 60s.
	PollInterval Duration `yaml:"poll_interval"`

	// Schedule is an optional cron expression that replaces PollInterval.
	Schedule string `yaml:"schedule"`

	// MaxConcurrency caps simultaneous environment fetches. Defaults to 10.
	MaxConcurrency int `yaml:"max_concurrency"`

	// FetchTimeout is the default per-environment request timeout.
	// Environments may override it. Defaults to the SDK default (10s).
	FetchTimeout Duration `yaml:"fetch_timeout"`

	// EnvironmentsFile is the path of the environments file, relative to
	// the main configuration file. Defaults to environments.json.
	EnvironmentsFile string `yaml:"environments_file"`

	// ColumnsFile is the path of the columns file, relative to the main
	// configuration file. Defaults to columns.json.
	ColumnsFile string `yaml:"columns_file"`

	// ColumnSet selects the column list within the columns file.
	// Defaults to "default".
	ColumnSet string `yaml:"column_set"`

	// AllowedOrigins lists extra browser origins allowed to read /api.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Kafka enables forwarding every update to a Kafka topic.
	Kafka KafkaConfig `yaml:"kafka"`

	// Environments are the environments to poll, in file order.
	Environments []EnvironmentConfig `yaml:"-"`

	// Columns are the table columns of the selected column set.
	Columns []string `yaml:"-"`
}

// KafkaConfig configures the optional Kafka sink.
type KafkaConfig struct {
	// Brokers are host:port addresses. The sink is disabled when empty.
	Brokers []string `yaml:"brokers"`

	// Topic receives one message per update.
	Topic string `yaml:"topic"`
}

// Enabled reports whether the Kafka sink is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads the main configuration file and the environments and columns
// files it references.
//
// Returns an error if any file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if err := cfg.LoadSources(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration holding only defaults, as used when no
// main configuration file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Parse parses the main YAML configuration data.
//
// Defaults are applied for every unset field. The environments and columns
// files are not read; see [Config.LoadSources].
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.PollInterval == 0 {
		c.PollInterval = Duration(defaultPollInterval)
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = defaultMaxConcurrency
	}
	if c.EnvironmentsFile == "" {
		c.EnvironmentsFile = defaultEnvironmentsFile
	}
	if c.ColumnsFile == "" {
		c.ColumnsFile = defaultColumnsFile
	}
	if c.ColumnSet == "" {
		c.ColumnSet = defaultColumnSet
	}
}

// validate checks the main configuration fields.
func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency cannot be negative, got %d", c.MaxConcurrency)
	}
	if c.FetchTimeout.Duration() < 0 {
		return fmt.Errorf("fetch_timeout cannot be negative, got %s", c.FetchTimeout.Duration())
	}
	if c.Kafka.Enabled() && strings.TrimSpace(c.Kafka.Topic) == "" {
		return errors.New("kafka: topic is required when brokers are set")
	}
	return nil
}

// LoadSources reads the environments and columns files, resolving relative
// paths against baseDir.
func (c *Config) LoadSources(baseDir string) error {
	envs, err := LoadEnvironments(resolvePath(baseDir, c.EnvironmentsFile))
	if err != nil {
		return err
	}

	columns, err := LoadColumns(resolvePath(baseDir, c.ColumnsFile), c.ColumnSet)
	if err != nil {
		return err
	}

	c.Environments = envs
	c.Columns = columns
	return nil
}

// resolvePath joins a relative path onto baseDir.
func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
