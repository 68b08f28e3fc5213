package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// rootKey is the top-level key of the environments and columns files.
const rootKey = "config"

// EnvironmentConfig defines one monitoring API instance to poll.
type EnvironmentConfig struct {
	// Name is the key of the entry in the environments file.
	Name string `yaml:"-"`

	// Host is the API hostname or IP address.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	Host string `yaml:"host"`

	// Port is the API port, as a string or a number.
	Port string `yaml:"port"`

	// User and Password enable basic authentication when both are set.
	// Both support environment variable substitution.
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// Path is an optional prefix inserted before /events.
	Path string `yaml:"path"`

	// Timeout overrides the global fetch_timeout for this environment.
	Timeout Duration `yaml:"timeout"`
}

// LoadEnvironments reads and parses an environments file.
func LoadEnvironments(path string) ([]EnvironmentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read environments file: %w", err)
	}
	return ParseEnvironments(data)
}

// ParseEnvironments parses environments data, JSON or YAML.
//
// Entries are returned in file order, which is the polling order and hence
// the row order of the dashboard table. Environment variables are expanded
// in host, port, user, password and path.
func ParseEnvironments(data []byte) ([]EnvironmentConfig, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(detab(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse environments: %w", err)
	}

	entries, err := configMapping(&doc)
	if err != nil {
		return nil, fmt.Errorf("environments: %w", err)
	}

	envs := make([]EnvironmentConfig, 0, len(entries)/2)
	seen := make(map[string]struct{}, len(entries)/2)

	// mapping content alternates key and value nodes
	for i := 0; i+1 < len(entries); i += 2 {
		name := entries[i].Value
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("environments[%d]: name is required", i/2)
		}
		if _, exists := seen[name]; exists {
			return nil, fmt.Errorf("environments: duplicate environment %q", name)
		}
		seen[name] = struct{}{}

		var ec EnvironmentConfig
		if err := entries[i+1].Decode(&ec); err != nil {
			return nil, fmt.Errorf("environments (%s): %w", name, err)
		}
		ec.Name = name

		if err := ec.expandAndValidate(); err != nil {
			return nil, fmt.Errorf("environments (%s): %w", name, err)
		}
		envs = append(envs, ec)
	}

	return envs, nil
}

// expandAndValidate expands environment variables and validates the entry.
func (ec *EnvironmentConfig) expandAndValidate() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"host", &ec.Host},
		{"port", &ec.Port},
		{"user", &ec.User},
		{"password", &ec.Password},
		{"path", &ec.Path},
	}
	for _, f := range fields {
		expanded, err := expandEnvVars(*f.value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.value = strings.TrimSpace(expanded)
	}

	if ec.Host == "" {
		return errors.New("host is required")
	}
	if ec.Port == "" {
		return errors.New("port is required")
	}
	if ec.Path != "" && !strings.HasPrefix(ec.Path, "/") {
		return fmt.Errorf("path must start with /, got %q", ec.Path)
	}
	if ec.Timeout.Duration() < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", ec.Timeout.Duration())
	}
	return nil
}

// LoadColumns reads a columns file and returns the named column set.
func LoadColumns(path, set string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns file: %w", err)
	}
	return ParseColumns(data, set)
}

// ParseColumns parses columns data, JSON or YAML, and returns the named
// column set in configured order.
//
// Column names are not checked against the recognized set; unrecognized
// names render as empty cells.
func ParseColumns(data []byte, set string) ([]string, error) {
	var doc struct {
		Config map[string][]string `yaml:"config"`
	}
	if err := yaml.Unmarshal(detab(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse columns: %w", err)
	}
	if doc.Config == nil {
		return nil, fmt.Errorf("columns: missing %q key", rootKey)
	}

	columns, ok := doc.Config[set]
	if !ok {
		available := make([]string, 0, len(doc.Config))
		for name := range doc.Config {
			available = append(available, name)
		}
		sort.Strings(available)
		return nil, fmt.Errorf("columns: column set %q not found (available: %s)", set, strings.Join(available, ", "))
	}

	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = strings.TrimSpace(c)
	}
	return out, nil
}

// detab replaces tab indentation in JSON input, which YAML rejects. Valid
// JSON cannot hold a raw tab inside a string, so the content is unchanged.
func detab(data []byte) []byte {
	if !json.Valid(data) {
		return data
	}
	return bytes.ReplaceAll(data, []byte("\t"), []byte(" "))
}

// configMapping returns the key/value nodes under the root "config" key.
// A null or empty mapping yields no entries.
func configMapping(doc *yaml.Node) ([]*yaml.Node, error) {
	if len(doc.Content) == 0 {
		return nil, errors.New("file is empty")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("top level must be a mapping")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != rootKey {
			continue
		}
		value := root.Content[i+1]
		switch {
		case value.Kind == yaml.MappingNode:
			return value.Content, nil
		case value.ShortTag() == "!!null":
			return nil, nil
		default:
			return nil, fmt.Errorf("%q must be a mapping of environment name to settings", rootKey)
		}
	}
	return nil, fmt.Errorf("missing %q key", rootKey)
}

// LoadDotEnv loads KEY=value pairs from a dotenv file into the process
// environment so that ${VAR} references in the configuration files resolve.
// Variables already set in the environment win.
//
// A missing file is an error only when required is true.
func LoadDotEnv(path string, required bool) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
