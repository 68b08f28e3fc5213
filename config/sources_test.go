package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseEnvironments_PreservesOrder(t *testing.T) {
	data := `{"config": {
	"zeta":  {"host": "z.example", "port": "4567", "user": "", "password": ""},
	"alpha": {"host": "a.example", "port": "4567", "user": "", "password": ""},
	"mid":   {"host": "m.example", "port": "4567", "user": "", "password": ""}
}}`

	envs, err := ParseEnvironments([]byte(data))
	if err != nil {
		t.Fatalf("ParseEnvironments() error = %v", err)
	}

	want := []string{"zeta", "alpha", "mid"}
	if len(envs) != len(want) {
		t.Fatalf("len(envs) = %d, want %d", len(envs), len(want))
	}
	for i, name := range want {
		if envs[i].Name != name {
			t.Errorf("envs[%d].Name = %q, want %q", i, envs[i].Name, name)
		}
	}
}

func TestParseEnvironments_AllFields(t *testing.T) {
	data := `{"config": {"prod": {
		"host": "sensu.prod", "port": "4567",
		"user": "admin", "password": "secret",
		"path": "/sensu", "timeout": "3s"
	}}}`

	envs, err := ParseEnvironments([]byte(data))
	if err != nil {
		t.Fatalf("ParseEnvironments() error = %v", err)
	}

	got := envs[0]
	if got.Host != "sensu.prod" || got.Port != "4567" {
		t.Errorf("host/port = %q/%q", got.Host, got.Port)
	}
	if got.User != "admin" || got.Password != "secret" {
		t.Errorf("credentials = %q/%q", got.User, got.Password)
	}
	if got.Path != "/sensu" {
		t.Errorf("Path = %q", got.Path)
	}
	if got.Timeout.Duration() != 3*time.Second {
		t.Errorf("Timeout = %v", got.Timeout.Duration())
	}
}

func TestParseEnvironments_YAMLAndNumericPort(t *testing.T) {
	data := `
config:
  prod:
    host: sensu.prod
    port: 4567
`
	envs, err := ParseEnvironments([]byte(data))
	if err != nil {
		t.Fatalf("ParseEnvironments() error = %v", err)
	}
	if envs[0].Port != "4567" {
		t.Errorf("Port = %q, want 4567", envs[0].Port)
	}
}

func TestParseEnvironments_EnvExpansion(t *testing.T) {
	t.Setenv("FLEXIMON_TEST_PASSWORD", "s3cret")

	data := `{"config": {"prod": {
		"host": "${FLEXIMON_TEST_HOST:-sensu.default}",
		"port": "4567",
		"user": "admin",
		"password": "${FLEXIMON_TEST_PASSWORD}"
	}}}`

	envs, err := ParseEnvironments([]byte(data))
	if err != nil {
		t.Fatalf("ParseEnvironments() error = %v", err)
	}
	if envs[0].Host != "sensu.default" {
		t.Errorf("Host = %q, want default", envs[0].Host)
	}
	if envs[0].Password != "s3cret" {
		t.Errorf("Password = %q, want expanded value", envs[0].Password)
	}
}

func TestParseEnvironments_Empty(t *testing.T) {
	for _, data := range []string{`{"config": {}}`, "config:\n"} {
		envs, err := ParseEnvironments([]byte(data))
		if err != nil {
			t.Fatalf("ParseEnvironments(%q) error = %v", data, err)
		}
		if len(envs) != 0 {
			t.Errorf("ParseEnvironments(%q) = %d envs, want 0", data, len(envs))
		}
	}
}

func TestParseEnvironments_Errors(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantErrLike string
	}{
		{name: "empty file", data: ``, wantErrLike: "file is empty"},
		{name: "not a mapping", data: `[1, 2]`, wantErrLike: "top level must be a mapping"},
		{name: "missing config key", data: `{"envs": {}}`, wantErrLike: `missing "config" key`},
		{name: "config is a list", data: `{"config": []}`, wantErrLike: "must be a mapping"},
		{name: "missing host", data: `{"config": {"prod": {"port": "4567"}}}`, wantErrLike: "host is required"},
		{name: "missing port", data: `{"config": {"prod": {"host": "h"}}}`, wantErrLike: "port is required"},
		{name: "relative path", data: `{"config": {"prod": {"host": "h", "port": "1", "path": "sensu"}}}`, wantErrLike: "path must start with /"},
		{name: "unset variable", data: `{"config": {"prod": {"host": "${FLEXIMON_TEST_UNSET}", "port": "1"}}}`, wantErrLike: "not set"},
		{name: "duplicate name", data: "config:\n  prod: {host: a, port: '1'}\n  prod: {host: b, port: '1'}\n", wantErrLike: "duplicate"},
		{name: "malformed", data: `{"config": {`, wantErrLike: "failed to parse environments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEnvironments([]byte(tt.data))
			if err == nil {
				t.Fatal("ParseEnvironments() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErrLike) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.wantErrLike)
			}
		})
	}
}

func TestParseColumns(t *testing.T) {
	data := `{"config": {
	"default": ["hostname", "check", "output"],
	"ops": [" team ", "hostname"]
}}`

	tests := []struct {
		set     string
		want    []string
		wantErr bool
	}{
		{set: "default", want: []string{"hostname", "check", "output"}},
		{set: "ops", want: []string{"team", "hostname"}},
		{set: "missing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.set, func(t *testing.T) {
			got, err := ParseColumns([]byte(data), tt.set)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColumns() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !strings.Contains(err.Error(), "available: default, ops") {
					t.Errorf("error should list available sets, got %v", err)
				}
				return
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("ParseColumns() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseColumns_KeepsUnknownNames(t *testing.T) {
	got, err := ParseColumns([]byte(`{"config": {"default": ["hostname", "region"]}}`), "default")
	if err != nil {
		t.Fatalf("ParseColumns() error = %v", err)
	}
	if len(got) != 2 || got[1] != "region" {
		t.Errorf("ParseColumns() = %v, want unknown names kept", got)
	}
}

func TestParseColumns_EmptySet(t *testing.T) {
	got, err := ParseColumns([]byte(`{"config": {"default": []}}`), "default")
	if err != nil {
		t.Fatalf("ParseColumns() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ParseColumns() = %#v, want empty non-nil", got)
	}
}

func TestParseColumns_MissingConfigKey(t *testing.T) {
	_, err := ParseColumns([]byte(`{"default": ["hostname"]}`), "default")
	if err == nil {
		t.Fatal("ParseColumns() expected error for missing config key")
	}
}

func TestDetab(t *testing.T) {
	json := []byte("{\n\t\"config\": {}\n}")
	if got := string(detab(json)); strings.Contains(got, "\t") {
		t.Errorf("detab() left tabs in JSON: %q", got)
	}

	yaml := []byte("config:\n  a: \"x\ty\"\n")
	if got := string(detab(yaml)); got != string(yaml) {
		t.Errorf("detab() modified non-JSON input: %q", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("FLEXIMON_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("FLEXIMON_TEST_DOTENV") })

	if err := LoadDotEnv(path, true); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("FLEXIMON_TEST_DOTENV"); got != "from-file" {
		t.Errorf("FLEXIMON_TEST_DOTENV = %q, want from-file", got)
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("FLEXIMON_TEST_KEEP=from-file\n"), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Setenv("FLEXIMON_TEST_KEEP", "from-env")

	if err := LoadDotEnv(path, true); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("FLEXIMON_TEST_KEEP"); got != "from-env" {
		t.Errorf("FLEXIMON_TEST_KEEP = %q, want existing value kept", got)
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), ".env")

	if err := LoadDotEnv(missing, false); err != nil {
		t.Errorf("LoadDotEnv(optional) error = %v, want nil", err)
	}
	if err := LoadDotEnv(missing, true); err == nil {
		t.Error("LoadDotEnv(required) expected error for missing file")
	}
}
