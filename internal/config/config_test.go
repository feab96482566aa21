package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "imperfectcoach"
  user: "coach"
  password: "secret"
  sslmode: "disable"
auth:
  api_key: "test-key-123"
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all fields populated.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "imperfectcoach" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "imperfectcoach")
	}
	if cfg.Auth.APIKey != "test-key-123" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "test-key-123")
	}
}

// TestEnvOverride verifies that COACH_ env vars take precedence over
// YAML values, so production deployments can override via environment.
func TestEnvOverride(t *testing.T) {
	t.Setenv("COACH_DB_HOST", "override-host")
	t.Setenv("COACH_DB_PORT", "9999")
	t.Setenv("COACH_AUTH_API_KEY", "env-key")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "override-host" {
		t.Errorf("database.host = %q, want %q", cfg.Database.Host, "override-host")
	}
	if cfg.Database.Port != 9999 {
		t.Errorf("database.port = %d, want 9999", cfg.Database.Port)
	}
	if cfg.Auth.APIKey != "env-key" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "env-key")
	}
	if cfg.Database.Name != "imperfectcoach" {
		t.Errorf("database.name = %q, want yaml value preserved", cfg.Database.Name)
	}
}

// TestValidation rejects configs missing required fields.
func TestValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing port", "server:\n  host: x\ndatabase:\n  host: h\n  port: 5432\n  name: n\n  user: u\nauth:\n  api_key: k\n"},
		{"missing db host", "server:\n  port: 8080\ndatabase:\n  port: 5432\n  name: n\n  user: u\nauth:\n  api_key: k\n"},
		{"missing api key", "server:\n  port: 8080\ndatabase:\n  host: h\n  port: 5432\n  name: n\n  user: u\n"},
	}
	for _, tc := range cases {
		if _, err := Load(writeTemp(t, tc.yaml)); err == nil {
			t.Errorf("%s: want validation error", tc.name)
		}
	}
}

// TestDSN verifies connection string assembly and the sslmode default.
func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "coach", User: "u", Password: "p"}
	want := "postgres://u:p@db:5432/coach?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
