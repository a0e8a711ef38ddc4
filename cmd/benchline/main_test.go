package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

// writeStationFixture writes a minimal config and environment document pair
// into dir and returns the config path.
func writeStationFixture(t *testing.T, dir string, port int) string {
	t.Helper()

	envPath := filepath.Join(dir, "environment.json")
	envContent := `{
  "version": "1.1",
  "environment_def": {
    "board": {
      "model": "debian",
      "software": {
        "load_image": "images/debian-12.img"
      }
    }
  }
}`
	if err := os.WriteFile(envPath, []byte(envContent), 0600); err != nil {
		t.Fatalf("failed to write environment document: %v", err)
	}

	configPath := filepath.Join(dir, "test-config.yaml")
	configContent := `
station:
  id: test-station
  mirror: "http://mirror.test/"

environment:
  path: "` + envPath + `"

devices:
  - name: host-1
    model: debian
    options:
      ipaddr: "10.0.0.5"

events:
  enabled: false

telemetry:
  enabled: false

api:
  host: "127.0.0.1"
  port: ` + strconv.Itoa(port) + `
  timeouts:
    read: 30
    write: 60
    idle: 120

logging:
  level: info
  format: text
  output: stdout

security:
  jwt:
    secret: "test-secret-for-development-only-1234"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("BENCHLINE_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingEnvironmentDocument verifies run fails when the declared
// environment document does not exist.
func TestRun_MissingEnvironmentDocument(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
station:
  id: test-station

environment:
  path: "` + filepath.Join(tmpDir, "missing.json") + `"

events:
  enabled: false

telemetry:
  enabled: false

logging:
  level: info
  format: text
  output: stdout

security:
  jwt:
    secret: "test-secret-for-development-only-1234"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("BENCHLINE_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail when the environment document is missing")
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("BENCHLINE_CONFIG", "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("BENCHLINE_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestRun_StartupAndShutdown tests full startup with the event bus and
// telemetry disabled, then a clean shutdown via context cancellation.
func TestRun_StartupAndShutdown(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeStationFixture(t, tmpDir, 18090)
	t.Setenv("BENCHLINE_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() returned error: %v", err)
	}
}

// TestRun_BadDeviceConfig verifies a device that fails composition aborts
// startup.
func TestRun_BadDeviceConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeStationFixture(t, tmpDir, 18091)

	// Rewrite the devices section with a model nothing claims.
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	content := strings.Replace(string(data), "model: debian", "model: no_such_model", 1)
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("rewriting fixture: %v", err)
	}
	t.Setenv("BENCHLINE_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail when a declared device cannot be composed")
	}
}
