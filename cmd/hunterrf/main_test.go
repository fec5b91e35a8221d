package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/hunter-rf-core/internal/history"
	"github.com/nerrad567/hunter-rf-core/internal/infrastructure/database"
	"github.com/nerrad567/hunter-rf-core/internal/infrastructure/logging"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("HUNTERRF_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies run fails when database path is empty.
func TestRun_MissingDatabasePath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
receiver:
  id: test-receiver

database:
  path: ""
  wal_mode: true
  busy_timeout: 5

mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
    client_id: "test-client"
    tls: false
  qos: 1
  reconnect:
    initial_delay: 1
    max_delay: 60

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("HUNTERRF_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestRun_InvalidRevision verifies run fails when the decoder revision is unknown.
func TestRun_InvalidRevision(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
receiver:
  id: test-receiver

decoder:
  revision: "C"

database:
  path: "` + filepath.Join(tmpDir, "test.db") + `"
  wal_mode: true
  busy_timeout: 5

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("HUNTERRF_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with unknown decoder revision")
	}
}

// TestPruneHistory verifies the retention sweep removes only events
// outside the retention window.
func TestPruneHistory(t *testing.T) {
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	repo := history.NewSQLiteRepository(db.DB)

	now := time.Now().UTC()
	events := []*history.Event{
		{ReceivedAt: now.AddDate(0, 0, -120), Model: "Hunter", RemoteID: "0102030405", Command: 4},
		{ReceivedAt: now.AddDate(0, 0, -91), Model: "Hunter", RemoteID: "0102030405", Command: 98},
		{ReceivedAt: now.AddDate(0, 0, -1), Model: "Hunter", RemoteID: "0102030405", Command: 138},
		{ReceivedAt: now, Model: "Hunter", RemoteID: "AABBCCDDEE", Command: 266},
	}
	for _, e := range events {
		if err := repo.Insert(ctx, e); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	pruneHistory(ctx, repo, 90, logging.Default())

	counts, err := repo.CountByRemote(ctx)
	if err != nil {
		t.Fatalf("CountByRemote() error = %v", err)
	}
	if counts["0102030405"] != 1 {
		t.Errorf("events for 0102030405 = %d, want 1 (recent only)", counts["0102030405"])
	}
	if counts["AABBCCDDEE"] != 1 {
		t.Errorf("events for AABBCCDDEE = %d, want 1", counts["AABBCCDDEE"])
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("HUNTERRF_CONFIG", "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("HUNTERRF_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}
