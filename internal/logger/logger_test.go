package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abhisek/wordcraft/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordcraft.log")
	cfg := &config.Config{Env: "production", Log: config.Log{Level: "info", File: path}}

	log, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("hidden")
	log.Info("session loaded")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("log lines = %d, want 1 (debug filtered): %q", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("production output is not JSON: %v", err)
	}
	if entry["msg"] != "session loaded" {
		t.Errorf("msg = %v", entry["msg"])
	}
}

func TestNewDevelopmentConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.log")
	cfg := &config.Config{Env: "local", Log: config.Log{Level: "debug", File: path}}

	log, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("queue advanced")
	_ = log.Sync()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "queue advanced") {
		t.Errorf("debug line missing: %q", data)
	}
	if json.Valid(data) {
		t.Error("development output should be console, not JSON")
	}
}

func TestNewBadLevel(t *testing.T) {
	cfg := &config.Config{Log: config.Log{Level: "loud"}}
	if _, err := New(cfg); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestForTUINop(t *testing.T) {
	log, err := ForTUI(&config.Config{Log: config.Log{Level: "info"}})
	if err != nil {
		t.Fatal(err)
	}
	if log.Core().Enabled(0) {
		t.Error("expected a no-op logger without a log file")
	}
}
