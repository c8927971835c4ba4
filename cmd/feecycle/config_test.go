package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return file
}

func TestLoadConfig(t *testing.T) {
	file := writeConfig(t, `
[Ledger]
DataDir = "/var/lib/feecycle"
StateCache = 64

[API]
Port = 9100

[Worker]
Node = "http://ledger:9100"
SeenCacheSize = 16
`)
	cfg := defaultConfig()
	if err := loadConfig(file, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Ledger.DataDir != "/var/lib/feecycle" || cfg.Ledger.StateCache != 64 {
		t.Fatalf("ledger config not applied: %+v", cfg.Ledger)
	}
	if cfg.API.Port != 9100 || cfg.API.Host != "127.0.0.1" {
		t.Fatalf("api config: %+v", cfg.API)
	}
	if cfg.Worker.Node != "http://ledger:9100" || cfg.Worker.SeenCacheSize != 16 {
		t.Fatalf("worker config: %+v", cfg.Worker)
	}
	if cfg.Worker.PollBurst != 1 {
		t.Fatalf("unset field lost its default: %d", cfg.Worker.PollBurst)
	}
}

func TestLoadConfigUnknownField(t *testing.T) {
	file := writeConfig(t, "[Ledger]\nNoSuchField = 1\n")
	cfg := defaultConfig()
	err := loadConfig(file, &cfg)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !strings.Contains(err.Error(), "NoSuchField") {
		t.Fatalf("unexpected error: %v", err)
	}
}
