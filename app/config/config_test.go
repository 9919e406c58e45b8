package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STOCKDESK_CONFIG_DIR", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Backend.Mode != ModeLocal {
		t.Errorf("Mode = %q, want local default", cfg.Backend.Mode)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q", cfg.Logging.Level)
	}
	if cfg.UserID == "" {
		t.Error("UserID default missing")
	}
}

func TestSaveLoadRoundTripEncryptsServiceKey(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STOCKDESK_CONFIG_DIR", dir)

	cfg := defaultConfig()
	cfg.Backend.Mode = ModeRest
	cfg.Backend.RestURL = "https://api.example.com"
	cfg.Backend.ServiceKey = "plain-secret"
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	// The stored file must not contain the plaintext key.
	raw, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var onDisk AppConfig
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if onDisk.Backend.ServiceKey == "plain-secret" || onDisk.Backend.ServiceKey == "" {
		t.Errorf("stored service key = %q, want ciphertext", onDisk.Backend.ServiceKey)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Backend.ServiceKey != "plain-secret" {
		t.Errorf("loaded key = %q, want decrypted plaintext", loaded.Backend.ServiceKey)
	}
	if loaded.Backend.RestURL != "https://api.example.com" {
		t.Errorf("RestURL = %q", loaded.Backend.RestURL)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STOCKDESK_CONFIG_DIR", t.TempDir())
	t.Setenv("STOCKDESK_BACKEND_MODE", ModeRest)
	t.Setenv("STOCKDESK_REST_URL", "https://override.example.com")
	t.Setenv("STOCKDESK_SERVICE_KEY", "env-key")
	t.Setenv("STOCKDESK_REALTIME_URL", "wss://feed.example.com")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Backend.Mode != ModeRest || cfg.Backend.RestURL != "https://override.example.com" {
		t.Errorf("backend = %+v", cfg.Backend)
	}
	if cfg.Realtime.URL != "wss://feed.example.com" || !cfg.Realtime.Enabled {
		t.Errorf("realtime = %+v", cfg.Realtime)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, Database: "stock", Username: "u", Password: "p", SSLMode: "disable"}
	want := "host=db port=5433 user=u password=p dbname=stock sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
