package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
jwt:
  secret: s3cret
notifications:
  read_retention: 48h
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.JWT.Secret != "s3cret" {
		t.Errorf("Expected secret s3cret, got %s", cfg.JWT.Secret)
	}
	if cfg.Notifications.ReadRetention != 48*time.Hour {
		t.Errorf("Expected retention 48h, got %v", cfg.Notifications.ReadRetention)
	}
	if cfg.Notifications.PageSize != 50 {
		t.Errorf("Expected default page size 50, got %d", cfg.Notifications.PageSize)
	}
	if cfg.JWT.AccessTokenTTL != 15*time.Minute {
		t.Errorf("Expected default access TTL 15m, got %v", cfg.JWT.AccessTokenTTL)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: info\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected env override debug, got %s", cfg.Logging.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}
