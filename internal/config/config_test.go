// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default configuration must validate: %v", err)
	}
	if cfg.Scheduler.ProbingInterval != time.Hour {
		t.Errorf("expected 1h probing interval default, got %s", cfg.Scheduler.ProbingInterval)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "archivus.yaml")
	content := `
database:
  path: /var/lib/archivus/records.db
scheduler:
  retry_backoff: 15m
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Path != "/var/lib/archivus/records.db" {
		t.Errorf("file override not applied: %s", cfg.Database.Path)
	}
	if cfg.Scheduler.RetryBackoff != 15*time.Minute {
		t.Errorf("expected 15m retry backoff, got %s", cfg.Scheduler.RetryBackoff)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
	// Unset values keep their defaults.
	if cfg.Scheduler.ProbingInterval != time.Hour {
		t.Errorf("expected default probing interval, got %s", cfg.Scheduler.ProbingInterval)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("ARCHIVUS_DATABASE_PATH", "/env/records.db")
	t.Setenv("ARCHIVUS_LOGGING_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Path != "/env/records.db" {
		t.Errorf("env override not applied: %s", cfg.Database.Path)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("env override not applied: %s", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadLevel(t *testing.T) {
	cfg := defaultConfig()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for bad log level")
	}
}

func TestValidateRejectsBadWebhook(t *testing.T) {
	cfg := defaultConfig()
	cfg.Notify.WebhookURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for bad webhook URL")
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ARCHIVUS_DATABASE_PATH", "database.path"},
		{"ARCHIVUS_DATABASE_SETTINGS_PATH", "database.settings_path"},
		{"ARCHIVUS_SCHEDULER_RETRY_BACKOFF", "scheduler.retry_backoff"},
		{"ARCHIVUS_LOGGING_LEVEL", "logging.level"},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
