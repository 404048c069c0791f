// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

// Package config loads daemon configuration from layered sources
// (defaults < YAML file < environment) using koanf v2.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the full daemon configuration.
type Config struct {
	Database  DatabaseConfig  `koanf:"database" validate:"required"`
	Staging   StagingConfig   `koanf:"staging"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Server    ServerConfig    `koanf:"server"`
	Notify    NotifyConfig    `koanf:"notify"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DatabaseConfig locates the record store and its companion state files.
type DatabaseConfig struct {
	// Path is the record store database file.
	Path string `koanf:"path" validate:"required"`

	// SettingsPath is the preference store file holding export/import
	// settings and status.
	SettingsPath string `koanf:"settings_path" validate:"required"`

	// JobsPath is the persisted job store file.
	JobsPath string `koanf:"jobs_path" validate:"required"`
}

// StagingConfig controls the private staging area used by export/import.
type StagingConfig struct {
	// Dir holds staging snapshots and archives. Created on startup.
	Dir string `koanf:"dir" validate:"required"`
}

// SchedulerConfig tunes the host job runner.
type SchedulerConfig struct {
	// ProbingInterval is the schedule used before the first export ever
	// succeeds for a destination.
	ProbingInterval time.Duration `koanf:"probing_interval" validate:"gt=0"`

	// RetryBackoff is how long the runner waits before re-firing a job
	// whose execution failed.
	RetryBackoff time.Duration `koanf:"retry_backoff" validate:"gt=0"`

	// PollInterval is how often the runner checks for due jobs.
	PollInterval time.Duration `koanf:"poll_interval" validate:"gt=0"`
}

// ServerConfig configures the ops HTTP surface.
type ServerConfig struct {
	// Enabled turns the ops HTTP server on.
	Enabled bool `koanf:"enabled"`

	Host string `koanf:"host"`
	Port int    `koanf:"port" validate:"min=0,max=65535"`
}

// NotifyConfig selects the notification delivery channel.
type NotifyConfig struct {
	// WebhookURL, when set, delivers notifications by HTTP POST.
	// Empty means notifications go to the structured log.
	WebhookURL string `koanf:"webhook_url" validate:"omitempty,url"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// defaultConfig returns the built-in defaults, overridden by file and env.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         "/data/archivus/records.db",
			SettingsPath: "/data/archivus/settings.json",
			JobsPath:     "/data/archivus/jobs.json",
		},
		Staging: StagingConfig{
			Dir: "/data/archivus/staging",
		},
		Scheduler: SchedulerConfig{
			ProbingInterval: time.Hour,
			RetryBackoff:    30 * time.Minute,
			PollInterval:    time.Minute,
		},
		Server: ServerConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8379,
		},
		Notify: NotifyConfig{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
