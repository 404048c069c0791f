// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

// Package main is the entry point for the Archivus daemon.
//
// Archivus keeps a single-file record store backed up: it snapshots the
// database on a schedule, packages the snapshot as a single-entry zip
// archive at a user-chosen destination, and restores from such archives
// on demand.
//
// Startup order:
//
//  1. Configuration: defaults, optional YAML file, ARCHIVUS_* environment
//  2. Logging: global zerolog logger
//  3. Database: open the record store and apply schema migrations
//  4. State: settings store and persisted job store
//  5. Managers: export, import, scheduler
//  6. Supervision: job runner and ops API under a suture root
//
// The process exits on SIGINT/SIGTERM after a graceful shutdown.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/tomtom215/archivus/internal/api"
	"github.com/tomtom215/archivus/internal/audit"
	"github.com/tomtom215/archivus/internal/config"
	"github.com/tomtom215/archivus/internal/database"
	"github.com/tomtom215/archivus/internal/export"
	dataimport "github.com/tomtom215/archivus/internal/import"
	"github.com/tomtom215/archivus/internal/logging"
	"github.com/tomtom215/archivus/internal/notify"
	"github.com/tomtom215/archivus/internal/scheduler"
	"github.com/tomtom215/archivus/internal/settings"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Archivus exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	logging.Info().Msg("Archivus starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck // Best effort cleanup
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	prefs, err := settings.NewStore(cfg.Database.SettingsPath)
	if err != nil {
		return err
	}

	jobs, err := scheduler.NewJobStore(cfg.Database.JobsPath)
	if err != nil {
		return err
	}

	var sender notify.Sender = notify.LogSender{}
	if cfg.Notify.WebhookURL != "" {
		sender = notify.NewWebhookSender(cfg.Notify.WebhookURL)
	}

	auditLog := audit.NewLogger(store.DB())
	exportMgr := export.NewManager(store, prefs, auditLog, cfg.Staging.Dir)
	importMgr := dataimport.NewManager(store, prefs, sender, auditLog, cfg.Staging.Dir)
	sch := scheduler.NewScheduler(jobs, prefs, exportMgr, cfg.Scheduler.ProbingInterval)

	// A schedule persisted before the restart wins over re-deriving one.
	if err := sch.SchedulePeriodicJobIfNotScheduled(prefs.ExportSettings()); err != nil {
		return err
	}

	runner := scheduler.NewRunner(jobs, cfg.Scheduler.PollInterval, cfg.Scheduler.RetryBackoff)
	runner.Register(scheduler.ExportImportNamespace, sch)

	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger()}
	root := suture.New("archivus", suture.Spec{EventHook: handler.MustHook()})
	root.Add(runner)

	if cfg.Server.Enabled {
		root.Add(api.NewServer(cfg.Server.Host, cfg.Server.Port, api.NewHandlers(prefs, exportMgr, importMgr, sch)))
	}

	err = root.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		logging.Info().Msg("Archivus stopped")
		return nil
	}
	return err
}
