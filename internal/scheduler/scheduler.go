// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

/*
scheduler.go - Export Job Scheduling Policy

A periodic export job moves through three states:

	UNSCHEDULED -> PROBING -> STEADY

A newly configured destination has no successful export yet, so the job is
scheduled with a short probing interval and IsFirstExport set. The first
successful run reschedules onto the steady-state interval of the configured
period. Setting the period to zero cancels the job. A failed run leaves the
schedule unchanged; the runner's retry backoff decides when to try again.
*/

//nolint:staticcheck // File documentation, not package doc
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/archivus/internal/export"
	"github.com/tomtom215/archivus/internal/logging"
	"github.com/tomtom215/archivus/internal/settings"
)

// Scheduler owns the export job schedule.
type Scheduler struct {
	jobs            *JobStore
	settings        *settings.Store
	export          *export.Manager
	probingInterval time.Duration

	// now is injectable for deterministic tests.
	now func() time.Time
}

// NewScheduler creates a scheduler for periodic exports.
func NewScheduler(jobs *JobStore, prefs *settings.Store, exportMgr *export.Manager, probingInterval time.Duration) *Scheduler {
	return &Scheduler{
		jobs:            jobs,
		settings:        prefs,
		export:          exportMgr,
		probingInterval: probingInterval,
		now:             time.Now,
	}
}

// SchedulePeriodicExportJob replaces the export schedule according to the
// given settings. The namespace is cancelled first, so at most one export
// job ever exists. A zero period only cancels.
func (s *Scheduler) SchedulePeriodicExportJob(cfg settings.ExportSettings) error {
	if err := s.jobs.CancelNamespace(ExportImportNamespace); err != nil {
		return err
	}
	if !cfg.Enabled() {
		logging.Info().Msg("Periodic export disabled, schedule cancelled")
		return nil
	}

	interval := time.Duration(cfg.PeriodDays) * 24 * time.Hour
	first := s.firstExportPending(cfg)
	if first {
		interval = s.probingInterval
	}

	job := Job{
		ID:            uuid.NewString(),
		Namespace:     ExportImportNamespace,
		Interval:      interval,
		NextRun:       s.now().Add(interval),
		IsFirstExport: first,
	}
	if err := s.jobs.Schedule(job); err != nil {
		return err
	}

	logging.Info().
		Str("job_id", job.ID).
		Dur("interval", interval).
		Bool("is_first_export", first).
		Msg("Periodic export scheduled")
	return nil
}

// SchedulePeriodicJobIfNotScheduled schedules the export job unless one is
// already pending. Used on boot so restarts never clobber a live schedule.
func (s *Scheduler) SchedulePeriodicJobIfNotScheduled(cfg settings.ExportSettings) error {
	if !cfg.Enabled() {
		return s.jobs.CancelNamespace(ExportImportNamespace)
	}
	if len(s.jobs.PendingJobs(ExportImportNamespace)) > 0 {
		return nil
	}
	return s.SchedulePeriodicExportJob(cfg)
}

// Execute runs one export job and reports success. After the first
// successful export the probing job is replaced by a steady-state one.
//
// Execute implements the runner's Executor interface for the export
// namespace.
func (s *Scheduler) Execute(ctx context.Context, job Job) bool {
	cfg := s.settings.ExportSettings()
	if !cfg.Enabled() {
		return true
	}

	ok := s.export.RunExport(ctx)
	if ok && job.IsFirstExport {
		if err := s.SchedulePeriodicExportJob(cfg); err != nil {
			logging.Error().Err(err).Msg("Failed to reschedule after first export")
		}
	}
	return ok
}

// firstExportPending reports whether the configured destination has no
// successful export recorded yet.
func (s *Scheduler) firstExportPending(cfg settings.ExportSettings) bool {
	status := s.settings.ExportStatus()
	if status.LastSuccessfulExportTime == nil {
		return true
	}
	return status.LastExportDestination != cfg.DestinationURI
}
