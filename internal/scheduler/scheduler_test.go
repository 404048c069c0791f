// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/archivus/internal/audit"
	"github.com/tomtom215/archivus/internal/database"
	"github.com/tomtom215/archivus/internal/export"
	"github.com/tomtom215/archivus/internal/settings"
)

type fixture struct {
	settings  *settings.Store
	jobs      *JobStore
	scheduler *Scheduler
	destDir   string
	clock     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	store, err := database.Open(filepath.Join(dir, "records.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prefs, err := settings.NewStore(filepath.Join(dir, "settings.json"))
	if err != nil {
		t.Fatalf("settings store: %v", err)
	}

	jobs, err := NewJobStore(filepath.Join(dir, "jobs.json"))
	if err != nil {
		t.Fatalf("job store: %v", err)
	}

	exportMgr := export.NewManager(store, prefs, audit.NewLogger(store.DB()), filepath.Join(dir, "staging"))
	sch := NewScheduler(jobs, prefs, exportMgr, time.Hour)

	f := &fixture{
		settings:  prefs,
		jobs:      jobs,
		scheduler: sch,
		destDir:   t.TempDir(),
		clock:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	sch.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) configure(t *testing.T, periodDays int) settings.ExportSettings {
	t.Helper()
	cfg := settings.ExportSettings{
		DestinationURI: filepath.Join(f.destDir, "backup.zip"),
		PeriodDays:     periodDays,
	}
	if err := f.settings.SetExportSettings(cfg); err != nil {
		t.Fatalf("set settings: %v", err)
	}
	return cfg
}

func TestScheduleTwiceYieldsOneJob(t *testing.T) {
	f := newFixture(t)
	cfg := f.configure(t, 7)

	if err := f.scheduler.SchedulePeriodicExportJob(cfg); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := f.scheduler.SchedulePeriodicExportJob(cfg); err != nil {
		t.Fatalf("schedule again: %v", err)
	}

	if got := f.jobs.PendingJobs(ExportImportNamespace); len(got) != 1 {
		t.Errorf("expected exactly one pending job, got %d", len(got))
	}
}

func TestZeroPeriodCancelsAndNeverSchedules(t *testing.T) {
	f := newFixture(t)
	cfg := f.configure(t, 7)

	if err := f.scheduler.SchedulePeriodicExportJob(cfg); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	disabled := f.configure(t, 0)
	if err := f.scheduler.SchedulePeriodicExportJob(disabled); err != nil {
		t.Fatalf("schedule disabled: %v", err)
	}

	if got := f.jobs.PendingJobs(ExportImportNamespace); len(got) != 0 {
		t.Errorf("zero period must cancel, got %d jobs", len(got))
	}
}

func TestFirstExportUsesProbingInterval(t *testing.T) {
	f := newFixture(t)
	cfg := f.configure(t, 7)

	if err := f.scheduler.SchedulePeriodicExportJob(cfg); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	pending := f.jobs.PendingJobs(ExportImportNamespace)
	if len(pending) != 1 {
		t.Fatalf("expected one job, got %d", len(pending))
	}
	job := pending[0]
	if job.Interval != time.Hour {
		t.Errorf("expected probing interval 1h, got %v", job.Interval)
	}
	if !job.IsFirstExport {
		t.Error("expected IsFirstExport on a destination with no prior success")
	}
	if want := f.clock.Add(time.Hour); !job.NextRun.Equal(want) {
		t.Errorf("next run = %v, want %v", job.NextRun, want)
	}
}

func TestSteadyIntervalAfterPriorSuccess(t *testing.T) {
	f := newFixture(t)
	cfg := f.configure(t, 7)

	if err := f.settings.RecordExportSuccess(f.clock.Add(-time.Hour), "backup.zip", cfg.DestinationURI); err != nil {
		t.Fatalf("record success: %v", err)
	}

	if err := f.scheduler.SchedulePeriodicExportJob(cfg); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	job := f.jobs.PendingJobs(ExportImportNamespace)[0]
	if want := 7 * 24 * time.Hour; job.Interval != want {
		t.Errorf("expected steady interval %v, got %v", want, job.Interval)
	}
	if job.IsFirstExport {
		t.Error("prior success for this destination must not be a first export")
	}
}

func TestChangedDestinationIsFirstExportAgain(t *testing.T) {
	f := newFixture(t)
	cfg := f.configure(t, 7)

	if err := f.settings.RecordExportSuccess(f.clock.Add(-time.Hour), "old.zip", "/somewhere/else/old.zip"); err != nil {
		t.Fatalf("record success: %v", err)
	}

	if err := f.scheduler.SchedulePeriodicExportJob(cfg); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	job := f.jobs.PendingJobs(ExportImportNamespace)[0]
	if !job.IsFirstExport || job.Interval != time.Hour {
		t.Errorf("new destination must probe again, got %+v", job)
	}
}

func TestScheduleIfNotScheduledKeepsExistingJob(t *testing.T) {
	f := newFixture(t)
	cfg := f.configure(t, 7)

	if err := f.scheduler.SchedulePeriodicExportJob(cfg); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	existing := f.jobs.PendingJobs(ExportImportNamespace)[0]

	if err := f.scheduler.SchedulePeriodicJobIfNotScheduled(cfg); err != nil {
		t.Fatalf("schedule if not scheduled: %v", err)
	}

	pending := f.jobs.PendingJobs(ExportImportNamespace)
	if len(pending) != 1 || pending[0].ID != existing.ID {
		t.Errorf("existing job must survive, got %+v", pending)
	}
}

func TestScheduleIfNotScheduledBootstraps(t *testing.T) {
	f := newFixture(t)
	cfg := f.configure(t, 7)

	if err := f.scheduler.SchedulePeriodicJobIfNotScheduled(cfg); err != nil {
		t.Fatalf("schedule if not scheduled: %v", err)
	}
	if got := f.jobs.PendingJobs(ExportImportNamespace); len(got) != 1 {
		t.Errorf("expected bootstrap to schedule, got %d jobs", len(got))
	}
}

func TestFirstSuccessTransitionsToSteadyInterval(t *testing.T) {
	f := newFixture(t)
	cfg := f.configure(t, 7)

	if err := f.scheduler.SchedulePeriodicExportJob(cfg); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	probing := f.jobs.PendingJobs(ExportImportNamespace)[0]
	if probing.Interval != time.Hour || !probing.IsFirstExport {
		t.Fatalf("precondition failed: %+v", probing)
	}

	if !f.scheduler.Execute(context.Background(), probing) {
		t.Fatal("export run should succeed")
	}

	pending := f.jobs.PendingJobs(ExportImportNamespace)
	if len(pending) != 1 {
		t.Fatalf("expected one job after transition, got %d", len(pending))
	}
	steady := pending[0]
	if want := 7 * 24 * time.Hour; steady.Interval != want {
		t.Errorf("expected steady interval %v after first success, got %v", want, steady.Interval)
	}
	if steady.IsFirstExport {
		t.Error("steady job must not be marked first export")
	}
	if steady.ID == probing.ID {
		t.Error("transition must replace the probing job")
	}
}

func TestFailedFirstExportKeepsProbingJob(t *testing.T) {
	f := newFixture(t)
	cfg := settings.ExportSettings{
		DestinationURI: filepath.Join(f.destDir, "no-such-dir", "backup.zip"),
		PeriodDays:     7,
	}
	if err := f.settings.SetExportSettings(cfg); err != nil {
		t.Fatalf("set settings: %v", err)
	}

	if err := f.scheduler.SchedulePeriodicExportJob(cfg); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	probing := f.jobs.PendingJobs(ExportImportNamespace)[0]

	if f.scheduler.Execute(context.Background(), probing) {
		t.Fatal("export run should fail")
	}

	after := f.jobs.PendingJobs(ExportImportNamespace)[0]
	if after.ID != probing.ID || !after.IsFirstExport || after.Interval != time.Hour {
		t.Errorf("failed run must leave the probing job unchanged, got %+v", after)
	}
}

func TestExecuteDisabledPeriodIsSuccessfulNoOp(t *testing.T) {
	f := newFixture(t)
	f.configure(t, 0)

	job := Job{ID: "j", Namespace: ExportImportNamespace, Interval: time.Hour, NextRun: f.clock}
	if !f.scheduler.Execute(context.Background(), job) {
		t.Error("disabled period must report success")
	}
	if got := f.settings.ExportStatus(); got.LastSuccessfulExportTime != nil || got.LastFailedExportTime != nil {
		t.Errorf("disabled execute must not touch status: %+v", got)
	}
}
