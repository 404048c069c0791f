// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

package scheduler

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestJobStoreSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")

	s, err := NewJobStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	job := Job{
		ID:            "j1",
		Namespace:     ExportImportNamespace,
		Interval:      time.Hour,
		NextRun:       time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC),
		IsFirstExport: true,
	}
	if err := s.Schedule(job); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	reloaded, err := NewJobStore(path)
	if err != nil {
		t.Fatalf("reload store: %v", err)
	}
	pending := reloaded.PendingJobs(ExportImportNamespace)
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending job after restart, got %d", len(pending))
	}
	got := pending[0]
	if got.ID != job.ID || got.Interval != job.Interval || !got.IsFirstExport || !got.NextRun.Equal(job.NextRun) {
		t.Errorf("reloaded job = %+v, want %+v", got, job)
	}
}

func TestJobStoreFirstUseWithoutFile(t *testing.T) {
	s, err := NewJobStore(filepath.Join(t.TempDir(), "jobs.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if got := s.PendingJobs(ExportImportNamespace); len(got) != 0 {
		t.Errorf("expected no jobs on first use, got %d", len(got))
	}
}

func TestJobStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	if err := os.WriteFile(path, []byte("{{nope"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if _, err := NewJobStore(path); err == nil {
		t.Error("expected error for corrupt job file")
	}
}

func TestJobStoreCancelNamespace(t *testing.T) {
	s, err := NewJobStore(filepath.Join(t.TempDir(), "jobs.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	now := time.Now()
	for _, id := range []string{"a", "b"} {
		if err := s.Schedule(Job{ID: id, Namespace: ExportImportNamespace, Interval: time.Hour, NextRun: now}); err != nil {
			t.Fatalf("schedule %s: %v", id, err)
		}
	}
	if err := s.Schedule(Job{ID: "other", Namespace: "other_ns", Interval: time.Hour, NextRun: now}); err != nil {
		t.Fatalf("schedule other: %v", err)
	}

	if err := s.CancelNamespace(ExportImportNamespace); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := s.PendingJobs(ExportImportNamespace); len(got) != 0 {
		t.Errorf("expected namespace emptied, got %d jobs", len(got))
	}
	if got := s.PendingJobs("other_ns"); len(got) != 1 {
		t.Errorf("cancel must not touch other namespaces, got %d jobs", len(got))
	}
}

func TestJobStoreDueJobs(t *testing.T) {
	s, err := NewJobStore(filepath.Join(t.TempDir(), "jobs.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := s.Schedule(Job{ID: "past", Namespace: "ns", Interval: time.Hour, NextRun: now.Add(-time.Minute)}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := s.Schedule(Job{ID: "exact", Namespace: "ns", Interval: time.Hour, NextRun: now}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := s.Schedule(Job{ID: "future", Namespace: "ns", Interval: time.Hour, NextRun: now.Add(time.Minute)}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	due := s.DueJobs(now)
	if len(due) != 2 {
		t.Fatalf("expected 2 due jobs, got %d", len(due))
	}
	if due[0].ID != "past" || due[1].ID != "exact" {
		t.Errorf("due order = %s, %s", due[0].ID, due[1].ID)
	}
}

func TestJobStoreRescheduleRemovedJobIsNoOp(t *testing.T) {
	s, err := NewJobStore(filepath.Join(t.TempDir(), "jobs.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Reschedule("gone", time.Now()); err != nil {
		t.Errorf("reschedule of removed job must be a no-op, got %v", err)
	}
}
