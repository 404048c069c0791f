// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

// Package scheduler persists and runs periodic background jobs.
//
// Jobs are stored in a JSON file so schedules survive process restarts. A
// namespace holds at most one active job: scheduling always cancels the
// namespace first. The Runner polls the store and hands due jobs to the
// executor registered for their namespace.
package scheduler

import (
	"time"
)

// ExportImportNamespace is the job namespace for periodic exports.
const ExportImportNamespace = "export_import"

// Job is one persisted periodic job.
type Job struct {
	ID        string        `json:"id"`
	Namespace string        `json:"namespace"`
	Interval  time.Duration `json:"interval"`
	NextRun   time.Time     `json:"next_run"`

	// IsFirstExport marks a probing-interval job that has not produced a
	// successful export yet. The first success triggers a reschedule onto
	// the steady-state interval.
	IsFirstExport bool `json:"is_first_export"`
}

// Due reports whether the job should run at the given instant.
func (j Job) Due(now time.Time) bool {
	return !j.NextRun.After(now)
}
