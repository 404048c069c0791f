// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

// Package settings persists export/import configuration and status records.
//
// The store is a small file-backed preference map: every mutation rewrites
// the JSON file atomically (temp file + rename), and all reads return copies
// so callers never share mutable state. Statuses are created on first use.
package settings

import (
	"time"
)

// ExportError classifies the outcome of the last export run.
type ExportError string

const (
	// ExportErrorNone indicates the last export succeeded (or none ran yet).
	ExportErrorNone ExportError = "NONE"

	// ExportErrorUnknown indicates an unclassified export failure.
	ExportErrorUnknown ExportError = "UNKNOWN"

	// ExportErrorLostFileAccess indicates the destination could not be
	// written (media removed, permission revoked).
	ExportErrorLostFileAccess ExportError = "LOST_FILE_ACCESS"
)

// ImportError classifies the outcome of the last import run.
type ImportError string

const (
	// ImportErrorNone indicates the last import succeeded (or none ran yet).
	ImportErrorNone ImportError = "NONE"

	// ImportErrorUnknown indicates an unclassified import failure.
	ImportErrorUnknown ImportError = "UNKNOWN"

	// ImportErrorWrongFile indicates the selected file is not an Archivus
	// snapshot (missing the well-known archive entry or not an archive).
	ImportErrorWrongFile ImportError = "WRONG_FILE"

	// ImportErrorVersionMismatch indicates the snapshot's schema version
	// differs from the running schema version.
	ImportErrorVersionMismatch ImportError = "VERSION_MISMATCH"
)

// ExportSettings is the user-chosen export configuration. Mutated only by
// explicit user action through the store.
type ExportSettings struct {
	// DestinationURI is where snapshots are written. Empty means
	// unconfigured.
	DestinationURI string `json:"destination_uri,omitempty"`

	// PeriodDays is the steady-state export interval in days.
	// 0 disables periodic export.
	PeriodDays int `json:"period_days"`
}

// Enabled reports whether periodic export is configured.
func (s ExportSettings) Enabled() bool {
	return s.PeriodDays > 0
}

// ExportStatus records the outcome of export runs. A failed run never
// overwrites the last-success fields; only the error fields change.
type ExportStatus struct {
	LastSuccessfulExportTime *time.Time `json:"last_successful_export_time,omitempty"`
	LastExportFileName       string     `json:"last_export_file_name,omitempty"`

	// LastExportDestination is the destination URI of the last successful
	// export. The scheduler compares it to the configured destination to
	// decide whether a first export is still pending there.
	LastExportDestination string `json:"last_export_destination,omitempty"`

	LastFailedExportTime *time.Time  `json:"last_failed_export_time,omitempty"`
	DataExportError      ExportError `json:"data_export_error"`
}

// ImportStatus records the outcome and progress of import runs.
type ImportStatus struct {
	DataImportError ImportError `json:"data_import_error"`

	// IsImportOngoing is true only for the duration of one import run.
	IsImportOngoing bool `json:"is_import_ongoing"`
}
