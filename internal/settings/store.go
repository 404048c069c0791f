// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// state is the full persisted preference record.
type state struct {
	ExportSettings ExportSettings `json:"export_settings"`
	ExportStatus   ExportStatus   `json:"export_status"`
	ImportStatus   ImportStatus   `json:"import_status"`
}

// Store is a file-backed preference store for export/import settings and
// status. Safe for concurrent use.
type Store struct {
	path  string
	mu    sync.Mutex
	state state
}

// NewStore loads (or initializes) the preference store at path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path: path,
		state: state{
			ExportStatus: ExportStatus{DataExportError: ExportErrorNone},
			ImportStatus: ImportStatus{DataImportError: ImportErrorNone},
		},
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is internal configuration
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil // First use - statuses created lazily
		}
		return nil, fmt.Errorf("read settings file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("parse settings file %s: %w", path, err)
	}
	return s, nil
}

// ExportSettings returns the current export settings.
func (s *Store) ExportSettings() ExportSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ExportSettings
}

// SetExportSettings replaces the export settings. Called only on explicit
// user action.
func (s *Store) SetExportSettings(settings ExportSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ExportSettings = settings
	return s.saveLocked()
}

// ExportStatus returns the current export status.
func (s *Store) ExportStatus() ExportStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ExportStatus
}

// ImportStatus returns the current import status.
func (s *Store) ImportStatus() ImportStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ImportStatus
}

// RecordExportSuccess updates the success fields and clears the error code
// in one atomic write.
func (s *Store) RecordExportSuccess(at time.Time, fileName, destination string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.ExportStatus.LastSuccessfulExportTime = &at
	s.state.ExportStatus.LastExportFileName = fileName
	s.state.ExportStatus.LastExportDestination = destination
	s.state.ExportStatus.DataExportError = ExportErrorNone
	return s.saveLocked()
}

// RecordExportFailure updates the failure fields. The last-success fields
// are left untouched.
func (s *Store) RecordExportFailure(at time.Time, code ExportError) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.ExportStatus.LastFailedExportTime = &at
	s.state.ExportStatus.DataExportError = code
	return s.saveLocked()
}

// SetImportOngoing sets the import-in-progress flag.
func (s *Store) SetImportOngoing(ongoing bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.ImportStatus.IsImportOngoing = ongoing
	return s.saveLocked()
}

// SetImportError records the import error code.
func (s *Store) SetImportError(code ImportError) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.ImportStatus.DataImportError = code
	return s.saveLocked()
}

// saveLocked writes the state to disk atomically (must be called with mu
// held).
func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temporary settings file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()        //nolint:errcheck // Best effort cleanup on error
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("close temporary settings file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("publish settings: %w", err)
	}
	return nil
}
