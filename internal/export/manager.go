// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

/*
manager.go - Export Manager

Runs one export attempt end to end:

 1. Read ExportSettings; a zero period means export is disabled and the run
    is a successful no-op.
 2. Snapshot the live database into the private staging directory and
    truncate the volatile audit tables in the staged copy only.
 3. Compress the staged copy into a single-entry zip archive.
 4. Copy the archive to the configured destination.
 5. Record the outcome in ExportStatus: destination write failures are
    classified LOST_FILE_ACCESS, everything else UNKNOWN. A failed run never
    touches the last-success fields.

Staging files are removed on every outcome. The live database is only held
during the snapshot step; compression and transfer work on the staged copy.
*/

//nolint:staticcheck // File documentation, not package doc
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/tomtom215/archivus/internal/archive"
	"github.com/tomtom215/archivus/internal/audit"
	"github.com/tomtom215/archivus/internal/database"
	"github.com/tomtom215/archivus/internal/logging"
	"github.com/tomtom215/archivus/internal/metrics"
	"github.com/tomtom215/archivus/internal/settings"
)

// SnapshotEntryName is the well-known name of the single archive entry
// holding the database snapshot.
const SnapshotEntryName = "records.db"

// stagingDBName and stagingArchiveName are the fixed file names inside the
// private staging directory.
const (
	stagingDBName      = "export-staged.db"
	stagingArchiveName = "export-staged.zip"
)

// Manager executes export attempts.
type Manager struct {
	store      *database.Store
	settings   *settings.Store
	auditLog   *audit.Logger
	stagingDir string

	// now is injectable for deterministic timing in tests.
	now func() time.Time
}

// NewManager creates an export manager.
func NewManager(store *database.Store, prefs *settings.Store, auditLog *audit.Logger, stagingDir string) *Manager {
	return &Manager{
		store:      store,
		settings:   prefs,
		auditLog:   auditLog,
		stagingDir: stagingDir,
		now:        time.Now,
	}
}

// RunExport executes one export attempt and reports success.
//
// When no export is due (period 0) it returns true without side effects.
// All failures are recorded in ExportStatus before returning false; nothing
// propagates to the caller beyond the boolean.
func (m *Manager) RunExport(ctx context.Context) bool {
	cfg := m.settings.ExportSettings()
	if !cfg.Enabled() {
		metrics.ExportRunsTotal.WithLabelValues("disabled").Inc()
		return true
	}

	started := m.now()
	logging.Info().Str("destination", cfg.DestinationURI).Msg("Export started")

	sizeBefore := m.store.FileSize()
	stagedDB := filepath.Join(m.stagingDir, stagingDBName)
	stagedArchive := filepath.Join(m.stagingDir, stagingArchiveName)
	defer m.cleanupStaging(stagedDB, stagedArchive)

	err := m.export(ctx, cfg, stagedDB, stagedArchive)
	code := classifyError(err)
	elapsed := m.now().Sub(started)

	if err != nil {
		if recordErr := m.settings.RecordExportFailure(m.now(), code); recordErr != nil {
			logging.Error().Err(recordErr).Msg("Failed to record export failure")
		}
		m.auditLog.RecordAccess(ctx, audit.EventTypeDataExport, audit.OutcomeFailure, err.Error())
		metrics.ObserveExport(resultLabel(code), elapsed)
		m.logCompletion(code, elapsed, sizeBefore)
		return false
	}

	fileName := filepath.Base(cfg.DestinationURI)
	if recordErr := m.settings.RecordExportSuccess(m.now(), fileName, cfg.DestinationURI); recordErr != nil {
		logging.Error().Err(recordErr).Msg("Failed to record export success")
	}
	m.auditLog.RecordAccess(ctx, audit.EventTypeDataExport, audit.OutcomeSuccess, cfg.DestinationURI)
	metrics.ObserveExport("success", elapsed)
	metrics.ExportLastSuccess.SetToCurrentTime()
	m.logCompletion(settings.ExportErrorNone, elapsed, sizeBefore)
	return true
}

// export performs the snapshot/compress/transfer pipeline.
func (m *Manager) export(ctx context.Context, cfg settings.ExportSettings, stagedDB, stagedArchive string) error {
	if err := os.MkdirAll(m.stagingDir, 0o750); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}

	if err := m.store.SnapshotTo(ctx, stagedDB); err != nil {
		return fmt.Errorf("stage database snapshot: %w", err)
	}

	staged, err := database.Open(stagedDB)
	if err != nil {
		return fmt.Errorf("open staged snapshot: %w", err)
	}
	if err := staged.TruncateAuditTables(ctx); err != nil {
		staged.Close() //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("scrub audit tables: %w", err)
	}
	if size := staged.FileSize(); size >= 0 {
		metrics.ExportSnapshotBytes.Set(float64(size))
	}
	if err := staged.Close(); err != nil {
		return fmt.Errorf("close staged snapshot: %w", err)
	}

	if err := archive.Compress(stagedDB, SnapshotEntryName, stagedArchive); err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}

	return copyToDestination(stagedArchive, cfg.DestinationURI)
}

// destinationError marks failures of the final destination write so they
// classify as LOST_FILE_ACCESS rather than UNKNOWN.
type destinationError struct {
	err error
}

func (e *destinationError) Error() string { return "write destination: " + e.err.Error() }
func (e *destinationError) Unwrap() error { return e.err }

// classifyError maps a pipeline failure to an export error code.
func classifyError(err error) settings.ExportError {
	if err == nil {
		return settings.ExportErrorNone
	}

	var destErr *destinationError
	if errors.As(err, &destErr) {
		return settings.ExportErrorLostFileAccess
	}
	return settings.ExportErrorUnknown
}

// resultLabel converts an error code to a metrics label.
func resultLabel(code settings.ExportError) string {
	switch code {
	case settings.ExportErrorLostFileAccess:
		return "lost_file_access"
	case settings.ExportErrorNone:
		return "success"
	default:
		return "unknown"
	}
}

// copyToDestination copies the staged archive to the destination path.
// Only failures on the destination side are marked destinationError; a
// staged archive that cannot be read is a local problem, not lost access.
//
//nolint:gosec // G304: destination is the user-configured export target
func copyToDestination(srcPath, destPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open staged archive: %w", err)
	}
	defer src.Close() //nolint:errcheck // Best effort cleanup

	dest, err := os.Create(destPath)
	if err != nil {
		return &destinationError{err: err}
	}

	if _, err := io.Copy(dest, src); err != nil {
		dest.Close() //nolint:errcheck // Best effort cleanup on error
		return &destinationError{err: err}
	}
	if err := dest.Close(); err != nil {
		return &destinationError{err: err}
	}
	return nil
}

// cleanupStaging removes staging files regardless of run outcome.
func (m *Manager) cleanupStaging(paths ...string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Warn().Err(err).Str("path", path).Msg("Failed to remove staging file")
		}
	}
}

// logCompletion emits the structured completion log with best-effort sizes.
func (m *Manager) logCompletion(code settings.ExportError, elapsed time.Duration, sizeBefore int64) {
	logging.Info().
		Str("error_code", string(code)).
		Dur("elapsed", elapsed).
		Int64("db_size_before", sizeBefore).
		Int64("db_size_after", m.store.FileSize()).
		Msg("Export finished")
}
