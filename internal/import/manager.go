// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

/*
manager.go - Import Manager

Runs one import attempt end to end:

 1. Mark the import ongoing and notify the user it started.
 2. Copy the source archive into the private staging directory.
 3. Extract the well-known snapshot entry into a staged database file.
    A missing entry or unparsable container classifies WRONG_FILE.
 4. Open the staged database read-only and compare its schema version to
    the running schema. A mismatch classifies VERSION_MISMATCH.
 5. Replace rows of every shared table in the live database with the staged
    rows. Tables absent from the staged database keep their live data.
 6. Merge the priority list per category, imported order first.

The live database is never touched before the version check passes, so a
rejected archive leaves every table untouched. The ongoing flag is cleared
on every exit path, including panics, which classify UNKNOWN. Staged files
are removed once the version check has passed, regardless of the outcome of
the steps after it.
*/

//nolint:staticcheck // File documentation, not package doc
package dataimport

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
	"github.com/tomtom215/archivus/internal/export"
	"github.com/tomtom215/archivus/internal/logging"
	"github.com/tomtom215/archivus/internal/metrics"
	"github.com/tomtom215/archivus/internal/notify"
	"github.com/tomtom215/archivus/internal/settings"
)

// stagingArchiveName and stagingDBName are the fixed file names inside the
// private staging directory.
const (
	stagingArchiveName = "import-staged.zip"
	stagingDBName      = "import-staged.db"
)

// Manager executes import attempts.
type Manager struct {
	store      *database.Store
	settings   *settings.Store
	sender     notify.Sender
	auditLog   *audit.Logger
	stagingDir string

	// now is injectable for deterministic timing in tests.
	now func() time.Time
}

// NewManager creates an import manager.
func NewManager(store *database.Store, prefs *settings.Store, sender notify.Sender, auditLog *audit.Logger, stagingDir string) *Manager {
	return &Manager{
		store:      store,
		settings:   prefs,
		sender:     sender,
		auditLog:   auditLog,
		stagingDir: stagingDir,
		now:        time.Now,
	}
}

// RunImport executes one import attempt from the archive at sourceURI.
//
// The outcome is communicated through ImportStatus and notifications rather
// than a return value; callers poll the settings store. The ongoing flag is
// cleared unconditionally before returning, even when a step panics.
func (m *Manager) RunImport(ctx context.Context, sourceURI string) {
	started := m.now()
	logging.Info().Str("source", sourceURI).Msg("Import started")

	if err := m.settings.SetImportOngoing(true); err != nil {
		logging.Error().Err(err).Msg("Failed to mark import ongoing")
	}
	m.send(ctx, notify.TypeImportInProgress)

	code := settings.ImportErrorUnknown
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Interface("panic", r).Msg("Import panicked")
			code = settings.ImportErrorUnknown
		}
		m.finish(ctx, code, started)
	}()

	code = m.runImport(ctx, sourceURI)
}

// runImport performs the copy/extract/verify/restore pipeline and returns
// the final error code.
func (m *Manager) runImport(ctx context.Context, sourceURI string) settings.ImportError {
	if err := os.MkdirAll(m.stagingDir, 0o750); err != nil {
		logging.Error().Err(err).Msg("Failed to create staging directory")
		return settings.ImportErrorUnknown
	}

	stagedArchive := filepath.Join(m.stagingDir, stagingArchiveName)
	stagedDB := filepath.Join(m.stagingDir, stagingDBName)

	if err := copyToStaging(sourceURI, stagedArchive); err != nil {
		logging.Error().Err(err).Msg("Failed to stage import archive")
		return settings.ImportErrorUnknown
	}

	if err := archive.Decompress(stagedArchive, export.SnapshotEntryName, stagedDB); err != nil {
		logging.Error().Err(err).Msg("Failed to extract snapshot from archive")
		if errors.Is(err, archive.ErrEntryNotFound) || errors.Is(err, archive.ErrMalformedArchive) {
			return settings.ImportErrorWrongFile
		}
		return settings.ImportErrorUnknown
	}

	stagedVersion, err := m.stagedSchemaVersion(ctx, stagedDB)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to read staged schema version")
		return settings.ImportErrorWrongFile
	}
	if stagedVersion != database.SchemaVersion {
		logging.Warn().
			Int("staged_version", stagedVersion).
			Int("running_version", database.SchemaVersion).
			Msg("Import rejected: schema version mismatch")
		return settings.ImportErrorVersionMismatch
	}
	defer m.cleanupStaging(stagedArchive, stagedDB)

	devicePriority, err := m.store.PriorityList(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to read device priority list")
		return settings.ImportErrorUnknown
	}
	importedPriority, err := m.stagedPriorityList(ctx, stagedDB)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to read imported priority list")
		return settings.ImportErrorUnknown
	}

	restored, err := m.store.RestoreTables(ctx, stagedDB)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to restore tables")
		return settings.ImportErrorUnknown
	}
	metrics.ImportTablesRestored.Add(float64(len(restored)))
	logging.Info().Strs("tables", restored).Msg("Restored tables from staged snapshot")

	if err := m.store.ReplacePriorityList(ctx, mergePriorityLists(importedPriority, devicePriority)); err != nil {
		logging.Error().Err(err).Msg("Failed to merge priority list")
		return settings.ImportErrorUnknown
	}

	return settings.ImportErrorNone
}

// stagedSchemaVersion opens the staged database read-only and returns its
// schema version.
func (m *Manager) stagedSchemaVersion(ctx context.Context, stagedDB string) (int, error) {
	staged, err := database.OpenReadOnly(stagedDB)
	if err != nil {
		return 0, fmt.Errorf("open staged database: %w", err)
	}
	defer staged.Close() //nolint:errcheck // Best effort cleanup

	return staged.Version(ctx)
}

// stagedPriorityList reads the priority list out of the staged database.
func (m *Manager) stagedPriorityList(ctx context.Context, stagedDB string) (map[string][]string, error) {
	staged, err := database.OpenReadOnly(stagedDB)
	if err != nil {
		return nil, fmt.Errorf("open staged database: %w", err)
	}
	defer staged.Close() //nolint:errcheck // Best effort cleanup

	return staged.PriorityList(ctx)
}

// finish records the final error code, clears the ongoing flag, and sends
// the outcome notification.
func (m *Manager) finish(ctx context.Context, code settings.ImportError, started time.Time) {
	if err := m.settings.SetImportError(code); err != nil {
		logging.Error().Err(err).Msg("Failed to record import error code")
	}
	if err := m.settings.SetImportOngoing(false); err != nil {
		logging.Error().Err(err).Msg("Failed to clear import ongoing flag")
	}

	elapsed := m.now().Sub(started)
	metrics.ObserveImport(resultLabel(code), elapsed)

	if code == settings.ImportErrorNone {
		m.auditLog.RecordAccess(ctx, audit.EventTypeDataImport, audit.OutcomeSuccess, "")
	} else {
		m.auditLog.RecordAccess(ctx, audit.EventTypeDataImport, audit.OutcomeFailure, string(code))
	}
	m.send(ctx, notificationType(code))

	logging.Info().
		Str("error_code", string(code)).
		Dur("elapsed", elapsed).
		Msg("Import finished")
}

// send delivers a notification, logging delivery failures without failing
// the import.
func (m *Manager) send(ctx context.Context, t notify.Type) {
	if err := m.sender.Send(ctx, notify.New(t)); err != nil {
		logging.Warn().Err(err).Str("type", string(t)).Msg("Failed to send notification")
	}
}

// notificationType maps a final error code to its outcome notification.
func notificationType(code settings.ImportError) notify.Type {
	switch code {
	case settings.ImportErrorNone:
		return notify.TypeImportComplete
	case settings.ImportErrorWrongFile:
		return notify.TypeImportInvalidFile
	case settings.ImportErrorVersionMismatch:
		return notify.TypeImportVersionMismatch
	default:
		return notify.TypeImportGenericError
	}
}

// resultLabel converts an error code to a metrics label.
func resultLabel(code settings.ImportError) string {
	switch code {
	case settings.ImportErrorNone:
		return "success"
	case settings.ImportErrorWrongFile:
		return "wrong_file"
	case settings.ImportErrorVersionMismatch:
		return "version_mismatch"
	default:
		return "unknown"
	}
}

// copyToStaging copies the user-selected source archive into staging.
//
//nolint:gosec // G304: source is the user-selected import file
func copyToStaging(srcPath, destPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open source archive: %w", err)
	}
	defer src.Close() //nolint:errcheck // Best effort cleanup

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create staged archive: %w", err)
	}

	if _, err := io.Copy(dest, src); err != nil {
		dest.Close() //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("copy source archive: %w", err)
	}
	return dest.Close()
}

// cleanupStaging removes the staged archive and database.
func (m *Manager) cleanupStaging(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logging.Warn().Err(err).Str("path", p).Msg("Failed to remove staging file")
		}
	}
}
