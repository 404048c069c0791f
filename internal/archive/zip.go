// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

// Package archive implements the single-entry zip container used for
// exported snapshots.
//
// The on-disk format is deliberately minimal: a standard zip archive holding
// exactly one entry with a well-known name. Decompress distinguishes two
// failure classes so callers can tell "not our archive" (ErrEntryNotFound)
// from "not an archive at all" (ErrMalformedArchive).
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	// ErrEntryNotFound indicates the archive parsed correctly but holds no
	// entry with the requested name.
	ErrEntryNotFound = errors.New("archive entry not found")

	// ErrMalformedArchive indicates the container could not be parsed as a
	// zip archive.
	ErrMalformedArchive = errors.New("malformed archive")
)

// Compress writes a zip archive at destArchive containing exactly one entry
// named entryName with the current bytes of sourceFile.
//
// The archive is written to a temporary file in the destination directory
// and renamed into place, so a partially written archive is never visible
// at destArchive.
//
//nolint:gosec // G304: paths come from internal staging configuration
func Compress(sourceFile, entryName, destArchive string) (err error) {
	src, err := os.Open(sourceFile)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer src.Close() //nolint:errcheck // Best effort cleanup

	tmp, err := os.CreateTemp(filepath.Dir(destArchive), filepath.Base(destArchive)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temporary archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error
		}
	}()

	zw := zip.NewWriter(tmp)

	entry, err := zw.Create(entryName)
	if err != nil {
		tmp.Close() //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("create archive entry %q: %w", entryName, err)
	}

	if _, err = io.Copy(entry, src); err != nil {
		tmp.Close() //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("write archive entry %q: %w", entryName, err)
	}

	if err = zw.Close(); err != nil {
		tmp.Close() //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("finalize archive: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temporary archive: %w", err)
	}

	if err = os.Rename(tmpPath, destArchive); err != nil {
		return fmt.Errorf("publish archive: %w", err)
	}
	return nil
}

// Decompress extracts the entry named entryName from the archive at
// archivePath into destFile.
//
// Returns ErrEntryNotFound when the archive holds no matching entry and
// ErrMalformedArchive when the container cannot be parsed.
//
//nolint:gosec // G304: paths come from internal staging configuration
func Decompress(archivePath, entryName, destFile string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrChecksum) {
			return fmt.Errorf("%w: %s", ErrMalformedArchive, archivePath)
		}
		return fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close() //nolint:errcheck // Best effort cleanup

	for _, f := range zr.File {
		if f.Name != entryName {
			continue
		}
		return extractEntry(f, destFile)
	}

	return fmt.Errorf("%w: %q", ErrEntryNotFound, entryName)
}

// extractEntry copies a single zip entry to destFile.
func extractEntry(f *zip.File, destFile string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %q: %w", f.Name, err)
	}
	defer rc.Close() //nolint:errcheck // Best effort cleanup

	out, err := os.Create(destFile) //nolint:gosec // G304: destination is an internal staging path
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}

	if _, err := io.Copy(out, rc); err != nil { //nolint:gosec // G110: single trusted entry, size bounded by source database
		out.Close()         //nolint:errcheck // Best effort cleanup on error
		os.Remove(destFile) //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("extract archive entry %q: %w", f.Name, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination file: %w", err)
	}
	return nil
}
