// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

package database

import (
	"context"
	"fmt"
	"os"
)

// SnapshotTo writes a consistent point-in-time copy of the database to
// destPath using VACUUM INTO. The live database is only held for the
// duration of the copy; no application-visible lock persists afterwards.
//
// VACUUM INTO refuses to overwrite, so any stale staging file at destPath is
// removed first.
func (s *Store) SnapshotTo(ctx context.Context, destPath string) error {
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale snapshot %s: %w", destPath, err)
	}

	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("snapshot database to %s: %w", destPath, err)
	}
	return nil
}

// TruncateAuditTables deletes all rows from the volatile audit tables.
// Intended to run against a staged snapshot, never the live store.
func (s *Store) TruncateAuditTables(ctx context.Context) error {
	for _, table := range AuditTables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+quoteIdent(table)); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}
