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

// RestoreTables replaces rows in the live database from a staged snapshot.
//
// For every table in the static export list that is present in the staged
// database's catalog, staged rows replace matching live rows (INSERT OR
// REPLACE keyed on the table's primary key). Tables absent from the staged
// database are skipped and their live data left untouched. The whole
// restore runs inside one transaction so a mid-restore failure leaves the
// live database unchanged.
//
// Returns the names of the tables that were restored.
func (s *Store) RestoreTables(ctx context.Context, stagedPath string) ([]string, error) {
	// ATTACH creates an empty database for a missing path instead of
	// erroring, which would turn a lost staged snapshot into a silent no-op.
	if _, err := os.Stat(stagedPath); err != nil {
		return nil, fmt.Errorf("staged database not accessible: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "ATTACH DATABASE ? AS staged", stagedPath); err != nil {
		return nil, fmt.Errorf("attach staged database: %w", err)
	}
	defer func() {
		s.db.ExecContext(ctx, "DETACH DATABASE staged") //nolint:errcheck // Best effort cleanup
	}()

	staged, err := s.stagedCatalog(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin restore transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	var restored []string
	for _, table := range ExportTables {
		if !staged[table] {
			continue
		}
		q := quoteIdent(table)
		stmt := "INSERT OR REPLACE INTO main." + q + " SELECT * FROM staged." + q
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("restore table %s: %w", table, err)
		}
		restored = append(restored, table)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit restore transaction: %w", err)
	}
	return restored, nil
}

// stagedCatalog returns the set of tables in the attached staged database.
func (s *Store) stagedCatalog(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM staged.sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, fmt.Errorf("query staged catalog: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Best effort cleanup

	catalog := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan staged table name: %w", err)
		}
		catalog[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staged catalog: %w", err)
	}
	return catalog, nil
}
