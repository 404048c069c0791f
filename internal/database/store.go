// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

// Package database wraps the single-file SQLite record store.
//
// It exposes the engine primitives the export/import subsystem builds on:
// file-level snapshot duplication (SnapshotTo), the table catalog, the schema
// version, and table-level replacement from a staged copy. All access goes
// through database/sql with the pure-Go modernc.org/sqlite driver, so the
// store builds without cgo.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	// SQLite driver (pure Go)
	_ "modernc.org/sqlite"
)

// Store is a handle to the record store database file.
type Store struct {
	db       *sql.DB
	path     string
	readOnly bool
}

// Open opens (creating if necessary) the record store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// One writer connection avoids SQLITE_BUSY between the snapshot step and
	// concurrent application writes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error
		return nil, fmt.Errorf("enable WAL on %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error
		return nil, fmt.Errorf("enable foreign keys on %s: %w", path, err)
	}

	return &Store{db: db, path: path}, nil
}

// OpenReadOnly opens an existing database file without write access.
// Used to inspect staged import copies.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat database %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open database read-only %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	return &Store{db: db, path: path, readOnly: true}, nil
}

// Migrate creates the schema and stamps the schema version.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DB exposes the underlying handle for collaborators that manage their own
// tables (the audit logger).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Version reads the schema version from PRAGMA user_version.
func (s *Store) Version(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return v, nil
}

// TableCatalog returns the set of table names present in the database.
func (s *Store) TableCatalog(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, fmt.Errorf("query table catalog: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Best effort cleanup

	catalog := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		catalog[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table catalog: %w", err)
	}
	return catalog, nil
}

// RowCount returns the number of rows in the named table. The name must be
// one of the known schema tables.
func (s *Store) RowCount(ctx context.Context, table string) (int64, error) {
	if !isKnownTable(table) {
		return 0, fmt.Errorf("unknown table: %s", table)
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows in %s: %w", table, err)
	}
	return n, nil
}

// FileSize returns the database file size in bytes, or -1 if unavailable.
func (s *Store) FileSize() int64 {
	info, err := os.Stat(s.path)
	if err != nil {
		return -1
	}
	return info.Size()
}

// isKnownTable reports whether the name belongs to the static schema.
func isKnownTable(name string) bool {
	for _, t := range ExportTables {
		if t == name {
			return true
		}
	}
	for _, t := range AuditTables {
		if t == name {
			return true
		}
	}
	return false
}

// quoteIdent quotes an SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
