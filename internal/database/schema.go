// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

package database

// SchemaVersion is the schema version of the running record store,
// tracked in PRAGMA user_version. Imported snapshots must match exactly.
const SchemaVersion = 3

// ExportTables is the static list of tables captured in exported snapshots
// and restored on import. Restore cross-checks this list against the staged
// database's actual table catalog; a table missing from the snapshot is
// skipped, never wiped.
var ExportTables = []string{
	"vitals_records",
	"activity_records",
	"sleep_records",
	"nutrition_records",
	"application_info",
	"priority_items",
}

// AuditTables lists the volatile audit tables. They are truncated in the
// staged copy before compression and are never part of a snapshot.
var AuditTables = []string{
	"access_log",
	"change_log",
}

// schemaStatements creates the full schema. Statements are idempotent so
// Migrate can run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS vitals_records (
		id          TEXT PRIMARY KEY,
		app_id      TEXT NOT NULL,
		recorded_at INTEGER NOT NULL,
		kind        TEXT NOT NULL,
		value       REAL NOT NULL,
		unit        TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS activity_records (
		id          TEXT PRIMARY KEY,
		app_id      TEXT NOT NULL,
		started_at  INTEGER NOT NULL,
		ended_at    INTEGER NOT NULL,
		kind        TEXT NOT NULL,
		energy_kcal REAL
	)`,
	`CREATE TABLE IF NOT EXISTS sleep_records (
		id         TEXT PRIMARY KEY,
		app_id     TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at   INTEGER NOT NULL,
		stage      TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS nutrition_records (
		id          TEXT PRIMARY KEY,
		app_id      TEXT NOT NULL,
		recorded_at INTEGER NOT NULL,
		nutrient    TEXT NOT NULL,
		amount      REAL NOT NULL,
		unit        TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS application_info (
		app_id       TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		installed    INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS priority_items (
		category TEXT NOT NULL,
		app_id   TEXT NOT NULL,
		priority INTEGER NOT NULL,
		PRIMARY KEY (category, app_id)
	)`,
	`CREATE TABLE IF NOT EXISTS access_log (
		id          TEXT PRIMARY KEY,
		occurred_at INTEGER NOT NULL,
		event_type  TEXT NOT NULL,
		outcome     TEXT NOT NULL,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS change_log (
		id          TEXT PRIMARY KEY,
		occurred_at INTEGER NOT NULL,
		table_name  TEXT NOT NULL,
		operation   TEXT NOT NULL,
		record_id   TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vitals_recorded_at ON vitals_records(recorded_at)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_started_at ON activity_records(started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_access_log_occurred_at ON access_log(occurred_at)`,
	`CREATE INDEX IF NOT EXISTS idx_change_log_occurred_at ON change_log(occurred_at)`,
}
