// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

// Package audit records data-access and data-change events into the record
// store's volatile audit tables (access_log, change_log).
//
// These tables are deliberately excluded from exported snapshots: the export
// pipeline truncates them in the staged copy, and imports never write them.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/archivus/internal/logging"
)

// EventType categorizes audit events.
type EventType string

const (
	EventTypeDataExport EventType = "data.export"
	EventTypeDataImport EventType = "data.import"
	EventTypeDataRead   EventType = "data.read"
)

// Outcome indicates whether an action succeeded or failed.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// AccessEvent is one row of the access_log table.
type AccessEvent struct {
	ID          string
	OccurredAt  time.Time
	Type        EventType
	Outcome     Outcome
	Description string
}

// ChangeEvent is one row of the change_log table.
type ChangeEvent struct {
	ID         string
	OccurredAt time.Time
	TableName  string
	Operation  string
	RecordID   string
}

// Logger writes audit events. Failures are logged and swallowed: auditing
// must never fail the operation being audited.
type Logger struct {
	db  *sql.DB
	now func() time.Time
}

// NewLogger creates an audit logger over the record store's handle.
func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db, now: time.Now}
}

// RecordAccess appends one access_log row.
func (l *Logger) RecordAccess(ctx context.Context, typ EventType, outcome Outcome, description string) {
	event := AccessEvent{
		ID:          uuid.New().String(),
		OccurredAt:  l.now().UTC(),
		Type:        typ,
		Outcome:     outcome,
		Description: description,
	}

	if err := l.insertAccess(ctx, event); err != nil {
		logging.Warn().Err(err).Str("event_type", string(typ)).Msg("Failed to write access log")
	}
}

// RecordChange appends one change_log row.
func (l *Logger) RecordChange(ctx context.Context, table, operation, recordID string) {
	event := ChangeEvent{
		ID:         uuid.New().String(),
		OccurredAt: l.now().UTC(),
		TableName:  table,
		Operation:  operation,
		RecordID:   recordID,
	}

	if err := l.insertChange(ctx, event); err != nil {
		logging.Warn().Err(err).Str("table", table).Msg("Failed to write change log")
	}
}

func (l *Logger) insertAccess(ctx context.Context, e AccessEvent) error {
	_, err := l.db.ExecContext(ctx,
		"INSERT INTO access_log (id, occurred_at, event_type, outcome, description) VALUES (?, ?, ?, ?, ?)",
		e.ID, e.OccurredAt.Unix(), string(e.Type), string(e.Outcome), e.Description)
	if err != nil {
		return fmt.Errorf("insert access event: %w", err)
	}
	return nil
}

func (l *Logger) insertChange(ctx context.Context, e ChangeEvent) error {
	_, err := l.db.ExecContext(ctx,
		"INSERT INTO change_log (id, occurred_at, table_name, operation, record_id) VALUES (?, ?, ?, ?, ?)",
		e.ID, e.OccurredAt.Unix(), e.TableName, e.Operation, e.RecordID)
	if err != nil {
		return fmt.Errorf("insert change event: %w", err)
	}
	return nil
}
