// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

package database

import (
	"context"
	"fmt"
)

// PriorityList returns the per-category ordered list of contributing app
// identifiers, ascending by priority.
func (s *Store) PriorityList(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT category, app_id FROM priority_items ORDER BY category, priority")
	if err != nil {
		return nil, fmt.Errorf("query priority list: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Best effort cleanup

	list := make(map[string][]string)
	for rows.Next() {
		var category, appID string
		if err := rows.Scan(&category, &appID); err != nil {
			return nil, fmt.Errorf("scan priority item: %w", err)
		}
		list[category] = append(list[category], appID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate priority list: %w", err)
	}
	return list, nil
}

// ReplacePriorityList atomically rewrites the priority table with the given
// per-category ordering.
func (s *Store) ReplacePriorityList(ctx context.Context, list map[string][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin priority transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM priority_items"); err != nil {
		return fmt.Errorf("clear priority list: %w", err)
	}

	for category, apps := range list {
		for i, appID := range apps {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO priority_items (category, app_id, priority) VALUES (?, ?, ?)",
				category, appID, i+1); err != nil {
				return fmt.Errorf("insert priority item %s/%s: %w", category, appID, err)
			}
		}
	}

	return tx.Commit()
}
