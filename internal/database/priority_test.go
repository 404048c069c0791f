// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

package database

import (
	"context"
	"reflect"
	"testing"
)

func TestPriorityListRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	want := map[string][]string{
		"activity": {"app.b", "app.c", "app.a"},
		"sleep":    {"app.a"},
	}
	if err := s.ReplacePriorityList(ctx, want); err != nil {
		t.Fatalf("ReplacePriorityList: %v", err)
	}

	got, err := s.PriorityList(ctx)
	if err != nil {
		t.Fatalf("PriorityList: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("priority list mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestReplacePriorityListClearsOldEntries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.ReplacePriorityList(ctx, map[string][]string{"activity": {"app.a", "app.b"}}); err != nil {
		t.Fatalf("first ReplacePriorityList: %v", err)
	}
	if err := s.ReplacePriorityList(ctx, map[string][]string{"activity": {"app.c"}}); err != nil {
		t.Fatalf("second ReplacePriorityList: %v", err)
	}

	got, err := s.PriorityList(ctx)
	if err != nil {
		t.Fatalf("PriorityList: %v", err)
	}
	if len(got["activity"]) != 1 || got["activity"][0] != "app.c" {
		t.Errorf("expected [app.c], got %v", got["activity"])
	}
}

func TestPriorityListEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.PriorityList(context.Background())
	if err != nil {
		t.Fatalf("PriorityList: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}
