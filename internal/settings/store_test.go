// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s, path
}

func TestFirstUseDefaults(t *testing.T) {
	s, _ := newTestStore(t)

	if got := s.ExportStatus().DataExportError; got != ExportErrorNone {
		t.Errorf("expected NONE export error on first use, got %s", got)
	}
	if got := s.ImportStatus(); got.DataImportError != ImportErrorNone || got.IsImportOngoing {
		t.Errorf("unexpected first-use import status: %+v", got)
	}
	if s.ExportSettings().Enabled() {
		t.Error("export should be disabled by default")
	}
}

func TestSettingsSurviveReopen(t *testing.T) {
	s, path := newTestStore(t)

	if err := s.SetExportSettings(ExportSettings{DestinationURI: "/mnt/usb/backups", PeriodDays: 7}); err != nil {
		t.Fatalf("SetExportSettings: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := s.RecordExportSuccess(now, "records.zip", "/mnt/usb/backups"); err != nil {
		t.Fatalf("RecordExportSuccess: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	if got := reopened.ExportSettings(); got.PeriodDays != 7 || got.DestinationURI != "/mnt/usb/backups" {
		t.Errorf("settings did not survive reopen: %+v", got)
	}
	status := reopened.ExportStatus()
	if status.LastSuccessfulExportTime == nil || !status.LastSuccessfulExportTime.Equal(now) {
		t.Errorf("success time did not survive reopen: %+v", status)
	}
	if status.LastExportFileName != "records.zip" {
		t.Errorf("file name did not survive reopen: %+v", status)
	}
}

func TestFailureNeverOverwritesSuccessFields(t *testing.T) {
	s, _ := newTestStore(t)

	success := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := s.RecordExportSuccess(success, "records.zip", "/mnt/usb"); err != nil {
		t.Fatalf("RecordExportSuccess: %v", err)
	}

	failure := success.Add(24 * time.Hour)
	if err := s.RecordExportFailure(failure, ExportErrorLostFileAccess); err != nil {
		t.Fatalf("RecordExportFailure: %v", err)
	}

	status := s.ExportStatus()
	if status.LastSuccessfulExportTime == nil || !status.LastSuccessfulExportTime.Equal(success) {
		t.Errorf("failure overwrote last success time: %+v", status)
	}
	if status.LastExportFileName != "records.zip" || status.LastExportDestination != "/mnt/usb" {
		t.Errorf("failure overwrote success fields: %+v", status)
	}
	if status.DataExportError != ExportErrorLostFileAccess {
		t.Errorf("expected LOST_FILE_ACCESS, got %s", status.DataExportError)
	}
	if status.LastFailedExportTime == nil || !status.LastFailedExportTime.Equal(failure) {
		t.Errorf("failure time not recorded: %+v", status)
	}
}

func TestLaterSuccessSupersedes(t *testing.T) {
	s, _ := newTestStore(t)

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(7 * 24 * time.Hour)

	if err := s.RecordExportSuccess(first, "records.zip", "/mnt/usb"); err != nil {
		t.Fatalf("first success: %v", err)
	}
	if err := s.RecordExportSuccess(second, "records.zip", "/mnt/usb"); err != nil {
		t.Fatalf("second success: %v", err)
	}

	if got := s.ExportStatus().LastSuccessfulExportTime; !got.Equal(second) {
		t.Errorf("expected later timestamp to supersede, got %v", got)
	}
}

func TestImportOngoingFlag(t *testing.T) {
	s, path := newTestStore(t)

	if err := s.SetImportOngoing(true); err != nil {
		t.Fatalf("SetImportOngoing: %v", err)
	}
	if !s.ImportStatus().IsImportOngoing {
		t.Error("expected ongoing flag set")
	}

	// Flag is persisted; a crash mid-import leaves it observable.
	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !reopened.ImportStatus().IsImportOngoing {
		t.Error("expected ongoing flag to survive reopen")
	}

	if err := s.SetImportOngoing(false); err != nil {
		t.Fatalf("clear flag: %v", err)
	}
	if s.ImportStatus().IsImportOngoing {
		t.Error("expected ongoing flag cleared")
	}
}

func TestCorruptSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0o600); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	if _, err := NewStore(path); err == nil {
		t.Error("expected error for corrupt settings file")
	}
}
