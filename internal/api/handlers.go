// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

package api

import (
	"context"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/tomtom215/archivus/internal/export"
	dataimport "github.com/tomtom215/archivus/internal/import"
	"github.com/tomtom215/archivus/internal/logging"
	"github.com/tomtom215/archivus/internal/scheduler"
	"github.com/tomtom215/archivus/internal/settings"
)

// Handlers carries the dependencies of the ops endpoints.
type Handlers struct {
	settings  *settings.Store
	export    *export.Manager
	importMgr *dataimport.Manager
	scheduler *scheduler.Scheduler
	validate  *validator.Validate
}

// NewHandlers creates the ops endpoint handlers.
func NewHandlers(prefs *settings.Store, exportMgr *export.Manager, importMgr *dataimport.Manager, sch *scheduler.Scheduler) *Handlers {
	return &Handlers{
		settings:  prefs,
		export:    exportMgr,
		importMgr: importMgr,
		scheduler: sch,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// statusResponse is the full export/import state of the system.
type statusResponse struct {
	ExportSettings settings.ExportSettings `json:"export_settings"`
	ExportStatus   settings.ExportStatus   `json:"export_status"`
	ImportStatus   settings.ImportStatus   `json:"import_status"`
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status returns the current settings and run statuses.
func (h *Handlers) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		ExportSettings: h.settings.ExportSettings(),
		ExportStatus:   h.settings.ExportStatus(),
		ImportStatus:   h.settings.ImportStatus(),
	})
}

// exportSettingsRequest configures periodic export.
type exportSettingsRequest struct {
	DestinationURI string `json:"destination_uri"`
	PeriodDays     int    `json:"period_days" validate:"gte=0,lte=365"`
}

// UpdateExportSettings stores new export settings and replaces the export
// schedule to match.
func (h *Handlers) UpdateExportSettings(w http.ResponseWriter, r *http.Request) {
	var req exportSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.PeriodDays > 0 && req.DestinationURI == "" {
		writeError(w, http.StatusBadRequest, "destination_uri is required when period_days > 0")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := settings.ExportSettings{DestinationURI: req.DestinationURI, PeriodDays: req.PeriodDays}
	if err := h.settings.SetExportSettings(cfg); err != nil {
		logging.Error().Err(err).Msg("Failed to persist export settings")
		writeError(w, http.StatusInternalServerError, "failed to persist settings")
		return
	}
	if err := h.scheduler.SchedulePeriodicExportJob(cfg); err != nil {
		logging.Error().Err(err).Msg("Failed to reschedule export")
		writeError(w, http.StatusInternalServerError, "failed to schedule export")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// TriggerExport runs one export synchronously and reports its success.
func (h *Handlers) TriggerExport(w http.ResponseWriter, r *http.Request) {
	if h.export.RunExport(r.Context()) {
		writeJSON(w, http.StatusOK, map[string]string{"result": "success"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"result": "failure",
		"status": h.settings.ExportStatus(),
	})
}

// importRequest names the archive to import.
type importRequest struct {
	SourceURI string `json:"source_uri" validate:"required"`
}

// TriggerImport starts a background import of the named archive. A second
// import is rejected while one is ongoing.
func (h *Handlers) TriggerImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "source_uri is required")
		return
	}
	if h.settings.ImportStatus().IsImportOngoing {
		writeError(w, http.StatusConflict, "an import is already in progress")
		return
	}
	if _, err := os.Stat(req.SourceURI); err != nil {
		writeError(w, http.StatusBadRequest, "source file is not accessible")
		return
	}

	go h.importMgr.RunImport(context.Background(), req.SourceURI)
	writeJSON(w, http.StatusAccepted, map[string]string{"result": "started"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
