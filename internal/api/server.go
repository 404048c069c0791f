// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

// Package api exposes the ops HTTP surface: health, metrics, status, and
// the endpoints that configure and trigger export/import runs.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/archivus/internal/logging"
)

// Server hosts the ops API. It implements suture.Service.
type Server struct {
	addr    string
	handler http.Handler
}

// NewServer builds the HTTP server around the given handlers.
func NewServer(host string, port int, h *Handlers) *Server {
	return &Server{
		addr:    fmt.Sprintf("%s:%d", host, port),
		handler: NewRouter(h),
	}
}

// NewRouter assembles the chi router for the ops API.
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.Status)
		r.Put("/settings/export", h.UpdateExportSettings)
		r.Post("/export", h.TriggerExport)
		r.Post("/import", h.TriggerImport)
	})
	return r
}

// Serve implements suture.Service. The listener closes when ctx is
// cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.addr).Msg("Ops API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("Ops API shutdown incomplete")
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
