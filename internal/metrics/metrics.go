// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

// Package metrics provides Prometheus instrumentation for export, import,
// and scheduling operations. Collectors are registered on the default
// registry via promauto and exposed through the ops HTTP surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Export metrics

	ExportRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archivus_export_runs_total",
			Help: "Total number of export runs by result",
		},
		[]string{"result"}, // "success", "lost_file_access", "unknown", "disabled"
	)

	ExportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "archivus_export_duration_seconds",
			Help:    "Duration of export runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	ExportSnapshotBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "archivus_export_snapshot_bytes",
			Help: "Size of the staged database snapshot from the last export",
		},
	)

	ExportLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "archivus_export_last_success_timestamp",
			Help: "Unix timestamp of the last successful export",
		},
	)

	// Import metrics

	ImportRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archivus_import_runs_total",
			Help: "Total number of import runs by result",
		},
		[]string{"result"}, // "success", "wrong_file", "version_mismatch", "unknown"
	)

	ImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "archivus_import_duration_seconds",
			Help:    "Duration of import runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	ImportTablesRestored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "archivus_import_tables_restored_total",
			Help: "Total number of tables restored from import archives",
		},
	)

	// Scheduler metrics

	ScheduledJobs = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "archivus_scheduled_jobs",
			Help: "Current number of pending jobs by namespace",
		},
		[]string{"namespace"},
	)

	JobExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archivus_job_executions_total",
			Help: "Total number of job executions by namespace and result",
		},
		[]string{"namespace", "result"},
	)
)

// ObserveExport records the outcome and duration of one export run.
func ObserveExport(result string, elapsed time.Duration) {
	ExportRunsTotal.WithLabelValues(result).Inc()
	ExportDuration.Observe(elapsed.Seconds())
}

// ObserveImport records the outcome and duration of one import run.
func ObserveImport(result string, elapsed time.Duration) {
	ImportRunsTotal.WithLabelValues(result).Inc()
	ImportDuration.Observe(elapsed.Seconds())
}
