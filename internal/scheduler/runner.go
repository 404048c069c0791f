// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

package scheduler

import (
	"context"
	"time"

	"github.com/tomtom215/archivus/internal/logging"
	"github.com/tomtom215/archivus/internal/metrics"
)

// Executor runs one due job and reports success.
type Executor interface {
	Execute(ctx context.Context, job Job) bool
}

// Runner polls the job store and executes due jobs. It implements
// suture.Service and runs under the process supervisor.
type Runner struct {
	jobs         *JobStore
	executors    map[string]Executor
	pollInterval time.Duration
	retryBackoff time.Duration

	// now is injectable for deterministic tests.
	now func() time.Time
}

// NewRunner creates a runner that polls every pollInterval and retries
// failed jobs after retryBackoff.
func NewRunner(jobs *JobStore, pollInterval, retryBackoff time.Duration) *Runner {
	return &Runner{
		jobs:         jobs,
		executors:    make(map[string]Executor),
		pollInterval: pollInterval,
		retryBackoff: retryBackoff,
		now:          time.Now,
	}
}

// Register binds an executor to a job namespace. Not safe to call after
// Serve starts.
func (r *Runner) Register(namespace string, exec Executor) {
	r.executors[namespace] = exec
}

// Serve implements suture.Service.
func (r *Runner) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	logging.Info().Dur("poll_interval", r.pollInterval).Msg("Job runner started")
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Job runner stopping")
			return ctx.Err()
		case <-ticker.C:
			r.RunDue(ctx)
		}
	}
}

// RunDue executes every job whose next run time has arrived. Successful
// jobs advance by their interval, failed jobs retry after the backoff.
// Jobs removed or replaced by their own executor are left alone.
func (r *Runner) RunDue(ctx context.Context) {
	now := r.now()
	for _, job := range r.jobs.DueJobs(now) {
		exec, ok := r.executors[job.Namespace]
		if !ok {
			logging.Warn().Str("namespace", job.Namespace).Msg("No executor for namespace, skipping job")
			continue
		}

		ok = exec.Execute(ctx, job)
		result := "success"
		next := now.Add(job.Interval)
		if !ok {
			result = "failure"
			next = now.Add(r.retryBackoff)
		}
		metrics.JobExecutionsTotal.WithLabelValues(job.Namespace, result).Inc()

		if _, exists := r.jobs.Get(job.ID); !exists {
			continue
		}
		if err := r.jobs.Reschedule(job.ID, next); err != nil {
			logging.Error().Err(err).Str("job_id", job.ID).Msg("Failed to reschedule job")
		}
		logging.Debug().
			Str("job_id", job.ID).
			Str("namespace", job.Namespace).
			Str("result", result).
			Time("next_run", next).
			Msg("Job executed")
	}
}
