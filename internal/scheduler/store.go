// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

package scheduler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/archivus/internal/metrics"
)

// JobStore persists jobs to a JSON file. Every mutation rewrites the file
// atomically so a crash never leaves a torn schedule behind.
type JobStore struct {
	path string

	mu   sync.Mutex
	jobs map[string]Job // keyed by job ID
}

// NewJobStore loads the job file at path, tolerating a missing file on
// first use.
func NewJobStore(path string) (*JobStore, error) {
	s := &JobStore{path: path, jobs: make(map[string]Job)}

	data, err := os.ReadFile(path) //nolint:gosec // G304: operator-configured state file
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}

	var jobs []Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("parse job file %s: %w", path, err)
	}
	for _, j := range jobs {
		s.jobs[j.ID] = j
	}
	s.updateGaugesLocked()
	return s, nil
}

// Schedule persists a job. Any existing job with the same ID is replaced.
func (s *JobStore) Schedule(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[job.ID] = job
	return s.saveLocked()
}

// CancelNamespace removes every job in the namespace.
func (s *JobStore) CancelNamespace(namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, j := range s.jobs {
		if j.Namespace == namespace {
			delete(s.jobs, id)
		}
	}
	return s.saveLocked()
}

// PendingJobs returns the jobs in the namespace, ordered by NextRun.
func (s *JobStore) PendingJobs(namespace string) []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var jobs []Job
	for _, j := range s.jobs {
		if j.Namespace == namespace {
			jobs = append(jobs, j)
		}
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].NextRun.Before(jobs[k].NextRun) })
	return jobs
}

// DueJobs returns every job whose NextRun is at or before now.
func (s *JobStore) DueJobs(now time.Time) []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []Job
	for _, j := range s.jobs {
		if j.Due(now) {
			due = append(due, j)
		}
	}
	sort.Slice(due, func(i, k int) bool { return due[i].NextRun.Before(due[k].NextRun) })
	return due
}

// Get returns the job with the given ID, if it still exists.
func (s *JobStore) Get(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	return j, ok
}

// Reschedule moves an existing job's next run time. A job removed since it
// was read is left alone.
func (s *JobStore) Reschedule(id string, nextRun time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil
	}
	j.NextRun = nextRun
	s.jobs[id] = j
	return s.saveLocked()
}

// saveLocked writes the job file atomically. Callers must hold mu.
func (s *JobStore) saveLocked() error {
	s.updateGaugesLocked()

	jobs := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].ID < jobs[k].ID })

	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal jobs: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".jobs-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp job file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // Best effort cleanup

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("write temp job file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp job file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace job file: %w", err)
	}
	return nil
}

// updateGaugesLocked refreshes the pending-job gauge per namespace.
func (s *JobStore) updateGaugesLocked() {
	counts := make(map[string]int)
	for _, j := range s.jobs {
		counts[j.Namespace]++
	}
	metrics.ScheduledJobs.Reset()
	for ns, n := range counts {
		metrics.ScheduledJobs.WithLabelValues(ns).Set(float64(n))
	}
}
