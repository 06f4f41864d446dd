// Package scheduler runs background maintenance for the API service:
// purging old audit events and sweeping resume files no application
// references anymore.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"jobdesk/internal/service"
	"jobdesk/internal/store"
)

const (
	// eventRetention is how long audit events are kept.
	eventRetention = 30 * 24 * time.Hour
	// orphanGrace keeps freshly uploaded files out of the sweep. An
	// upload and its application insert are not atomic, so a file can
	// briefly exist without a matching row.
	orphanGrace = 24 * time.Hour
)

// Scheduler runs periodic maintenance tasks.
type Scheduler struct {
	db      *sql.DB
	resumes *service.ResumeService
	cron    *cron.Cron
	logger  *slog.Logger
}

// New creates a scheduler. Call Start to begin running tasks.
func New(db *sql.DB, resumes *service.ResumeService, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:      db,
		resumes: resumes,
		cron:    cron.New(),
		logger:  logger,
	}
}

// Start registers the maintenance jobs and starts the cron loop. Events
// are purged nightly; orphaned resumes are swept hourly.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 3 * * *", func() {
		if err := s.PurgeEvents(); err != nil {
			s.logger.Error("purging audit events", "error", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("30 * * * *", func() {
		if err := s.SweepOrphanedResumes(); err != nil {
			s.logger.Error("sweeping orphaned resumes", "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// PurgeEvents deletes audit events older than the retention window.
func (s *Scheduler) PurgeEvents() error {
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-eventRetention)

	n, err := store.New(s.db).PurgeEventsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("purged audit events", "count", n, "cutoff", cutoff)
	}
	return nil
}

// SweepOrphanedResumes removes stored resume files that no application
// references and that are older than the grace period. Files without the
// resume prefix are never touched.
func (s *Scheduler) SweepOrphanedResumes() error {
	ctx := context.Background()

	referenced, err := store.New(s.db).ListCVFilenames(ctx)
	if err != nil {
		return err
	}
	keep := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		keep[name] = struct{}{}
	}

	entries, err := os.ReadDir(s.resumes.UploadDir())
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-orphanGrace)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), service.StoredPrefix) {
			continue
		}
		if _, ok := keep[entry.Name()]; ok {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(s.resumes.UploadDir(), entry.Name())); err != nil {
			s.logger.Error("removing orphaned resume", "filename", entry.Name(), "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("removed orphaned resumes", "count", removed)
	}
	return nil
}
