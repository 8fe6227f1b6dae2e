// Package tasks runs the background jobs: queue reconciliation, session
// purging, and scheduled encrypted backups.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"folio/internal/config"
	"folio/internal/offline"
	"folio/internal/services"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron       *cron.Cron
	cfg        config.Config
	reconciler *offline.Reconciler
	sessions   *services.SessionService
	backup     *services.BackupService
}

func NewScheduler(cfg config.Config, reconciler *offline.Reconciler, sessions *services.SessionService, backup *services.BackupService) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		cfg:        cfg,
		reconciler: reconciler,
		sessions:   sessions,
		backup:     backup,
	}
}

func (s *Scheduler) Start() {
	spec := fmt.Sprintf("@every %s", s.cfg.SyncInterval)
	if _, err := s.cron.AddFunc(spec, recoveryWrapper(s.drainQueue)); err != nil {
		log.Printf("scheduling sync drain: %v", err)
	}

	if _, err := s.cron.AddFunc("@every 1h", recoveryWrapper(s.purgeSessions)); err != nil {
		log.Printf("scheduling session purge: %v", err)
	}

	if s.cfg.BackupPassword != "" {
		if _, err := s.cron.AddFunc(s.cfg.BackupCron, recoveryWrapper(s.runBackup)); err != nil {
			log.Printf("scheduling backup: %v", err)
		}
	}

	s.cron.Start()
	log.Printf("scheduler started: sync every %s, backup %s", s.cfg.SyncInterval, backupStatus(s.cfg))
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) drainQueue() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SyncInterval)
	defer cancel()

	applied, err := s.reconciler.Drain(ctx)
	if err != nil {
		log.Printf("sync drain failed: %v", err)
		return
	}
	if applied > 0 {
		log.Printf("sync drain applied %d queued operations", applied)
	}
}

func (s *Scheduler) purgeSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	purged, err := s.sessions.PurgeExpired(ctx)
	if err != nil {
		log.Printf("session purge failed: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("purged %d expired sessions", purged)
	}
}

func (s *Scheduler) runBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	data, name, err := s.backup.Export(ctx, s.cfg.BackupPassword)
	if errors.Is(err, services.ErrBackupNoChange) {
		return
	}
	if err != nil {
		log.Printf("scheduled backup failed: %v", err)
		return
	}

	if err := os.MkdirAll(s.cfg.BackupDir, 0o755); err != nil {
		log.Printf("creating backup dir: %v", err)
		return
	}
	path := filepath.Join(s.cfg.BackupDir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		log.Printf("writing backup %s: %v", path, err)
		return
	}
	log.Printf("backup written to %s", path)
}

func backupStatus(cfg config.Config) string {
	if cfg.BackupPassword == "" {
		return "disabled"
	}
	return cfg.BackupCron
}

func recoveryWrapper(job func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("scheduled job panicked: %v\n%s", r, debug.Stack())
			}
		}()
		job()
	}
}
