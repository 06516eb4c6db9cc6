package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/library/internal/config"
)

// AuditEventCleaner deletes audit events older than a retention period.
type AuditEventCleaner interface {
	DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// AuditCleanupScheduler prunes old audit events on a cron schedule.
type AuditCleanupScheduler struct {
	cleaner AuditEventCleaner
	cfg     config.Audit

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

func NewAuditCleanupScheduler(cleaner AuditEventCleaner, cfg config.Audit) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		cleaner: cleaner,
		cfg:     cfg,
		cron:    cron.New(cron.WithParser(newParser())),
	}
}

// Start schedules the cleanup unless retention is disabled.
func (s *AuditCleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.cfg.RetentionDays <= 0 {
		log.Info("Audit cleanup scheduler: retention disabled")
		return nil
	}
	if err := ValidateSchedule(s.cfg.CleanupSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.CleanupSchedule, err)
	}

	if _, err := s.cron.AddFunc(s.cfg.CleanupSchedule, func() {
		s.RunCleanup(context.Background())
	}); err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	log.WithFields(log.Fields{
		"schedule":       s.cfg.CleanupSchedule,
		"retention_days": s.cfg.RetentionDays,
	}).Info("Audit cleanup scheduler: started")
	return nil
}

func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
}

// RunCleanup deletes expired events once.
func (s *AuditCleanupScheduler) RunCleanup(ctx context.Context) (int64, error) {
	retention := time.Duration(s.cfg.RetentionDays) * 24 * time.Hour
	deleted, err := s.cleaner.DeleteOldEvents(ctx, retention)
	if err != nil {
		log.WithError(err).Error("Audit cleanup failed")
		return 0, err
	}
	log.WithFields(log.Fields{
		"deleted":        deleted,
		"retention_days": s.cfg.RetentionDays,
	}).Info("Audit cleanup finished")
	return deleted, nil
}
