package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/stats"
)

// OverdueSource provides the current overdue snapshot.
type OverdueSource interface {
	OverdueSnapshot(ctx context.Context) ([]stats.OverdueRow, error)
}

// OverdueReportScheduler periodically logs every overdue loan.
type OverdueReportScheduler struct {
	source OverdueSource
	cfg    config.OverdueReport

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc

	reporting atomic.Bool
}

func newParser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := newParser().Parse(schedule)
	return err
}

func NewOverdueReportScheduler(source OverdueSource, cfg config.OverdueReport) *OverdueReportScheduler {
	return &OverdueReportScheduler{
		source: source,
		cfg:    cfg,
		cron:   cron.New(cron.WithParser(newParser())),
	}
}

// Start begins the scheduler if the report is enabled
func (s *OverdueReportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Info("Overdue report scheduler: disabled")
		return nil
	}

	if err := ValidateSchedule(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.RunReport(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule overdue report: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.WithFields(log.Fields{
		"schedule": s.cfg.Schedule,
		"next_run": s.cron.Entry(entryID).Next,
	}).Info("Overdue report scheduler: started")

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running report and stops the scheduler
func (s *OverdueReportScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Info("Overdue report scheduler: stopped")
}

func (s *OverdueReportScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next report will run
func (s *OverdueReportScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}

// RunReport logs the overdue snapshot once and returns the number of
// overdue loans. Overlapping runs are skipped.
func (s *OverdueReportScheduler) RunReport(ctx context.Context) (int, error) {
	if !s.reporting.CompareAndSwap(false, true) {
		log.Info("Overdue report: previous run still in progress, skipping")
		return 0, nil
	}
	defer s.reporting.Store(false)

	rows, err := s.source.OverdueSnapshot(ctx)
	if err != nil {
		log.WithError(err).Error("Overdue report failed")
		return 0, err
	}

	log.WithField("overdue_count", len(rows)).Info("Overdue report")
	for _, row := range rows {
		log.WithFields(log.Fields{
			"borrow_id":    row.BorrowID,
			"reader":       row.ReaderName,
			"phone":        row.Phone,
			"book":         row.BookName,
			"due_date":     row.DueDate,
			"overdue_days": row.OverdueDays,
		}).Warn("Overdue loan")
	}
	return len(rows), nil
}
