package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/barber-dashboard/backend/internal/logger"
	"github.com/barber-dashboard/backend/internal/storage/models"
)

// Scheduler polls the webhook on a fixed interval and runs manual syncs.
type Scheduler struct {
	cron         *cron.Cron
	service      *Service
	interval     time.Duration
	refreshDelay time.Duration
	log          *zap.Logger

	entryID cron.EntryID
	mu      sync.RWMutex

	// Background syncs started by triggers; canceled on Stop.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that polls every interval and runs the
// follow-up sync refreshDelay after a refresh.
func NewScheduler(service *Service, interval, refreshDelay time.Duration, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	cronLog := logger.NewCronLogger(log)
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		service:      service,
		interval:     interval,
		refreshDelay: refreshDelay,
		log:          log.Named("scheduler"),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start schedules polling and runs the first sync immediately in the
// background.
func (s *Scheduler) Start() error {
	spec := "@every " + s.interval.String()
	id, err := s.cron.AddFunc(spec, func() {
		s.sync(models.TriggerSchedule)
	})
	if err != nil {
		return fmt.Errorf("scheduling poll %q: %w", spec, err)
	}

	s.mu.Lock()
	s.entryID = id
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info("scheduler started", zap.Duration("interval", s.interval))

	s.TriggerSync(models.TriggerStartup)
	return nil
}

// Stop halts polling and waits for running syncs to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

// TriggerSync runs a sync in the background.
func (s *Scheduler) TriggerSync(trigger string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.sync(trigger)
	}()
}

// TriggerRefresh calls the refresh webhook and, if it succeeds, schedules
// a sync after the refresh delay. It returns when the follow-up sync is due.
func (s *Scheduler) TriggerRefresh(ctx context.Context) (time.Time, error) {
	syncAt := s.service.now().Add(s.refreshDelay)
	if err := s.service.Refresh(ctx, syncAt); err != nil {
		return time.Time{}, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(s.refreshDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
			s.sync(models.TriggerRefresh)
		case <-s.ctx.Done():
		}
	}()

	return syncAt, nil
}

// NextRun returns the next scheduled poll time, or nil before Start.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.entryID == 0 {
		return nil
	}
	entry := s.cron.Entry(s.entryID)
	if entry.Next.IsZero() {
		return nil
	}
	next := entry.Next
	return &next
}

// Interval returns the poll interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

func (s *Scheduler) sync(trigger string) {
	ctx := s.ctx
	if ctx.Err() != nil {
		return
	}
	// Errors are logged and recorded by the service.
	_, _ = s.service.Sync(ctx, trigger)
}
