package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrSyncInProgress is returned by RunNow while another sync is running.
var ErrSyncInProgress = errors.New("sync already in progress")

// SyncFunc performs one import run.
type SyncFunc func(ctx context.Context) error

// SyncScheduler runs a SyncFunc periodically on a cron schedule.
// Runs never overlap: a tick that fires during a run is skipped.
type SyncScheduler struct {
	schedule string
	syncFn   SyncFunc
	logger   *slog.Logger

	cron    *cron.Cron
	entryID cron.EntryID
	mu      sync.RWMutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc

	syncMu sync.Mutex
}

// NewSyncScheduler creates a new scheduler instance
func NewSyncScheduler(schedule string, syncFn SyncFunc, logger *slog.Logger) *SyncScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncScheduler{
		schedule: schedule,
		syncFn:   syncFn,
		logger:   logger,
		cron:     cron.New(cron.WithParser(scheduleParser)),
		ctx:      context.Background(),
	}
}

// Start begins the scheduler. Cancelling ctx stops it.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	runCtx, cancel := context.WithCancel(ctx)

	entryID, err := s.cron.AddFunc(s.schedule, func() { s.runScheduled(runCtx) })
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID
	s.ctx, s.cancel = runCtx, cancel

	s.cron.Start()
	s.running = true

	nextRun, _ := NextRun(s.schedule, time.Now())
	s.logger.Info("Sync scheduler started",
		slog.String("schedule", s.schedule),
		slog.String("description", Describe(s.schedule)),
		slog.Time("next_run", nextRun),
	)

	go func() {
		<-runCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running sync to finish
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	cronCtx := s.cron.Stop()
	<-cronCtx.Done()

	s.cron.Remove(s.entryID)
	s.cancel()
	s.running = false

	s.logger.Info("Sync scheduler stopped")
}

// RunNow runs a sync immediately and returns its error
func (s *SyncScheduler) RunNow() error {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()

	return s.runSync(ctx)
}

// IsRunning returns whether the scheduler is active
func (s *SyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// NextRunTime returns when the next sync will occur
func (s *SyncScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runScheduled must not take mu: Stop holds it while waiting for jobs.
func (s *SyncScheduler) runScheduled(ctx context.Context) {
	if err := s.runSync(ctx); err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			s.logger.Warn("Scheduled sync skipped, previous run still in progress")
			return
		}
		s.logger.Error("Scheduled sync failed", slog.String("error", err.Error()))
	}
}

func (s *SyncScheduler) runSync(ctx context.Context) error {
	if !s.syncMu.TryLock() {
		return ErrSyncInProgress
	}
	defer s.syncMu.Unlock()

	s.logger.Info("Sync started")
	startTime := time.Now()

	if err := s.syncFn(ctx); err != nil {
		return err
	}

	s.logger.Info("Sync finished", slog.Duration("duration", time.Since(startTime).Round(time.Millisecond)))
	return nil
}
