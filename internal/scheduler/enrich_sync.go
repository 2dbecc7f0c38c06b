package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SweepEnqueuer queues a metadata sweep over books that lack metadata.
type SweepEnqueuer interface {
	EnqueueEnrichMissing(ctx context.Context) (string, error)
}

// EnrichSyncScheduler periodically enqueues an enrich_missing task. The sweep
// itself runs on the task queue so a slow provider never blocks the cron loop.
type EnrichSyncScheduler struct {
	queue    SweepEnqueuer
	schedule string
	logger   *zap.Logger

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	lastRun   time.Time
	lastTask  string
}

func NewEnrichSyncScheduler(queue SweepEnqueuer, schedule string, logger *zap.Logger) *EnrichSyncScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrichSyncScheduler{
		queue:    queue,
		schedule: schedule,
		logger:   logger.Named("scheduler"),
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start registers the sweep job and starts the cron loop. The scheduler stops
// when ctx is cancelled.
func (s *EnrichSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule metadata sweep: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRunTime(s.schedule, time.Now())
	s.logger.Info("metadata sweep scheduled",
		zap.String("schedule", s.schedule),
		zap.String("description", DescribeSchedule(s.schedule)),
		zap.Time("next_run", next))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to return and stops the cron loop.
func (s *EnrichSyncScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	entryID := s.entryID
	s.mu.Unlock()

	// A job in flight records its result under mu, so wait unlocked.
	<-s.cron.Stop().Done()
	s.cron.Remove(entryID)

	s.logger.Info("metadata sweep scheduler stopped")
}

// RunNow enqueues a sweep immediately, outside the schedule.
func (s *EnrichSyncScheduler) RunNow(ctx context.Context) (string, error) {
	return s.enqueue(ctx)
}

func (s *EnrichSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep is due, or nil when stopped.
func (s *EnrichSyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	next := entry.Next
	return &next
}

// LastRun reports when a sweep was last enqueued and its task id.
func (s *EnrichSyncScheduler) LastRun() (time.Time, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun, s.lastTask
}

func (s *EnrichSyncScheduler) runSweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.enqueue(ctx); err != nil {
		s.logger.Error("failed to enqueue metadata sweep", zap.Error(err))
	}
}

func (s *EnrichSyncScheduler) enqueue(ctx context.Context) (string, error) {
	id, err := s.queue.EnqueueEnrichMissing(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastTask = id
	s.mu.Unlock()

	s.logger.Info("metadata sweep enqueued", zap.String("task_id", id))
	return id, nil
}
