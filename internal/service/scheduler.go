package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tidecast/tidecast/internal/config"
	"github.com/tidecast/tidecast/internal/models"
	"github.com/tidecast/tidecast/internal/store"
)

// Scheduler creates jobs and, on a timer, hands due jobs to the dispatcher.
// Scan cycles never overlap: a trigger that arrives while a cycle is still
// running is acknowledged and coalesced into the running one.
type Scheduler struct {
	config     *config.SchedulerConfig
	logger     *zap.Logger
	store      *store.Store
	dispatcher *Dispatcher
	ticker     *time.Ticker
	stopCh     chan struct{}
	cycleMu    sync.Mutex
}

func NewScheduler(cfg *config.SchedulerConfig, logger *zap.Logger, st *store.Store, dispatcher *Dispatcher) *Scheduler {
	return &Scheduler{
		config:     cfg,
		logger:     logger,
		store:      st,
		dispatcher: dispatcher,
		stopCh:     make(chan struct{}),
	}
}

// Enqueue is the public creation entry point. Scheduling a timestamp in the
// past is legal: the job becomes due on the next cycle, which is how
// "publish now" is built on the same path.
func (s *Scheduler) Enqueue(ctx context.Context, spec store.JobSpec) (*models.ScheduledJob, error) {
	job, err := s.store.CreateJob(ctx, spec)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Job enqueued",
		zap.String("job_id", job.ID),
		zap.String("platform", job.Platform),
		zap.Time("scheduled_for", job.ScheduledFor))

	return job, nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled")
		return nil
	}

	interval, err := time.ParseDuration(s.config.ScanInterval)
	if err != nil {
		s.logger.Error("Invalid scan interval", zap.String("interval", s.config.ScanInterval), zap.Error(err))
		return err
	}

	s.logger.Info("Starting scheduler", zap.String("scan_interval", s.config.ScanInterval))

	s.ticker = time.NewTicker(interval)

	// Run first scan immediately
	go func() {
		s.logger.Info("Running initial scan cycle")
		if err := s.RunDueCycle(ctx); err != nil {
			s.logger.Error("Initial scan cycle failed", zap.Error(err))
		}
	}()

	// Start periodic scans
	go func() {
		for {
			select {
			case <-s.ticker.C:
				if err := s.RunDueCycle(ctx); err != nil {
					s.logger.Error("Scan cycle failed", zap.Error(err))
				}
			case <-s.stopCh:
				s.logger.Info("Scheduler stopped")
				return
			case <-ctx.Done():
				s.logger.Info("Scheduler context cancelled")
				return
			}
		}
	}()

	return nil
}

func (s *Scheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
	s.logger.Info("Scheduler shutdown completed")
}

// RunDueCycle selects every due job and dispatches each one independently.
// One job's failure never aborts the rest of the cycle; outcomes land in the
// job store, not in the return value.
func (s *Scheduler) RunDueCycle(ctx context.Context) error {
	if !s.cycleMu.TryLock() {
		s.logger.Info("Scan cycle already running, coalescing trigger")
		return nil
	}
	defer s.cycleMu.Unlock()

	start := time.Now()

	jobs, err := s.store.ListDueJobs(ctx, start)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return nil
	}

	s.logger.Info("Dispatching due jobs", zap.Int("count", len(jobs)))

	maxConcurrent := s.config.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrent)
	for i := range jobs {
		job := jobs[i]
		g.Go(func() error {
			// Attempt records its own outcome; a commit error here means
			// another attempt won the terminal write, nothing to do.
			if _, err := s.dispatcher.Attempt(ctx, &job); err != nil {
				s.logger.Debug("Dispatch result not committed",
					zap.String("job_id", job.ID),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("Scan cycle completed",
		zap.Int("jobs", len(jobs)),
		zap.Duration("duration", time.Since(start)))

	return nil
}
