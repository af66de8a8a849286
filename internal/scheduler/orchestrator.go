package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/themis/internal/jobs"
	"github.com/fortuna/themis/internal/reconcile"
)

// Config holds scheduler configuration.
type Config struct {
	PollInterval         time.Duration // Default: 3m
	MaxConsecutiveErrors int           // Default: 5
	ErrorBackoff         time.Duration // Default: 1m
}

// DefaultConfig returns default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{
		PollInterval:         3 * time.Minute,
		MaxConsecutiveErrors: 5,
		ErrorBackoff:         time.Minute,
	}
}

// Broadcaster receives finished pass summaries.
type Broadcaster interface {
	BroadcastSummary(summary reconcile.PassSummary)
}

// Orchestrator drives the polling loop: run a reconciliation pass every
// interval, record it as a job, publish the summary. Manual triggers go
// through the same path as scheduled runs.
type Orchestrator struct {
	driver      *reconcile.Driver
	jobStore    *jobs.Store
	broadcaster Broadcaster
	config      *Config
	logger      *zap.Logger
	cancel      context.CancelFunc

	mu     sync.RWMutex
	latest *reconcile.PassSummary
}

// NewOrchestrator creates a scheduler around a driver. The broadcaster
// is optional.
func NewOrchestrator(driver *reconcile.Driver, jobStore *jobs.Store, broadcaster Broadcaster, config *Config, logger *zap.Logger) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Orchestrator{
		driver:      driver,
		jobStore:    jobStore,
		broadcaster: broadcaster,
		config:      config,
		logger:      logger,
	}
}

// Start runs the polling loop until the context is cancelled. The first
// pass runs immediately.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	o.logger.Info("scheduler started",
		zap.Duration("interval", o.config.PollInterval))

	ticker := time.NewTicker(o.config.PollInterval)
	defer ticker.Stop()

	consecutiveErrors := 0
	o.runScheduledPass(ctx, &consecutiveErrors)

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			o.runScheduledPass(ctx, &consecutiveErrors)
		}
	}
}

// Stop cancels the polling loop.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
}

func (o *Orchestrator) runScheduledPass(ctx context.Context, consecutiveErrors *int) {
	job, err := o.jobStore.Enqueue(ctx, "reconciliation-pass")
	if err != nil {
		o.logger.Error("enqueueing scheduled pass", zap.Error(err))
		job = jobs.Job{}
	}

	if err := o.executePass(ctx, job); err != nil {
		if errors.Is(err, reconcile.ErrPassInProgress) {
			o.logger.Warn("skipping pass, previous still running")
			return
		}
		*consecutiveErrors++
		o.logger.Error("pass failed",
			zap.Int("consecutive_errors", *consecutiveErrors),
			zap.Error(err))

		if *consecutiveErrors >= o.config.MaxConsecutiveErrors {
			o.logger.Warn("high error rate, backing off",
				zap.Duration("backoff", o.config.ErrorBackoff))
			select {
			case <-ctx.Done():
			case <-time.After(o.config.ErrorBackoff):
			}
		}
		return
	}
	*consecutiveErrors = 0
}

// Trigger starts a pass on demand and returns its job record. The pass
// itself runs in the background; callers poll the job for the outcome.
func (o *Orchestrator) Trigger(ctx context.Context) (jobs.Job, error) {
	if o.driver.Running() {
		return jobs.Job{}, reconcile.ErrPassInProgress
	}

	job, err := o.jobStore.Enqueue(ctx, "reconciliation-pass")
	if err != nil {
		return jobs.Job{}, errors.Wrap(err, "enqueueing pass")
	}

	go func() {
		bg := context.Background()
		if err := o.executePass(bg, job); err != nil {
			if errors.Is(err, reconcile.ErrPassInProgress) {
				if markErr := o.jobStore.MarkFailed(bg, job.ID, err); markErr != nil {
					o.logger.Warn("marking job failed", zap.String("job_id", job.ID), zap.Error(markErr))
				}
				return
			}
			o.logger.Error("triggered pass failed",
				zap.String("job_id", job.ID),
				zap.Error(err))
		}
	}()
	return job, nil
}

// Latest returns the most recent pass summary.
func (o *Orchestrator) Latest() (reconcile.PassSummary, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.latest == nil {
		return reconcile.PassSummary{}, false
	}
	return *o.latest, true
}

func (o *Orchestrator) executePass(ctx context.Context, job jobs.Job) error {
	if job.ID != "" {
		if err := o.jobStore.MarkRunning(ctx, job.ID); err != nil {
			o.logger.Warn("marking job running", zap.String("job_id", job.ID), zap.Error(err))
		}
	}

	summary, err := o.driver.Run(ctx, time.Now().UTC())
	if err != nil {
		if job.ID != "" && !errors.Is(err, reconcile.ErrPassInProgress) {
			if markErr := o.jobStore.MarkFailed(ctx, job.ID, err); markErr != nil {
				o.logger.Warn("marking job failed", zap.String("job_id", job.ID), zap.Error(markErr))
			}
		}
		return err
	}

	o.mu.Lock()
	o.latest = &summary
	o.mu.Unlock()

	if job.ID != "" {
		if err := o.jobStore.MarkCompleted(ctx, job.ID, summary); err != nil {
			o.logger.Warn("marking job completed", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	if o.broadcaster != nil {
		o.broadcaster.BroadcastSummary(summary)
	}
	return nil
}
