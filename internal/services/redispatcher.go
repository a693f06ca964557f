package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/faxmemaybe/backend/internal/infrastructure/buffer"
	"github.com/faxmemaybe/backend/usecase"
)

// SweepConfig controls how often buffered dispatches are retried.
type SweepConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// Redispatcher periodically retries print dispatches that failed to reach
// the queue. The artifact for each job is already stored, so only the
// enqueue is replayed; jobs exceeding the retry budget are dropped with a
// log line for operator follow-up.
type Redispatcher struct {
	store  *buffer.Store
	queue  usecase.PrintQueue
	logger *zap.Logger
	cron   *cron.Cron
	cfg    SweepConfig
}

func NewRedispatcher(store *buffer.Store, queue usecase.PrintQueue, logger *zap.Logger, cfg SweepConfig) *Redispatcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rd := &Redispatcher{
		store:  store,
		queue:  queue,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = rd.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := rd.Sweep(ctx); err != nil {
			rd.logger.Error("dispatch sweep failed", zap.Error(err))
		}
	})

	return rd
}

// Start launches the cron scheduler.
func (rd *Redispatcher) Start() {
	if rd == nil || rd.cron == nil {
		return
	}
	rd.cron.Start()
	rd.logger.Info("redispatcher started")
}

// Stop gracefully stops the scheduler.
func (rd *Redispatcher) Stop(ctx context.Context) {
	if rd == nil || rd.cron == nil {
		return
	}
	stopCtx := rd.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	rd.logger.Info("redispatcher stopped")
}

// Sweep retries buffered dispatches synchronously, oldest first.
func (rd *Redispatcher) Sweep(ctx context.Context) error {
	if rd == nil || rd.store == nil {
		return nil
	}

	jobs, err := rd.store.GetBatch(rd.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if err := rd.queue.Enqueue(ctx, job.ArtifactKey, job.TodoID); err != nil {
			rd.logger.Warn("redispatch attempt failed",
				zap.String("todo_id", job.TodoID),
				zap.Int("retries", job.Retries),
				zap.Error(err))

			job.Retries++
			if job.Retries >= rd.cfg.MaxRetries {
				rd.logger.Error("dropping print job (max retries reached)",
					zap.String("todo_id", job.TodoID),
					zap.String("artifact_key", job.ArtifactKey))
				_ = rd.store.Remove(job)
				continue
			}

			if err := rd.store.Remove(job); err != nil {
				rd.logger.Warn("failed to remove buffered job", zap.Error(err))
			}
			if err := rd.store.Requeue(job); err != nil {
				rd.logger.Error("failed to requeue buffered job", zap.Error(err))
			}
			continue
		}

		rd.logger.Info("buffered print job dispatched", zap.String("todo_id", job.TodoID))
		if err := rd.store.Remove(job); err != nil {
			rd.logger.Warn("failed to purge dispatched job", zap.Error(err))
		}
	}
	return nil
}

// Buffer records a failed dispatch for the next sweep.
func (rd *Redispatcher) Buffer(ctx context.Context, todoID, artifactKey string) error {
	if rd == nil || rd.store == nil {
		return fmt.Errorf("redispatcher not configured")
	}
	return rd.store.Enqueue(buffer.Job{
		TodoID:      todoID,
		ArtifactKey: artifactKey,
	})
}

var _ usecase.DispatchBuffer = (*Redispatcher)(nil)
