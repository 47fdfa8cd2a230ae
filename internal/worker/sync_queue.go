package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fitjournal/internal/config"
	"fitjournal/internal/domain/entity"
)

type JobKind string

const (
	JobSyncWorkouts JobKind = "sync_workouts"
	JobSyncRecovery JobKind = "sync_recovery"
)

// SyncJob is one unit of webhook-triggered sync work.
type SyncJob struct {
	UserID   int64
	Kind     JobKind
	DaysBack int
}

// Syncer is the subset of the sync engine the worker drives. Satisfied by
// usecase.SyncUsecase.
type Syncer interface {
	SyncWorkouts(ctx context.Context, userID int64, daysBack int) (*entity.SyncResult, error)
	SyncRecovery(ctx context.Context, userID int64, daysBack int) (*entity.SyncResult, error)
}

// Queue decouples webhook response latency from sync duration: the receiver
// enqueues and acks, a single goroutine drains. Jobs are fire-and-forget; a
// full queue drops the job with a log line rather than blocking the request.
type Queue struct {
	jobs     chan SyncJob
	syncer   Syncer
	deadline time.Duration
	logger   *zap.Logger
}

func NewQueue(cfg *config.Config, syncer Syncer, logger *zap.Logger) *Queue {
	return &Queue{
		jobs:     make(chan SyncJob, cfg.Sync.QueueSize),
		syncer:   syncer,
		deadline: cfg.Sync.Deadline,
		logger:   logger,
	}
}

// TryEnqueue adds a job without blocking. Returns false when the queue is
// full.
func (q *Queue) TryEnqueue(job SyncJob) bool {
	select {
	case q.jobs <- job:
		return true
	default:
		q.logger.Warn("Sync queue full, dropping job",
			zap.Int64("user_id", job.UserID),
			zap.String("kind", string(job.Kind)),
		)
		return false
	}
}

// Run drains the queue until the context is cancelled.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.jobs:
			q.process(ctx, job)
		}
	}
}

func (q *Queue) process(ctx context.Context, job SyncJob) {
	jobCtx, cancel := context.WithTimeout(ctx, q.deadline)
	defer cancel()

	var result *entity.SyncResult
	var err error

	switch job.Kind {
	case JobSyncWorkouts:
		result, err = q.syncer.SyncWorkouts(jobCtx, job.UserID, job.DaysBack)
	case JobSyncRecovery:
		result, err = q.syncer.SyncRecovery(jobCtx, job.UserID, job.DaysBack)
	default:
		q.logger.Warn("Unknown sync job kind", zap.String("kind", string(job.Kind)))
		return
	}

	if err != nil {
		// Webhook-driven sync is fire-and-forget: failures are logged, never
		// surfaced to the provider.
		q.logger.Error("Background sync failed",
			zap.Int64("user_id", job.UserID),
			zap.String("kind", string(job.Kind)),
			zap.Error(err),
		)
		return
	}

	q.logger.Info("Background sync completed",
		zap.Int64("user_id", job.UserID),
		zap.String("kind", string(job.Kind)),
		zap.Int("synced", result.Synced),
	)
}
