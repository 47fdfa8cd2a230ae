package repository

import (
	"context"
	"time"

	"fitjournal/internal/domain/entity"
)

type WorkoutCacheRepository interface {
	// Upsert inserts or fully overwrites the row keyed by
	// (user_id, whoop_workout_id). Re-syncing an overlapping window must
	// never duplicate rows or merge stale fields.
	Upsert(ctx context.Context, w *entity.CachedWorkout) error

	// FindByID returns the cache row scoped to the user, nil when absent.
	FindByID(ctx context.Context, userID, id int64) (*entity.CachedWorkout, error)

	// FindByTimeRange returns the user's cached workouts whose UTC start falls
	// inside [from, to], ordered by start time.
	FindByTimeRange(ctx context.Context, userID int64, from, to time.Time) ([]entity.CachedWorkout, error)

	// FindUnlinked returns cached workouts not yet associated with a session.
	FindUnlinked(ctx context.Context, userID int64) ([]entity.CachedWorkout, error)

	// FindLinked returns cached workouts that carry a session link.
	FindLinked(ctx context.Context, userID int64) ([]entity.CachedWorkout, error)

	// LinkSession records the one-to-one association with a session.
	LinkSession(ctx context.Context, id, sessionID int64) error

	// DeleteByUser drops the user's whole workout cache.
	DeleteByUser(ctx context.Context, userID int64) error
}

type RecoveryCacheRepository interface {
	// Upsert inserts or fully overwrites the row keyed by
	// (user_id, whoop_cycle_id).
	Upsert(ctx context.Context, c *entity.CachedRecoveryCycle) error

	// FindLatest returns the most recent cycle by start time, nil when the
	// cache is empty.
	FindLatest(ctx context.Context, userID int64) (*entity.CachedRecoveryCycle, error)

	// DeleteByUser drops the user's whole recovery cache.
	DeleteByUser(ctx context.Context, userID int64) error
}
