package repository

import (
	"context"
	"time"

	"fitjournal/internal/domain/entity"
)

// SessionRepository is the journal's session store, consumed by this
// subsystem. Reads are scoped by user.
type SessionRepository interface {
	Create(ctx context.Context, s *entity.Session) (int64, error)
	GetByID(ctx context.Context, userID, id int64) (*entity.Session, error)
	Update(ctx context.Context, s *entity.Session) error

	// ClearWearableData nils the wearable-derived fields on all of the user's
	// sessions, used when a connection is removed.
	ClearWearableData(ctx context.Context, userID int64) error
}

// ProfileRepository exposes the journal defaults used for auto-created
// sessions. Returns nil without error when no profile exists.
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID int64) (*entity.Profile, error)
}

// ReadinessLogger records a readiness check-in derived from a recovery score.
type ReadinessLogger interface {
	LogReadiness(ctx context.Context, userID int64, date time.Time, sleepRating, energyRating int) error
}
