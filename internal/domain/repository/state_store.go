package repository

import (
	"context"
	"time"
)

// StateStore persists short-lived OAuth CSRF state tokens. States are
// single-use: Consume destroys the token on first read regardless of outcome.
type StateStore interface {
	Save(ctx context.Context, state string, userID int64, ttl time.Duration) error

	// Consume atomically reads and deletes the state, returning the owning
	// user id. A missing, expired, or already-consumed state yields
	// entity.ErrInvalidState.
	Consume(ctx context.Context, state string) (int64, error)
}
