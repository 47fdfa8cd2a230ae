package repository

import (
	"context"
	"time"

	"fitjournal/internal/domain/entity"
)

type ConnectionRepository interface {
	// FindByUserID returns the user's active connection, or nil without error
	// when the user never connected.
	FindByUserID(ctx context.Context, userID int64) (*entity.Connection, error)

	// FindByWhoopUserID resolves a provider user id to the owning connection.
	FindByWhoopUserID(ctx context.Context, whoopUserID int64) (*entity.Connection, error)

	// Upsert inserts or replaces the user's connection. There is exactly one
	// active connection per user.
	Upsert(ctx context.Context, conn *entity.Connection) error

	// UpdateTokens replaces the stored (encrypted) token pair and its expiry.
	UpdateTokens(ctx context.Context, userID int64, accessTokenEnc, refreshTokenEnc string, expiresAt time.Time) error

	// UpdateLastSyncedAt records a completed sync.
	UpdateLastSyncedAt(ctx context.Context, userID int64, syncedAt time.Time) error

	// Delete removes the connection entirely.
	Delete(ctx context.Context, userID int64) error
}
