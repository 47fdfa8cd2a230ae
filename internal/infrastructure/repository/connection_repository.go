package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"fitjournal/internal/domain/entity"
	"fitjournal/internal/domain/repository"
	"fitjournal/internal/infrastructure/database"
)

type connectionRepository struct {
	db *database.Database
}

func NewConnectionRepository(db *database.Database) repository.ConnectionRepository {
	return &connectionRepository{
		db: db,
	}
}

const connectionColumns = `
	id, user_id, whoop_user_id, access_token, refresh_token, token_expires_at,
	scopes, auto_create_sessions, auto_fill_readiness, last_synced_at,
	is_active, created_at, updated_at`

func (r *connectionRepository) FindByUserID(ctx context.Context, userID int64) (*entity.Connection, error) {
	query := `SELECT` + connectionColumns + `
		FROM whoop_connections
		WHERE user_id = $1 AND is_active = TRUE
	`
	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, userID))
}

func (r *connectionRepository) FindByWhoopUserID(ctx context.Context, whoopUserID int64) (*entity.Connection, error) {
	query := `SELECT` + connectionColumns + `
		FROM whoop_connections
		WHERE whoop_user_id = $1 AND is_active = TRUE
	`
	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, whoopUserID))
}

func (r *connectionRepository) scanOne(row *sql.Row) (*entity.Connection, error) {
	var conn entity.Connection
	var scopes string
	var lastSyncedAt sql.NullTime

	err := row.Scan(
		&conn.ID,
		&conn.UserID,
		&conn.WhoopUserID,
		&conn.AccessTokenEnc,
		&conn.RefreshTokenEnc,
		&conn.TokenExpiresAt,
		&scopes,
		&conn.AutoCreateSessions,
		&conn.AutoFillReadiness,
		&lastSyncedAt,
		&conn.IsActive,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // Not found, return nil without error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan connection: %w", err)
	}

	conn.Scopes = strings.Fields(scopes)
	if lastSyncedAt.Valid {
		conn.LastSyncedAt = &lastSyncedAt.Time
	}

	return &conn, nil
}

func (r *connectionRepository) Upsert(ctx context.Context, conn *entity.Connection) error {
	// One active connection per user, enforced by the unique key on user_id
	query := `
		INSERT INTO whoop_connections (
			user_id, whoop_user_id, access_token, refresh_token, token_expires_at,
			scopes, auto_create_sessions, auto_fill_readiness, last_synced_at,
			is_active, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			whoop_user_id = EXCLUDED.whoop_user_id,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			scopes = EXCLUDED.scopes,
			auto_create_sessions = EXCLUDED.auto_create_sessions,
			auto_fill_readiness = EXCLUDED.auto_fill_readiness,
			last_synced_at = EXCLUDED.last_synced_at,
			is_active = TRUE,
			updated_at = EXCLUDED.updated_at
	`

	var lastSyncedAt sql.NullTime
	if conn.LastSyncedAt != nil {
		lastSyncedAt = sql.NullTime{Time: *conn.LastSyncedAt, Valid: true}
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		conn.UserID,
		conn.WhoopUserID,
		conn.AccessTokenEnc,
		conn.RefreshTokenEnc,
		conn.TokenExpiresAt,
		strings.Join(conn.Scopes, " "),
		conn.AutoCreateSessions,
		conn.AutoFillReadiness,
		lastSyncedAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert connection: %w", err)
	}

	return nil
}

func (r *connectionRepository) UpdateTokens(ctx context.Context, userID int64, accessTokenEnc, refreshTokenEnc string, expiresAt time.Time) error {
	query := `
		UPDATE whoop_connections
		SET access_token = $1, refresh_token = $2, token_expires_at = $3, updated_at = $4
		WHERE user_id = $5
	`

	_, err := r.db.DB.ExecContext(ctx, query, accessTokenEnc, refreshTokenEnc, expiresAt, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update tokens: %w", err)
	}

	return nil
}

func (r *connectionRepository) UpdateLastSyncedAt(ctx context.Context, userID int64, syncedAt time.Time) error {
	query := `
		UPDATE whoop_connections
		SET last_synced_at = $1, updated_at = $2
		WHERE user_id = $3
	`

	_, err := r.db.DB.ExecContext(ctx, query, syncedAt, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update last synced at: %w", err)
	}

	return nil
}

func (r *connectionRepository) Delete(ctx context.Context, userID int64) error {
	_, err := r.db.DB.ExecContext(ctx, `DELETE FROM whoop_connections WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	return nil
}
