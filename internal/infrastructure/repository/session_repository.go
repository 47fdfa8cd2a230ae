package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fitjournal/internal/domain/entity"
	"fitjournal/internal/domain/repository"
	"fitjournal/internal/infrastructure/database"
)

type sessionRepository struct {
	db *database.Database
}

func NewSessionRepository(db *database.Database) repository.SessionRepository {
	return &sessionRepository{
		db: db,
	}
}

func (r *sessionRepository) Create(ctx context.Context, s *entity.Session) (int64, error) {
	query := `
		INSERT INTO sessions (
			user_id, session_date, class_time, duration_minutes, gym, class_type,
			source, needs_review, strain, calories, average_heart_rate, max_heart_rate
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	var id int64
	err := r.db.DB.QueryRowContext(ctx, query,
		s.UserID,
		s.Date,
		s.ClassTime,
		s.DurationMinutes,
		s.Gym,
		s.ClassType,
		s.Source,
		s.NeedsReview,
		s.Strain,
		s.Calories,
		s.AverageHeartRate,
		s.MaxHeartRate,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}

	return id, nil
}

func (r *sessionRepository) GetByID(ctx context.Context, userID, id int64) (*entity.Session, error) {
	query := `
		SELECT id, user_id, session_date, class_time, duration_minutes, gym,
			class_type, source, needs_review, strain, calories,
			average_heart_rate, max_heart_rate, created_at, updated_at
		FROM sessions
		WHERE user_id = $1 AND id = $2
	`

	var s entity.Session
	err := r.db.DB.QueryRowContext(ctx, query, userID, id).Scan(
		&s.ID,
		&s.UserID,
		&s.Date,
		&s.ClassTime,
		&s.DurationMinutes,
		&s.Gym,
		&s.ClassType,
		&s.Source,
		&s.NeedsReview,
		&s.Strain,
		&s.Calories,
		&s.AverageHeartRate,
		&s.MaxHeartRate,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &s, nil
}

func (r *sessionRepository) Update(ctx context.Context, s *entity.Session) error {
	query := `
		UPDATE sessions
		SET session_date = $1, class_time = $2, duration_minutes = $3, gym = $4,
			class_type = $5, source = $6, needs_review = $7, strain = $8,
			calories = $9, average_heart_rate = $10, max_heart_rate = $11,
			updated_at = $12
		WHERE user_id = $13 AND id = $14
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		s.Date,
		s.ClassTime,
		s.DurationMinutes,
		s.Gym,
		s.ClassType,
		s.Source,
		s.NeedsReview,
		s.Strain,
		s.Calories,
		s.AverageHeartRate,
		s.MaxHeartRate,
		time.Now(),
		s.UserID,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

func (r *sessionRepository) ClearWearableData(ctx context.Context, userID int64) error {
	query := `
		UPDATE sessions
		SET strain = NULL, calories = NULL, average_heart_rate = NULL,
			max_heart_rate = NULL, updated_at = $1
		WHERE user_id = $2 AND (strain IS NOT NULL OR calories IS NOT NULL
			OR average_heart_rate IS NOT NULL OR max_heart_rate IS NOT NULL)
	`

	_, err := r.db.DB.ExecContext(ctx, query, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to clear wearable data: %w", err)
	}

	return nil
}
