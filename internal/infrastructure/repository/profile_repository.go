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

type profileRepository struct {
	db *database.Database
}

func NewProfileRepository(db *database.Database) repository.ProfileRepository {
	return &profileRepository{
		db: db,
	}
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID int64) (*entity.Profile, error) {
	query := `
		SELECT user_id, default_gym, default_class_type
		FROM profiles
		WHERE user_id = $1
	`

	var p entity.Profile
	err := r.db.DB.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.DefaultGym,
		&p.DefaultClassType,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	return &p, nil
}

type readinessRepository struct {
	db *database.Database
}

func NewReadinessRepository(db *database.Database) repository.ReadinessLogger {
	return &readinessRepository{
		db: db,
	}
}

// LogReadiness upserts one readiness check-in per (user, date). Auto-filled
// entries are tagged so a manual check-in can override them later.
func (r *readinessRepository) LogReadiness(ctx context.Context, userID int64, date time.Time, sleepRating, energyRating int) error {
	query := `
		INSERT INTO readiness_entries (user_id, entry_date, sleep_rating, energy_rating, source)
		VALUES ($1, $2, $3, $4, 'whoop')
		ON CONFLICT (user_id, entry_date) DO UPDATE SET
			sleep_rating = EXCLUDED.sleep_rating,
			energy_rating = EXCLUDED.energy_rating,
			source = EXCLUDED.source
	`

	_, err := r.db.DB.ExecContext(ctx, query, userID, date, sleepRating, energyRating)
	if err != nil {
		return fmt.Errorf("failed to log readiness: %w", err)
	}

	return nil
}
