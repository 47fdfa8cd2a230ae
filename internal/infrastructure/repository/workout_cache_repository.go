package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"fitjournal/internal/domain/entity"
	"fitjournal/internal/domain/repository"
	"fitjournal/internal/infrastructure/database"
)

type workoutCacheRepository struct {
	db *database.Database
}

func NewWorkoutCacheRepository(db *database.Database) repository.WorkoutCacheRepository {
	return &workoutCacheRepository{
		db: db,
	}
}

const workoutColumns = `
	id, user_id, whoop_workout_id, start_time, end_time, timezone_offset,
	sport_id, sport_name, strain, average_heart_rate, max_heart_rate,
	kilojoules, calories, zone_durations, raw_payload, session_id, synced_at`

func (r *workoutCacheRepository) Upsert(ctx context.Context, w *entity.CachedWorkout) error {
	// Full overwrite on conflict: a re-sync replaces every synced field with
	// the latest payload. The session link survives.
	query := `
		INSERT INTO whoop_workouts (
			user_id, whoop_workout_id, start_time, end_time, timezone_offset,
			sport_id, sport_name, strain, average_heart_rate, max_heart_rate,
			kilojoules, calories, zone_durations, raw_payload, synced_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (user_id, whoop_workout_id) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			timezone_offset = EXCLUDED.timezone_offset,
			sport_id = EXCLUDED.sport_id,
			sport_name = EXCLUDED.sport_name,
			strain = EXCLUDED.strain,
			average_heart_rate = EXCLUDED.average_heart_rate,
			max_heart_rate = EXCLUDED.max_heart_rate,
			kilojoules = EXCLUDED.kilojoules,
			calories = EXCLUDED.calories,
			zone_durations = EXCLUDED.zone_durations,
			raw_payload = EXCLUDED.raw_payload,
			synced_at = EXCLUDED.synced_at
	`

	zones, err := json.Marshal(w.ZoneDurations)
	if err != nil {
		return fmt.Errorf("failed to marshal zone durations: %w", err)
	}

	_, err = r.db.DB.ExecContext(ctx, query,
		w.UserID,
		w.WhoopWorkoutID,
		w.StartTime,
		w.EndTime,
		w.TimezoneOffset,
		w.SportID,
		w.SportName,
		w.Strain,
		w.AverageHeartRate,
		w.MaxHeartRate,
		w.Kilojoules,
		w.Calories,
		zones,
		[]byte(w.RawPayload),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cached workout: %w", err)
	}

	return nil
}

func (r *workoutCacheRepository) FindByID(ctx context.Context, userID, id int64) (*entity.CachedWorkout, error) {
	query := `SELECT` + workoutColumns + `
		FROM whoop_workouts
		WHERE user_id = $1 AND id = $2
	`

	rows, err := r.db.DB.QueryContext(ctx, query, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached workout: %w", err)
	}
	defer rows.Close()

	workouts, err := scanWorkouts(rows)
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return nil, nil
	}
	return &workouts[0], nil
}

func (r *workoutCacheRepository) FindByTimeRange(ctx context.Context, userID int64, from, to time.Time) ([]entity.CachedWorkout, error) {
	query := `SELECT` + workoutColumns + `
		FROM whoop_workouts
		WHERE user_id = $1 AND start_time >= $2 AND start_time <= $3
		ORDER BY start_time
	`

	rows, err := r.db.DB.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached workouts: %w", err)
	}
	defer rows.Close()

	return scanWorkouts(rows)
}

func (r *workoutCacheRepository) FindUnlinked(ctx context.Context, userID int64) ([]entity.CachedWorkout, error) {
	query := `SELECT` + workoutColumns + `
		FROM whoop_workouts
		WHERE user_id = $1 AND session_id IS NULL
		ORDER BY start_time
	`

	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unlinked workouts: %w", err)
	}
	defer rows.Close()

	return scanWorkouts(rows)
}

func (r *workoutCacheRepository) FindLinked(ctx context.Context, userID int64) ([]entity.CachedWorkout, error) {
	query := `SELECT` + workoutColumns + `
		FROM whoop_workouts
		WHERE user_id = $1 AND session_id IS NOT NULL
		ORDER BY start_time
	`

	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query linked workouts: %w", err)
	}
	defer rows.Close()

	return scanWorkouts(rows)
}

func (r *workoutCacheRepository) LinkSession(ctx context.Context, id, sessionID int64) error {
	query := `
		UPDATE whoop_workouts
		SET session_id = $1
		WHERE id = $2
	`

	_, err := r.db.DB.ExecContext(ctx, query, sessionID, id)
	if err != nil {
		return fmt.Errorf("failed to link workout to session: %w", err)
	}

	return nil
}

func (r *workoutCacheRepository) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.db.DB.ExecContext(ctx, `DELETE FROM whoop_workouts WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete workout cache: %w", err)
	}
	return nil
}

func scanWorkouts(rows *sql.Rows) ([]entity.CachedWorkout, error) {
	var workouts []entity.CachedWorkout

	for rows.Next() {
		var w entity.CachedWorkout
		var zones []byte
		var raw []byte
		var sessionID sql.NullInt64

		err := rows.Scan(
			&w.ID,
			&w.UserID,
			&w.WhoopWorkoutID,
			&w.StartTime,
			&w.EndTime,
			&w.TimezoneOffset,
			&w.SportID,
			&w.SportName,
			&w.Strain,
			&w.AverageHeartRate,
			&w.MaxHeartRate,
			&w.Kilojoules,
			&w.Calories,
			&zones,
			&raw,
			&sessionID,
			&w.SyncedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cached workout: %w", err)
		}

		if len(zones) > 0 {
			if err := json.Unmarshal(zones, &w.ZoneDurations); err != nil {
				return nil, fmt.Errorf("failed to unmarshal zone durations: %w", err)
			}
		}
		w.RawPayload = raw
		if sessionID.Valid {
			w.SessionID = &sessionID.Int64
		}

		workouts = append(workouts, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cached workouts: %w", err)
	}

	return workouts, nil
}
