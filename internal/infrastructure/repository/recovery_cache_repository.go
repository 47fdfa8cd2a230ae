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

type recoveryCacheRepository struct {
	db *database.Database
}

func NewRecoveryCacheRepository(db *database.Database) repository.RecoveryCacheRepository {
	return &recoveryCacheRepository{
		db: db,
	}
}

func (r *recoveryCacheRepository) Upsert(ctx context.Context, c *entity.CachedRecoveryCycle) error {
	query := `
		INSERT INTO whoop_recovery_cycles (
			user_id, whoop_cycle_id, cycle_start, cycle_end,
			recovery_score, resting_heart_rate, hrv_rmssd_milli,
			spo2_percentage, skin_temp_celsius,
			sleep_performance_pct, sleep_duration_milli, sleep_needed_milli,
			sleep_debt_milli, light_sleep_milli, slow_wave_sleep_milli,
			rem_sleep_milli, awake_milli, raw_payload, synced_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (user_id, whoop_cycle_id) DO UPDATE SET
			cycle_start = EXCLUDED.cycle_start,
			cycle_end = EXCLUDED.cycle_end,
			recovery_score = EXCLUDED.recovery_score,
			resting_heart_rate = EXCLUDED.resting_heart_rate,
			hrv_rmssd_milli = EXCLUDED.hrv_rmssd_milli,
			spo2_percentage = EXCLUDED.spo2_percentage,
			skin_temp_celsius = EXCLUDED.skin_temp_celsius,
			sleep_performance_pct = EXCLUDED.sleep_performance_pct,
			sleep_duration_milli = EXCLUDED.sleep_duration_milli,
			sleep_needed_milli = EXCLUDED.sleep_needed_milli,
			sleep_debt_milli = EXCLUDED.sleep_debt_milli,
			light_sleep_milli = EXCLUDED.light_sleep_milli,
			slow_wave_sleep_milli = EXCLUDED.slow_wave_sleep_milli,
			rem_sleep_milli = EXCLUDED.rem_sleep_milli,
			awake_milli = EXCLUDED.awake_milli,
			raw_payload = EXCLUDED.raw_payload,
			synced_at = EXCLUDED.synced_at
	`

	var cycleEnd sql.NullTime
	if c.CycleEnd != nil {
		cycleEnd = sql.NullTime{Time: *c.CycleEnd, Valid: true}
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		c.UserID,
		c.WhoopCycleID,
		c.CycleStart,
		cycleEnd,
		c.RecoveryScore,
		c.RestingHeartRate,
		c.HRVMilli,
		c.SpO2Percentage,
		c.SkinTempCelsius,
		c.SleepPerformancePct,
		c.SleepDurationMilli,
		c.SleepNeededMilli,
		c.SleepDebtMilli,
		c.LightSleepMilli,
		c.SlowWaveSleepMilli,
		c.REMSleepMilli,
		c.AwakeMilli,
		[]byte(c.RawPayload),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert recovery cycle: %w", err)
	}

	return nil
}

func (r *recoveryCacheRepository) FindLatest(ctx context.Context, userID int64) (*entity.CachedRecoveryCycle, error) {
	query := `
		SELECT id, user_id, whoop_cycle_id, cycle_start, cycle_end,
			recovery_score, resting_heart_rate, hrv_rmssd_milli,
			spo2_percentage, skin_temp_celsius,
			sleep_performance_pct, sleep_duration_milli, sleep_needed_milli,
			sleep_debt_milli, light_sleep_milli, slow_wave_sleep_milli,
			rem_sleep_milli, awake_milli, raw_payload, synced_at
		FROM whoop_recovery_cycles
		WHERE user_id = $1
		ORDER BY cycle_start DESC
		LIMIT 1
	`

	var c entity.CachedRecoveryCycle
	var cycleEnd sql.NullTime
	var raw []byte

	err := r.db.DB.QueryRowContext(ctx, query, userID).Scan(
		&c.ID,
		&c.UserID,
		&c.WhoopCycleID,
		&c.CycleStart,
		&cycleEnd,
		&c.RecoveryScore,
		&c.RestingHeartRate,
		&c.HRVMilli,
		&c.SpO2Percentage,
		&c.SkinTempCelsius,
		&c.SleepPerformancePct,
		&c.SleepDurationMilli,
		&c.SleepNeededMilli,
		&c.SleepDebtMilli,
		&c.LightSleepMilli,
		&c.SlowWaveSleepMilli,
		&c.REMSleepMilli,
		&c.AwakeMilli,
		&raw,
		&c.SyncedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest recovery cycle: %w", err)
	}

	if cycleEnd.Valid {
		c.CycleEnd = &cycleEnd.Time
	}
	c.RawPayload = raw

	return &c, nil
}

func (r *recoveryCacheRepository) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.db.DB.ExecContext(ctx, `DELETE FROM whoop_recovery_cycles WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete recovery cache: %w", err)
	}
	return nil
}
