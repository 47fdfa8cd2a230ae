package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"fitjournal/internal/config"
)

type Database struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewDatabase(cfg *config.Config, logger *zap.Logger) (*Database, error) {
	// Build PostgreSQL connection string
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	db, err := sql.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connected successfully",
		zap.String("driver", cfg.Database.Driver),
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("dbname", cfg.Database.DBName),
	)

	database := &Database{
		DB:     db,
		logger: logger,
	}

	// Run migrations
	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return database, nil
}

func (d *Database) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS whoop_connections (
			id SERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL UNIQUE,
			whoop_user_id BIGINT NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			token_expires_at TIMESTAMPTZ NOT NULL,
			scopes TEXT NOT NULL DEFAULT '',
			auto_create_sessions BOOLEAN NOT NULL DEFAULT FALSE,
			auto_fill_readiness BOOLEAN NOT NULL DEFAULT FALSE,
			last_synced_at TIMESTAMPTZ,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_whoop_connections_whoop_user_id
			ON whoop_connections(whoop_user_id)`,

		`CREATE TABLE IF NOT EXISTS whoop_workouts (
			id SERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			whoop_workout_id TEXT NOT NULL,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ NOT NULL,
			timezone_offset VARCHAR(8) NOT NULL DEFAULT '',
			sport_id INT NOT NULL DEFAULT 0,
			sport_name TEXT NOT NULL DEFAULT '',
			strain DOUBLE PRECISION NOT NULL DEFAULT 0,
			average_heart_rate INT NOT NULL DEFAULT 0,
			max_heart_rate INT NOT NULL DEFAULT 0,
			kilojoules DOUBLE PRECISION NOT NULL DEFAULT 0,
			calories INT NOT NULL DEFAULT 0,
			zone_durations JSONB NOT NULL DEFAULT '{}',
			raw_payload JSONB,
			session_id BIGINT,
			synced_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, whoop_workout_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_whoop_workouts_user_start
			ON whoop_workouts(user_id, start_time)`,

		`CREATE TABLE IF NOT EXISTS whoop_recovery_cycles (
			id SERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			whoop_cycle_id BIGINT NOT NULL,
			cycle_start TIMESTAMPTZ NOT NULL,
			cycle_end TIMESTAMPTZ,
			recovery_score DOUBLE PRECISION,
			resting_heart_rate DOUBLE PRECISION,
			hrv_rmssd_milli DOUBLE PRECISION,
			spo2_percentage DOUBLE PRECISION,
			skin_temp_celsius DOUBLE PRECISION,
			sleep_performance_pct DOUBLE PRECISION,
			sleep_duration_milli BIGINT,
			sleep_needed_milli BIGINT,
			sleep_debt_milli BIGINT,
			light_sleep_milli BIGINT,
			slow_wave_sleep_milli BIGINT,
			rem_sleep_milli BIGINT,
			awake_milli BIGINT,
			raw_payload JSONB,
			synced_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, whoop_cycle_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_whoop_recovery_user_start
			ON whoop_recovery_cycles(user_id, cycle_start)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id SERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			session_date DATE NOT NULL,
			class_time VARCHAR(5) NOT NULL,
			duration_minutes INT NOT NULL DEFAULT 60,
			gym TEXT NOT NULL DEFAULT '',
			class_type TEXT NOT NULL DEFAULT '',
			source VARCHAR(20) NOT NULL DEFAULT 'manual',
			needs_review BOOLEAN NOT NULL DEFAULT FALSE,
			strain DOUBLE PRECISION,
			calories INT,
			average_heart_rate INT,
			max_heart_rate INT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_date
			ON sessions(user_id, session_date)`,

		`CREATE TABLE IF NOT EXISTS profiles (
			user_id BIGINT PRIMARY KEY,
			default_gym TEXT NOT NULL DEFAULT '',
			default_class_type TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS readiness_entries (
			id SERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			entry_date DATE NOT NULL,
			sleep_rating INT NOT NULL,
			energy_rating INT NOT NULL,
			source VARCHAR(20) NOT NULL DEFAULT 'manual',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, entry_date)
		)`,
	}

	for _, stmt := range statements {
		if _, err := d.DB.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	d.logger.Info("Database migrations completed successfully")
	return nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}
