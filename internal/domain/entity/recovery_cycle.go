package entity

import (
	"encoding/json"
	"time"
)

// CachedRecoveryCycle merges one WHOOP physiological cycle with its recovery
// and sleep scores, unique per (user, whoop cycle id). A cycle missing either
// score still produces a row with those fields nil.
type CachedRecoveryCycle struct {
	ID           int64      `json:"id" db:"id"`
	UserID       int64      `json:"user_id" db:"user_id"`
	WhoopCycleID int64      `json:"whoop_cycle_id" db:"whoop_cycle_id"`
	CycleStart   time.Time  `json:"cycle_start" db:"cycle_start"`
	CycleEnd     *time.Time `json:"cycle_end,omitempty" db:"cycle_end"`

	RecoveryScore    *float64 `json:"recovery_score,omitempty" db:"recovery_score"`
	RestingHeartRate *float64 `json:"resting_heart_rate,omitempty" db:"resting_heart_rate"`
	HRVMilli         *float64 `json:"hrv_rmssd_milli,omitempty" db:"hrv_rmssd_milli"`
	SpO2Percentage   *float64 `json:"spo2_percentage,omitempty" db:"spo2_percentage"`
	SkinTempCelsius  *float64 `json:"skin_temp_celsius,omitempty" db:"skin_temp_celsius"`

	SleepPerformancePct *float64 `json:"sleep_performance_pct,omitempty" db:"sleep_performance_pct"`
	SleepDurationMilli  *int64   `json:"sleep_duration_milli,omitempty" db:"sleep_duration_milli"`
	SleepNeededMilli    *int64   `json:"sleep_needed_milli,omitempty" db:"sleep_needed_milli"`
	SleepDebtMilli      *int64   `json:"sleep_debt_milli,omitempty" db:"sleep_debt_milli"`
	LightSleepMilli     *int64   `json:"light_sleep_milli,omitempty" db:"light_sleep_milli"`
	SlowWaveSleepMilli  *int64   `json:"slow_wave_sleep_milli,omitempty" db:"slow_wave_sleep_milli"`
	REMSleepMilli       *int64   `json:"rem_sleep_milli,omitempty" db:"rem_sleep_milli"`
	AwakeMilli          *int64   `json:"awake_milli,omitempty" db:"awake_milli"`

	RawPayload json.RawMessage `json:"-" db:"raw_payload"`
	SyncedAt   time.Time       `json:"synced_at" db:"synced_at"`
}
