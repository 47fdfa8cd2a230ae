package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// CachedWorkout is a locally persisted copy of one WHOOP workout, unique per
// (user, whoop workout id). Timestamps are UTC; TimezoneOffset keeps the
// provider's local offset ("+05:30") so local wall-clock times can be
// reconstructed.
type CachedWorkout struct {
	ID               int64           `json:"id" db:"id"`
	UserID           int64           `json:"user_id" db:"user_id"`
	WhoopWorkoutID   string          `json:"whoop_workout_id" db:"whoop_workout_id"`
	StartTime        time.Time       `json:"start_time" db:"start_time"`
	EndTime          time.Time       `json:"end_time" db:"end_time"`
	TimezoneOffset   string          `json:"timezone_offset" db:"timezone_offset"`
	SportID          int             `json:"sport_id" db:"sport_id"`
	SportName        string          `json:"sport_name" db:"sport_name"`
	Strain           float64         `json:"strain" db:"strain"`
	AverageHeartRate int             `json:"average_heart_rate" db:"average_heart_rate"`
	MaxHeartRate     int             `json:"max_heart_rate" db:"max_heart_rate"`
	Kilojoules       float64         `json:"kilojoules" db:"kilojoules"`
	Calories         int             `json:"calories" db:"calories"`
	ZoneDurations    ZoneDurations   `json:"zone_durations" db:"zone_durations"`
	RawPayload       json.RawMessage `json:"-" db:"raw_payload"`
	SessionID        *int64          `json:"session_id,omitempty" db:"session_id"`
	SyncedAt         time.Time       `json:"synced_at" db:"synced_at"`
}

// ZoneDurations is the heart-rate zone breakdown in milliseconds.
type ZoneDurations struct {
	ZoneZeroMilli  int `json:"zone_zero_milli"`
	ZoneOneMilli   int `json:"zone_one_milli"`
	ZoneTwoMilli   int `json:"zone_two_milli"`
	ZoneThreeMilli int `json:"zone_three_milli"`
	ZoneFourMilli  int `json:"zone_four_milli"`
	ZoneFiveMilli  int `json:"zone_five_milli"`
}

// LocalStart returns the workout start shifted to its recorded local offset.
// The result carries UTC location but represents local wall-clock time.
func (w *CachedWorkout) LocalStart() time.Time {
	return w.StartTime.UTC().Add(OffsetDuration(w.TimezoneOffset))
}

// LocalEnd returns the workout end shifted to its recorded local offset.
func (w *CachedWorkout) LocalEnd() time.Time {
	return w.EndTime.UTC().Add(OffsetDuration(w.TimezoneOffset))
}

// Duration returns the workout length.
func (w *CachedWorkout) Duration() time.Duration {
	return w.EndTime.Sub(w.StartTime)
}

// ParseTimezoneOffset parses a provider offset string such as "+05:30" or
// "-08:00" into a duration. Empty or malformed offsets yield an error.
func ParseTimezoneOffset(offset string) (time.Duration, error) {
	if offset == "" || offset == "Z" {
		return 0, nil
	}
	var sign rune
	var hh, mm int
	if _, err := fmt.Sscanf(offset, "%c%02d:%02d", &sign, &hh, &mm); err != nil {
		return 0, fmt.Errorf("malformed timezone offset %q: %w", offset, err)
	}
	d := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
	switch sign {
	case '+':
		return d, nil
	case '-':
		return -d, nil
	default:
		return 0, fmt.Errorf("malformed timezone offset %q", offset)
	}
}

// OffsetDuration is ParseTimezoneOffset with a zero fallback for rows whose
// offset was never recorded.
func OffsetDuration(offset string) time.Duration {
	d, err := ParseTimezoneOffset(offset)
	if err != nil {
		return 0
	}
	return d
}
