package entity

import (
	"fmt"
	"time"
)

// SourceWhoop tags sessions created from unmatched WHOOP imports.
const SourceWhoop = "whoop"

// Session is the training-journal entity this subsystem extends. Date and
// ClassTime are local wall-clock values; the wearable-derived fields are nil
// until a workout is applied.
type Session struct {
	ID              int64     `json:"id" db:"id"`
	UserID          int64     `json:"user_id" db:"user_id"`
	Date            time.Time `json:"date" db:"session_date"`
	ClassTime       string    `json:"class_time" db:"class_time"` // "15:04"
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	Gym             string    `json:"gym" db:"gym"`
	ClassType       string    `json:"class_type" db:"class_type"`
	Source          string    `json:"source" db:"source"`
	NeedsReview     bool      `json:"needs_review" db:"needs_review"`

	Strain           *float64 `json:"strain,omitempty" db:"strain"`
	Calories         *int     `json:"calories,omitempty" db:"calories"`
	AverageHeartRate *int     `json:"average_heart_rate,omitempty" db:"average_heart_rate"`
	MaxHeartRate     *int     `json:"max_heart_rate,omitempty" db:"max_heart_rate"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// StartAt combines the session date and class time into one local wall-clock
// instant (carried in UTC location).
func (s *Session) StartAt() (time.Time, error) {
	t, err := time.Parse("15:04", s.ClassTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed class time %q: %w", s.ClassTime, err)
	}
	d := s.Date
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// EndAt is StartAt plus the session duration.
func (s *Session) EndAt() (time.Time, error) {
	start, err := s.StartAt()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(s.DurationMinutes) * time.Minute), nil
}

// Profile carries the journal defaults consumed when auto-creating sessions.
type Profile struct {
	UserID           int64  `json:"user_id" db:"user_id"`
	DefaultGym       string `json:"default_gym" db:"default_gym"`
	DefaultClassType string `json:"default_class_type" db:"default_class_type"`
}
