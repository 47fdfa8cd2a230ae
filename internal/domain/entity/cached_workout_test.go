package entity

import (
	"testing"
	"time"
)

func TestParseTimezoneOffset(t *testing.T) {
	tests := []struct {
		name    string
		offset  string
		want    time.Duration
		wantErr bool
	}{
		{name: "positive half hour", offset: "+05:30", want: 5*time.Hour + 30*time.Minute},
		{name: "negative", offset: "-08:00", want: -8 * time.Hour},
		{name: "utc zero", offset: "+00:00", want: 0},
		{name: "empty", offset: "", want: 0},
		{name: "zulu", offset: "Z", want: 0},
		{name: "garbage", offset: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimezoneOffset(tt.offset)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %v", tt.offset, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("offset %q: got %v, want %v", tt.offset, got, tt.want)
			}
		})
	}
}

func TestLocalStartShiftsByRecordedOffset(t *testing.T) {
	w := CachedWorkout{
		StartTime:      time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		EndTime:        time.Date(2025, 6, 1, 13, 30, 0, 0, time.UTC),
		TimezoneOffset: "+05:30",
	}

	local := w.LocalStart()
	if local.Hour() != 18 || local.Minute() != 0 {
		t.Fatalf("expected local start 18:00, got %s", local.Format("15:04"))
	}
	if got := w.Duration(); got != time.Hour {
		t.Fatalf("expected one hour duration, got %v", got)
	}
}

func TestSessionStartAtCombinesDateAndClassTime(t *testing.T) {
	s := Session{
		Date:            time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		ClassTime:       "18:00",
		DurationMinutes: 60,
	}

	start, err := s.StartAt()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 18 || start.Day() != 1 {
		t.Fatalf("unexpected start %s", start)
	}

	end, err := s.EndAt()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if end.Sub(start) != time.Hour {
		t.Fatalf("expected one hour session, got %v", end.Sub(start))
	}

	s.ClassTime = "25:99"
	if _, err := s.StartAt(); err == nil {
		t.Fatal("expected error for malformed class time")
	}
}
