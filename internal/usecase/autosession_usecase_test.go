package usecase

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"fitjournal/internal/domain/entity"
)

func newAutoTestStack() (*autoSessionUsecase, *fakeConnRepo, *fakeWorkoutRepo, *fakeSessionRepo, *fakeProfileRepo) {
	connRepo := &fakeConnRepo{conn: &entity.Connection{UserID: 1, WhoopUserID: 9001, AutoCreateSessions: true}}
	workoutRepo := &fakeWorkoutRepo{}
	sessionRepo := newFakeSessionRepo()
	profileRepo := &fakeProfileRepo{profile: &entity.Profile{UserID: 1, DefaultGym: "Downtown", DefaultClassType: "Open Mat"}}

	uc := NewAutoSessionUsecase(connRepo, workoutRepo, sessionRepo, profileRepo, zap.NewNop()).(*autoSessionUsecase)
	return uc, connRepo, workoutRepo, sessionRepo, profileRepo
}

func TestAutoCreateUsesRecordedLocalTime(t *testing.T) {
	uc, _, workoutRepo, sessionRepo, _ := newAutoTestStack()

	// 12:30 UTC in a +05:30 zone is 18:00 local on the same day.
	seedWorkout(t, workoutRepo, "w1", time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC), 90*time.Minute, "+05:30")

	result, err := uc.AutoCreateSessions(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created != 1 || result.Skipped != 0 {
		t.Fatalf("created %d skipped %d, want 1/0", result.Created, result.Skipped)
	}

	session := sessionRepo.sessions[1]
	if session.ClassTime != "18:00" {
		t.Fatalf("class time %q, want local 18:00", session.ClassTime)
	}
	if session.Date.Day() != 1 {
		t.Fatalf("date %v, want June 1", session.Date)
	}
	if session.DurationMinutes != 90 {
		t.Fatalf("duration %d, want 90", session.DurationMinutes)
	}
	if session.Gym != "Downtown" || session.ClassType != "Open Mat" {
		t.Fatalf("defaults %q/%q, want profile defaults", session.Gym, session.ClassType)
	}
	if session.Source != entity.SourceWhoop || !session.NeedsReview {
		t.Fatal("expected whoop-sourced session flagged for review")
	}
}

func TestAutoCreateCrossesDateBoundaryWestOfUTC(t *testing.T) {
	uc, _, workoutRepo, sessionRepo, _ := newAutoTestStack()

	// 02:00 UTC June 2 in a -04:00 zone is 22:00 local on June 1.
	seedWorkout(t, workoutRepo, "w1", time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC), time.Hour, "-04:00")

	if _, err := uc.AutoCreateSessions(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session := sessionRepo.sessions[1]
	if session.Date.Day() != 1 || session.ClassTime != "22:00" {
		t.Fatalf("got %v %q, want June 1 22:00 local", session.Date, session.ClassTime)
	}
}

func TestAutoCreateNoOpWhenFlagOff(t *testing.T) {
	uc, connRepo, workoutRepo, sessionRepo, _ := newAutoTestStack()
	connRepo.conn.AutoCreateSessions = false

	seedWorkout(t, workoutRepo, "w1", time.Now().UTC(), time.Hour, "+00:00")

	result, err := uc.AutoCreateSessions(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created != 0 || len(sessionRepo.sessions) != 0 {
		t.Fatal("expected no sessions created when the flag is off")
	}
}

func TestAutoCreateSkipsFailingWorkout(t *testing.T) {
	uc, _, workoutRepo, sessionRepo, _ := newAutoTestStack()

	seedWorkout(t, workoutRepo, "bad", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), time.Hour, "+00:00")
	seedWorkout(t, workoutRepo, "good", time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC), time.Hour, "+00:00")
	sessionRepo.failNext = true

	result, err := uc.AutoCreateSessions(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected batch to continue past one failure, got %v", err)
	}
	if result.Created != 1 || result.Skipped != 1 {
		t.Fatalf("created %d skipped %d, want 1/1", result.Created, result.Skipped)
	}
}

func TestAutoCreateWithoutProfileDefaults(t *testing.T) {
	uc, _, workoutRepo, sessionRepo, profileRepo := newAutoTestStack()
	profileRepo.profile = nil

	seedWorkout(t, workoutRepo, "w1", time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC), time.Hour, "+00:00")

	if _, err := uc.AutoCreateSessions(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	session := sessionRepo.sessions[1]
	if session.Gym != "" || session.ClassType != "" {
		t.Fatalf("expected empty defaults without a profile, got %q/%q", session.Gym, session.ClassType)
	}
}

func TestBackfillCorrectsMisconvertedSessions(t *testing.T) {
	uc, _, workoutRepo, sessionRepo, _ := newAutoTestStack()

	// Workout at 12:30 UTC, +05:30: correct local time is 18:00.
	workoutID := seedWorkout(t, workoutRepo, "w1", time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC), time.Hour, "+05:30")

	// A session stored from the raw UTC time instead of local.
	sessionID, err := sessionRepo.Create(context.Background(), &entity.Session{
		UserID:    1,
		Date:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		ClassTime: "12:30",
		Source:    entity.SourceWhoop,
	})
	if err != nil {
		t.Fatalf("seed session failed: %v", err)
	}
	if err := workoutRepo.LinkSession(context.Background(), workoutID, sessionID); err != nil {
		t.Fatalf("link failed: %v", err)
	}

	fixed, err := uc.BackfillSessionTimezones(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fixed != 1 {
		t.Fatalf("fixed %d sessions, want 1", fixed)
	}
	if got := sessionRepo.sessions[sessionID].ClassTime; got != "18:00" {
		t.Fatalf("class time %q after backfill, want 18:00", got)
	}

	// A second pass finds nothing to fix.
	fixed, err = uc.BackfillSessionTimezones(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fixed != 0 {
		t.Fatalf("fixed %d on second pass, want 0", fixed)
	}
}

func TestBackfillLeavesManualSessionsAlone(t *testing.T) {
	uc, _, workoutRepo, sessionRepo, _ := newAutoTestStack()

	workoutID := seedWorkout(t, workoutRepo, "w1", time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC), time.Hour, "+05:30")
	sessionID, err := sessionRepo.Create(context.Background(), &entity.Session{
		UserID:    1,
		Date:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		ClassTime: "12:30",
		Source:    "manual",
	})
	if err != nil {
		t.Fatalf("seed session failed: %v", err)
	}
	if err := workoutRepo.LinkSession(context.Background(), workoutID, sessionID); err != nil {
		t.Fatalf("link failed: %v", err)
	}

	fixed, err := uc.BackfillSessionTimezones(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fixed != 0 {
		t.Fatal("expected manually entered sessions to be left untouched")
	}
	if got := sessionRepo.sessions[sessionID].ClassTime; got != "12:30" {
		t.Fatalf("class time %q, want unchanged 12:30", got)
	}
}
