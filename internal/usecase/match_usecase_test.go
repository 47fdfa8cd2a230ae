package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"fitjournal/internal/domain/entity"
)

func newMatchTestStack() (*matchUsecase, *fakeSessionRepo, *fakeWorkoutRepo, *fakeSyncer) {
	sessionRepo := newFakeSessionRepo()
	workoutRepo := &fakeWorkoutRepo{}
	syncer := &fakeSyncer{}
	uc := NewMatchUsecase(sessionRepo, workoutRepo, syncer, zap.NewNop()).(*matchUsecase)
	return uc, sessionRepo, workoutRepo, syncer
}

func seedSession(t *testing.T, repo *fakeSessionRepo, date time.Time, classTime string, minutes int) int64 {
	t.Helper()
	id, err := repo.Create(context.Background(), &entity.Session{
		UserID:          1,
		Date:            date,
		ClassTime:       classTime,
		DurationMinutes: minutes,
	})
	if err != nil {
		t.Fatalf("seed session failed: %v", err)
	}
	return id
}

func seedWorkout(t *testing.T, repo *fakeWorkoutRepo, whoopID string, startUTC time.Time, dur time.Duration, offset string) int64 {
	t.Helper()
	w := &entity.CachedWorkout{
		UserID:         1,
		WhoopWorkoutID: whoopID,
		StartTime:      startUTC,
		EndTime:        startUTC.Add(dur),
		TimezoneOffset: offset,
		Strain:         14.2,
		Calories:       480,
	}
	if err := repo.Upsert(context.Background(), w); err != nil {
		t.Fatalf("seed workout failed: %v", err)
	}
	return w.ID
}

func TestOverlapPercent(t *testing.T) {
	base := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name                   string
		aStart, aEnd           time.Time
		bStart, bEnd           time.Time
		want                   float64
	}{
		{
			// 60-min session, 45-min workout starting 15 minutes late but only
			// 45 min long: overlap 45 of min(60,45) = 100
			name: "workout inside session",
			aStart: base, aEnd: base.Add(time.Hour),
			bStart: base.Add(15 * time.Minute), bEnd: base.Add(time.Hour),
			want: 100,
		},
		{
			// 60-min each, shifted 15 min: overlap 45 of 60 = 75
			name: "partial overlap",
			aStart: base, aEnd: base.Add(time.Hour),
			bStart: base.Add(15 * time.Minute), bEnd: base.Add(75 * time.Minute),
			want: 75,
		},
		{
			name: "disjoint",
			aStart: base, aEnd: base.Add(time.Hour),
			bStart: base.Add(2 * time.Hour), bEnd: base.Add(3 * time.Hour),
			want: 0,
		},
		{
			name: "touching endpoints",
			aStart: base, aEnd: base.Add(time.Hour),
			bStart: base.Add(time.Hour), bEnd: base.Add(2 * time.Hour),
			want: 0,
		},
		{
			// zero-length session falls back to the one-hour denominator:
			// overlap would be zero anyway here
			name: "zero length interval",
			aStart: base, aEnd: base,
			bStart: base, bEnd: base.Add(time.Hour),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := overlapPercent(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			if got < 0 {
				t.Fatal("overlap percent must never be negative")
			}
		})
	}
}

func TestFindMatchesComparesLocalWallClock(t *testing.T) {
	uc, sessionRepo, workoutRepo, _ := newMatchTestStack()

	// Session at 18:00 local for one hour.
	sessionID := seedSession(t, sessionRepo, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "18:00", 60)

	// Workout recorded at 12:30 UTC in a +05:30 zone: 18:00 local.
	seedWorkout(t, workoutRepo, "w1", time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC), time.Hour, "+05:30")

	matches, err := uc.FindMatches(context.Background(), 1, sessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].OverlapPct != 100 {
		t.Fatalf("overlap %v, want 100", matches[0].OverlapPct)
	}
}

func TestFindMatchesFiltersBelowThresholdAndSorts(t *testing.T) {
	uc, sessionRepo, workoutRepo, _ := newMatchTestStack()

	sessionID := seedSession(t, sessionRepo, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "18:00", 60)

	// 75% overlap
	seedWorkout(t, workoutRepo, "strong", time.Date(2025, 6, 1, 18, 15, 0, 0, time.UTC), time.Hour, "+00:00")
	// 100% overlap (contained)
	seedWorkout(t, workoutRepo, "contained", time.Date(2025, 6, 1, 18, 10, 0, 0, time.UTC), 40*time.Minute, "+00:00")
	// ~17% overlap, below threshold
	seedWorkout(t, workoutRepo, "weak", time.Date(2025, 6, 1, 18, 50, 0, 0, time.UTC), time.Hour, "+00:00")

	matches, err := uc.FindMatches(context.Background(), 1, sessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Workout.WhoopWorkoutID != "contained" {
		t.Fatalf("strongest match %q, want contained", matches[0].Workout.WhoopWorkoutID)
	}
	if matches[1].Workout.WhoopWorkoutID != "strong" {
		t.Fatalf("second match %q, want strong", matches[1].Workout.WhoopWorkoutID)
	}
}

func TestFindMatchesSkipsLinkedWorkouts(t *testing.T) {
	uc, sessionRepo, workoutRepo, _ := newMatchTestStack()

	sessionID := seedSession(t, sessionRepo, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "18:00", 60)
	workoutID := seedWorkout(t, workoutRepo, "w1", time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC), time.Hour, "+00:00")
	if err := workoutRepo.LinkSession(context.Background(), workoutID, 999); err != nil {
		t.Fatalf("link failed: %v", err)
	}

	matches, err := uc.FindMatches(context.Background(), 1, sessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("got %d matches, want linked workouts excluded", len(matches))
	}
}

func TestFindMatchesSyncsOnDemandWhenCacheEmpty(t *testing.T) {
	uc, sessionRepo, workoutRepo, syncer := newMatchTestStack()

	sessionID := seedSession(t, sessionRepo, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "18:00", 60)

	// The sync call populates the cache mid-lookup.
	syncer.onSync = func() {
		seedWorkout(t, workoutRepo, "fresh", time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC), time.Hour, "+00:00")
	}

	matches, err := uc.FindMatches(context.Background(), 1, sessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if syncer.syncCalls != 1 {
		t.Fatalf("sync called %d times, want 1", syncer.syncCalls)
	}
	if len(matches) != 1 || matches[0].Workout.WhoopWorkoutID != "fresh" {
		t.Fatalf("expected freshly synced workout to match, got %+v", matches)
	}
}

func TestFindMatchesSessionNotFound(t *testing.T) {
	uc, _, _, _ := newMatchTestStack()

	if _, err := uc.FindMatches(context.Background(), 1, 404); !errors.Is(err, entity.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestApplyWorkoutCopiesMetricsAndLinks(t *testing.T) {
	uc, sessionRepo, workoutRepo, _ := newMatchTestStack()

	sessionID := seedSession(t, sessionRepo, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "18:00", 60)
	workoutID := seedWorkout(t, workoutRepo, "w1", time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC), time.Hour, "+00:00")
	workoutRepo.workouts[0].AverageHeartRate = 135
	workoutRepo.workouts[0].MaxHeartRate = 172

	session, err := uc.ApplyWorkout(context.Background(), 1, sessionID, workoutID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.Strain == nil || *session.Strain != 14.2 {
		t.Fatalf("strain %v, want 14.2", session.Strain)
	}
	if session.Calories == nil || *session.Calories != 480 {
		t.Fatalf("calories %v, want 480", session.Calories)
	}
	if session.AverageHeartRate == nil || *session.AverageHeartRate != 135 {
		t.Fatalf("avg hr %v, want 135", session.AverageHeartRate)
	}
	if session.MaxHeartRate == nil || *session.MaxHeartRate != 172 {
		t.Fatalf("max hr %v, want 172", session.MaxHeartRate)
	}

	linked, _ := workoutRepo.FindByID(context.Background(), 1, workoutID)
	if linked.SessionID == nil || *linked.SessionID != sessionID {
		t.Fatalf("workout link %v, want session %d", linked.SessionID, sessionID)
	}
}

func TestApplyWorkoutRejectsAlreadyLinked(t *testing.T) {
	uc, sessionRepo, workoutRepo, _ := newMatchTestStack()

	sessionID := seedSession(t, sessionRepo, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "18:00", 60)
	workoutID := seedWorkout(t, workoutRepo, "w1", time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC), time.Hour, "+00:00")
	if err := workoutRepo.LinkSession(context.Background(), workoutID, 999); err != nil {
		t.Fatalf("link failed: %v", err)
	}

	if _, err := uc.ApplyWorkout(context.Background(), 1, sessionID, workoutID); !errors.Is(err, entity.ErrWorkoutLinked) {
		t.Fatalf("expected ErrWorkoutLinked, got %v", err)
	}
}

func TestApplyWorkoutNotFoundErrors(t *testing.T) {
	uc, sessionRepo, _, _ := newMatchTestStack()

	if _, err := uc.ApplyWorkout(context.Background(), 1, 404, 1); !errors.Is(err, entity.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	sessionID := seedSession(t, sessionRepo, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "18:00", 60)
	if _, err := uc.ApplyWorkout(context.Background(), 1, sessionID, 404); !errors.Is(err, entity.ErrWorkoutNotFound) {
		t.Fatalf("expected ErrWorkoutNotFound, got %v", err)
	}
}
