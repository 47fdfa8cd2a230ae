package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"fitjournal/internal/domain/entity"
	"fitjournal/internal/domain/repository"
)

const (
	// matchWindow is how far a workout's local start may drift from the
	// session window and still be considered.
	matchWindow = 2 * time.Hour

	// offsetSlack widens the UTC scan range so workouts recorded in any
	// timezone still land inside the candidate set before local-time
	// comparison.
	offsetSlack = 14 * time.Hour

	// matchThreshold is the minimum overlap percentage reported as a match.
	matchThreshold = 30.0

	// minDurationFallback substitutes for a zero-length session or workout so
	// the overlap ratio stays defined.
	minDurationFallback = time.Hour

	// onDemandSyncDays is the window pulled when a match lookup finds an
	// empty cache.
	onDemandSyncDays = 3
)

type MatchUsecase interface {
	// FindMatches returns unlinked cached workouts overlapping the session by
	// at least the threshold, strongest first. An empty cache triggers a
	// short on-demand sync before matching.
	FindMatches(ctx context.Context, userID, sessionID int64) ([]entity.WorkoutMatch, error)

	// ApplyWorkout copies the workout's strain, calories and heart rates onto
	// the session and records the one-to-one link.
	ApplyWorkout(ctx context.Context, userID, sessionID, workoutID int64) (*entity.Session, error)
}

type matchUsecase struct {
	sessionRepo repository.SessionRepository
	workoutRepo repository.WorkoutCacheRepository
	syncer      SyncUsecase
	logger      *zap.Logger
}

func NewMatchUsecase(
	sessionRepo repository.SessionRepository,
	workoutRepo repository.WorkoutCacheRepository,
	syncer SyncUsecase,
	logger *zap.Logger,
) MatchUsecase {
	return &matchUsecase{
		sessionRepo: sessionRepo,
		workoutRepo: workoutRepo,
		syncer:      syncer,
		logger:      logger,
	}
}

func (u *matchUsecase) FindMatches(ctx context.Context, userID, sessionID int64) ([]entity.WorkoutMatch, error) {
	session, err := u.sessionRepo.GetByID(ctx, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, entity.ErrSessionNotFound
	}

	sessStart, err := session.StartAt()
	if err != nil {
		return nil, err
	}
	sessEnd, err := session.EndAt()
	if err != nil {
		return nil, err
	}

	candidates, err := u.candidates(ctx, userID, sessStart, sessEnd)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		u.logger.Debug("No cached workouts near session, syncing on demand",
			zap.Int64("user_id", userID),
			zap.Int64("session_id", sessionID),
		)
		if _, err := u.syncer.SyncWorkouts(ctx, userID, onDemandSyncDays); err != nil {
			return nil, err
		}
		candidates, err = u.candidates(ctx, userID, sessStart, sessEnd)
		if err != nil {
			return nil, err
		}
	}

	var matches []entity.WorkoutMatch
	for i := range candidates {
		w := &candidates[i]
		if w.SessionID != nil {
			continue
		}

		// Both sides are local wall-clock instants carried in UTC location.
		localStart := w.LocalStart()
		if localStart.Before(sessStart.Add(-matchWindow)) || localStart.After(sessEnd.Add(matchWindow)) {
			continue
		}

		pct := overlapPercent(sessStart, sessEnd, localStart, w.LocalEnd())
		if pct < matchThreshold {
			continue
		}
		matches = append(matches, entity.WorkoutMatch{Workout: *w, OverlapPct: pct})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].OverlapPct > matches[j].OverlapPct
	})

	return matches, nil
}

// candidates scans the cache over a UTC range wide enough to include any
// timezone's local offset.
func (u *matchUsecase) candidates(ctx context.Context, userID int64, sessStart, sessEnd time.Time) ([]entity.CachedWorkout, error) {
	from := sessStart.Add(-matchWindow - offsetSlack)
	to := sessEnd.Add(matchWindow + offsetSlack)
	workouts, err := u.workoutRepo.FindByTimeRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to scan workout cache: %w", err)
	}
	return workouts, nil
}

func (u *matchUsecase) ApplyWorkout(ctx context.Context, userID, sessionID, workoutID int64) (*entity.Session, error) {
	session, err := u.sessionRepo.GetByID(ctx, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, entity.ErrSessionNotFound
	}

	workout, err := u.workoutRepo.FindByID(ctx, userID, workoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cached workout: %w", err)
	}
	if workout == nil {
		return nil, entity.ErrWorkoutNotFound
	}
	if workout.SessionID != nil {
		return nil, entity.ErrWorkoutLinked
	}

	strain := workout.Strain
	calories := workout.Calories
	avgHR := workout.AverageHeartRate
	maxHR := workout.MaxHeartRate
	session.Strain = &strain
	session.Calories = &calories
	session.AverageHeartRate = &avgHR
	session.MaxHeartRate = &maxHR

	if err := u.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	if err := u.workoutRepo.LinkSession(ctx, workout.ID, session.ID); err != nil {
		return nil, fmt.Errorf("failed to link workout: %w", err)
	}

	u.logger.Info("Workout applied to session",
		zap.Int64("user_id", userID),
		zap.Int64("session_id", sessionID),
		zap.Int64("workout_id", workoutID),
	)

	return session, nil
}

// overlapPercent reports the shared interval of [aStart, aEnd] and
// [bStart, bEnd] as a percentage of the shorter duration. Disjoint intervals
// yield 0; zero-length intervals fall back to a one-hour denominator.
func overlapPercent(aStart, aEnd, bStart, bEnd time.Time) float64 {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}

	overlap := end.Sub(start)
	if overlap <= 0 {
		return 0
	}

	minDur := aEnd.Sub(aStart)
	if d := bEnd.Sub(bStart); d < minDur {
		minDur = d
	}
	if minDur <= 0 {
		minDur = minDurationFallback
	}

	return overlap.Seconds() / minDur.Seconds() * 100
}
