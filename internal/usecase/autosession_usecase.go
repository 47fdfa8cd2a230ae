package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"fitjournal/internal/domain/entity"
	"fitjournal/internal/domain/repository"
)

type AutoSessionUsecase interface {
	// AutoCreateSessions turns every unlinked cached workout into a journal
	// session flagged for review, using the profile defaults. A no-op unless
	// the connection opted in. One bad workout skips, never aborts the batch.
	AutoCreateSessions(ctx context.Context, userID int64) (*entity.AutoCreateResult, error)

	// BackfillSessionTimezones rewrites the date and class time of linked
	// sessions whose stored wall clock disagrees with the workout's recorded
	// local offset. Returns how many rows were corrected.
	BackfillSessionTimezones(ctx context.Context, userID int64) (int, error)
}

type autoSessionUsecase struct {
	connRepo    repository.ConnectionRepository
	workoutRepo repository.WorkoutCacheRepository
	sessionRepo repository.SessionRepository
	profileRepo repository.ProfileRepository
	logger      *zap.Logger
}

func NewAutoSessionUsecase(
	connRepo repository.ConnectionRepository,
	workoutRepo repository.WorkoutCacheRepository,
	sessionRepo repository.SessionRepository,
	profileRepo repository.ProfileRepository,
	logger *zap.Logger,
) AutoSessionUsecase {
	return &autoSessionUsecase{
		connRepo:    connRepo,
		workoutRepo: workoutRepo,
		sessionRepo: sessionRepo,
		profileRepo: profileRepo,
		logger:      logger,
	}
}

func (u *autoSessionUsecase) AutoCreateSessions(ctx context.Context, userID int64) (*entity.AutoCreateResult, error) {
	conn, err := u.connRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load connection: %w", err)
	}
	if conn == nil || !conn.AutoCreateSessions {
		return &entity.AutoCreateResult{}, nil
	}

	unlinked, err := u.workoutRepo.FindUnlinked(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlinked workouts: %w", err)
	}
	if len(unlinked) == 0 {
		return &entity.AutoCreateResult{}, nil
	}

	profile, err := u.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	result := &entity.AutoCreateResult{}
	for i := range unlinked {
		w := &unlinked[i]
		if err := u.createFromWorkout(ctx, userID, w, profile); err != nil {
			result.Skipped++
			u.logger.Warn("Skipping workout during auto-create",
				zap.Int64("user_id", userID),
				zap.String("whoop_workout_id", w.WhoopWorkoutID),
				zap.Error(err),
			)
			continue
		}
		result.Created++
	}

	if result.Created > 0 {
		u.logger.Info("Auto-created sessions from workouts",
			zap.Int64("user_id", userID),
			zap.Int("created", result.Created),
			zap.Int("skipped", result.Skipped),
		)
	}

	return result, nil
}

func (u *autoSessionUsecase) createFromWorkout(ctx context.Context, userID int64, w *entity.CachedWorkout, profile *entity.Profile) error {
	localStart := w.LocalStart()

	session := &entity.Session{
		UserID:          userID,
		Date:            time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, time.UTC),
		ClassTime:       localStart.Format("15:04"),
		DurationMinutes: durationMinutes(w.Duration()),
		Source:          entity.SourceWhoop,
		NeedsReview:     true,
	}
	if profile != nil {
		session.Gym = profile.DefaultGym
		session.ClassType = profile.DefaultClassType
	}

	strain := w.Strain
	calories := w.Calories
	avgHR := w.AverageHeartRate
	maxHR := w.MaxHeartRate
	session.Strain = &strain
	session.Calories = &calories
	session.AverageHeartRate = &avgHR
	session.MaxHeartRate = &maxHR

	sessionID, err := u.sessionRepo.Create(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if err := u.workoutRepo.LinkSession(ctx, w.ID, sessionID); err != nil {
		return fmt.Errorf("failed to link workout: %w", err)
	}
	return nil
}

func (u *autoSessionUsecase) BackfillSessionTimezones(ctx context.Context, userID int64) (int, error) {
	linked, err := u.workoutRepo.FindLinked(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list linked workouts: %w", err)
	}

	fixed := 0
	for i := range linked {
		w := &linked[i]
		if w.SessionID == nil {
			continue
		}

		session, err := u.sessionRepo.GetByID(ctx, userID, *w.SessionID)
		if err != nil || session == nil || session.Source != entity.SourceWhoop {
			continue
		}

		localStart := w.LocalStart()
		wantDate := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, time.UTC)
		wantTime := localStart.Format("15:04")
		if session.Date.Equal(wantDate) && session.ClassTime == wantTime {
			continue
		}

		session.Date = wantDate
		session.ClassTime = wantTime
		if err := u.sessionRepo.Update(ctx, session); err != nil {
			u.logger.Warn("Failed to backfill session timezone",
				zap.Int64("user_id", userID),
				zap.Int64("session_id", session.ID),
				zap.Error(err),
			)
			continue
		}
		fixed++
	}

	if fixed > 0 {
		u.logger.Info("Backfilled session timezones",
			zap.Int64("user_id", userID),
			zap.Int("fixed", fixed),
		)
	}

	return fixed, nil
}

func durationMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}
