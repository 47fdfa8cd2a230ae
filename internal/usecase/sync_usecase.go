package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"fitjournal/internal/domain/entity"
	"fitjournal/internal/domain/repository"
	"fitjournal/internal/infrastructure/oauth2"
	"fitjournal/internal/infrastructure/whoop"
)

const (
	// maxSyncPages caps the provider cursor loop so a misbehaving cursor
	// cannot spin forever.
	maxSyncPages = 25

	// recoveryFreshness is how old a cached recovery row may be before a
	// read triggers a resync.
	recoveryFreshness = 4 * time.Hour
)

type SyncUsecase interface {
	// SyncWorkouts pulls the workout window [now - daysBack, now] into the
	// local cache, then runs auto-session creation and timezone backfill as
	// isolated follow-on steps reported in the result.
	SyncWorkouts(ctx context.Context, userID int64, daysBack int) (*entity.SyncResult, error)

	// SyncRecovery pulls cycles, recovery scores and sleep scores over the
	// same window, joins them by cycle id, and upserts one row per cycle.
	SyncRecovery(ctx context.Context, userID int64, daysBack int) (*entity.SyncResult, error)

	// GetLatestRecovery returns the cached latest cycle, resyncing two days
	// first when the cache is older than four hours.
	GetLatestRecovery(ctx context.Context, userID int64) (*entity.CachedRecoveryCycle, error)
}

type syncUsecase struct {
	tokenService oauth2.TokenService
	client       whoop.Client
	connRepo     repository.ConnectionRepository
	workoutRepo  repository.WorkoutCacheRepository
	recoveryRepo repository.RecoveryCacheRepository
	readiness    repository.ReadinessLogger
	autoSession  AutoSessionUsecase
	logger       *zap.Logger
}

func NewSyncUsecase(
	tokenService oauth2.TokenService,
	client whoop.Client,
	connRepo repository.ConnectionRepository,
	workoutRepo repository.WorkoutCacheRepository,
	recoveryRepo repository.RecoveryCacheRepository,
	readiness repository.ReadinessLogger,
	autoSession AutoSessionUsecase,
	logger *zap.Logger,
) SyncUsecase {
	return &syncUsecase{
		tokenService: tokenService,
		client:       client,
		connRepo:     connRepo,
		workoutRepo:  workoutRepo,
		recoveryRepo: recoveryRepo,
		readiness:    readiness,
		autoSession:  autoSession,
		logger:       logger,
	}
}

func (u *syncUsecase) SyncWorkouts(ctx context.Context, userID int64, daysBack int) (*entity.SyncResult, error) {
	accessToken, err := u.tokenService.GetValidAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -daysBack)

	synced := 0
	nextToken := ""
	for page := 0; page < maxSyncPages; page++ {
		resp, err := u.client.GetWorkouts(ctx, accessToken, start, end, nextToken)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch workouts: %w", err)
		}
		if len(resp.Records) == 0 {
			break
		}

		for i := range resp.Records {
			cached := buildCachedWorkout(userID, &resp.Records[i])
			if err := u.workoutRepo.Upsert(ctx, cached); err != nil {
				return nil, fmt.Errorf("failed to cache workout %s: %w", resp.Records[i].ID, err)
			}
			synced++
		}

		if resp.NextToken == "" {
			break
		}
		nextToken = resp.NextToken
	}

	if err := u.connRepo.UpdateLastSyncedAt(ctx, userID, time.Now()); err != nil {
		u.logger.Warn("Failed to update last_synced_at", zap.Int64("user_id", userID), zap.Error(err))
	}

	result := &entity.SyncResult{Synced: synced}

	// Follow-on steps are best-effort: a failure here never fails the sync.
	result.Steps = append(result.Steps, u.runAutoCreate(ctx, userID))
	result.Steps = append(result.Steps, u.runBackfill(ctx, userID))

	u.logger.Info("Workout sync completed",
		zap.Int64("user_id", userID),
		zap.Int("days_back", daysBack),
		zap.Int("synced", synced),
	)

	return result, nil
}

func (u *syncUsecase) runAutoCreate(ctx context.Context, userID int64) entity.StepOutcome {
	out := entity.StepOutcome{Name: "auto_create_sessions"}

	created, err := u.autoSession.AutoCreateSessions(ctx, userID)
	if err != nil {
		out.Status = entity.StepStatusFailed
		out.Error = err.Error()
		u.logger.Warn("Auto-session creation failed", zap.Int64("user_id", userID), zap.Error(err))
		return out
	}
	if created.Created == 0 && created.Skipped == 0 {
		out.Status = entity.StepStatusSkipped
		return out
	}
	out.Status = entity.StepStatusOK
	out.Count = created.Created
	return out
}

func (u *syncUsecase) runBackfill(ctx context.Context, userID int64) entity.StepOutcome {
	out := entity.StepOutcome{Name: "backfill_timezones"}

	fixed, err := u.autoSession.BackfillSessionTimezones(ctx, userID)
	if err != nil {
		out.Status = entity.StepStatusFailed
		out.Error = err.Error()
		u.logger.Warn("Timezone backfill failed", zap.Int64("user_id", userID), zap.Error(err))
		return out
	}
	out.Status = entity.StepStatusOK
	out.Count = fixed
	return out
}

func (u *syncUsecase) SyncRecovery(ctx context.Context, userID int64, daysBack int) (*entity.SyncResult, error) {
	accessToken, err := u.tokenService.GetValidAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -daysBack)

	cycles, err := u.fetchCycles(ctx, accessToken, start, end)
	if err != nil {
		return nil, err
	}
	recoveries, err := u.fetchRecoveries(ctx, accessToken, start, end)
	if err != nil {
		return nil, err
	}
	sleeps, err := u.fetchSleeps(ctx, accessToken, start, end)
	if err != nil {
		return nil, err
	}

	merged := mergeRecoveryCycles(userID, cycles, recoveries, sleeps)
	for i := range merged {
		if err := u.recoveryRepo.Upsert(ctx, &merged[i]); err != nil {
			return nil, fmt.Errorf("failed to cache recovery cycle %d: %w", merged[i].WhoopCycleID, err)
		}
	}

	if err := u.connRepo.UpdateLastSyncedAt(ctx, userID, time.Now()); err != nil {
		u.logger.Warn("Failed to update last_synced_at", zap.Int64("user_id", userID), zap.Error(err))
	}

	result := &entity.SyncResult{Synced: len(merged)}
	result.Steps = append(result.Steps, u.runReadinessAutoFill(ctx, userID))

	u.logger.Info("Recovery sync completed",
		zap.Int64("user_id", userID),
		zap.Int("days_back", daysBack),
		zap.Int("synced", len(merged)),
	)

	return result, nil
}

func (u *syncUsecase) runReadinessAutoFill(ctx context.Context, userID int64) entity.StepOutcome {
	out := entity.StepOutcome{Name: "readiness_auto_fill"}

	conn, err := u.connRepo.FindByUserID(ctx, userID)
	if err != nil || conn == nil || !conn.AutoFillReadiness {
		out.Status = entity.StepStatusSkipped
		return out
	}

	latest, err := u.recoveryRepo.FindLatest(ctx, userID)
	if err != nil || latest == nil || latest.RecoveryScore == nil {
		out.Status = entity.StepStatusSkipped
		return out
	}

	rating := readinessRating(*latest.RecoveryScore)
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if err := u.readiness.LogReadiness(ctx, userID, today, rating, rating); err != nil {
		out.Status = entity.StepStatusFailed
		out.Error = err.Error()
		u.logger.Warn("Readiness auto-fill failed", zap.Int64("user_id", userID), zap.Error(err))
		return out
	}

	out.Status = entity.StepStatusOK
	out.Count = 1
	return out
}

func (u *syncUsecase) GetLatestRecovery(ctx context.Context, userID int64) (*entity.CachedRecoveryCycle, error) {
	latest, err := u.recoveryRepo.FindLatest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest != nil && time.Since(latest.SyncedAt) < recoveryFreshness {
		return latest, nil
	}

	// Stale cache, refresh on read.
	if _, err := u.SyncRecovery(ctx, userID, 2); err != nil {
		return nil, err
	}

	latest, err = u.recoveryRepo.FindLatest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, entity.ErrNoRecoveryData
	}
	return latest, nil
}

func (u *syncUsecase) fetchCycles(ctx context.Context, accessToken string, start, end time.Time) ([]whoop.Cycle, error) {
	var all []whoop.Cycle
	nextToken := ""
	for page := 0; page < maxSyncPages; page++ {
		resp, err := u.client.GetCycles(ctx, accessToken, start, end, nextToken)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch cycles: %w", err)
		}
		if len(resp.Records) == 0 {
			break
		}
		all = append(all, resp.Records...)
		if resp.NextToken == "" {
			break
		}
		nextToken = resp.NextToken
	}
	return all, nil
}

func (u *syncUsecase) fetchRecoveries(ctx context.Context, accessToken string, start, end time.Time) ([]whoop.Recovery, error) {
	var all []whoop.Recovery
	nextToken := ""
	for page := 0; page < maxSyncPages; page++ {
		resp, err := u.client.GetRecoveries(ctx, accessToken, start, end, nextToken)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch recoveries: %w", err)
		}
		if len(resp.Records) == 0 {
			break
		}
		all = append(all, resp.Records...)
		if resp.NextToken == "" {
			break
		}
		nextToken = resp.NextToken
	}
	return all, nil
}

func (u *syncUsecase) fetchSleeps(ctx context.Context, accessToken string, start, end time.Time) ([]whoop.Sleep, error) {
	var all []whoop.Sleep
	nextToken := ""
	for page := 0; page < maxSyncPages; page++ {
		resp, err := u.client.GetSleeps(ctx, accessToken, start, end, nextToken)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch sleeps: %w", err)
		}
		if len(resp.Records) == 0 {
			break
		}
		all = append(all, resp.Records...)
		if resp.NextToken == "" {
			break
		}
		nextToken = resp.NextToken
	}
	return all, nil
}

// buildCachedWorkout maps one provider record to a cache row. Calories are
// derived from kilojoules since the provider reports energy only.
func buildCachedWorkout(userID int64, w *whoop.Workout) *entity.CachedWorkout {
	cached := &entity.CachedWorkout{
		UserID:         userID,
		WhoopWorkoutID: w.ID,
		StartTime:      w.Start.UTC(),
		EndTime:        w.End.UTC(),
		TimezoneOffset: w.TimezoneOffset,
		SportID:        w.SportID,
		SportName:      w.SportName,
	}

	if w.Score != nil {
		cached.Strain = w.Score.Strain
		cached.AverageHeartRate = w.Score.AverageHeartRate
		cached.MaxHeartRate = w.Score.MaxHeartRate
		cached.Kilojoules = w.Score.Kilojoule
		cached.Calories = caloriesFromKilojoules(w.Score.Kilojoule)
		cached.ZoneDurations = entity.ZoneDurations(w.Score.ZoneDurations)
	}

	if raw, err := json.Marshal(w); err == nil {
		cached.RawPayload = raw
	}

	return cached
}

// mergeRecoveryCycles joins cycles with their recovery and sleep scores by
// cycle id. A cycle missing either part still yields a row with those fields
// nil. Naps never contribute sleep data.
func mergeRecoveryCycles(userID int64, cycles []whoop.Cycle, recoveries []whoop.Recovery, sleeps []whoop.Sleep) []entity.CachedRecoveryCycle {
	recoveryByCycle := make(map[int64]*whoop.Recovery, len(recoveries))
	for i := range recoveries {
		recoveryByCycle[recoveries[i].CycleID] = &recoveries[i]
	}
	sleepByCycle := make(map[int64]*whoop.Sleep, len(sleeps))
	for i := range sleeps {
		if sleeps[i].Nap {
			continue
		}
		sleepByCycle[sleeps[i].CycleID] = &sleeps[i]
	}

	merged := make([]entity.CachedRecoveryCycle, 0, len(cycles))
	for i := range cycles {
		cycle := &cycles[i]
		row := entity.CachedRecoveryCycle{
			UserID:       userID,
			WhoopCycleID: cycle.ID,
			CycleStart:   cycle.Start.UTC(),
		}
		if cycle.End != nil {
			end := cycle.End.UTC()
			row.CycleEnd = &end
		}

		if rec, ok := recoveryByCycle[cycle.ID]; ok && rec.Score != nil {
			row.RecoveryScore = &rec.Score.RecoveryScore
			row.RestingHeartRate = &rec.Score.RestingHeartRate
			row.HRVMilli = &rec.Score.HRVRmssdMilli
			row.SpO2Percentage = &rec.Score.SpO2Percentage
			row.SkinTempCelsius = &rec.Score.SkinTempCelsius
		}

		if sl, ok := sleepByCycle[cycle.ID]; ok && sl.Score != nil {
			score := sl.Score
			row.SleepPerformancePct = &score.SleepPerformancePercentage
			duration := score.StageSummary.TotalInBedTimeMilli
			row.SleepDurationMilli = &duration
			needed := score.SleepNeeded.BaselineMilli
			row.SleepNeededMilli = &needed
			debt := score.SleepNeeded.NeedFromSleepDebtMilli
			row.SleepDebtMilli = &debt
			light := score.StageSummary.TotalLightSleepTimeMilli
			row.LightSleepMilli = &light
			sws := score.StageSummary.TotalSlowWaveSleepTimeMilli
			row.SlowWaveSleepMilli = &sws
			rem := score.StageSummary.TotalREMSleepTimeMilli
			row.REMSleepMilli = &rem
			awake := score.StageSummary.TotalAwakeTimeMilli
			row.AwakeMilli = &awake
		}

		if raw, err := json.Marshal(cycle); err == nil {
			row.RawPayload = raw
		}

		merged = append(merged, row)
	}

	return merged
}

// caloriesFromKilojoules converts provider energy to kilocalories.
func caloriesFromKilojoules(kj float64) int {
	return int(math.Round(kj / 4.184))
}

// readinessRating maps a 0-100 recovery score to a 1-5 check-in rating.
func readinessRating(score float64) int {
	rating := int(math.Round(score / 20))
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}
	return rating
}
