package usecase

import (
	"context"
	"errors"
	"time"

	"fitjournal/internal/domain/entity"
	"fitjournal/internal/infrastructure/whoop"
)

// In-memory fakes backing the usecase tests.

var errContrived = errors.New("contrived failure")

type fakeConnRepo struct {
	conn       *entity.Connection
	lastSynced *time.Time
	findErr    error
}

func (f *fakeConnRepo) FindByUserID(_ context.Context, userID int64) (*entity.Connection, error) {
	if f.conn == nil || f.conn.UserID != userID {
		return nil, nil
	}
	return f.conn, nil
}

func (f *fakeConnRepo) FindByWhoopUserID(_ context.Context, whoopUserID int64) (*entity.Connection, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.conn == nil || f.conn.WhoopUserID != whoopUserID {
		return nil, nil
	}
	return f.conn, nil
}

func (f *fakeConnRepo) Upsert(_ context.Context, conn *entity.Connection) error {
	f.conn = conn
	return nil
}

func (f *fakeConnRepo) UpdateTokens(_ context.Context, _ int64, accessEnc, refreshEnc string, expiresAt time.Time) error {
	f.conn.AccessTokenEnc = accessEnc
	f.conn.RefreshTokenEnc = refreshEnc
	f.conn.TokenExpiresAt = expiresAt
	return nil
}

func (f *fakeConnRepo) UpdateLastSyncedAt(_ context.Context, _ int64, syncedAt time.Time) error {
	f.lastSynced = &syncedAt
	return nil
}

func (f *fakeConnRepo) Delete(_ context.Context, _ int64) error {
	f.conn = nil
	return nil
}

type fakeWorkoutRepo struct {
	workouts []entity.CachedWorkout
	nextID   int64
	deleted  bool
}

func (f *fakeWorkoutRepo) Upsert(_ context.Context, w *entity.CachedWorkout) error {
	for i := range f.workouts {
		if f.workouts[i].UserID == w.UserID && f.workouts[i].WhoopWorkoutID == w.WhoopWorkoutID {
			keepID := f.workouts[i].ID
			keepLink := f.workouts[i].SessionID
			f.workouts[i] = *w
			f.workouts[i].ID = keepID
			f.workouts[i].SessionID = keepLink
			return nil
		}
	}
	f.nextID++
	w.ID = f.nextID
	f.workouts = append(f.workouts, *w)
	return nil
}

func (f *fakeWorkoutRepo) FindByID(_ context.Context, userID, id int64) (*entity.CachedWorkout, error) {
	for i := range f.workouts {
		if f.workouts[i].UserID == userID && f.workouts[i].ID == id {
			w := f.workouts[i]
			return &w, nil
		}
	}
	return nil, nil
}

func (f *fakeWorkoutRepo) FindByTimeRange(_ context.Context, userID int64, from, to time.Time) ([]entity.CachedWorkout, error) {
	var out []entity.CachedWorkout
	for i := range f.workouts {
		w := f.workouts[i]
		if w.UserID == userID && !w.StartTime.Before(from) && !w.StartTime.After(to) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWorkoutRepo) FindUnlinked(_ context.Context, userID int64) ([]entity.CachedWorkout, error) {
	var out []entity.CachedWorkout
	for i := range f.workouts {
		if f.workouts[i].UserID == userID && f.workouts[i].SessionID == nil {
			out = append(out, f.workouts[i])
		}
	}
	return out, nil
}

func (f *fakeWorkoutRepo) FindLinked(_ context.Context, userID int64) ([]entity.CachedWorkout, error) {
	var out []entity.CachedWorkout
	for i := range f.workouts {
		if f.workouts[i].UserID == userID && f.workouts[i].SessionID != nil {
			out = append(out, f.workouts[i])
		}
	}
	return out, nil
}

func (f *fakeWorkoutRepo) LinkSession(_ context.Context, id, sessionID int64) error {
	for i := range f.workouts {
		if f.workouts[i].ID == id {
			f.workouts[i].SessionID = &sessionID
			return nil
		}
	}
	return nil
}

func (f *fakeWorkoutRepo) DeleteByUser(_ context.Context, userID int64) error {
	f.deleted = true
	var kept []entity.CachedWorkout
	for i := range f.workouts {
		if f.workouts[i].UserID != userID {
			kept = append(kept, f.workouts[i])
		}
	}
	f.workouts = kept
	return nil
}

type fakeRecoveryRepo struct {
	cycles  []entity.CachedRecoveryCycle
	deleted bool
}

func (f *fakeRecoveryRepo) Upsert(_ context.Context, c *entity.CachedRecoveryCycle) error {
	for i := range f.cycles {
		if f.cycles[i].UserID == c.UserID && f.cycles[i].WhoopCycleID == c.WhoopCycleID {
			f.cycles[i] = *c
			return nil
		}
	}
	f.cycles = append(f.cycles, *c)
	return nil
}

func (f *fakeRecoveryRepo) FindLatest(_ context.Context, userID int64) (*entity.CachedRecoveryCycle, error) {
	var latest *entity.CachedRecoveryCycle
	for i := range f.cycles {
		c := &f.cycles[i]
		if c.UserID != userID {
			continue
		}
		if latest == nil || c.CycleStart.After(latest.CycleStart) {
			latest = c
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

func (f *fakeRecoveryRepo) DeleteByUser(_ context.Context, userID int64) error {
	f.deleted = true
	var kept []entity.CachedRecoveryCycle
	for i := range f.cycles {
		if f.cycles[i].UserID != userID {
			kept = append(kept, f.cycles[i])
		}
	}
	f.cycles = kept
	return nil
}

type fakeSessionRepo struct {
	sessions map[int64]*entity.Session
	nextID   int64
	cleared  bool
	failNext bool
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[int64]*entity.Session)}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *entity.Session) (int64, error) {
	if f.failNext {
		f.failNext = false
		return 0, errContrived
	}
	f.nextID++
	s.ID = f.nextID
	copied := *s
	f.sessions[s.ID] = &copied
	return s.ID, nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, userID, id int64) (*entity.Session, error) {
	s, ok := f.sessions[id]
	if !ok || s.UserID != userID {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionRepo) Update(_ context.Context, s *entity.Session) error {
	copied := *s
	f.sessions[s.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) ClearWearableData(_ context.Context, userID int64) error {
	f.cleared = true
	for _, s := range f.sessions {
		if s.UserID == userID {
			s.Strain = nil
			s.Calories = nil
			s.AverageHeartRate = nil
			s.MaxHeartRate = nil
		}
	}
	return nil
}

type fakeProfileRepo struct {
	profile *entity.Profile
}

func (f *fakeProfileRepo) FindByUserID(_ context.Context, _ int64) (*entity.Profile, error) {
	return f.profile, nil
}

type fakeReadiness struct {
	logged       bool
	sleepRating  int
	energyRating int
}

func (f *fakeReadiness) LogReadiness(_ context.Context, _ int64, _ time.Time, sleepRating, energyRating int) error {
	f.logged = true
	f.sleepRating = sleepRating
	f.energyRating = energyRating
	return nil
}

type fakeStateStore struct {
	states map[string]int64
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{states: make(map[string]int64)}
}

func (f *fakeStateStore) Save(_ context.Context, state string, userID int64, _ time.Duration) error {
	f.states[state] = userID
	return nil
}

func (f *fakeStateStore) Consume(_ context.Context, state string) (int64, error) {
	userID, ok := f.states[state]
	if !ok {
		return 0, entity.ErrInvalidState
	}
	delete(f.states, state)
	return userID, nil
}

type fakeTokenService struct {
	accessToken string
	err         error
	revoked     bool
	savedConn   *entity.Connection
}

func (f *fakeTokenService) GetValidAccessToken(_ context.Context, _ int64) (string, error) {
	return f.accessToken, f.err
}

func (f *fakeTokenService) SaveGrant(_ context.Context, userID, whoopUserID int64, tok *whoop.TokenResponse) (*entity.Connection, error) {
	f.savedConn = &entity.Connection{
		UserID:      userID,
		WhoopUserID: whoopUserID,
		Scopes:      []string{"read:workout"},
		IsActive:    true,
	}
	return f.savedConn, nil
}

func (f *fakeTokenService) Revoke(_ context.Context, _ int64) error {
	f.revoked = true
	return nil
}

// fakeWhoopClient serves canned pages. Slices are consumed one page per call.
type fakeWhoopClient struct {
	workoutPages  []whoop.WorkoutPage
	cyclePages    []whoop.CyclePage
	recoveryPages []whoop.RecoveryPage
	sleepPages    []whoop.SleepPage

	workoutCalls int
	profile      *whoop.UserProfile
	tokenResp    *whoop.TokenResponse
	exchangeErr  error
}

func (f *fakeWhoopClient) AuthorizationURL(state string) string {
	return "https://api.example.test/oauth/oauth2/auth?state=" + state
}

func (f *fakeWhoopClient) ExchangeCode(_ context.Context, _ string) (*whoop.TokenResponse, error) {
	return f.tokenResp, f.exchangeErr
}

func (f *fakeWhoopClient) RefreshToken(_ context.Context, _ string) (*whoop.TokenResponse, error) {
	return f.tokenResp, nil
}

func (f *fakeWhoopClient) RevokeToken(_ context.Context, _ string) error {
	return nil
}

func (f *fakeWhoopClient) GetProfile(_ context.Context, _ string) (*whoop.UserProfile, error) {
	return f.profile, nil
}

func (f *fakeWhoopClient) GetWorkouts(_ context.Context, _ string, _, _ time.Time, _ string) (*whoop.WorkoutPage, error) {
	f.workoutCalls++
	if len(f.workoutPages) == 0 {
		return &whoop.WorkoutPage{}, nil
	}
	page := f.workoutPages[0]
	f.workoutPages = f.workoutPages[1:]
	return &page, nil
}

func (f *fakeWhoopClient) GetCycles(_ context.Context, _ string, _, _ time.Time, _ string) (*whoop.CyclePage, error) {
	if len(f.cyclePages) == 0 {
		return &whoop.CyclePage{}, nil
	}
	page := f.cyclePages[0]
	f.cyclePages = f.cyclePages[1:]
	return &page, nil
}

func (f *fakeWhoopClient) GetRecoveries(_ context.Context, _ string, _, _ time.Time, _ string) (*whoop.RecoveryPage, error) {
	if len(f.recoveryPages) == 0 {
		return &whoop.RecoveryPage{}, nil
	}
	page := f.recoveryPages[0]
	f.recoveryPages = f.recoveryPages[1:]
	return &page, nil
}

func (f *fakeWhoopClient) GetSleeps(_ context.Context, _ string, _, _ time.Time, _ string) (*whoop.SleepPage, error) {
	if len(f.sleepPages) == 0 {
		return &whoop.SleepPage{}, nil
	}
	page := f.sleepPages[0]
	f.sleepPages = f.sleepPages[1:]
	return &page, nil
}

// fakeSyncer satisfies SyncUsecase for the match tests.
type fakeSyncer struct {
	syncCalls int
	onSync    func()
}

func (f *fakeSyncer) SyncWorkouts(_ context.Context, _ int64, _ int) (*entity.SyncResult, error) {
	f.syncCalls++
	if f.onSync != nil {
		f.onSync()
	}
	return &entity.SyncResult{}, nil
}

func (f *fakeSyncer) SyncRecovery(_ context.Context, _ int64, _ int) (*entity.SyncResult, error) {
	return &entity.SyncResult{}, nil
}

func (f *fakeSyncer) GetLatestRecovery(_ context.Context, _ int64) (*entity.CachedRecoveryCycle, error) {
	return nil, entity.ErrNoRecoveryData
}

// fakeAutoSession satisfies AutoSessionUsecase for the sync tests.
type fakeAutoSession struct {
	created  entity.AutoCreateResult
	backfill int
	err      error
}

func (f *fakeAutoSession) AutoCreateSessions(_ context.Context, _ int64) (*entity.AutoCreateResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := f.created
	return &out, nil
}

func (f *fakeAutoSession) BackfillSessionTimezones(_ context.Context, _ int64) (int, error) {
	return f.backfill, f.err
}
