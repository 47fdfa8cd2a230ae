package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fitjournal/internal/domain/entity"
	"fitjournal/internal/domain/repository"
	"fitjournal/internal/infrastructure/oauth2"
	"fitjournal/internal/infrastructure/whoop"
)

// stateTTL is how long an authorize redirect stays valid.
const stateTTL = 10 * time.Minute

type OAuthUsecase interface {
	// Initiate starts the authorize handshake: persists a fresh CSRF state
	// and returns the provider authorization URL carrying it.
	Initiate(ctx context.Context, userID int64) (string, error)

	// HandleCallback consumes the state (single use), exchanges the code,
	// resolves the external account, and upserts the connection.
	// Returns entity.ErrInvalidState for a missing or expired state.
	HandleCallback(ctx context.Context, code, state string) (*entity.ConnectionSummary, error)

	// Disconnect revokes the grant best-effort, then deletes both caches,
	// the connection, and the wearable fields on linked sessions.
	Disconnect(ctx context.Context, userID int64) (bool, error)
}

type oauthUsecase struct {
	stateStore   repository.StateStore
	tokenService oauth2.TokenService
	connRepo     repository.ConnectionRepository
	workoutRepo  repository.WorkoutCacheRepository
	recoveryRepo repository.RecoveryCacheRepository
	sessionRepo  repository.SessionRepository
	client       whoop.Client
	logger       *zap.Logger
}

func NewOAuthUsecase(
	stateStore repository.StateStore,
	tokenService oauth2.TokenService,
	connRepo repository.ConnectionRepository,
	workoutRepo repository.WorkoutCacheRepository,
	recoveryRepo repository.RecoveryCacheRepository,
	sessionRepo repository.SessionRepository,
	client whoop.Client,
	logger *zap.Logger,
) OAuthUsecase {
	return &oauthUsecase{
		stateStore:   stateStore,
		tokenService: tokenService,
		connRepo:     connRepo,
		workoutRepo:  workoutRepo,
		recoveryRepo: recoveryRepo,
		sessionRepo:  sessionRepo,
		client:       client,
		logger:       logger,
	}
}

func (u *oauthUsecase) Initiate(ctx context.Context, userID int64) (string, error) {
	state, err := randomState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	if err := u.stateStore.Save(ctx, state, userID, stateTTL); err != nil {
		return "", err
	}

	authURL := u.client.AuthorizationURL(state)

	u.logger.Info("OAuth flow initiated",
		zap.Int64("user_id", userID),
	)

	return authURL, nil
}

func (u *oauthUsecase) HandleCallback(ctx context.Context, code, state string) (*entity.ConnectionSummary, error) {
	userID, err := u.stateStore.Consume(ctx, state)
	if err != nil {
		return nil, err
	}

	tokenResp, err := u.client.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	profile, err := u.client.GetProfile(ctx, tokenResp.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch provider profile: %w", err)
	}

	conn, err := u.tokenService.SaveGrant(ctx, userID, profile.UserID, tokenResp)
	if err != nil {
		return nil, err
	}

	u.logger.Info("WHOOP connection established",
		zap.Int64("user_id", userID),
		zap.Int64("whoop_user_id", profile.UserID),
	)

	return &entity.ConnectionSummary{
		UserID:             conn.UserID,
		WhoopUserID:        conn.WhoopUserID,
		Scopes:             conn.Scopes,
		AutoCreateSessions: conn.AutoCreateSessions,
		AutoFillReadiness:  conn.AutoFillReadiness,
		ConnectedAt:        time.Now(),
	}, nil
}

func (u *oauthUsecase) Disconnect(ctx context.Context, userID int64) (bool, error) {
	conn, err := u.connRepo.FindByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load connection: %w", err)
	}
	if conn == nil {
		return false, entity.ErrNotConnected
	}

	// Revocation is best-effort: a provider failure never blocks local
	// deletion.
	if err := u.tokenService.Revoke(ctx, userID); err != nil {
		u.logger.Warn("Token revocation failed, continuing disconnect",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	if err := u.workoutRepo.DeleteByUser(ctx, userID); err != nil {
		return false, err
	}
	if err := u.recoveryRepo.DeleteByUser(ctx, userID); err != nil {
		return false, err
	}
	if err := u.sessionRepo.ClearWearableData(ctx, userID); err != nil {
		return false, err
	}
	if err := u.connRepo.Delete(ctx, userID); err != nil {
		return false, err
	}

	u.logger.Info("WHOOP connection removed",
		zap.Int64("user_id", userID),
	)

	return true, nil
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
