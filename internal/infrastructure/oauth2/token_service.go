package oauth2

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"fitjournal/internal/domain/entity"
	"fitjournal/internal/domain/repository"
	"fitjournal/internal/infrastructure/crypto"
	"fitjournal/internal/infrastructure/whoop"
)

// refreshBuffer refreshes tokens that expire within this window, so a token
// valid at read time cannot expire before it is used.
const refreshBuffer = 5 * time.Minute

// TokenService is the vault boundary for OAuth credentials: tokens are stored
// encrypted and plaintext exists only inside this package (and in the access
// token handed out for provider calls).
type TokenService interface {
	// GetValidAccessToken returns a usable access token for the user,
	// refreshing first when the stored one expires within five minutes.
	// Returns entity.ErrNotConnected when the user has no connection.
	GetValidAccessToken(ctx context.Context, userID int64) (string, error)

	// SaveGrant encrypts and upserts a freshly obtained token pair, creating
	// the connection if it does not exist yet. Existing per-user settings are
	// preserved.
	SaveGrant(ctx context.Context, userID, whoopUserID int64, tok *whoop.TokenResponse) (*entity.Connection, error)

	// Revoke revokes the user's grant at the provider using the stored access
	// token.
	Revoke(ctx context.Context, userID int64) error
}

type tokenService struct {
	connRepo repository.ConnectionRepository
	cipher   *crypto.TokenCipher
	client   whoop.Client
	logger   *zap.Logger

	// refresh is serialized per user so two near-simultaneous refreshes
	// cannot invalidate each other's refresh token.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewTokenService(connRepo repository.ConnectionRepository, cipher *crypto.TokenCipher, client whoop.Client, logger *zap.Logger) TokenService {
	return &tokenService{
		connRepo: connRepo,
		cipher:   cipher,
		client:   client,
		logger:   logger,
		locks:    make(map[int64]*sync.Mutex),
	}
}

func (s *tokenService) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[userID]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[userID] = l
	return l
}

func (s *tokenService) GetValidAccessToken(ctx context.Context, userID int64) (string, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	conn, err := s.connRepo.FindByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load connection: %w", err)
	}
	if conn == nil {
		return "", entity.ErrNotConnected
	}

	if time.Until(conn.TokenExpiresAt) > refreshBuffer {
		accessToken, err := s.cipher.Decrypt(conn.AccessTokenEnc)
		if err != nil {
			return "", fmt.Errorf("failed to decrypt access token: %w", err)
		}
		return accessToken, nil
	}

	s.logger.Info("Access token near expiry, refreshing",
		zap.Int64("user_id", userID),
		zap.Time("expires_at", conn.TokenExpiresAt),
	)

	refreshToken, err := s.cipher.Decrypt(conn.RefreshTokenEnc)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	tokenResp, err := s.client.RefreshToken(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	if err := s.storeTokens(ctx, userID, tokenResp); err != nil {
		return "", err
	}

	s.logger.Info("Token refreshed successfully",
		zap.Int64("user_id", userID),
		zap.Int("expires_in", tokenResp.ExpiresIn),
	)

	return tokenResp.AccessToken, nil
}

func (s *tokenService) SaveGrant(ctx context.Context, userID, whoopUserID int64, tok *whoop.TokenResponse) (*entity.Connection, error) {
	accessEnc, err := s.cipher.Encrypt(tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}
	refreshEnc, err := s.cipher.Encrypt(tok.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	existing, err := s.connRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load connection: %w", err)
	}

	conn := &entity.Connection{
		UserID:          userID,
		WhoopUserID:     whoopUserID,
		AccessTokenEnc:  accessEnc,
		RefreshTokenEnc: refreshEnc,
		TokenExpiresAt:  time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
		Scopes:          strings.Fields(tok.Scope),
		IsActive:        true,
	}
	if existing != nil {
		conn.AutoCreateSessions = existing.AutoCreateSessions
		conn.AutoFillReadiness = existing.AutoFillReadiness
		conn.LastSyncedAt = existing.LastSyncedAt
	}

	if err := s.connRepo.Upsert(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to save connection: %w", err)
	}

	s.logger.Info("Connection saved",
		zap.Int64("user_id", userID),
		zap.Int64("whoop_user_id", whoopUserID),
		zap.Strings("scopes", conn.Scopes),
	)

	return conn, nil
}

func (s *tokenService) Revoke(ctx context.Context, userID int64) error {
	conn, err := s.connRepo.FindByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load connection: %w", err)
	}
	if conn == nil {
		return entity.ErrNotConnected
	}

	accessToken, err := s.cipher.Decrypt(conn.AccessTokenEnc)
	if err != nil {
		return fmt.Errorf("failed to decrypt access token: %w", err)
	}

	return s.client.RevokeToken(ctx, accessToken)
}

func (s *tokenService) storeTokens(ctx context.Context, userID int64, tok *whoop.TokenResponse) error {
	accessEnc, err := s.cipher.Encrypt(tok.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	refreshEnc, err := s.cipher.Encrypt(tok.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	expiresAt := time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	if err := s.connRepo.UpdateTokens(ctx, userID, accessEnc, refreshEnc, expiresAt); err != nil {
		return fmt.Errorf("failed to store refreshed tokens: %w", err)
	}

	return nil
}
