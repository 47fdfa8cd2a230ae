package whoop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"fitjournal/internal/config"
)

const maxBodyLogLength = 500 // maximum characters to log for a response body

// Client is the WHOOP developer API consumed by the sync engine and the OAuth
// flow. All calls carry the configured per-request timeout.
type Client interface {
	// AuthorizationURL builds the provider authorize URL carrying the CSRF
	// state and the configured scopes.
	AuthorizationURL(state string) string

	// ExchangeCode exchanges an authorization code for a token pair.
	ExchangeCode(ctx context.Context, code string) (*TokenResponse, error)

	// RefreshToken exchanges a refresh token for a new token pair.
	RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error)

	// RevokeToken revokes the grant at the provider.
	RevokeToken(ctx context.Context, accessToken string) error

	// GetProfile fetches the external account profile.
	GetProfile(ctx context.Context, accessToken string) (*UserProfile, error)

	// Paginated collection listings over [start, end]. Pass the previous
	// page's next token to continue; an empty NextToken ends the listing.
	GetWorkouts(ctx context.Context, accessToken string, start, end time.Time, nextToken string) (*WorkoutPage, error)
	GetCycles(ctx context.Context, accessToken string, start, end time.Time, nextToken string) (*CyclePage, error)
	GetRecoveries(ctx context.Context, accessToken string, start, end time.Time, nextToken string) (*RecoveryPage, error)
	GetSleeps(ctx context.Context, accessToken string, start, end time.Time, nextToken string) (*SleepPage, error)
}

type client struct {
	config *config.Config
	client *http.Client
	logger *zap.Logger
}

func NewClient(cfg *config.Config, logger *zap.Logger) Client {
	return &client{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Whoop.Timeout,
		},
		logger: logger,
	}
}

func (c *client) AuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("client_id", c.config.Whoop.ClientID)
	params.Set("redirect_uri", c.config.Whoop.RedirectURL)
	params.Set("response_type", "code")
	params.Set("scope", strings.Join(c.config.Whoop.Scopes, " "))
	params.Set("state", state)

	return c.config.Whoop.AuthBaseURL + "/oauth/oauth2/auth?" + params.Encode()
}

func (c *client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", c.config.Whoop.ClientID)
	form.Set("client_secret", c.config.Whoop.ClientSecret)
	form.Set("redirect_uri", c.config.Whoop.RedirectURL)

	tokenResp, err := c.requestToken(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return tokenResp, nil
}

func (c *client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.config.Whoop.ClientID)
	form.Set("client_secret", c.config.Whoop.ClientSecret)
	form.Set("scope", "offline")

	tokenResp, err := c.requestToken(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return tokenResp, nil
}

func (c *client) requestToken(ctx context.Context, form url.Values) (*TokenResponse, error) {
	tokenURL := c.config.Whoop.AuthBaseURL + "/oauth/oauth2/token"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Debug(">>> [WHOOP-TOKEN-REQ]",
		zap.String("url", tokenURL),
		zap.String("grant_type", form.Get("grant_type")),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug(">>> [WHOOP-TOKEN-RESPONSE]",
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token request failed: status=%d, body=%s",
			resp.StatusCode, truncate(string(respBody), maxBodyLogLength))
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token response: %w", err)
	}

	return &tokenResp, nil
}

func (c *client) RevokeToken(ctx context.Context, accessToken string) error {
	form := url.Values{}
	form.Set("token", accessToken)
	form.Set("client_id", c.config.Whoop.ClientID)
	form.Set("client_secret", c.config.Whoop.ClientSecret)

	revokeURL := c.config.Whoop.AuthBaseURL + "/oauth/oauth2/revoke"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("revoke failed: status=%d, body=%s",
			resp.StatusCode, truncate(string(body), maxBodyLogLength))
	}

	return nil
}

func (c *client) GetProfile(ctx context.Context, accessToken string) (*UserProfile, error) {
	var profile UserProfile
	if err := c.get(ctx, accessToken, "/developer/v1/user/profile/basic", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *client) GetWorkouts(ctx context.Context, accessToken string, start, end time.Time, nextToken string) (*WorkoutPage, error) {
	var page WorkoutPage
	if err := c.get(ctx, accessToken, "/developer/v1/activity/workout", rangeParams(start, end, nextToken), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *client) GetCycles(ctx context.Context, accessToken string, start, end time.Time, nextToken string) (*CyclePage, error) {
	var page CyclePage
	if err := c.get(ctx, accessToken, "/developer/v1/cycle", rangeParams(start, end, nextToken), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *client) GetRecoveries(ctx context.Context, accessToken string, start, end time.Time, nextToken string) (*RecoveryPage, error) {
	var page RecoveryPage
	if err := c.get(ctx, accessToken, "/developer/v1/recovery", rangeParams(start, end, nextToken), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *client) GetSleeps(ctx context.Context, accessToken string, start, end time.Time, nextToken string) (*SleepPage, error) {
	var page SleepPage
	if err := c.get(ctx, accessToken, "/developer/v1/activity/sleep", rangeParams(start, end, nextToken), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func rangeParams(start, end time.Time, nextToken string) url.Values {
	params := url.Values{}
	params.Set("start", start.UTC().Format(time.RFC3339))
	params.Set("end", end.UTC().Format(time.RFC3339))
	params.Set("limit", "25")
	if nextToken != "" {
		params.Set("nextToken", nextToken)
	}
	return params
}

func (c *client) get(ctx context.Context, accessToken, path string, params url.Values, result interface{}) error {
	fullURL := c.config.Whoop.APIBaseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug(">>> [WHOOP-REQ]", zap.String("url", fullURL))

	startTime := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug(">>> [WHOOP-RESPONSE]",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(startTime)),
		zap.String("body", truncate(string(respBody), maxBodyLogLength)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error: status=%d, body=%s",
			resp.StatusCode, truncate(string(respBody), maxBodyLogLength))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

func truncate(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + fmt.Sprintf("... [truncated, total %d chars]", len(s))
}
