package entity

import "time"

// Connection represents the stored OAuth grant linking a local account to one
// WHOOP account. Token columns hold ciphertext; plaintext tokens exist only
// inside the token service.
type Connection struct {
	ID                 int64      `json:"id" db:"id"`
	UserID             int64      `json:"user_id" db:"user_id"`
	WhoopUserID        int64      `json:"whoop_user_id" db:"whoop_user_id"`
	AccessTokenEnc     string     `json:"-" db:"access_token"`
	RefreshTokenEnc    string     `json:"-" db:"refresh_token"`
	TokenExpiresAt     time.Time  `json:"token_expires_at" db:"token_expires_at"`
	Scopes             []string   `json:"scopes" db:"scopes"`
	AutoCreateSessions bool       `json:"auto_create_sessions" db:"auto_create_sessions"`
	AutoFillReadiness  bool       `json:"auto_fill_readiness" db:"auto_fill_readiness"`
	LastSyncedAt       *time.Time `json:"last_synced_at,omitempty" db:"last_synced_at"`
	IsActive           bool       `json:"is_active" db:"is_active"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// ConnectionSummary is the caller-facing view returned from the OAuth callback.
type ConnectionSummary struct {
	UserID             int64     `json:"user_id"`
	WhoopUserID        int64     `json:"whoop_user_id"`
	Scopes             []string  `json:"scopes"`
	AutoCreateSessions bool      `json:"auto_create_sessions"`
	AutoFillReadiness  bool      `json:"auto_fill_readiness"`
	ConnectedAt        time.Time `json:"connected_at"`
}
