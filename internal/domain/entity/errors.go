package entity

import "errors"

// Sentinel errors that surface to API callers. Everything else stays internal
// and is reported through step outcomes or logs.
var (
	ErrNotConnected    = errors.New("whoop connection not found")
	ErrInvalidState    = errors.New("authorization state is invalid or expired")
	ErrSessionNotFound = errors.New("session not found")
	ErrWorkoutNotFound = errors.New("workout not found in cache")
	ErrWorkoutLinked   = errors.New("workout is already linked to another session")
	ErrNoRecoveryData  = errors.New("no recovery data available")

	ErrBadSignature     = errors.New("webhook signature is missing or invalid")
	ErrMalformedPayload = errors.New("webhook payload is malformed")
)
