package entity

import "encoding/json"

// WebhookEvent is the envelope WHOOP posts on data changes.
type WebhookEvent struct {
	UserID  int64           `json:"user_id"`
	ID      json.RawMessage `json:"id"` // workout ids are v2 strings, cycle ids are numbers
	Type    string          `json:"type"`
	TraceID string          `json:"trace_id"`
}

// Webhook acknowledgement statuses. The receiver answers 200 with one of
// these for every verified, well-formed request.
const (
	WebhookStatusOK      = "ok"
	WebhookStatusIgnored = "ignored"
)

// WebhookResult is the acknowledgement body returned to the provider.
type WebhookResult struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
