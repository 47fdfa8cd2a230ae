package entity

// Step outcome statuses for best-effort follow-on work inside a sync run.
const (
	StepStatusOK      = "ok"
	StepStatusSkipped = "skipped"
	StepStatusFailed  = "failed"
)

// StepOutcome reports one best-effort sub-step of a sync run so callers can
// observe partial failure without parsing logs.
type StepOutcome struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Count  int    `json:"count,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SyncResult is the explicit outcome of one sync run. Steps never fail the
// run itself.
type SyncResult struct {
	Synced int           `json:"synced"`
	Steps  []StepOutcome `json:"steps,omitempty"`
}

// AutoCreateResult reports an auto-session creation pass. One bad record is
// skipped, never blocking the rest.
type AutoCreateResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
