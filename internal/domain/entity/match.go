package entity

// WorkoutMatch pairs a cached workout with how strongly it overlaps a session,
// as a percentage of the shorter of the two durations.
type WorkoutMatch struct {
	Workout    CachedWorkout `json:"workout"`
	OverlapPct float64       `json:"overlap_pct"`
}
