package service

import "time"

// Interval: rentang half-open [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps: bentrok iff existing.Start < candidate.End && candidate.Start < existing.End.
// Ujung yang bersentuhan (existing.End == candidate.Start) tidak bentrok.
func Overlaps(existing, candidate Interval) bool {
	return existing.Start.Before(candidate.End) && candidate.Start.Before(existing.End)
}
