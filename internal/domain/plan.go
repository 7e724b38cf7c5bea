package domain

import "time"

// Plan is an immutable subscription tier bounding tenant resource counts.
type Plan struct {
	ID            string
	Name          string
	MaxJobs       int
	MaxCandidates int
	CreatedAt     time.Time
}
