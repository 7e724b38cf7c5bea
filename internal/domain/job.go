package domain

import "time"

// JobStatus enumerates job posting lifecycle states.
type JobStatus string

const (
	JobStatusOpen     JobStatus = "open"
	JobStatusClosed   JobStatus = "closed"
	JobStatusArchived JobStatus = "archived"
)

// Job is a posting owned by exactly one company.
type Job struct {
	ID          string
	CompanyID   string
	Title       string
	Description string
	Location    string
	Department  string
	Status      JobStatus
	ClosedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
