package domain

import "time"

// Candidate is a person tracked by a company, unique per (company, email).
// ResumeKey points at an object-store key, the binary itself lives elsewhere.
type Candidate struct {
	ID          string
	CompanyID   string
	Name        string
	Email       string
	Phone       *string
	LinkedInURL *string
	Notes       *string
	ResumeKey   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
