package dto

import "time"

// CreateCandidateRequest payload.
type CreateCandidateRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone"`
	LinkedInURL *string `json:"linkedin_url"`
	Notes       *string `json:"notes"`
}

// UpdateCandidateRequest payload.
type UpdateCandidateRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	LinkedInURL *string `json:"linkedin_url"`
	Notes       *string `json:"notes"`
}

// CandidateResponse describes a candidate.
type CandidateResponse struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       *string   `json:"phone"`
	LinkedInURL *string   `json:"linkedin_url"`
	Notes       *string   `json:"notes"`
	HasResume   bool      `json:"has_resume"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CandidateDetailResponse adds the candidate's applications.
type CandidateDetailResponse struct {
	CandidateResponse
	Applications []ApplicationResponse `json:"applications"`
}

// ResumeURLResponse carries a short-lived download link.
type ResumeURLResponse struct {
	URL string `json:"url"`
}
