package dto

import (
	"time"

	"github.com/spec-kit/ats-service/internal/domain"
)

// CreateApplicationRequest payload. Stage is intentionally absent, new
// applications always start at applied.
type CreateApplicationRequest struct {
	CandidateID string `json:"candidate_id"`
	JobID       string `json:"job_id"`
}

// TransitionApplicationRequest payload.
type TransitionApplicationRequest struct {
	Stage domain.ApplicationStage `json:"stage"`
}

// ApplicationResponse describes an application.
type ApplicationResponse struct {
	ID          string                  `json:"id"`
	CandidateID string                  `json:"candidate_id"`
	JobID       string                  `json:"job_id"`
	Stage       domain.ApplicationStage `json:"stage"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}
