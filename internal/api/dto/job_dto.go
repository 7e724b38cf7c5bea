package dto

import (
	"time"

	"github.com/spec-kit/ats-service/internal/domain"
)

// CreateJobRequest payload.
type CreateJobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Department  string `json:"department"`
}

// UpdateJobRequest payload.
type UpdateJobRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Department  *string `json:"department"`
}

// JobResponse describes a posting.
type JobResponse struct {
	ID          string           `json:"id"`
	CompanyID   string           `json:"company_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Location    string           `json:"location"`
	Department  string           `json:"department"`
	Status      domain.JobStatus `json:"status"`
	ClosedAt    *time.Time       `json:"closed_at"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// JobDetailResponse adds the posting's applications.
type JobDetailResponse struct {
	JobResponse
	Applications []ApplicationResponse `json:"applications"`
}
