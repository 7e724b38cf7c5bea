package dto

import (
	"time"

	"github.com/spec-kit/ats-service/internal/domain"
)

// CreateCompanyRequest payload.
type CreateCompanyRequest struct {
	Name   string `json:"name"`
	PlanID string `json:"plan_id"`
}

// UpdateCompanyRequest payload.
type UpdateCompanyRequest struct {
	Name   *string `json:"name"`
	PlanID *string `json:"plan_id"`
}

// CompanyResponse describes a company.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PlanID    string    `json:"plan_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyDetailResponse adds the resolved plan.
type CompanyDetailResponse struct {
	CompanyResponse
	Plan PlanResponse `json:"plan"`
}

// CompanySummary is a company plus the caller's role in it.
type CompanySummary struct {
	ID   string            `json:"id"`
	Name string            `json:"name"`
	Role domain.MemberRole `json:"role"`
}

// PlanResponse describes a subscription plan.
type PlanResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MaxJobs       int    `json:"max_jobs"`
	MaxCandidates int    `json:"max_candidates"`
}

// InviteMemberRequest payload.
type InviteMemberRequest struct {
	Email string            `json:"email"`
	Role  domain.MemberRole `json:"role"`
}

// UpdateMemberRoleRequest payload.
type UpdateMemberRoleRequest struct {
	Role domain.MemberRole `json:"role"`
}

// MemberResponse describes a company member.
type MemberResponse struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Email     string            `json:"email"`
	Role      domain.MemberRole `json:"role"`
	CreatedAt time.Time         `json:"created_at"`
}

// UsageResponse backs the settings page.
type UsageResponse struct {
	PlanName      string `json:"plan_name"`
	OpenJobs      int    `json:"open_jobs"`
	MaxJobs       int    `json:"max_jobs"`
	Candidates    int    `json:"candidates"`
	MaxCandidates int    `json:"max_candidates"`
}
