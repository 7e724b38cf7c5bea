package events

import (
	"time"

	"github.com/spec-kit/ats-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTenantProvisioned       EventType = "tenant_provisioned"
	EventMemberInvited           EventType = "member_invited"
	EventJobCreated              EventType = "job_created"
	EventJobStatusChanged        EventType = "job_status_changed"
	EventCandidateCreated        EventType = "candidate_created"
	EventApplicationCreated      EventType = "application_created"
	EventApplicationStageChanged EventType = "application_stage_changed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	IdentityID string `json:"identity_id,omitempty"`
	System     bool   `json:"system,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CompanyID string      `json:"company_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TenantProvisionedPayload payload.
type TenantProvisionedPayload struct {
	CompanyName string `json:"company_name"`
	PlanID      string `json:"plan_id"`
	AdminUserID string `json:"admin_user_id"`
}

// MemberInvitedPayload payload.
type MemberInvitedPayload struct {
	Email       string            `json:"email"`
	Role        domain.MemberRole `json:"role"`
	CompanyName string            `json:"company_name"`
}

// JobCreatedPayload payload.
type JobCreatedPayload struct {
	JobID string `json:"job_id"`
	Title string `json:"title"`
}

// JobStatusChangedPayload payload.
type JobStatusChangedPayload struct {
	JobID     string           `json:"job_id"`
	OldStatus domain.JobStatus `json:"old_status"`
	NewStatus domain.JobStatus `json:"new_status"`
}

// CandidateCreatedPayload payload.
type CandidateCreatedPayload struct {
	CandidateID string `json:"candidate_id"`
	Email       string `json:"email"`
}

// ApplicationCreatedPayload payload.
type ApplicationCreatedPayload struct {
	ApplicationID string `json:"application_id"`
	CandidateID   string `json:"candidate_id"`
	JobID         string `json:"job_id"`
}

// ApplicationStageChangedPayload payload.
type ApplicationStageChangedPayload struct {
	ApplicationID string                  `json:"application_id"`
	OldStage      domain.ApplicationStage `json:"old_stage"`
	NewStage      domain.ApplicationStage `json:"new_stage"`
}
