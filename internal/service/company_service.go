package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/events"
	"github.com/spec-kit/ats-service/internal/identity"
	"github.com/spec-kit/ats-service/internal/repository"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// CompanyService handles company CRUD, membership management and plan usage
// reporting.
type CompanyService struct {
	companies   repository.CompanyRepository
	memberships repository.MembershipRepository
	jobs        repository.JobRepository
	candidates  repository.CandidateRepository
	plans       *PlanService
	identities  identity.Provider
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	defaultPlan string
}

// CompanyDependencies lists collaborators for NewCompanyService.
type CompanyDependencies struct {
	Companies   repository.CompanyRepository
	Memberships repository.MembershipRepository
	Jobs        repository.JobRepository
	Candidates  repository.CandidateRepository
	Plans       *PlanService
	Identities  identity.Provider
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	DefaultPlan string
}

// NewCompanyService builds the service.
func NewCompanyService(deps CompanyDependencies) *CompanyService {
	return &CompanyService{
		companies:   deps.Companies,
		memberships: deps.Memberships,
		jobs:        deps.Jobs,
		candidates:  deps.Candidates,
		plans:       deps.Plans,
		identities:  deps.Identities,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		defaultPlan: deps.DefaultPlan,
	}
}

// CompanyDetail bundles a company with its resolved plan.
type CompanyDetail struct {
	Company *domain.Company
	Plan    *domain.Plan
}

// GetCompany returns the company together with its plan.
func (s *CompanyService) GetCompany(ctx context.Context, companyID string) (*CompanyDetail, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("company", nil)
		}
		return nil, err
	}
	plan, err := s.plans.GetPlan(ctx, company.PlanID)
	if err != nil {
		return nil, err
	}
	return &CompanyDetail{Company: company, Plan: plan}, nil
}

// ListForIdentity returns every company the identity belongs to along with
// the caller's role in each.
func (s *CompanyService) ListForIdentity(ctx context.Context, identityID string) ([]repository.CompanyWithRole, error) {
	return s.companies.ListForUser(ctx, identityID)
}

// CreateCompanyInput carries fields for creating an additional company.
type CreateCompanyInput struct {
	Name   string
	PlanID string
}

// CreateCompany provisions an additional company for an existing identity.
// The caller becomes its admin. New companies start on the default plan when
// no plan is given.
func (s *CompanyService) CreateCompany(ctx context.Context, identityID string, input CreateCompanyInput) (*domain.Company, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("Company name is required", nil)
	}

	exists, err := s.companies.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewDuplicateName(name)
	}

	var plan *domain.Plan
	if input.PlanID != "" {
		plan, err = s.plans.GetPlan(ctx, input.PlanID)
	} else {
		plan, err = s.plans.GetPlanByName(ctx, s.defaultPlan)
	}
	if err != nil {
		return nil, err
	}

	company := &domain.Company{Name: name, PlanID: plan.ID}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, err
	}

	membership := &domain.Membership{
		CompanyID: company.ID,
		UserID:    identityID,
		Role:      domain.MemberRoleAdmin,
	}
	if err := s.memberships.Create(ctx, membership); err != nil {
		if delErr := s.companies.Delete(ctx, company.ID); delErr != nil {
			s.logger.Error("failed to remove company after membership failure",
				zap.String("company_id", company.ID), zap.Error(delErr))
		}
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventTenantProvisioned,
		CompanyID: company.ID,
		Actor:     events.Actor{IdentityID: identityID},
		Payload: events.TenantProvisionedPayload{
			CompanyName: company.Name,
			PlanID:      plan.ID,
			AdminUserID: identityID,
		},
	})
	return company, nil
}

// UpdateCompanyInput carries patchable company fields.
type UpdateCompanyInput struct {
	Name   *string
	PlanID *string
}

// UpdateCompany renames the company and/or switches its plan.
func (s *CompanyService) UpdateCompany(ctx context.Context, companyID string, input UpdateCompanyInput) (*domain.Company, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("company", nil)
		}
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("Company name is required", nil)
		}
		if !strings.EqualFold(name, company.Name) {
			exists, err := s.companies.ExistsByName(ctx, name)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, apperrors.NewDuplicateName(name)
			}
		}
		company.Name = name
	}
	if input.PlanID != nil {
		plan, err := s.plans.GetPlan(ctx, *input.PlanID)
		if err != nil {
			return nil, err
		}
		company.PlanID = plan.ID
	}

	if err := s.companies.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// MemberSummary is a membership joined with its identity email.
type MemberSummary = repository.MemberWithEmail

// ListMembers returns all memberships of the company.
func (s *CompanyService) ListMembers(ctx context.Context, companyID string) ([]MemberSummary, error) {
	return s.memberships.ListByCompany(ctx, companyID)
}

// InviteMemberInput carries fields for inviting a member by email.
type InviteMemberInput struct {
	Email string
	Role  domain.MemberRole
}

// InviteMember adds an existing identity as a member, or sends an invitation
// email when no identity exists for the address yet. The returned membership
// is nil in the invitation case.
func (s *CompanyService) InviteMember(ctx context.Context, companyID, inviterID string, input InviteMemberInput) (*domain.Membership, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, apperrors.NewValidationError("Email is required", nil)
	}
	role := input.Role
	if role == "" {
		role = domain.MemberRoleMember
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("Invalid role", map[string]any{"role": string(role)})
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("company", nil)
		}
		return nil, err
	}

	existingID, err := s.identities.FindIDByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if existingID == "" {
		// No account yet. The invitation carries the target company and
		// role so the membership is created when the invite is accepted.
		if _, err := s.identities.SendInvitation(ctx, email, domain.IdentityMetadata{
			InvitedBy:        inviterID,
			InvitedToCompany: companyID,
			Role:             string(role),
		}); err != nil {
			return nil, err
		}
		publishEvent(ctx, s.dispatcher, events.Event{
			Type:      events.EventMemberInvited,
			CompanyID: companyID,
			Actor:     events.Actor{IdentityID: inviterID},
			Payload: events.MemberInvitedPayload{
				Email:       email,
				Role:        role,
				CompanyName: company.Name,
			},
		})
		return nil, nil
	}

	membership := &domain.Membership{
		CompanyID: companyID,
		UserID:    existingID,
		Role:      role,
	}
	if err := s.memberships.Create(ctx, membership); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventMemberInvited,
		CompanyID: companyID,
		Actor:     events.Actor{IdentityID: inviterID},
		Payload: events.MemberInvitedPayload{
			Email:       email,
			Role:        role,
			CompanyName: company.Name,
		},
	})
	return membership, nil
}

// CompleteInvitedSetup creates the membership recorded in an accepted invite.
// Safe to call more than once for the same identity.
func (s *CompanyService) CompleteInvitedSetup(ctx context.Context, ident *domain.Identity) (*domain.Membership, error) {
	meta := ident.Metadata
	if meta.InvitedToCompany == "" {
		return nil, nil
	}
	role := domain.MemberRole(meta.Role)
	if !role.Valid() {
		role = domain.MemberRoleMember
	}
	existing, err := s.memberships.GetByCompanyAndUser(ctx, meta.InvitedToCompany, ident.ID)
	if err == nil && existing != nil {
		return existing, nil
	}
	membership := &domain.Membership{
		CompanyID: meta.InvitedToCompany,
		UserID:    ident.ID,
		Role:      role,
	}
	if err := s.memberships.Create(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

// UpdateMemberRole changes a member's role. The last admin cannot be demoted.
func (s *CompanyService) UpdateMemberRole(ctx context.Context, companyID, membershipID string, role domain.MemberRole) (*domain.Membership, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("Invalid role", map[string]any{"role": string(role)})
	}

	member, err := s.memberships.GetByID(ctx, membershipID)
	if err != nil || member.CompanyID != companyID {
		return nil, apperrors.NewNotFound("member", nil)
	}

	if member.Role == domain.MemberRoleAdmin && role != domain.MemberRoleAdmin {
		if err := s.ensureNotLastAdmin(ctx, companyID, member.ID); err != nil {
			return nil, err
		}
	}

	if err := s.memberships.UpdateRole(ctx, companyID, membershipID, role); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("member", nil)
		}
		return nil, err
	}
	member.Role = role
	return member, nil
}

// RemoveMember deletes a membership. The last admin cannot be removed.
func (s *CompanyService) RemoveMember(ctx context.Context, companyID, membershipID string) error {
	member, err := s.memberships.GetByID(ctx, membershipID)
	if err != nil || member.CompanyID != companyID {
		return apperrors.NewNotFound("member", nil)
	}

	if member.Role == domain.MemberRoleAdmin {
		if err := s.ensureNotLastAdmin(ctx, companyID, member.ID); err != nil {
			return err
		}
	}

	if err := s.memberships.Delete(ctx, companyID, membershipID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("member", nil)
		}
		return err
	}
	return nil
}

func (s *CompanyService) ensureNotLastAdmin(ctx context.Context, companyID, membershipID string) error {
	members, err := s.memberships.ListByCompany(ctx, companyID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.Membership.Role == domain.MemberRoleAdmin && m.Membership.ID != membershipID {
			return nil
		}
	}
	return apperrors.NewValidationError("A company must keep at least one admin", nil)
}

// UsageSummary reports current resource consumption against plan limits.
type UsageSummary struct {
	PlanName      string `json:"plan_name"`
	OpenJobs      int    `json:"open_jobs"`
	MaxJobs       int    `json:"max_jobs"`
	Candidates    int    `json:"candidates"`
	MaxCandidates int    `json:"max_candidates"`
}

// GetUsage returns current open-job and candidate counts vs the plan limits.
func (s *CompanyService) GetUsage(ctx context.Context, companyID string) (*UsageSummary, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("company", nil)
		}
		return nil, err
	}
	plan, err := s.plans.GetPlan(ctx, company.PlanID)
	if err != nil {
		return nil, err
	}
	openJobs, err := s.jobs.CountByCompanyAndStatus(ctx, companyID, domain.JobStatusOpen)
	if err != nil {
		return nil, err
	}
	candidates, err := s.candidates.CountByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return &UsageSummary{
		PlanName:      plan.Name,
		OpenJobs:      openJobs,
		MaxJobs:       plan.MaxJobs,
		Candidates:    candidates,
		MaxCandidates: plan.MaxCandidates,
	}, nil
}
