package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ats-service/internal/api/dto"
	"github.com/spec-kit/ats-service/internal/auth"
	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/service"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// CompaniesHandler manages company and membership endpoints.
type CompaniesHandler struct {
	service *service.CompanyService
}

// NewCompaniesHandler constructs handler.
func NewCompaniesHandler(companyService *service.CompanyService) *CompaniesHandler {
	return &CompaniesHandler{service: companyService}
}

// Create POST /companies.
func (h *CompaniesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	company, err := h.service.CreateCompany(c.Context(), principal.Identity.ID, service.CreateCompanyInput{
		Name:   req.Name,
		PlanID: req.PlanID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": companyResponse(company)})
}

// Get GET /companies/:companyID.
func (h *CompaniesHandler) Get(c *fiber.Ctx) error {
	detail, err := h.service.GetCompany(c.Context(), c.Params("companyID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CompanyDetailResponse{
		CompanyResponse: companyResponse(detail.Company),
		Plan:            planResponse(detail.Plan),
	}})
}

// Update PATCH /companies/:companyID.
func (h *CompaniesHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	company, err := h.service.UpdateCompany(c.Context(), c.Params("companyID"), service.UpdateCompanyInput{
		Name:   req.Name,
		PlanID: req.PlanID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": companyResponse(company)})
}

// ListMembers GET /companies/:companyID/members.
func (h *CompaniesHandler) ListMembers(c *fiber.Ctx) error {
	members, err := h.service.ListMembers(c.Context(), c.Params("companyID"))
	if err != nil {
		return err
	}
	items := make([]dto.MemberResponse, 0, len(members))
	for _, m := range members {
		items = append(items, dto.MemberResponse{
			ID:        m.Membership.ID,
			UserID:    m.Membership.UserID,
			Email:     m.Email,
			Role:      m.Membership.Role,
			CreatedAt: m.Membership.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// InviteMember POST /companies/:companyID/members.
func (h *CompaniesHandler) InviteMember(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.InviteMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	membership, err := h.service.InviteMember(c.Context(), c.Params("companyID"), principal.Identity.ID, service.InviteMemberInput{
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return err
	}
	if membership == nil {
		// Invitation email dispatched, membership pending acceptance.
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"invited": true}})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": membershipResponse(membership, req.Email)})
}

// UpdateMemberRole PATCH /companies/:companyID/members/:memberID.
func (h *CompaniesHandler) UpdateMemberRole(c *fiber.Ctx) error {
	var req dto.UpdateMemberRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	membership, err := h.service.UpdateMemberRole(c.Context(), c.Params("companyID"), c.Params("memberID"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": membershipResponse(membership, "")})
}

// RemoveMember DELETE /companies/:companyID/members/:memberID.
func (h *CompaniesHandler) RemoveMember(c *fiber.Ctx) error {
	if err := h.service.RemoveMember(c.Context(), c.Params("companyID"), c.Params("memberID")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Usage GET /companies/:companyID/usage.
func (h *CompaniesHandler) Usage(c *fiber.Ctx) error {
	usage, err := h.service.GetUsage(c.Context(), c.Params("companyID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UsageResponse{
		PlanName:      usage.PlanName,
		OpenJobs:      usage.OpenJobs,
		MaxJobs:       usage.MaxJobs,
		Candidates:    usage.Candidates,
		MaxCandidates: usage.MaxCandidates,
	}})
}

func companyResponse(company *domain.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:        company.ID,
		Name:      company.Name,
		PlanID:    company.PlanID,
		CreatedAt: company.CreatedAt,
		UpdatedAt: company.UpdatedAt,
	}
}

func planResponse(plan *domain.Plan) dto.PlanResponse {
	return dto.PlanResponse{
		ID:            plan.ID,
		Name:          plan.Name,
		MaxJobs:       plan.MaxJobs,
		MaxCandidates: plan.MaxCandidates,
	}
}

func membershipResponse(membership *domain.Membership, email string) dto.MemberResponse {
	return dto.MemberResponse{
		ID:        membership.ID,
		UserID:    membership.UserID,
		Email:     email,
		Role:      membership.Role,
		CreatedAt: membership.CreatedAt,
	}
}
