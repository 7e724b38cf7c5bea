package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ats-service/internal/api/dto"
	"github.com/spec-kit/ats-service/internal/auth"
	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/service"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// AuthHandler manages sign-up, sign-in and token-based flows.
type AuthHandler struct {
	provisioning *service.ProvisioningService
	auth         *service.AuthService
	companies    *service.CompanyService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(provisioning *service.ProvisioningService, authService *service.AuthService, companies *service.CompanyService) *AuthHandler {
	return &AuthHandler{provisioning: provisioning, auth: authService, companies: companies}
}

// SignUp POST /auth/sign-up.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	result, err := h.provisioning.SignUp(c.Context(), service.SignUpInput{
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Password:    req.Password,
		PlanID:      req.PlanID,
	})
	if err != nil {
		return err
	}

	resp := dto.SignUpResponse{
		Identity:            identityResponse(result.Identity),
		PendingVerification: result.PendingVerification,
	}
	if result.Company != nil {
		company := companyResponse(result.Company)
		resp.Company = &company
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": resp})
}

// SignIn POST /auth/sign-in.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	ident, token, exp, err := h.auth.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(ident, token, exp)})
}

// VerifyEmail POST /auth/verify. Consuming the token also resumes any
// deferred company setup recorded at sign-up.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Token) == "" {
		return apperrors.NewValidationError("token required", nil)
	}

	ident, token, exp, err := h.auth.VerifyEmail(c.Context(), req.Token)
	if err != nil {
		return err
	}
	if _, err := h.provisioning.CompleteSetup(c.Context(), ident.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(ident, token, exp)})
}

// AcceptInvite POST /auth/invites/accept.
func (h *AuthHandler) AcceptInvite(c *fiber.Ctx) error {
	var req dto.AcceptInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Token) == "" || req.Password == "" {
		return apperrors.NewValidationError("token and password required", nil)
	}

	ident, token, exp, err := h.auth.AcceptInvite(c.Context(), req.Token, req.Password)
	if err != nil {
		return err
	}
	if _, err := h.companies.CompleteInvitedSetup(c.Context(), ident); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(ident, token, exp)})
}

// Bootstrap GET /me/bootstrap. Resumes deferred setup for verified identities
// and returns the caller's companies, backing the post-login landing page.
func (h *AuthHandler) Bootstrap(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if principal.Identity.Verified() {
		if _, err := h.provisioning.CompleteSetup(c.Context(), principal.Identity.ID); err != nil {
			return err
		}
	}

	companies, err := h.companies.ListForIdentity(c.Context(), principal.Identity.ID)
	if err != nil {
		return err
	}
	items := make([]dto.CompanySummary, 0, len(companies))
	for _, cw := range companies {
		items = append(items, dto.CompanySummary{
			ID:   cw.Company.ID,
			Name: cw.Company.Name,
			Role: cw.Role,
		})
	}
	return c.JSON(fiber.Map{"data": dto.BootstrapResponse{
		Identity:  identityResponse(principal.Identity),
		Companies: items,
	}})
}

// ListMyCompanies GET /me/companies.
func (h *AuthHandler) ListMyCompanies(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	companies, err := h.companies.ListForIdentity(c.Context(), principal.Identity.ID)
	if err != nil {
		return err
	}
	items := make([]dto.CompanySummary, 0, len(companies))
	for _, cw := range companies {
		items = append(items, dto.CompanySummary{
			ID:   cw.Company.ID,
			Name: cw.Company.Name,
			Role: cw.Role,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func identityResponse(ident *domain.Identity) dto.IdentityResponse {
	return dto.IdentityResponse{
		ID:       ident.ID,
		Email:    ident.Email,
		Verified: ident.Verified(),
	}
}

func sessionResponse(ident *domain.Identity, token string, exp time.Time) dto.SessionResponse {
	return dto.SessionResponse{
		AccessToken: token,
		ExpiresAt:   exp,
		Identity:    identityResponse(ident),
	}
}
