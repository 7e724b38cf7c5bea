package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/repository"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

const membershipKey = "auth_membership"

// RequireCompanyRole resolves the caller's membership for the :companyID path
// parameter and rejects callers lacking one of the allowed roles. With no
// roles given, any membership passes.
func RequireCompanyRole(memberships repository.MembershipRepository, allowed ...domain.MemberRole) fiber.Handler {
	allowedSet := make(map[domain.MemberRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		companyID := c.Params("companyID")
		if companyID == "" {
			return apperrors.NewValidationError("company id required", nil)
		}

		membership, err := memberships.GetByCompanyAndUser(c.Context(), companyID, principal.Identity.ID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewForbidden("You are not a member of this company")
			}
			return apperrors.MapError(err)
		}
		if len(allowedSet) > 0 {
			if _, exists := allowedSet[membership.Role]; !exists {
				return apperrors.NewForbidden("Only admins can perform this action")
			}
		}

		c.Locals(membershipKey, membership)
		return c.Next()
	}
}

// MembershipFromContext retrieves the membership loaded by RequireCompanyRole.
func MembershipFromContext(c *fiber.Ctx) (*domain.Membership, bool) {
	val := c.Locals(membershipKey)
	if val == nil {
		return nil, false
	}
	membership, ok := val.(*domain.Membership)
	return membership, ok
}
