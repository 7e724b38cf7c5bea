package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ats-service/internal/domain"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

const principalKey = "auth_principal"

// IdentityLookup is the subset of the identity provider the middleware needs.
// Declared locally to avoid an import cycle with internal/identity.
type IdentityLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
}

// Principal represents the authenticated caller.
type Principal struct {
	Identity *domain.Identity
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	provider IdentityLookup
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, provider IdentityLookup) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, provider: provider}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	ident, err := m.provider.GetByID(c.Context(), claims.IdentityID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("identity not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{Identity: ident})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
