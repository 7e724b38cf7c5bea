package identity

import (
	"context"

	"github.com/spec-kit/ats-service/internal/domain"
)

// CreateIdentityInput carries sign-up credentials plus provisioning metadata
// that rides on the identity record for deferred setup.
type CreateIdentityInput struct {
	Email               string
	Password            string
	Metadata            domain.IdentityMetadata
	RequireVerification bool
}

// Provider is the identity collaborator contract. The tenant tables live in a
// different system boundary; no transaction spans both, which is why the
// provisioning workflow compensates instead of rolling back.
type Provider interface {
	CreateIdentity(ctx context.Context, input CreateIdentityInput) (*domain.Identity, error)
	DeleteIdentity(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	FindIDByEmail(ctx context.Context, email string) (string, error)
	Authenticate(ctx context.Context, email, password string) (*domain.Identity, error)
	SendInvitation(ctx context.Context, email string, metadata domain.IdentityMetadata) (*domain.Identity, error)
	VerifyEmail(ctx context.Context, token string) (*domain.Identity, error)
	AcceptInvite(ctx context.Context, token, password string) (*domain.Identity, error)
}
