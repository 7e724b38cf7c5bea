package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ats-service/internal/auth"
	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/events"
	"github.com/spec-kit/ats-service/internal/identity"
	"github.com/spec-kit/ats-service/internal/repository"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// ProvisioningService turns a sign-up into a fully set-up tenant: identity,
// company and admin membership. Identity and tenant storage share no
// transaction, so each forward step registers a compensating action and a
// failure unwinds them in reverse order (saga).
type ProvisioningService struct {
	companies   repository.CompanyRepository
	memberships repository.MembershipRepository
	plans       *PlanService
	identities  identity.Provider
	dispatcher  events.Dispatcher
	logger      *zap.Logger

	requireVerification bool
}

// ProvisioningDependencies bundles collaborator requirements.
type ProvisioningDependencies struct {
	CompanyRepo    repository.CompanyRepository
	MembershipRepo repository.MembershipRepository
	Plans          *PlanService
	Identities     identity.Provider
	Dispatcher     events.Dispatcher
}

// NewProvisioningService builds the service.
func NewProvisioningService(deps ProvisioningDependencies, requireVerification bool, logger *zap.Logger) *ProvisioningService {
	return &ProvisioningService{
		companies:           deps.CompanyRepo,
		memberships:         deps.MembershipRepo,
		plans:               deps.Plans,
		identities:          deps.Identities,
		dispatcher:          deps.Dispatcher,
		logger:              logger.Named("provisioning"),
		requireVerification: requireVerification,
	}
}

// SignUpInput is the sign-up form payload.
type SignUpInput struct {
	CompanyName string
	Email       string
	Password    string
	PlanID      string
}

// SignUpResult reports what the workflow produced. With email verification
// enabled only the identity exists and the rest is deferred to CompleteSetup.
type SignUpResult struct {
	Identity            *domain.Identity
	Company             *domain.Company
	Membership          *domain.Membership
	PendingVerification bool
}

// compensation is a named rollback action registered after a forward step.
type compensation struct {
	name string
	run  func(context.Context) error
}

// SignUp executes the provisioning workflow for a new tenant.
func (s *ProvisioningService) SignUp(ctx context.Context, input SignUpInput) (*SignUpResult, error) {
	if err := auth.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	companyName := strings.TrimSpace(input.CompanyName)
	if companyName == "" {
		companyName = "My Company"
	}

	// Step 1: name uniqueness, before any identity exists.
	exists, err := s.companies.ExistsByName(ctx, companyName)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewDuplicateName(companyName)
	}

	// Step 2: identity creation, carrying provisioning metadata for the
	// deferred path.
	ident, err := s.identities.CreateIdentity(ctx, identity.CreateIdentityInput{
		Email:               input.Email,
		Password:            input.Password,
		RequireVerification: s.requireVerification,
		Metadata: domain.IdentityMetadata{
			CompanyName: companyName,
			PlanID:      input.PlanID,
		},
	})
	if err != nil {
		return nil, err
	}

	if s.requireVerification {
		s.logger.Info("sign-up pending email verification",
			zap.String("identity_id", ident.ID),
			zap.String("company_name", companyName))
		return &SignUpResult{Identity: ident, PendingVerification: true}, nil
	}

	undo := []compensation{{
		name: "delete identity",
		run:  func(ctx context.Context) error { return s.identities.DeleteIdentity(ctx, ident.ID) },
	}}

	company, membership, err := s.provision(ctx, ident, companyName, input.PlanID, undo)
	if err != nil {
		return nil, err
	}
	return &SignUpResult{Identity: ident, Company: company, Membership: membership}, nil
}

// CompleteSetup finishes provisioning for a verified identity. It is safe to
// invoke any number of times: an existing membership short-circuits, and the
// identity is never deleted on this path since it exists independently of the
// current attempt. Returns nil with no error when the identity carries no
// provisioning metadata (e.g. invited members).
func (s *ProvisioningService) CompleteSetup(ctx context.Context, identityID string) (*domain.Company, error) {
	ident, err := s.identities.GetByID(ctx, identityID)
	if err != nil {
		return nil, err
	}

	existing, err := s.memberships.ListByUser(ctx, ident.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		company, err := s.companies.GetByID(ctx, existing[0].CompanyID)
		if err != nil {
			return nil, err
		}
		return company, nil
	}

	if ident.Metadata.CompanyName == "" || ident.Metadata.PlanID == "" {
		return nil, nil
	}

	exists, err := s.companies.ExistsByName(ctx, ident.Metadata.CompanyName)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewDuplicateName(ident.Metadata.CompanyName)
	}

	company, _, err := s.provision(ctx, ident, ident.Metadata.CompanyName, ident.Metadata.PlanID, nil)
	if err != nil {
		return nil, err
	}
	return company, nil
}

// provision runs steps 3-5: plan validation, company creation and admin
// membership creation. undo carries compensations registered by earlier
// steps (identity deletion on the direct path, nothing on the deferred one).
func (s *ProvisioningService) provision(ctx context.Context, ident *domain.Identity, companyName, planID string, undo []compensation) (*domain.Company, *domain.Membership, error) {
	// Step 3: plan validation.
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		s.compensate(ctx, undo)
		if apperrors.HasCode(err, "INVALID_PLAN") {
			return nil, nil, err
		}
		return nil, nil, apperrors.NewProvisioningFailed("plan validation", err)
	}

	// Step 4: company creation.
	company := &domain.Company{Name: companyName, PlanID: plan.ID}
	if err := s.companies.Create(ctx, company); err != nil {
		s.compensate(ctx, undo)
		if apperrors.HasCode(err, "DUPLICATE_NAME") {
			return nil, nil, err
		}
		return nil, nil, apperrors.NewProvisioningFailed("company creation", err)
	}
	undo = append(undo, compensation{
		name: "delete company",
		run:  func(ctx context.Context) error { return s.companies.Delete(ctx, company.ID) },
	})

	// Step 5: admin membership creation.
	membership := &domain.Membership{
		CompanyID: company.ID,
		UserID:    ident.ID,
		Role:      domain.MemberRoleAdmin,
	}
	if err := s.memberships.Create(ctx, membership); err != nil {
		s.compensate(ctx, undo)
		return nil, nil, apperrors.NewProvisioningFailed("membership creation", err)
	}

	s.logger.Info("tenant provisioned",
		zap.String("company_id", company.ID),
		zap.String("company_name", company.Name),
		zap.String("admin_identity_id", ident.ID))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventTenantProvisioned,
		CompanyID: company.ID,
		Actor:     events.Actor{IdentityID: ident.ID},
		Payload: events.TenantProvisionedPayload{
			CompanyName: company.Name,
			PlanID:      plan.ID,
			AdminUserID: ident.ID,
		},
	})
	return company, membership, nil
}

// compensate unwinds registered rollback actions in reverse order.
// Failures are logged and never mask the primary error.
func (s *ProvisioningService) compensate(ctx context.Context, undo []compensation) {
	for i := len(undo) - 1; i >= 0; i-- {
		if err := undo[i].run(ctx); err != nil {
			s.logger.Error("compensation step failed",
				zap.String("step", undo[i].name),
				zap.Error(err))
		}
	}
}
