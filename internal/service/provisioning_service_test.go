package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/events"
	"github.com/spec-kit/ats-service/internal/identity"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

func newTestPlanService(t *testing.T, plans *mockPlanRepo) *PlanService {
	t.Helper()
	return NewPlanService(plans, nil, 0, zaptest.NewLogger(t))
}

func freePlan() *domain.Plan {
	return &domain.Plan{ID: "plan-free", Name: "Free", MaxJobs: 1, MaxCandidates: 10}
}

func TestProvisioningService_SignUp(t *testing.T) {
	ctx := context.Background()

	type fixture struct {
		companies   *mockCompanyRepo
		memberships *mockMembershipRepo
		plans       *mockPlanRepo
		identities  *mockIdentityProvider
		dispatcher  *recordingDispatcher

		deletedIdentities []string
		deletedCompanies  []string
	}

	newFixture := func() *fixture {
		f := &fixture{
			companies:   &mockCompanyRepo{},
			memberships: &mockMembershipRepo{},
			plans:       &mockPlanRepo{},
			identities:  &mockIdentityProvider{},
			dispatcher:  &recordingDispatcher{},
		}
		f.companies.existsByName = func(context.Context, string) (bool, error) { return false, nil }
		f.companies.create = func(_ context.Context, c *domain.Company) error {
			c.ID = "company-1"
			return nil
		}
		f.companies.delete = func(_ context.Context, id string) error {
			f.deletedCompanies = append(f.deletedCompanies, id)
			return nil
		}
		f.memberships.create = func(_ context.Context, m *domain.Membership) error {
			m.ID = "membership-1"
			return nil
		}
		f.plans.getByID = func(context.Context, string) (*domain.Plan, error) { return freePlan(), nil }
		f.identities.createIdentity = func(_ context.Context, input identity.CreateIdentityInput) (*domain.Identity, error) {
			return &domain.Identity{ID: "identity-1", Email: input.Email, Metadata: input.Metadata}, nil
		}
		f.identities.deleteIdentity = func(_ context.Context, id string) error {
			f.deletedIdentities = append(f.deletedIdentities, id)
			return nil
		}
		return f
	}

	newService := func(f *fixture, requireVerification bool) *ProvisioningService {
		return NewProvisioningService(ProvisioningDependencies{
			CompanyRepo:    f.companies,
			MembershipRepo: f.memberships,
			Plans:          newTestPlanService(t, f.plans),
			Identities:     f.identities,
			Dispatcher:     f.dispatcher,
		}, requireVerification, zaptest.NewLogger(t))
	}

	t.Run("provisions tenant end to end without verification", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, false)

		result, err := svc.SignUp(ctx, SignUpInput{
			CompanyName: "Acme",
			Email:       "owner@acme.test",
			Password:    "secret123",
			PlanID:      "plan-free",
		})
		require.NoError(t, err)
		assert.False(t, result.PendingVerification)
		require.NotNil(t, result.Company)
		assert.Equal(t, "Acme", result.Company.Name)
		require.NotNil(t, result.Membership)
		assert.Equal(t, domain.MemberRoleAdmin, result.Membership.Role)
		assert.Empty(t, f.deletedIdentities)
		assert.Empty(t, f.deletedCompanies)

		published := f.dispatcher.published()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventTenantProvisioned, published[0].Type)
		assert.Equal(t, "company-1", published[0].CompanyID)
	})

	t.Run("defers provisioning until verification", func(t *testing.T) {
		f := newFixture()
		f.companies.create = func(context.Context, *domain.Company) error {
			t.Fatal("company must not be created before verification")
			return nil
		}
		svc := newService(f, true)

		result, err := svc.SignUp(ctx, SignUpInput{
			CompanyName: "Acme",
			Email:       "owner@acme.test",
			Password:    "secret123",
			PlanID:      "plan-free",
		})
		require.NoError(t, err)
		assert.True(t, result.PendingVerification)
		assert.Nil(t, result.Company)
		assert.Equal(t, "Acme", result.Identity.Metadata.CompanyName)
		assert.Equal(t, "plan-free", result.Identity.Metadata.PlanID)
	})

	t.Run("rejects short password before any side effect", func(t *testing.T) {
		f := newFixture()
		f.identities.createIdentity = func(context.Context, identity.CreateIdentityInput) (*domain.Identity, error) {
			t.Fatal("identity must not be created for an invalid password")
			return nil, nil
		}
		svc := newService(f, false)

		_, err := svc.SignUp(ctx, SignUpInput{CompanyName: "Acme", Email: "a@b.test", Password: "short", PlanID: "plan-free"})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))
	})

	t.Run("rejects taken company name before creating the identity", func(t *testing.T) {
		f := newFixture()
		f.companies.existsByName = func(context.Context, string) (bool, error) { return true, nil }
		f.identities.createIdentity = func(context.Context, identity.CreateIdentityInput) (*domain.Identity, error) {
			t.Fatal("identity must not be created when the name is taken")
			return nil, nil
		}
		svc := newService(f, false)

		_, err := svc.SignUp(ctx, SignUpInput{CompanyName: "Acme", Email: "a@b.test", Password: "secret123"})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "DUPLICATE_NAME"))
		assert.Contains(t, err.Error(), "Acme")
	})

	t.Run("defaults blank company name", func(t *testing.T) {
		f := newFixture()
		var checkedName string
		f.companies.existsByName = func(_ context.Context, name string) (bool, error) {
			checkedName = name
			return false, nil
		}
		svc := newService(f, false)

		result, err := svc.SignUp(ctx, SignUpInput{CompanyName: "   ", Email: "a@b.test", Password: "secret123", PlanID: "plan-free"})
		require.NoError(t, err)
		assert.Equal(t, "My Company", checkedName)
		assert.Equal(t, "My Company", result.Company.Name)
	})

	t.Run("invalid plan removes the identity", func(t *testing.T) {
		f := newFixture()
		f.plans.getByID = func(context.Context, string) (*domain.Plan, error) {
			return nil, pgx.ErrNoRows
		}
		svc := newService(f, false)

		_, err := svc.SignUp(ctx, SignUpInput{CompanyName: "Acme", Email: "a@b.test", Password: "secret123", PlanID: "bogus"})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "INVALID_PLAN"))
		assert.Equal(t, []string{"identity-1"}, f.deletedIdentities)
		assert.Empty(t, f.deletedCompanies)
	})

	t.Run("company creation failure removes the identity", func(t *testing.T) {
		f := newFixture()
		f.companies.create = func(context.Context, *domain.Company) error {
			return apperrors.NewDuplicateName("Acme")
		}
		svc := newService(f, false)

		_, err := svc.SignUp(ctx, SignUpInput{CompanyName: "Acme", Email: "a@b.test", Password: "secret123", PlanID: "plan-free"})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "DUPLICATE_NAME"))
		assert.Equal(t, []string{"identity-1"}, f.deletedIdentities)
	})

	t.Run("membership failure unwinds company then identity", func(t *testing.T) {
		f := newFixture()
		var order []string
		f.companies.delete = func(_ context.Context, id string) error {
			order = append(order, "company:"+id)
			return nil
		}
		f.identities.deleteIdentity = func(_ context.Context, id string) error {
			order = append(order, "identity:"+id)
			return nil
		}
		f.memberships.create = func(context.Context, *domain.Membership) error {
			return errors.New("insert failed")
		}
		svc := newService(f, false)

		_, err := svc.SignUp(ctx, SignUpInput{CompanyName: "Acme", Email: "a@b.test", Password: "secret123", PlanID: "plan-free"})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "PROVISIONING_FAILED"))
		assert.Equal(t, []string{"company:company-1", "identity:identity-1"}, order)
		assert.Empty(t, f.dispatcher.published())
	})

	t.Run("compensation failure does not mask the primary error", func(t *testing.T) {
		f := newFixture()
		f.memberships.create = func(context.Context, *domain.Membership) error {
			return errors.New("insert failed")
		}
		f.companies.delete = func(context.Context, string) error {
			return errors.New("delete also failed")
		}
		svc := newService(f, false)

		_, err := svc.SignUp(ctx, SignUpInput{CompanyName: "Acme", Email: "a@b.test", Password: "secret123", PlanID: "plan-free"})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "PROVISIONING_FAILED"))
	})
}

func TestProvisioningService_CompleteSetup(t *testing.T) {
	ctx := context.Background()

	ident := &domain.Identity{
		ID:    "identity-1",
		Email: "owner@acme.test",
		Metadata: domain.IdentityMetadata{
			CompanyName: "Acme",
			PlanID:      "plan-free",
		},
	}

	t.Run("resumes deferred provisioning", func(t *testing.T) {
		companies := &mockCompanyRepo{
			existsByName: func(context.Context, string) (bool, error) { return false, nil },
			create: func(_ context.Context, c *domain.Company) error {
				c.ID = "company-1"
				return nil
			},
		}
		memberships := &mockMembershipRepo{
			listByUser: func(context.Context, string) ([]domain.Membership, error) { return nil, nil },
			create: func(_ context.Context, m *domain.Membership) error {
				m.ID = "membership-1"
				return nil
			},
		}
		plans := &mockPlanRepo{getByID: func(context.Context, string) (*domain.Plan, error) { return freePlan(), nil }}
		identities := &mockIdentityProvider{
			getByID: func(context.Context, string) (*domain.Identity, error) { return ident, nil },
		}

		svc := NewProvisioningService(ProvisioningDependencies{
			CompanyRepo:    companies,
			MembershipRepo: memberships,
			Plans:          newTestPlanService(t, plans),
			Identities:     identities,
			Dispatcher:     &recordingDispatcher{},
		}, true, zaptest.NewLogger(t))

		company, err := svc.CompleteSetup(ctx, "identity-1")
		require.NoError(t, err)
		require.NotNil(t, company)
		assert.Equal(t, "Acme", company.Name)
	})

	t.Run("is idempotent for already provisioned identities", func(t *testing.T) {
		companies := &mockCompanyRepo{
			getByID: func(_ context.Context, id string) (*domain.Company, error) {
				return &domain.Company{ID: id, Name: "Acme"}, nil
			},
			existsByName: func(context.Context, string) (bool, error) {
				t.Fatal("existing membership must short-circuit")
				return false, nil
			},
		}
		memberships := &mockMembershipRepo{
			listByUser: func(context.Context, string) ([]domain.Membership, error) {
				return []domain.Membership{{ID: "membership-1", CompanyID: "company-1", UserID: "identity-1"}}, nil
			},
		}
		identities := &mockIdentityProvider{
			getByID: func(context.Context, string) (*domain.Identity, error) { return ident, nil },
		}

		svc := NewProvisioningService(ProvisioningDependencies{
			CompanyRepo:    companies,
			MembershipRepo: memberships,
			Plans:          newTestPlanService(t, &mockPlanRepo{}),
			Identities:     identities,
			Dispatcher:     &recordingDispatcher{},
		}, true, zaptest.NewLogger(t))

		company, err := svc.CompleteSetup(ctx, "identity-1")
		require.NoError(t, err)
		require.NotNil(t, company)
		assert.Equal(t, "company-1", company.ID)
	})

	t.Run("no-ops for identities without provisioning metadata", func(t *testing.T) {
		invited := &domain.Identity{ID: "identity-2", Email: "member@acme.test"}
		identities := &mockIdentityProvider{
			getByID: func(context.Context, string) (*domain.Identity, error) { return invited, nil },
		}
		memberships := &mockMembershipRepo{
			listByUser: func(context.Context, string) ([]domain.Membership, error) { return nil, nil },
		}

		svc := NewProvisioningService(ProvisioningDependencies{
			CompanyRepo:    &mockCompanyRepo{},
			MembershipRepo: memberships,
			Plans:          newTestPlanService(t, &mockPlanRepo{}),
			Identities:     identities,
			Dispatcher:     &recordingDispatcher{},
		}, true, zaptest.NewLogger(t))

		company, err := svc.CompleteSetup(ctx, "identity-2")
		require.NoError(t, err)
		assert.Nil(t, company)
	})

	t.Run("name taken during deferral keeps the identity", func(t *testing.T) {
		deleted := false
		companies := &mockCompanyRepo{
			existsByName: func(context.Context, string) (bool, error) { return true, nil },
		}
		memberships := &mockMembershipRepo{
			listByUser: func(context.Context, string) ([]domain.Membership, error) { return nil, nil },
		}
		identities := &mockIdentityProvider{
			getByID: func(context.Context, string) (*domain.Identity, error) { return ident, nil },
			deleteIdentity: func(context.Context, string) error {
				deleted = true
				return nil
			},
		}

		svc := NewProvisioningService(ProvisioningDependencies{
			CompanyRepo:    companies,
			MembershipRepo: memberships,
			Plans:          newTestPlanService(t, &mockPlanRepo{}),
			Identities:     identities,
			Dispatcher:     &recordingDispatcher{},
		}, true, zaptest.NewLogger(t))

		_, err := svc.CompleteSetup(ctx, "identity-1")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "DUPLICATE_NAME"))
		assert.False(t, deleted)
	})

	t.Run("plan failure during deferral keeps the identity", func(t *testing.T) {
		deleted := false
		companies := &mockCompanyRepo{
			existsByName: func(context.Context, string) (bool, error) { return false, nil },
		}
		memberships := &mockMembershipRepo{
			listByUser: func(context.Context, string) ([]domain.Membership, error) { return nil, nil },
		}
		plans := &mockPlanRepo{
			getByID: func(context.Context, string) (*domain.Plan, error) { return nil, pgx.ErrNoRows },
		}
		identities := &mockIdentityProvider{
			getByID: func(context.Context, string) (*domain.Identity, error) { return ident, nil },
			deleteIdentity: func(context.Context, string) error {
				deleted = true
				return nil
			},
		}

		svc := NewProvisioningService(ProvisioningDependencies{
			CompanyRepo:    companies,
			MembershipRepo: memberships,
			Plans:          newTestPlanService(t, plans),
			Identities:     identities,
			Dispatcher:     &recordingDispatcher{},
		}, true, zaptest.NewLogger(t))

		_, err := svc.CompleteSetup(ctx, "identity-1")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "INVALID_PLAN"))
		assert.False(t, deleted)
	})
}
