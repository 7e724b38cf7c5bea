package service

import (
	"context"
	"sync"

	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/events"
	"github.com/spec-kit/ats-service/internal/identity"
	"github.com/spec-kit/ats-service/internal/repository"
)

// mockCompanyRepo implements repository.CompanyRepository with function fields.
type mockCompanyRepo struct {
	create       func(context.Context, *domain.Company) error
	update       func(context.Context, *domain.Company) error
	delete       func(context.Context, string) error
	getByID      func(context.Context, string) (*domain.Company, error)
	existsByName func(context.Context, string) (bool, error)
	listForUser  func(context.Context, string) ([]repository.CompanyWithRole, error)
}

func (m *mockCompanyRepo) Create(ctx context.Context, c *domain.Company) error {
	return m.create(ctx, c)
}

func (m *mockCompanyRepo) Update(ctx context.Context, c *domain.Company) error {
	return m.update(ctx, c)
}

func (m *mockCompanyRepo) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}

func (m *mockCompanyRepo) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	return m.getByID(ctx, id)
}

func (m *mockCompanyRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	return m.existsByName(ctx, name)
}

func (m *mockCompanyRepo) ListForUser(ctx context.Context, userID string) ([]repository.CompanyWithRole, error) {
	return m.listForUser(ctx, userID)
}

// mockMembershipRepo implements repository.MembershipRepository.
type mockMembershipRepo struct {
	create              func(context.Context, *domain.Membership) error
	getByCompanyAndUser func(context.Context, string, string) (*domain.Membership, error)
	getByID             func(context.Context, string) (*domain.Membership, error)
	listByCompany       func(context.Context, string) ([]repository.MemberWithEmail, error)
	listByUser          func(context.Context, string) ([]domain.Membership, error)
	updateRole          func(context.Context, string, string, domain.MemberRole) error
	deleteFn            func(context.Context, string, string) error
}

func (m *mockMembershipRepo) Create(ctx context.Context, membership *domain.Membership) error {
	return m.create(ctx, membership)
}

func (m *mockMembershipRepo) GetByCompanyAndUser(ctx context.Context, companyID, userID string) (*domain.Membership, error) {
	return m.getByCompanyAndUser(ctx, companyID, userID)
}

func (m *mockMembershipRepo) GetByID(ctx context.Context, id string) (*domain.Membership, error) {
	return m.getByID(ctx, id)
}

func (m *mockMembershipRepo) ListByCompany(ctx context.Context, companyID string) ([]repository.MemberWithEmail, error) {
	return m.listByCompany(ctx, companyID)
}

func (m *mockMembershipRepo) ListByUser(ctx context.Context, userID string) ([]domain.Membership, error) {
	return m.listByUser(ctx, userID)
}

func (m *mockMembershipRepo) UpdateRole(ctx context.Context, companyID, memberID string, role domain.MemberRole) error {
	return m.updateRole(ctx, companyID, memberID, role)
}

func (m *mockMembershipRepo) Delete(ctx context.Context, companyID, memberID string) error {
	return m.deleteFn(ctx, companyID, memberID)
}

// mockJobRepo implements repository.JobRepository.
type mockJobRepo struct {
	create                  func(context.Context, *domain.Job) error
	update                  func(context.Context, *domain.Job) error
	getByID                 func(context.Context, string) (*domain.Job, error)
	listByCompany           func(context.Context, string, repository.JobFilter) ([]domain.Job, error)
	countByCompanyAndStatus func(context.Context, string, domain.JobStatus) (int, error)
}

func (m *mockJobRepo) Create(ctx context.Context, job *domain.Job) error {
	return m.create(ctx, job)
}

func (m *mockJobRepo) Update(ctx context.Context, job *domain.Job) error {
	return m.update(ctx, job)
}

func (m *mockJobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	return m.getByID(ctx, id)
}

func (m *mockJobRepo) ListByCompany(ctx context.Context, companyID string, filter repository.JobFilter) ([]domain.Job, error) {
	return m.listByCompany(ctx, companyID, filter)
}

func (m *mockJobRepo) CountByCompanyAndStatus(ctx context.Context, companyID string, status domain.JobStatus) (int, error) {
	return m.countByCompanyAndStatus(ctx, companyID, status)
}

// mockCandidateRepo implements repository.CandidateRepository.
type mockCandidateRepo struct {
	create          func(context.Context, *domain.Candidate) error
	update          func(context.Context, *domain.Candidate) error
	getByID         func(context.Context, string) (*domain.Candidate, error)
	getByEmail      func(context.Context, string, string) (*domain.Candidate, error)
	listByCompany   func(context.Context, string, int, int) ([]domain.Candidate, error)
	countByCompany  func(context.Context, string) (int, error)
	updateResumeKey func(context.Context, string, *string) error
}

func (m *mockCandidateRepo) Create(ctx context.Context, c *domain.Candidate) error {
	return m.create(ctx, c)
}

func (m *mockCandidateRepo) Update(ctx context.Context, c *domain.Candidate) error {
	return m.update(ctx, c)
}

func (m *mockCandidateRepo) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	return m.getByID(ctx, id)
}

func (m *mockCandidateRepo) GetByEmail(ctx context.Context, companyID, email string) (*domain.Candidate, error) {
	return m.getByEmail(ctx, companyID, email)
}

func (m *mockCandidateRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]domain.Candidate, error) {
	return m.listByCompany(ctx, companyID, limit, offset)
}

func (m *mockCandidateRepo) CountByCompany(ctx context.Context, companyID string) (int, error) {
	return m.countByCompany(ctx, companyID)
}

func (m *mockCandidateRepo) UpdateResumeKey(ctx context.Context, id string, resumeKey *string) error {
	return m.updateResumeKey(ctx, id, resumeKey)
}

// mockApplicationRepo implements repository.ApplicationRepository.
type mockApplicationRepo struct {
	create          func(context.Context, *domain.Application) error
	getByID         func(context.Context, string) (*domain.Application, error)
	getByPair       func(context.Context, string, string) (*domain.Application, error)
	updateStage     func(context.Context, string, domain.ApplicationStage) error
	listByCompany   func(context.Context, string, repository.ApplicationFilter) ([]domain.Application, error)
	listByJob       func(context.Context, string) ([]domain.Application, error)
	listByCandidate func(context.Context, string) ([]domain.Application, error)
}

func (m *mockApplicationRepo) Create(ctx context.Context, a *domain.Application) error {
	return m.create(ctx, a)
}

func (m *mockApplicationRepo) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	return m.getByID(ctx, id)
}

func (m *mockApplicationRepo) GetByPair(ctx context.Context, candidateID, jobID string) (*domain.Application, error) {
	return m.getByPair(ctx, candidateID, jobID)
}

func (m *mockApplicationRepo) UpdateStage(ctx context.Context, id string, stage domain.ApplicationStage) error {
	return m.updateStage(ctx, id, stage)
}

func (m *mockApplicationRepo) ListByCompany(ctx context.Context, companyID string, filter repository.ApplicationFilter) ([]domain.Application, error) {
	return m.listByCompany(ctx, companyID, filter)
}

func (m *mockApplicationRepo) ListByJob(ctx context.Context, jobID string) ([]domain.Application, error) {
	return m.listByJob(ctx, jobID)
}

func (m *mockApplicationRepo) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Application, error) {
	return m.listByCandidate(ctx, candidateID)
}

// mockPlanRepo implements repository.PlanRepository.
type mockPlanRepo struct {
	getByID   func(context.Context, string) (*domain.Plan, error)
	getByName func(context.Context, string) (*domain.Plan, error)
	list      func(context.Context) ([]domain.Plan, error)
}

func (m *mockPlanRepo) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	return m.getByID(ctx, id)
}

func (m *mockPlanRepo) GetByName(ctx context.Context, name string) (*domain.Plan, error) {
	return m.getByName(ctx, name)
}

func (m *mockPlanRepo) List(ctx context.Context) ([]domain.Plan, error) {
	return m.list(ctx)
}

// mockIdentityProvider implements identity.Provider.
type mockIdentityProvider struct {
	createIdentity func(context.Context, identity.CreateIdentityInput) (*domain.Identity, error)
	deleteIdentity func(context.Context, string) error
	getByID        func(context.Context, string) (*domain.Identity, error)
	findIDByEmail  func(context.Context, string) (string, error)
	authenticate   func(context.Context, string, string) (*domain.Identity, error)
	sendInvitation func(context.Context, string, domain.IdentityMetadata) (*domain.Identity, error)
	verifyEmail    func(context.Context, string) (*domain.Identity, error)
	acceptInvite   func(context.Context, string, string) (*domain.Identity, error)
}

func (m *mockIdentityProvider) CreateIdentity(ctx context.Context, input identity.CreateIdentityInput) (*domain.Identity, error) {
	return m.createIdentity(ctx, input)
}

func (m *mockIdentityProvider) DeleteIdentity(ctx context.Context, id string) error {
	return m.deleteIdentity(ctx, id)
}

func (m *mockIdentityProvider) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	return m.getByID(ctx, id)
}

func (m *mockIdentityProvider) FindIDByEmail(ctx context.Context, email string) (string, error) {
	return m.findIDByEmail(ctx, email)
}

func (m *mockIdentityProvider) Authenticate(ctx context.Context, email, password string) (*domain.Identity, error) {
	return m.authenticate(ctx, email, password)
}

func (m *mockIdentityProvider) SendInvitation(ctx context.Context, email string, metadata domain.IdentityMetadata) (*domain.Identity, error) {
	return m.sendInvitation(ctx, email, metadata)
}

func (m *mockIdentityProvider) VerifyEmail(ctx context.Context, token string) (*domain.Identity, error) {
	return m.verifyEmail(ctx, token)
}

func (m *mockIdentityProvider) AcceptInvite(ctx context.Context, token, password string) (*domain.Identity, error) {
	return m.acceptInvite(ctx, token, password)
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event{}, d.events...)
}
