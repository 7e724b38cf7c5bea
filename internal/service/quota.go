package service

import (
	"context"

	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/repository"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// QuotaChecker enforces per-plan resource limits. Open jobs count against
// MaxJobs, so closed and archived postings free up quota; candidates count
// regardless of state. A limit of zero rejects all creation.
type QuotaChecker struct {
	companies  repository.CompanyRepository
	jobs       repository.JobRepository
	candidates repository.CandidateRepository
	plans      *PlanService
}

// NewQuotaChecker builds the checker.
func NewQuotaChecker(companies repository.CompanyRepository, jobs repository.JobRepository, candidates repository.CandidateRepository, plans *PlanService) *QuotaChecker {
	return &QuotaChecker{
		companies:  companies,
		jobs:       jobs,
		candidates: candidates,
		plans:      plans,
	}
}

// CheckJobQuota returns a quota error when the company already has as many
// open jobs as its plan allows.
func (q *QuotaChecker) CheckJobQuota(ctx context.Context, companyID string) error {
	plan, err := q.planFor(ctx, companyID)
	if err != nil {
		return err
	}
	count, err := q.jobs.CountByCompanyAndStatus(ctx, companyID, domain.JobStatusOpen)
	if err != nil {
		return err
	}
	if count >= plan.MaxJobs {
		return apperrors.NewQuotaExceeded("jobs", plan.MaxJobs)
	}
	return nil
}

// CheckCandidateQuota returns a quota error when the company already has as
// many candidates as its plan allows.
func (q *QuotaChecker) CheckCandidateQuota(ctx context.Context, companyID string) error {
	plan, err := q.planFor(ctx, companyID)
	if err != nil {
		return err
	}
	count, err := q.candidates.CountByCompany(ctx, companyID)
	if err != nil {
		return err
	}
	if count >= plan.MaxCandidates {
		return apperrors.NewQuotaExceeded("candidates", plan.MaxCandidates)
	}
	return nil
}

func (q *QuotaChecker) planFor(ctx context.Context, companyID string) (*domain.Plan, error) {
	company, err := q.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return q.plans.GetPlan(ctx, company.PlanID)
}
