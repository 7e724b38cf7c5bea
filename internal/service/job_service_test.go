package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/events"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

type jobFixture struct {
	jobs         *mockJobRepo
	applications *mockApplicationRepo
	companies    *mockCompanyRepo
	candidates   *mockCandidateRepo
	plans        *mockPlanRepo
	dispatcher   *recordingDispatcher

	openJobs int
	plan     *domain.Plan
}

func newJobFixture() *jobFixture {
	f := &jobFixture{
		jobs:         &mockJobRepo{},
		applications: &mockApplicationRepo{},
		companies:    &mockCompanyRepo{},
		candidates:   &mockCandidateRepo{},
		plans:        &mockPlanRepo{},
		dispatcher:   &recordingDispatcher{},
		plan:         freePlan(),
	}
	f.companies.getByID = func(_ context.Context, id string) (*domain.Company, error) {
		return &domain.Company{ID: id, Name: "Acme", PlanID: f.plan.ID}, nil
	}
	f.plans.getByID = func(context.Context, string) (*domain.Plan, error) { return f.plan, nil }
	f.jobs.countByCompanyAndStatus = func(context.Context, string, domain.JobStatus) (int, error) {
		return f.openJobs, nil
	}
	f.jobs.create = func(_ context.Context, job *domain.Job) error {
		job.ID = "job-1"
		return nil
	}
	f.jobs.update = func(context.Context, *domain.Job) error { return nil }
	return f
}

func (f *jobFixture) service(t *testing.T) *JobService {
	t.Helper()
	quota := NewQuotaChecker(f.companies, f.jobs, f.candidates, newTestPlanService(t, f.plans))
	return NewJobService(JobDependencies{
		Jobs:         f.jobs,
		Applications: f.applications,
		Quota:        quota,
		Dispatcher:   f.dispatcher,
		Logger:       zaptest.NewLogger(t),
	})
}

func TestJobService_CreateJob(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an open job under the quota", func(t *testing.T) {
		f := newJobFixture()
		svc := f.service(t)

		job, err := svc.CreateJob(ctx, "company-1", "identity-1", CreateJobInput{Title: "Engineer"})
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusOpen, job.Status)
		assert.Equal(t, "Engineer", job.Title)

		published := f.dispatcher.published()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventJobCreated, published[0].Type)
	})

	t.Run("rejects creation at the plan limit", func(t *testing.T) {
		f := newJobFixture()
		f.openJobs = 1 // Free plan allows one open job
		svc := f.service(t)

		_, err := svc.CreateJob(ctx, "company-1", "identity-1", CreateJobInput{Title: "Engineer"})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "QUOTA_EXCEEDED"))
		assert.Contains(t, err.Error(), "1")
	})

	t.Run("a zero limit rejects all creation", func(t *testing.T) {
		f := newJobFixture()
		f.plan = &domain.Plan{ID: "plan-zero", Name: "Suspended", MaxJobs: 0, MaxCandidates: 0}
		svc := f.service(t)

		_, err := svc.CreateJob(ctx, "company-1", "identity-1", CreateJobInput{Title: "Engineer"})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "QUOTA_EXCEEDED"))
	})

	t.Run("closed jobs free their quota slot", func(t *testing.T) {
		f := newJobFixture()
		// One open job exists; closing it drops the open count back to zero.
		f.openJobs = 1
		f.jobs.getByID = func(_ context.Context, id string) (*domain.Job, error) {
			return &domain.Job{ID: id, CompanyID: "company-1", Title: "Engineer", Status: domain.JobStatusOpen}, nil
		}
		svc := f.service(t)

		closed, err := svc.CloseJob(ctx, "company-1", "job-1", "identity-1")
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusClosed, closed.Status)
		require.NotNil(t, closed.ClosedAt)

		f.openJobs = 0
		job, err := svc.CreateJob(ctx, "company-1", "identity-1", CreateJobInput{Title: "Designer"})
		require.NoError(t, err)
		assert.Equal(t, "Designer", job.Title)
	})

	t.Run("requires a title", func(t *testing.T) {
		f := newJobFixture()
		svc := f.service(t)

		_, err := svc.CreateJob(ctx, "company-1", "identity-1", CreateJobInput{Title: "  "})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))
	})
}

func TestJobService_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("reopening re-checks the quota", func(t *testing.T) {
		f := newJobFixture()
		f.openJobs = 1 // already at the Free limit
		f.jobs.getByID = func(_ context.Context, id string) (*domain.Job, error) {
			return &domain.Job{ID: id, CompanyID: "company-1", Status: domain.JobStatusClosed}, nil
		}
		svc := f.service(t)

		_, err := svc.ReopenJob(ctx, "company-1", "job-1", "identity-1")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "QUOTA_EXCEEDED"))
	})

	t.Run("reopening clears closed_at", func(t *testing.T) {
		f := newJobFixture()
		now := time.Now()
		f.jobs.getByID = func(_ context.Context, id string) (*domain.Job, error) {
			return &domain.Job{ID: id, CompanyID: "company-1", Status: domain.JobStatusClosed, ClosedAt: &now}, nil
		}
		svc := f.service(t)

		job, err := svc.ReopenJob(ctx, "company-1", "job-1", "identity-1")
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusOpen, job.Status)
		assert.Nil(t, job.ClosedAt)
	})

	t.Run("archived jobs cannot change status", func(t *testing.T) {
		f := newJobFixture()
		f.jobs.getByID = func(_ context.Context, id string) (*domain.Job, error) {
			return &domain.Job{ID: id, CompanyID: "company-1", Status: domain.JobStatusArchived}, nil
		}
		svc := f.service(t)

		_, err := svc.ReopenJob(ctx, "company-1", "job-1", "identity-1")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))
	})

	t.Run("status change publishes an event", func(t *testing.T) {
		f := newJobFixture()
		f.jobs.getByID = func(_ context.Context, id string) (*domain.Job, error) {
			return &domain.Job{ID: id, CompanyID: "company-1", Status: domain.JobStatusOpen}, nil
		}
		svc := f.service(t)

		_, err := svc.ArchiveJob(ctx, "company-1", "job-1", "identity-1")
		require.NoError(t, err)

		published := f.dispatcher.published()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventJobStatusChanged, published[0].Type)
		payload, ok := published[0].Payload.(events.JobStatusChangedPayload)
		require.True(t, ok)
		assert.Equal(t, domain.JobStatusOpen, payload.OldStatus)
		assert.Equal(t, domain.JobStatusArchived, payload.NewStatus)
	})

	t.Run("jobs of other companies are invisible", func(t *testing.T) {
		f := newJobFixture()
		f.jobs.getByID = func(_ context.Context, id string) (*domain.Job, error) {
			return &domain.Job{ID: id, CompanyID: "company-other", Status: domain.JobStatusOpen}, nil
		}
		svc := f.service(t)

		_, err := svc.CloseJob(ctx, "company-1", "job-1", "identity-1")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))
	})
}
