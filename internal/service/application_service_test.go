package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/events"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

type applicationFixture struct {
	applications *mockApplicationRepo
	candidates   *mockCandidateRepo
	jobs         *mockJobRepo
	dispatcher   *recordingDispatcher
}

func newApplicationFixture() *applicationFixture {
	f := &applicationFixture{
		applications: &mockApplicationRepo{},
		candidates:   &mockCandidateRepo{},
		jobs:         &mockJobRepo{},
		dispatcher:   &recordingDispatcher{},
	}
	f.candidates.getByID = func(_ context.Context, id string) (*domain.Candidate, error) {
		return &domain.Candidate{ID: id, CompanyID: "company-1", Name: "Jane"}, nil
	}
	f.jobs.getByID = func(_ context.Context, id string) (*domain.Job, error) {
		return &domain.Job{ID: id, CompanyID: "company-1", Status: domain.JobStatusOpen}, nil
	}
	f.applications.getByPair = func(context.Context, string, string) (*domain.Application, error) {
		return nil, pgx.ErrNoRows
	}
	f.applications.create = func(_ context.Context, a *domain.Application) error {
		a.ID = "application-1"
		return nil
	}
	f.applications.updateStage = func(context.Context, string, domain.ApplicationStage) error { return nil }
	return f
}

func (f *applicationFixture) service(t *testing.T) *ApplicationService {
	t.Helper()
	return NewApplicationService(ApplicationDependencies{
		Applications: f.applications,
		Candidates:   f.candidates,
		Jobs:         f.jobs,
		Dispatcher:   f.dispatcher,
		Logger:       zaptest.NewLogger(t),
	})
}

func TestApplicationService_CreateApplication(t *testing.T) {
	ctx := context.Background()

	t.Run("new applications always start at applied", func(t *testing.T) {
		f := newApplicationFixture()
		svc := f.service(t)

		application, err := svc.CreateApplication(ctx, "company-1", "identity-1", "candidate-1", "job-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StageApplied, application.Stage)

		published := f.dispatcher.published()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventApplicationCreated, published[0].Type)
	})

	t.Run("rejects a duplicate candidate-job pair", func(t *testing.T) {
		f := newApplicationFixture()
		f.applications.getByPair = func(_ context.Context, candidateID, jobID string) (*domain.Application, error) {
			return &domain.Application{ID: "application-existing", CandidateID: candidateID, JobID: jobID}, nil
		}
		svc := f.service(t)

		_, err := svc.CreateApplication(ctx, "company-1", "identity-1", "candidate-1", "job-1")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "DUPLICATE_APPLICATION"))
	})

	t.Run("requires a candidate owned by the company", func(t *testing.T) {
		f := newApplicationFixture()
		f.candidates.getByID = func(_ context.Context, id string) (*domain.Candidate, error) {
			return &domain.Candidate{ID: id, CompanyID: "company-other"}, nil
		}
		svc := f.service(t)

		_, err := svc.CreateApplication(ctx, "company-1", "identity-1", "candidate-1", "job-1")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))
	})

	t.Run("requires an existing job", func(t *testing.T) {
		f := newApplicationFixture()
		f.jobs.getByID = func(context.Context, string) (*domain.Job, error) {
			return nil, pgx.ErrNoRows
		}
		svc := f.service(t)

		_, err := svc.CreateApplication(ctx, "company-1", "identity-1", "candidate-1", "job-1")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))
	})
}

func TestApplicationService_Transition(t *testing.T) {
	ctx := context.Background()

	withApplication := func(f *applicationFixture, stage domain.ApplicationStage) {
		f.applications.getByID = func(_ context.Context, id string) (*domain.Application, error) {
			return &domain.Application{ID: id, CandidateID: "candidate-1", JobID: "job-1", Stage: stage}, nil
		}
	}

	t.Run("moves between known stages", func(t *testing.T) {
		f := newApplicationFixture()
		withApplication(f, domain.StageApplied)
		svc := f.service(t)

		application, err := svc.Transition(ctx, "company-1", "identity-1", "application-1", domain.StageInterview)
		require.NoError(t, err)
		assert.Equal(t, domain.StageInterview, application.Stage)

		published := f.dispatcher.published()
		require.Len(t, published, 1)
		payload, ok := published[0].Payload.(events.ApplicationStageChangedPayload)
		require.True(t, ok)
		assert.Equal(t, domain.StageApplied, payload.OldStage)
		assert.Equal(t, domain.StageInterview, payload.NewStage)
	})

	t.Run("allows any-to-any moves including backwards", func(t *testing.T) {
		f := newApplicationFixture()
		withApplication(f, domain.StageHired)
		svc := f.service(t)

		application, err := svc.Transition(ctx, "company-1", "identity-1", "application-1", domain.StageApplied)
		require.NoError(t, err)
		assert.Equal(t, domain.StageApplied, application.Stage)
	})

	t.Run("rejects unknown stages", func(t *testing.T) {
		f := newApplicationFixture()
		withApplication(f, domain.StageApplied)
		svc := f.service(t)

		_, err := svc.Transition(ctx, "company-1", "identity-1", "application-1", domain.ApplicationStage("ghosted"))
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))
	})

	t.Run("same-stage transition is a no-op", func(t *testing.T) {
		f := newApplicationFixture()
		withApplication(f, domain.StageScreening)
		f.applications.updateStage = func(context.Context, string, domain.ApplicationStage) error {
			t.Fatal("no update expected for a same-stage transition")
			return nil
		}
		svc := f.service(t)

		application, err := svc.Transition(ctx, "company-1", "identity-1", "application-1", domain.StageScreening)
		require.NoError(t, err)
		assert.Equal(t, domain.StageScreening, application.Stage)
		assert.Empty(t, f.dispatcher.published())
	})

	t.Run("applications of other companies are invisible", func(t *testing.T) {
		f := newApplicationFixture()
		withApplication(f, domain.StageApplied)
		f.jobs.getByID = func(_ context.Context, id string) (*domain.Job, error) {
			return &domain.Job{ID: id, CompanyID: "company-other"}, nil
		}
		svc := f.service(t)

		_, err := svc.Transition(ctx, "company-1", "identity-1", "application-1", domain.StageOffer)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))
	})
}
