package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/events"
	"github.com/spec-kit/ats-service/internal/repository"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// ApplicationService links candidates to jobs and moves applications through
// pipeline stages.
type ApplicationService struct {
	applications repository.ApplicationRepository
	candidates   repository.CandidateRepository
	jobs         repository.JobRepository
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// ApplicationDependencies lists collaborators for NewApplicationService.
type ApplicationDependencies struct {
	Applications repository.ApplicationRepository
	Candidates   repository.CandidateRepository
	Jobs         repository.JobRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewApplicationService builds the service.
func NewApplicationService(deps ApplicationDependencies) *ApplicationService {
	return &ApplicationService{
		applications: deps.Applications,
		candidates:   deps.Candidates,
		jobs:         deps.Jobs,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
	}
}

// CreateApplication links the candidate to the job. New applications always
// start at the applied stage. A candidate applies to a job at most once.
func (s *ApplicationService) CreateApplication(ctx context.Context, companyID, actorID, candidateID, jobID string) (*domain.Application, error) {
	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("candidate", nil)
		}
		return nil, err
	}
	if candidate.CompanyID != companyID {
		return nil, apperrors.NewNotFound("candidate", nil)
	}

	// The job's company is not cross-checked against the candidate's; see
	// the known integrity gap noted in DESIGN.md.
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("job", nil)
		}
		return nil, err
	}

	if existing, err := s.applications.GetByPair(ctx, candidateID, jobID); err == nil && existing != nil {
		return nil, apperrors.NewDuplicateApplication()
	} else if err != nil && err != pgx.ErrNoRows {
		return nil, err
	}

	application := &domain.Application{
		CandidateID: candidateID,
		JobID:       jobID,
		Stage:       domain.StageApplied,
	}
	if err := s.applications.Create(ctx, application); err != nil {
		return nil, err
	}

	s.logger.Info("application created",
		zap.String("application_id", application.ID),
		zap.String("candidate_id", candidateID),
		zap.String("job_id", jobID))

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventApplicationCreated,
		CompanyID: companyID,
		Actor:     events.Actor{IdentityID: actorID},
		Payload: events.ApplicationCreatedPayload{
			ApplicationID: application.ID,
			CandidateID:   candidateID,
			JobID:         jobID,
		},
	})
	return application, nil
}

// ListApplications returns the company's applications with optional job and
// stage filters.
func (s *ApplicationService) ListApplications(ctx context.Context, companyID string, filter repository.ApplicationFilter) ([]domain.Application, error) {
	if filter.Stage != nil && !filter.Stage.Valid() {
		return nil, apperrors.NewValidationError("Invalid stage filter", map[string]any{"stage": string(*filter.Stage)})
	}
	return s.applications.ListByCompany(ctx, companyID, filter)
}

// GetApplication returns one application, scoped to the company via its job.
func (s *ApplicationService) GetApplication(ctx context.Context, companyID, applicationID string) (*domain.Application, error) {
	return s.getOwned(ctx, companyID, applicationID)
}

// Transition moves the application to a new stage. Any known stage may follow
// any other, only unknown values are rejected.
func (s *ApplicationService) Transition(ctx context.Context, companyID, actorID, applicationID string, newStage domain.ApplicationStage) (*domain.Application, error) {
	if !newStage.Valid() {
		return nil, apperrors.NewValidationError("Invalid application stage", map[string]any{"stage": string(newStage)})
	}

	application, err := s.getOwned(ctx, companyID, applicationID)
	if err != nil {
		return nil, err
	}
	if application.Stage == newStage {
		return application, nil
	}

	oldStage := application.Stage
	if err := s.applications.UpdateStage(ctx, application.ID, newStage); err != nil {
		return nil, err
	}
	application.Stage = newStage

	s.logger.Info("application stage changed",
		zap.String("application_id", application.ID),
		zap.String("old_stage", string(oldStage)),
		zap.String("new_stage", string(newStage)))

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventApplicationStageChanged,
		CompanyID: companyID,
		Actor:     events.Actor{IdentityID: actorID},
		Payload: events.ApplicationStageChangedPayload{
			ApplicationID: application.ID,
			OldStage:      oldStage,
			NewStage:      newStage,
		},
	})
	return application, nil
}

func (s *ApplicationService) getOwned(ctx context.Context, companyID, applicationID string) (*domain.Application, error) {
	application, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("application", nil)
		}
		return nil, err
	}
	job, err := s.jobs.GetByID(ctx, application.JobID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("application", nil)
		}
		return nil, err
	}
	if job.CompanyID != companyID {
		return nil, apperrors.NewNotFound("application", nil)
	}
	return application, nil
}
