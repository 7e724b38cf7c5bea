package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/events"
	"github.com/spec-kit/ats-service/internal/repository"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// JobService manages job postings and their open/closed/archived lifecycle.
type JobService struct {
	jobs         repository.JobRepository
	applications repository.ApplicationRepository
	quota        *QuotaChecker
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// JobDependencies lists collaborators for NewJobService.
type JobDependencies struct {
	Jobs         repository.JobRepository
	Applications repository.ApplicationRepository
	Quota        *QuotaChecker
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewJobService builds the service.
func NewJobService(deps JobDependencies) *JobService {
	return &JobService{
		jobs:         deps.Jobs,
		applications: deps.Applications,
		quota:        deps.Quota,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
	}
}

// CreateJobInput carries fields for a new posting.
type CreateJobInput struct {
	Title       string
	Description string
	Location    string
	Department  string
}

// CreateJob creates an open posting after the plan quota check.
func (s *JobService) CreateJob(ctx context.Context, companyID, actorID string, input CreateJobInput) (*domain.Job, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("Job title is required", nil)
	}

	if err := s.quota.CheckJobQuota(ctx, companyID); err != nil {
		return nil, err
	}

	job := &domain.Job{
		CompanyID:   companyID,
		Title:       title,
		Description: input.Description,
		Location:    input.Location,
		Department:  input.Department,
		Status:      domain.JobStatusOpen,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("job created",
		zap.String("job_id", job.ID),
		zap.String("company_id", companyID),
		zap.String("title", job.Title))

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventJobCreated,
		CompanyID: companyID,
		Actor:     events.Actor{IdentityID: actorID},
		Payload:   events.JobCreatedPayload{JobID: job.ID, Title: job.Title},
	})
	return job, nil
}

// ListJobs returns the company's postings, optionally filtered by status.
func (s *JobService) ListJobs(ctx context.Context, companyID string, filter repository.JobFilter) ([]domain.Job, error) {
	if filter.Status != nil {
		switch *filter.Status {
		case domain.JobStatusOpen, domain.JobStatusClosed, domain.JobStatusArchived:
		default:
			return nil, apperrors.NewValidationError("Invalid job status filter", map[string]any{"status": string(*filter.Status)})
		}
	}
	return s.jobs.ListByCompany(ctx, companyID, filter)
}

// JobDetail bundles a job with its applications.
type JobDetail struct {
	Job          *domain.Job
	Applications []domain.Application
}

// GetJob returns the posting with its applications.
func (s *JobService) GetJob(ctx context.Context, companyID, jobID string) (*JobDetail, error) {
	job, err := s.getOwned(ctx, companyID, jobID)
	if err != nil {
		return nil, err
	}
	apps, err := s.applications.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	return &JobDetail{Job: job, Applications: apps}, nil
}

// UpdateJobInput carries patchable posting fields.
type UpdateJobInput struct {
	Title       *string
	Description *string
	Location    *string
	Department  *string
}

// UpdateJob patches descriptive fields. Archived postings are read-only.
func (s *JobService) UpdateJob(ctx context.Context, companyID, jobID string, input UpdateJobInput) (*domain.Job, error) {
	job, err := s.getOwned(ctx, companyID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == domain.JobStatusArchived {
		return nil, apperrors.NewValidationError("Archived jobs cannot be edited", nil)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("Job title is required", nil)
		}
		job.Title = title
	}
	if input.Description != nil {
		job.Description = *input.Description
	}
	if input.Location != nil {
		job.Location = *input.Location
	}
	if input.Department != nil {
		job.Department = *input.Department
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// CloseJob moves an open posting to closed, freeing its quota slot.
func (s *JobService) CloseJob(ctx context.Context, companyID, jobID, actorID string) (*domain.Job, error) {
	return s.setStatus(ctx, companyID, jobID, actorID, domain.JobStatusClosed)
}

// ReopenJob moves a closed posting back to open, re-checking the quota.
func (s *JobService) ReopenJob(ctx context.Context, companyID, jobID, actorID string) (*domain.Job, error) {
	return s.setStatus(ctx, companyID, jobID, actorID, domain.JobStatusOpen)
}

// ArchiveJob moves a posting to archived. Archiving is terminal.
func (s *JobService) ArchiveJob(ctx context.Context, companyID, jobID, actorID string) (*domain.Job, error) {
	return s.setStatus(ctx, companyID, jobID, actorID, domain.JobStatusArchived)
}

func (s *JobService) setStatus(ctx context.Context, companyID, jobID, actorID string, target domain.JobStatus) (*domain.Job, error) {
	job, err := s.getOwned(ctx, companyID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == target {
		return job, nil
	}
	if job.Status == domain.JobStatusArchived {
		return nil, apperrors.NewValidationError("Archived jobs cannot change status", nil)
	}

	switch target {
	case domain.JobStatusOpen:
		// Reopening consumes a quota slot again.
		if err := s.quota.CheckJobQuota(ctx, companyID); err != nil {
			return nil, err
		}
		job.ClosedAt = nil
	case domain.JobStatusClosed:
		now := time.Now().UTC()
		job.ClosedAt = &now
	case domain.JobStatusArchived:
		if job.ClosedAt == nil {
			now := time.Now().UTC()
			job.ClosedAt = &now
		}
	}

	oldStatus := job.Status
	job.Status = target
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("job status changed",
		zap.String("job_id", job.ID),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(target)))

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventJobStatusChanged,
		CompanyID: companyID,
		Actor:     events.Actor{IdentityID: actorID},
		Payload: events.JobStatusChangedPayload{
			JobID:     job.ID,
			OldStatus: oldStatus,
			NewStatus: target,
		},
	})
	return job, nil
}

func (s *JobService) getOwned(ctx context.Context, companyID, jobID string) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("job", nil)
		}
		return nil, err
	}
	if job.CompanyID != companyID {
		return nil, apperrors.NewNotFound("job", nil)
	}
	return job, nil
}
