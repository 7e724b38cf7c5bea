package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/events"
	"github.com/spec-kit/ats-service/internal/repository"
	"github.com/spec-kit/ats-service/internal/storage"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// CandidateService manages candidates and their resume files.
type CandidateService struct {
	candidates   repository.CandidateRepository
	applications repository.ApplicationRepository
	quota        *QuotaChecker
	resumes      *storage.ResumeStore
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// CandidateDependencies lists collaborators for NewCandidateService.
type CandidateDependencies struct {
	Candidates   repository.CandidateRepository
	Applications repository.ApplicationRepository
	Quota        *QuotaChecker
	Resumes      *storage.ResumeStore
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewCandidateService builds the service.
func NewCandidateService(deps CandidateDependencies) *CandidateService {
	return &CandidateService{
		candidates:   deps.Candidates,
		applications: deps.Applications,
		quota:        deps.Quota,
		resumes:      deps.Resumes,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
	}
}

// CreateCandidateInput carries fields for a new candidate.
type CreateCandidateInput struct {
	Name        string
	Email       string
	Phone       *string
	LinkedInURL *string
	Notes       *string
}

// CreateCandidate creates a candidate after the plan quota check. Emails are
// unique per company, case-insensitively.
func (s *CandidateService) CreateCandidate(ctx context.Context, companyID, actorID string, input CreateCandidateInput) (*domain.Candidate, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, apperrors.NewValidationError("Candidate name is required", nil)
	}
	if email == "" {
		return nil, apperrors.NewValidationError("Candidate email is required", nil)
	}

	if err := s.quota.CheckCandidateQuota(ctx, companyID); err != nil {
		return nil, err
	}

	if existing, err := s.candidates.GetByEmail(ctx, companyID, email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("A candidate with this email already exists in your company", nil)
	} else if err != nil && err != pgx.ErrNoRows {
		return nil, err
	}

	candidate := &domain.Candidate{
		CompanyID:   companyID,
		Name:        name,
		Email:       email,
		Phone:       input.Phone,
		LinkedInURL: input.LinkedInURL,
		Notes:       input.Notes,
	}
	if err := s.candidates.Create(ctx, candidate); err != nil {
		return nil, err
	}

	s.logger.Info("candidate created",
		zap.String("candidate_id", candidate.ID),
		zap.String("company_id", companyID))

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventCandidateCreated,
		CompanyID: companyID,
		Actor:     events.Actor{IdentityID: actorID},
		Payload:   events.CandidateCreatedPayload{CandidateID: candidate.ID, Email: candidate.Email},
	})
	return candidate, nil
}

// ListCandidates returns the company's candidates, newest first.
func (s *CandidateService) ListCandidates(ctx context.Context, companyID string, limit, offset int) ([]domain.Candidate, error) {
	return s.candidates.ListByCompany(ctx, companyID, limit, offset)
}

// CandidateDetail bundles a candidate with their applications.
type CandidateDetail struct {
	Candidate    *domain.Candidate
	Applications []domain.Application
}

// GetCandidate returns the candidate with their applications.
func (s *CandidateService) GetCandidate(ctx context.Context, companyID, candidateID string) (*CandidateDetail, error) {
	candidate, err := s.getOwned(ctx, companyID, candidateID)
	if err != nil {
		return nil, err
	}
	apps, err := s.applications.ListByCandidate(ctx, candidate.ID)
	if err != nil {
		return nil, err
	}
	return &CandidateDetail{Candidate: candidate, Applications: apps}, nil
}

// UpdateCandidateInput carries patchable candidate fields.
type UpdateCandidateInput struct {
	Name        *string
	Email       *string
	Phone       *string
	LinkedInURL *string
	Notes       *string
}

// UpdateCandidate patches candidate fields.
func (s *CandidateService) UpdateCandidate(ctx context.Context, companyID, candidateID string, input UpdateCandidateInput) (*domain.Candidate, error) {
	candidate, err := s.getOwned(ctx, companyID, candidateID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("Candidate name is required", nil)
		}
		candidate.Name = name
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, apperrors.NewValidationError("Candidate email is required", nil)
		}
		if email != candidate.Email {
			if existing, err := s.candidates.GetByEmail(ctx, companyID, email); err == nil && existing != nil {
				return nil, apperrors.NewConflict("A candidate with this email already exists in your company", nil)
			} else if err != nil && err != pgx.ErrNoRows {
				return nil, err
			}
			candidate.Email = email
		}
	}
	if input.Phone != nil {
		candidate.Phone = input.Phone
	}
	if input.LinkedInURL != nil {
		candidate.LinkedInURL = input.LinkedInURL
	}
	if input.Notes != nil {
		candidate.Notes = input.Notes
	}

	if err := s.candidates.Update(ctx, candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}

// AttachResume stores the resume file and records its object key. An existing
// resume is replaced, the old object removed best-effort.
func (s *CandidateService) AttachResume(ctx context.Context, companyID, candidateID, fileName, contentType string, body []byte) (*domain.Candidate, error) {
	candidate, err := s.getOwned(ctx, companyID, candidateID)
	if err != nil {
		return nil, err
	}
	if !s.resumes.Enabled() {
		return nil, apperrors.NewValidationError("Resume storage is not configured", nil)
	}
	if len(body) == 0 {
		return nil, apperrors.NewValidationError("Resume file is empty", nil)
	}

	key, err := s.resumes.Upload(ctx, companyID, candidate.ID, fileName, contentType, body)
	if err != nil {
		return nil, err
	}

	oldKey := candidate.ResumeKey
	if err := s.candidates.UpdateResumeKey(ctx, candidate.ID, &key); err != nil {
		return nil, err
	}
	candidate.ResumeKey = &key

	if oldKey != nil {
		if delErr := s.resumes.Delete(ctx, *oldKey); delErr != nil {
			s.logger.Warn("failed to delete replaced resume object",
				zap.String("key", *oldKey), zap.Error(delErr))
		}
	}
	return candidate, nil
}

// ResumeURL returns a short-lived presigned download URL for the resume.
func (s *CandidateService) ResumeURL(ctx context.Context, companyID, candidateID string) (string, error) {
	candidate, err := s.getOwned(ctx, companyID, candidateID)
	if err != nil {
		return "", err
	}
	if candidate.ResumeKey == nil {
		return "", apperrors.NewNotFound("resume", nil)
	}
	return s.resumes.PresignedURL(ctx, *candidate.ResumeKey)
}

// DeleteResume removes the stored resume object and clears the key.
func (s *CandidateService) DeleteResume(ctx context.Context, companyID, candidateID string) error {
	candidate, err := s.getOwned(ctx, companyID, candidateID)
	if err != nil {
		return err
	}
	if candidate.ResumeKey == nil {
		return nil
	}
	if err := s.resumes.Delete(ctx, *candidate.ResumeKey); err != nil {
		return err
	}
	return s.candidates.UpdateResumeKey(ctx, candidate.ID, nil)
}

func (s *CandidateService) getOwned(ctx context.Context, companyID, candidateID string) (*domain.Candidate, error) {
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
	return candidate, nil
}
