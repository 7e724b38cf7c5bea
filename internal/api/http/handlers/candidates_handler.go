package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ats-service/internal/api/dto"
	"github.com/spec-kit/ats-service/internal/auth"
	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/service"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// CandidatesHandler manages candidate endpoints including resume files.
type CandidatesHandler struct {
	service *service.CandidateService
}

// NewCandidatesHandler constructs handler.
func NewCandidatesHandler(candidateService *service.CandidateService) *CandidatesHandler {
	return &CandidatesHandler{service: candidateService}
}

// Create POST /companies/:companyID/candidates.
func (h *CandidatesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	candidate, err := h.service.CreateCandidate(c.Context(), c.Params("companyID"), principal.Identity.ID, service.CreateCandidateInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		LinkedInURL: req.LinkedInURL,
		Notes:       req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": candidateResponse(candidate)})
}

// List GET /companies/:companyID/candidates.
func (h *CandidatesHandler) List(c *fiber.Ctx) error {
	limit := parsePositiveInt(c.Query("limit"), 50)
	offset := parsePositiveInt(c.Query("offset"), 0)

	candidates, err := h.service.ListCandidates(c.Context(), c.Params("companyID"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.CandidateResponse, 0, len(candidates))
	for i := range candidates {
		items = append(items, candidateResponse(&candidates[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /companies/:companyID/candidates/:candidateID.
func (h *CandidatesHandler) Get(c *fiber.Ctx) error {
	detail, err := h.service.GetCandidate(c.Context(), c.Params("companyID"), c.Params("candidateID"))
	if err != nil {
		return err
	}
	apps := make([]dto.ApplicationResponse, 0, len(detail.Applications))
	for i := range detail.Applications {
		apps = append(apps, applicationResponse(&detail.Applications[i]))
	}
	return c.JSON(fiber.Map{"data": dto.CandidateDetailResponse{
		CandidateResponse: candidateResponse(detail.Candidate),
		Applications:      apps,
	}})
}

// Update PATCH /companies/:companyID/candidates/:candidateID.
func (h *CandidatesHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateCandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	candidate, err := h.service.UpdateCandidate(c.Context(), c.Params("companyID"), c.Params("candidateID"), service.UpdateCandidateInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		LinkedInURL: req.LinkedInURL,
		Notes:       req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": candidateResponse(candidate)})
}

// UploadResume POST /companies/:companyID/candidates/:candidateID/resume.
// Expects multipart form data with a "file" field.
func (h *CandidatesHandler) UploadResume(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("resume file required", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidationError("could not read resume file", nil)
	}
	defer file.Close()
	body, err := io.ReadAll(file)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	candidate, err := h.service.AttachResume(c.Context(), c.Params("companyID"), c.Params("candidateID"), fileHeader.Filename, contentType, body)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": candidateResponse(candidate)})
}

// ResumeURL GET /companies/:companyID/candidates/:candidateID/resume.
func (h *CandidatesHandler) ResumeURL(c *fiber.Ctx) error {
	url, err := h.service.ResumeURL(c.Context(), c.Params("companyID"), c.Params("candidateID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ResumeURLResponse{URL: url}})
}

// DeleteResume DELETE /companies/:companyID/candidates/:candidateID/resume.
func (h *CandidatesHandler) DeleteResume(c *fiber.Ctx) error {
	if err := h.service.DeleteResume(c.Context(), c.Params("companyID"), c.Params("candidateID")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func candidateResponse(candidate *domain.Candidate) dto.CandidateResponse {
	return dto.CandidateResponse{
		ID:          candidate.ID,
		CompanyID:   candidate.CompanyID,
		Name:        candidate.Name,
		Email:       candidate.Email,
		Phone:       candidate.Phone,
		LinkedInURL: candidate.LinkedInURL,
		Notes:       candidate.Notes,
		HasResume:   candidate.ResumeKey != nil,
		CreatedAt:   candidate.CreatedAt,
		UpdatedAt:   candidate.UpdatedAt,
	}
}
