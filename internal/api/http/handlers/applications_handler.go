package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ats-service/internal/api/dto"
	"github.com/spec-kit/ats-service/internal/auth"
	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/repository"
	"github.com/spec-kit/ats-service/internal/service"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// ApplicationsHandler manages application endpoints.
type ApplicationsHandler struct {
	service *service.ApplicationService
}

// NewApplicationsHandler constructs handler.
func NewApplicationsHandler(applicationService *service.ApplicationService) *ApplicationsHandler {
	return &ApplicationsHandler{service: applicationService}
}

// Create POST /companies/:companyID/applications.
func (h *ApplicationsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CandidateID == "" || req.JobID == "" {
		return apperrors.NewValidationError("candidate_id and job_id required", nil)
	}

	application, err := h.service.CreateApplication(c.Context(), c.Params("companyID"), principal.Identity.ID, req.CandidateID, req.JobID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": applicationResponse(application)})
}

// List GET /companies/:companyID/applications.
func (h *ApplicationsHandler) List(c *fiber.Ctx) error {
	filter := repository.ApplicationFilter{
		Limit:  parsePositiveInt(c.Query("limit"), 50),
		Offset: parsePositiveInt(c.Query("offset"), 0),
	}
	if jobID := c.Query("job_id"); jobID != "" {
		filter.JobID = &jobID
	}
	if stageStr := c.Query("stage"); stageStr != "" {
		stage := domain.ApplicationStage(stageStr)
		filter.Stage = &stage
	}

	applications, err := h.service.ListApplications(c.Context(), c.Params("companyID"), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ApplicationResponse, 0, len(applications))
	for i := range applications {
		items = append(items, applicationResponse(&applications[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /companies/:companyID/applications/:applicationID.
func (h *ApplicationsHandler) Get(c *fiber.Ctx) error {
	application, err := h.service.GetApplication(c.Context(), c.Params("companyID"), c.Params("applicationID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationResponse(application)})
}

// Transition POST /companies/:companyID/applications/:applicationID/transition.
func (h *ApplicationsHandler) Transition(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.TransitionApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	application, err := h.service.Transition(c.Context(), c.Params("companyID"), principal.Identity.ID, c.Params("applicationID"), req.Stage)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationResponse(application)})
}

func applicationResponse(application *domain.Application) dto.ApplicationResponse {
	return dto.ApplicationResponse{
		ID:          application.ID,
		CandidateID: application.CandidateID,
		JobID:       application.JobID,
		Stage:       application.Stage,
		CreatedAt:   application.CreatedAt,
		UpdatedAt:   application.UpdatedAt,
	}
}
