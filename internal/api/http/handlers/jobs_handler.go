package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ats-service/internal/api/dto"
	"github.com/spec-kit/ats-service/internal/auth"
	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/repository"
	"github.com/spec-kit/ats-service/internal/service"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// JobsHandler manages job posting endpoints.
type JobsHandler struct {
	service *service.JobService
}

// NewJobsHandler constructs handler.
func NewJobsHandler(jobService *service.JobService) *JobsHandler {
	return &JobsHandler{service: jobService}
}

// Create POST /companies/:companyID/jobs.
func (h *JobsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	job, err := h.service.CreateJob(c.Context(), c.Params("companyID"), principal.Identity.ID, service.CreateJobInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Department:  req.Department,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": jobResponse(job)})
}

// List GET /companies/:companyID/jobs.
func (h *JobsHandler) List(c *fiber.Ctx) error {
	filter := repository.JobFilter{
		Limit:  parsePositiveInt(c.Query("limit"), 50),
		Offset: parsePositiveInt(c.Query("offset"), 0),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.JobStatus(statusStr)
		filter.Status = &status
	}

	jobs, err := h.service.ListJobs(c.Context(), c.Params("companyID"), filter)
	if err != nil {
		return err
	}
	items := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		items = append(items, jobResponse(&jobs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /companies/:companyID/jobs/:jobID.
func (h *JobsHandler) Get(c *fiber.Ctx) error {
	detail, err := h.service.GetJob(c.Context(), c.Params("companyID"), c.Params("jobID"))
	if err != nil {
		return err
	}
	apps := make([]dto.ApplicationResponse, 0, len(detail.Applications))
	for i := range detail.Applications {
		apps = append(apps, applicationResponse(&detail.Applications[i]))
	}
	return c.JSON(fiber.Map{"data": dto.JobDetailResponse{
		JobResponse:  jobResponse(detail.Job),
		Applications: apps,
	}})
}

// Update PATCH /companies/:companyID/jobs/:jobID.
func (h *JobsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	job, err := h.service.UpdateJob(c.Context(), c.Params("companyID"), c.Params("jobID"), service.UpdateJobInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Department:  req.Department,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobResponse(job)})
}

// Close POST /companies/:companyID/jobs/:jobID/close.
func (h *JobsHandler) Close(c *fiber.Ctx) error {
	return h.lifecycle(c, h.service.CloseJob)
}

// Reopen POST /companies/:companyID/jobs/:jobID/reopen.
func (h *JobsHandler) Reopen(c *fiber.Ctx) error {
	return h.lifecycle(c, h.service.ReopenJob)
}

// Archive POST /companies/:companyID/jobs/:jobID/archive.
func (h *JobsHandler) Archive(c *fiber.Ctx) error {
	return h.lifecycle(c, h.service.ArchiveJob)
}

func (h *JobsHandler) lifecycle(c *fiber.Ctx, fn func(ctx context.Context, companyID, jobID, actorID string) (*domain.Job, error)) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	job, err := fn(c.Context(), c.Params("companyID"), c.Params("jobID"), principal.Identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobResponse(job)})
}

func jobResponse(job *domain.Job) dto.JobResponse {
	return dto.JobResponse{
		ID:          job.ID,
		CompanyID:   job.CompanyID,
		Title:       job.Title,
		Description: job.Description,
		Location:    job.Location,
		Department:  job.Department,
		Status:      job.Status,
		ClosedAt:    job.ClosedAt,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return fallback
	}
	return val
}
