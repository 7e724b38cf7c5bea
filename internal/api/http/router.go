package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ats-service/internal/api/http/handlers"
	"github.com/spec-kit/ats-service/internal/auth"
	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/repository"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Companies      *handlers.CompaniesHandler
	Jobs           *handlers.JobsHandler
	Candidates     *handlers.CandidatesHandler
	Applications   *handlers.ApplicationsHandler
	AuthMiddleware *auth.AuthMiddleware
	Memberships    repository.MembershipRepository
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/sign-up", cfg.Auth.SignUp)
	authGroup.Post("/sign-in", cfg.Auth.SignIn)
	authGroup.Post("/verify", cfg.Auth.VerifyEmail)
	authGroup.Post("/invites/accept", cfg.Auth.AcceptInvite)

	me := app.Group("/me", cfg.AuthMiddleware.Handle)
	me.Get("/bootstrap", cfg.Auth.Bootstrap)
	me.Get("/companies", cfg.Auth.ListMyCompanies)

	companies := app.Group("/companies", cfg.AuthMiddleware.Handle)
	companies.Post("", cfg.Companies.Create)

	anyMember := auth.RequireCompanyRole(cfg.Memberships)
	adminOnly := auth.RequireCompanyRole(cfg.Memberships, domain.MemberRoleAdmin)

	company := companies.Group("/:companyID")
	company.Get("", anyMember, cfg.Companies.Get)
	company.Patch("", adminOnly, cfg.Companies.Update)
	company.Get("/usage", anyMember, cfg.Companies.Usage)

	company.Get("/members", anyMember, cfg.Companies.ListMembers)
	company.Post("/members", adminOnly, cfg.Companies.InviteMember)
	company.Patch("/members/:memberID", adminOnly, cfg.Companies.UpdateMemberRole)
	company.Delete("/members/:memberID", adminOnly, cfg.Companies.RemoveMember)

	company.Post("/jobs", anyMember, cfg.Jobs.Create)
	company.Get("/jobs", anyMember, cfg.Jobs.List)
	company.Get("/jobs/:jobID", anyMember, cfg.Jobs.Get)
	company.Patch("/jobs/:jobID", anyMember, cfg.Jobs.Update)
	company.Post("/jobs/:jobID/close", anyMember, cfg.Jobs.Close)
	company.Post("/jobs/:jobID/reopen", anyMember, cfg.Jobs.Reopen)
	company.Post("/jobs/:jobID/archive", anyMember, cfg.Jobs.Archive)

	company.Post("/candidates", anyMember, cfg.Candidates.Create)
	company.Get("/candidates", anyMember, cfg.Candidates.List)
	company.Get("/candidates/:candidateID", anyMember, cfg.Candidates.Get)
	company.Patch("/candidates/:candidateID", anyMember, cfg.Candidates.Update)
	company.Post("/candidates/:candidateID/resume", anyMember, cfg.Candidates.UploadResume)
	company.Get("/candidates/:candidateID/resume", anyMember, cfg.Candidates.ResumeURL)
	company.Delete("/candidates/:candidateID/resume", anyMember, cfg.Candidates.DeleteResume)

	company.Post("/applications", anyMember, cfg.Applications.Create)
	company.Get("/applications", anyMember, cfg.Applications.List)
	company.Get("/applications/:applicationID", anyMember, cfg.Applications.Get)
	company.Post("/applications/:applicationID/transition", anyMember, cfg.Applications.Transition)
}
