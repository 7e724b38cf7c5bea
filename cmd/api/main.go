package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ats-service/internal/api/http"
	"github.com/spec-kit/ats-service/internal/api/http/handlers"
	"github.com/spec-kit/ats-service/internal/auth"
	"github.com/spec-kit/ats-service/internal/config"
	"github.com/spec-kit/ats-service/internal/events"
	"github.com/spec-kit/ats-service/internal/identity"
	"github.com/spec-kit/ats-service/internal/observability"
	"github.com/spec-kit/ats-service/internal/persistence"
	"github.com/spec-kit/ats-service/internal/repository"
	"github.com/spec-kit/ats-service/internal/service"
	"github.com/spec-kit/ats-service/internal/storage"
	"github.com/spec-kit/ats-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	resumeStore, err := storage.NewResumeStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to init resume storage", zap.Error(err))
	}

	pool := pg.PoolHandle()
	planRepo := repository.NewPlanRepository(pool)
	companyRepo := repository.NewCompanyRepository(pool)
	membershipRepo := repository.NewMembershipRepository(pool)
	jobRepo := repository.NewJobRepository(pool)
	candidateRepo := repository.NewCandidateRepository(pool)
	applicationRepo := repository.NewApplicationRepository(pool)

	identityProvider := identity.NewPostgresProvider(pool, cfg.Auth.BcryptCost, logger)
	dispatcher := events.NewInMemoryDispatcher(logger.Named("events"))
	metrics := observability.NewMetrics()

	planService := service.NewPlanService(planRepo, redis, cfg.Provisioning.PlanCacheTTL(), logger)
	quota := service.NewQuotaChecker(companyRepo, jobRepo, candidateRepo, planService)

	provisioningService := service.NewProvisioningService(service.ProvisioningDependencies{
		CompanyRepo:    companyRepo,
		MembershipRepo: membershipRepo,
		Plans:          planService,
		Identities:     identityProvider,
		Dispatcher:     dispatcher,
	}, cfg.Provisioning.RequireEmailVerification, logger)

	authService := service.NewAuthService(cfg.Auth, identityProvider)

	companyService := service.NewCompanyService(service.CompanyDependencies{
		Companies:   companyRepo,
		Memberships: membershipRepo,
		Jobs:        jobRepo,
		Candidates:  candidateRepo,
		Plans:       planService,
		Identities:  identityProvider,
		Dispatcher:  dispatcher,
		Logger:      logger.Named("company_service"),
		DefaultPlan: cfg.Provisioning.DefaultPlanName,
	})

	jobService := service.NewJobService(service.JobDependencies{
		Jobs:         jobRepo,
		Applications: applicationRepo,
		Quota:        quota,
		Dispatcher:   dispatcher,
		Logger:       logger.Named("job_service"),
	})

	candidateService := service.NewCandidateService(service.CandidateDependencies{
		Candidates:   candidateRepo,
		Applications: applicationRepo,
		Quota:        quota,
		Resumes:      resumeStore,
		Dispatcher:   dispatcher,
		Logger:       logger.Named("candidate_service"),
	})

	applicationService := service.NewApplicationService(service.ApplicationDependencies{
		Applications: applicationRepo,
		Candidates:   candidateRepo,
		Jobs:         jobRepo,
		Dispatcher:   dispatcher,
		Logger:       logger.Named("application_service"),
	})

	notificationService := service.NewNotificationService(dispatcher, logger.Named("notifications"), cfg.Notification, cfg.App.BaseURL)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), identityProvider)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: 10 * 1024 * 1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(provisioningService, authService, companyService),
		Companies:      handlers.NewCompaniesHandler(companyService),
		Jobs:           handlers.NewJobsHandler(jobService),
		Candidates:     handlers.NewCandidatesHandler(candidateService),
		Applications:   handlers.NewApplicationsHandler(applicationService),
		AuthMiddleware: authMiddleware,
		Memberships:    membershipRepo,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
