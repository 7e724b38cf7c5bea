package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/persistence"
	"github.com/spec-kit/ats-service/internal/repository"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// PlanService reads subscription tiers. Plans never change after creation, so
// lookups are served from Redis with a TTL and fall back to Postgres.
type PlanService struct {
	plans  repository.PlanRepository
	cache  *persistence.Redis
	ttl    time.Duration
	logger *zap.Logger
}

// NewPlanService builds the service.
func NewPlanService(plans repository.PlanRepository, cache *persistence.Redis, ttl time.Duration, logger *zap.Logger) *PlanService {
	return &PlanService{
		plans:  plans,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("plan_service"),
	}
}

// GetPlan returns the plan for the given identifier.
func (s *PlanService) GetPlan(ctx context.Context, planID string) (*domain.Plan, error) {
	if plan, ok := s.cached(ctx, "plan:id:"+planID); ok {
		return plan, nil
	}

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewInvalidPlan(planID)
		}
		return nil, err
	}

	s.store(ctx, "plan:id:"+planID, plan)
	return plan, nil
}

// GetPlanByName returns the plan with the given display name.
func (s *PlanService) GetPlanByName(ctx context.Context, name string) (*domain.Plan, error) {
	if plan, ok := s.cached(ctx, "plan:name:"+name); ok {
		return plan, nil
	}

	plan, err := s.plans.GetByName(ctx, name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("plan", map[string]any{"name": name})
		}
		return nil, err
	}

	s.store(ctx, "plan:name:"+name, plan)
	return plan, nil
}

// ListPlans returns all tiers ordered by size.
func (s *PlanService) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	return s.plans.List(ctx)
}

func (s *PlanService) cached(ctx context.Context, key string) (*domain.Plan, bool) {
	raw, ok := s.cache.GetString(ctx, key)
	if !ok {
		return nil, false
	}
	var plan domain.Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		s.logger.Warn("discarding malformed cached plan", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &plan, true
}

func (s *PlanService) store(ctx context.Context, key string, plan *domain.Plan) {
	raw, err := json.Marshal(plan)
	if err != nil {
		return
	}
	s.cache.SetString(ctx, key, string(raw), s.ttl)
}
