package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ats-service/internal/domain"
)

// PlanRepository reads immutable plan tiers.
type PlanRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Plan, error)
	GetByName(ctx context.Context, name string) (*domain.Plan, error)
	List(ctx context.Context) ([]domain.Plan, error)
}

type planRepository struct {
	pool *pgxpool.Pool
}

// NewPlanRepository returns a Postgres-backed implementation.
func NewPlanRepository(pool *pgxpool.Pool) PlanRepository {
	return &planRepository{pool: pool}
}

func (r *planRepository) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	const query = `
        SELECT id, name, max_jobs, max_candidates, created_at
        FROM plans WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *planRepository) GetByName(ctx context.Context, name string) (*domain.Plan, error) {
	const query = `
        SELECT id, name, max_jobs, max_candidates, created_at
        FROM plans WHERE name=$1`
	return r.fetchSingle(ctx, query, name)
}

func (r *planRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Plan, error) {
	var plan domain.Plan
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&plan.ID,
		&plan.Name,
		&plan.MaxJobs,
		&plan.MaxCandidates,
		&plan.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) List(ctx context.Context) ([]domain.Plan, error) {
	const query = `
        SELECT id, name, max_jobs, max_candidates, created_at
        FROM plans ORDER BY max_jobs ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlans(rows)
}

func scanPlans(rows pgx.Rows) ([]domain.Plan, error) {
	var result []domain.Plan
	for rows.Next() {
		var plan domain.Plan
		if err := rows.Scan(
			&plan.ID,
			&plan.Name,
			&plan.MaxJobs,
			&plan.MaxCandidates,
			&plan.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, plan)
	}
	return result, rows.Err()
}
