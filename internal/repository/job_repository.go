package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ats-service/internal/domain"
)

// JobFilter captures job listing parameters.
type JobFilter struct {
	Status *domain.JobStatus
	Limit  int
	Offset int
}

// JobRepository encapsulates job posting persistence.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	Update(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	ListByCompany(ctx context.Context, companyID string, filter JobFilter) ([]domain.Job, error)
	CountByCompanyAndStatus(ctx context.Context, companyID string, status domain.JobStatus) (int, error)
}

type jobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository returns a Postgres-backed implementation.
func NewJobRepository(pool *pgxpool.Pool) JobRepository {
	return &jobRepository{pool: pool}
}

func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	const query = `
        INSERT INTO jobs (company_id, title, description, location, department, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		job.CompanyID,
		job.Title,
		job.Description,
		job.Location,
		job.Department,
		job.Status,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

func (r *jobRepository) Update(ctx context.Context, job *domain.Job) error {
	const query = `
        UPDATE jobs SET title=$1, description=$2, location=$3, department=$4,
            status=$5, closed_at=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		job.Title,
		job.Description,
		job.Location,
		job.Department,
		job.Status,
		job.ClosedAt,
		job.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *jobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	const query = `
        SELECT id, company_id, title, description, location, department,
               status, closed_at, created_at, updated_at
        FROM jobs WHERE id=$1`
	var job domain.Job
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.CompanyID,
		&job.Title,
		&job.Description,
		&job.Location,
		&job.Department,
		&job.Status,
		&job.ClosedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) ListByCompany(ctx context.Context, companyID string, filter JobFilter) ([]domain.Job, error) {
	base := `
        SELECT id, company_id, title, description, location, department,
               status, closed_at, created_at, updated_at
        FROM jobs WHERE company_id=$1`
	args := []any{companyID}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		base += ` AND status=$2`
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`%s ORDER BY created_at DESC LIMIT %d OFFSET %d`, base, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Job
	for rows.Next() {
		var job domain.Job
		if err := rows.Scan(
			&job.ID,
			&job.CompanyID,
			&job.Title,
			&job.Description,
			&job.Location,
			&job.Department,
			&job.Status,
			&job.ClosedAt,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, job)
	}
	return result, rows.Err()
}

func (r *jobRepository) CountByCompanyAndStatus(ctx context.Context, companyID string, status domain.JobStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM jobs WHERE company_id=$1 AND status=$2`
	var count int
	if err := r.pool.QueryRow(ctx, query, companyID, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
