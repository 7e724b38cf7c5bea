package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ats-service/internal/domain"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// ApplicationFilter captures company-scoped application listing parameters.
type ApplicationFilter struct {
	JobID  *string
	Stage  *domain.ApplicationStage
	Limit  int
	Offset int
}

// ApplicationRepository encapsulates application persistence.
type ApplicationRepository interface {
	Create(ctx context.Context, application *domain.Application) error
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	GetByPair(ctx context.Context, candidateID, jobID string) (*domain.Application, error)
	UpdateStage(ctx context.Context, id string, stage domain.ApplicationStage) error
	ListByCompany(ctx context.Context, companyID string, filter ApplicationFilter) ([]domain.Application, error)
	ListByJob(ctx context.Context, jobID string) ([]domain.Application, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]domain.Application, error)
}

type applicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository returns a Postgres-backed implementation.
func NewApplicationRepository(pool *pgxpool.Pool) ApplicationRepository {
	return &applicationRepository{pool: pool}
}

func (r *applicationRepository) Create(ctx context.Context, application *domain.Application) error {
	const query = `
        INSERT INTO applications (candidate_id, job_id, stage)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		application.CandidateID,
		application.JobID,
		application.Stage,
	).Scan(&application.ID, &application.CreatedAt, &application.UpdatedAt)
	if isUniqueViolation(err) {
		return apperrors.NewDuplicateApplication()
	}
	return err
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	const query = `
        SELECT id, candidate_id, job_id, stage, created_at, updated_at
        FROM applications WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *applicationRepository) GetByPair(ctx context.Context, candidateID, jobID string) (*domain.Application, error) {
	const query = `
        SELECT id, candidate_id, job_id, stage, created_at, updated_at
        FROM applications WHERE candidate_id=$1 AND job_id=$2`
	return r.fetchSingle(ctx, query, candidateID, jobID)
}

func (r *applicationRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Application, error) {
	var application domain.Application
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&application.ID,
		&application.CandidateID,
		&application.JobID,
		&application.Stage,
		&application.CreatedAt,
		&application.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *applicationRepository) UpdateStage(ctx context.Context, id string, stage domain.ApplicationStage) error {
	const query = `UPDATE applications SET stage=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, stage, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *applicationRepository) ListByCompany(ctx context.Context, companyID string, filter ApplicationFilter) ([]domain.Application, error) {
	base := `
        SELECT a.id, a.candidate_id, a.job_id, a.stage, a.created_at, a.updated_at
        FROM applications a
        JOIN jobs j ON j.id = a.job_id
        WHERE j.company_id=$1`
	args := []any{companyID}

	if filter.JobID != nil {
		args = append(args, *filter.JobID)
		base += fmt.Sprintf(" AND a.job_id=$%d", len(args))
	}
	if filter.Stage != nil {
		args = append(args, *filter.Stage)
		base += fmt.Sprintf(" AND a.stage=$%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`%s ORDER BY a.created_at DESC LIMIT %d OFFSET %d`, base, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *applicationRepository) ListByJob(ctx context.Context, jobID string) ([]domain.Application, error) {
	const query = `
        SELECT id, candidate_id, job_id, stage, created_at, updated_at
        FROM applications WHERE job_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *applicationRepository) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Application, error) {
	const query = `
        SELECT id, candidate_id, job_id, stage, created_at, updated_at
        FROM applications WHERE candidate_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

func scanApplications(rows pgx.Rows) ([]domain.Application, error) {
	var result []domain.Application
	for rows.Next() {
		var application domain.Application
		if err := rows.Scan(
			&application.ID,
			&application.CandidateID,
			&application.JobID,
			&application.Stage,
			&application.CreatedAt,
			&application.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, application)
	}
	return result, rows.Err()
}
