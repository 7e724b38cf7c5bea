package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ats-service/internal/domain"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// CandidateRepository encapsulates candidate persistence.
type CandidateRepository interface {
	Create(ctx context.Context, candidate *domain.Candidate) error
	Update(ctx context.Context, candidate *domain.Candidate) error
	GetByID(ctx context.Context, id string) (*domain.Candidate, error)
	GetByEmail(ctx context.Context, companyID, email string) (*domain.Candidate, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]domain.Candidate, error)
	CountByCompany(ctx context.Context, companyID string) (int, error)
	UpdateResumeKey(ctx context.Context, id string, resumeKey *string) error
}

type candidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository returns a Postgres-backed implementation.
func NewCandidateRepository(pool *pgxpool.Pool) CandidateRepository {
	return &candidateRepository{pool: pool}
}

func (r *candidateRepository) Create(ctx context.Context, candidate *domain.Candidate) error {
	const query = `
        INSERT INTO candidates (company_id, name, email, phone, linkedin_url, notes, resume_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		candidate.CompanyID,
		candidate.Name,
		candidate.Email,
		candidate.Phone,
		candidate.LinkedInURL,
		candidate.Notes,
		candidate.ResumeKey,
	).Scan(&candidate.ID, &candidate.CreatedAt, &candidate.UpdatedAt)
	if isUniqueViolation(err) {
		return apperrors.NewConflict("A candidate with this email already exists in your company", nil)
	}
	return err
}

func (r *candidateRepository) Update(ctx context.Context, candidate *domain.Candidate) error {
	const query = `
        UPDATE candidates SET name=$1, email=$2, phone=$3, linkedin_url=$4, notes=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		candidate.Name,
		candidate.Email,
		candidate.Phone,
		candidate.LinkedInURL,
		candidate.Notes,
		candidate.ID,
	)
	if isUniqueViolation(err) {
		return apperrors.NewConflict("A candidate with this email already exists in your company", nil)
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	const query = `
        SELECT id, company_id, name, email, phone, linkedin_url, notes, resume_key, created_at, updated_at
        FROM candidates WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *candidateRepository) GetByEmail(ctx context.Context, companyID, email string) (*domain.Candidate, error) {
	const query = `
        SELECT id, company_id, name, email, phone, linkedin_url, notes, resume_key, created_at, updated_at
        FROM candidates WHERE company_id=$1 AND LOWER(email)=LOWER($2)`
	return r.fetchSingle(ctx, query, companyID, email)
}

func (r *candidateRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Candidate, error) {
	var candidate domain.Candidate
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&candidate.ID,
		&candidate.CompanyID,
		&candidate.Name,
		&candidate.Email,
		&candidate.Phone,
		&candidate.LinkedInURL,
		&candidate.Notes,
		&candidate.ResumeKey,
		&candidate.CreatedAt,
		&candidate.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]domain.Candidate, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, company_id, name, email, phone, linkedin_url, notes, resume_key, created_at, updated_at
        FROM candidates WHERE company_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Candidate
	for rows.Next() {
		var candidate domain.Candidate
		if err := rows.Scan(
			&candidate.ID,
			&candidate.CompanyID,
			&candidate.Name,
			&candidate.Email,
			&candidate.Phone,
			&candidate.LinkedInURL,
			&candidate.Notes,
			&candidate.ResumeKey,
			&candidate.CreatedAt,
			&candidate.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, candidate)
	}
	return result, rows.Err()
}

func (r *candidateRepository) CountByCompany(ctx context.Context, companyID string) (int, error) {
	const query = `SELECT COUNT(*) FROM candidates WHERE company_id=$1`
	var count int
	if err := r.pool.QueryRow(ctx, query, companyID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *candidateRepository) UpdateResumeKey(ctx context.Context, id string, resumeKey *string) error {
	const query = `UPDATE candidates SET resume_key=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, resumeKey, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
