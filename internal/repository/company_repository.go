package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ats-service/internal/domain"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// uniqueViolation is the Postgres error code for unique constraint conflicts.
// The services pre-check for friendly errors; this closes the race the
// check-then-act pattern leaves open.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// CompanyWithRole pairs a company with the caller's membership role.
type CompanyWithRole struct {
	Company domain.Company
	Role    domain.MemberRole
}

// CompanyRepository encapsulates tenant persistence.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	Update(ctx context.Context, company *domain.Company) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	ListForUser(ctx context.Context, userID string) ([]CompanyWithRole, error)
}

type companyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository returns a Postgres-backed implementation.
func NewCompanyRepository(pool *pgxpool.Pool) CompanyRepository {
	return &companyRepository{pool: pool}
}

func (r *companyRepository) Create(ctx context.Context, company *domain.Company) error {
	const query = `
        INSERT INTO companies (name, plan_id)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		company.Name,
		company.PlanID,
	).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	if isUniqueViolation(err) {
		return apperrors.NewDuplicateName(company.Name)
	}
	return err
}

func (r *companyRepository) Update(ctx context.Context, company *domain.Company) error {
	const query = `
        UPDATE companies SET name=$1, plan_id=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query,
		company.Name,
		company.PlanID,
		company.ID,
	)
	if isUniqueViolation(err) {
		return apperrors.NewDuplicateName(company.Name)
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *companyRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *companyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	const query = `
        SELECT id, name, plan_id, created_at, updated_at
        FROM companies WHERE id=$1`
	var company domain.Company
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.PlanID,
		&company.CreatedAt,
		&company.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM companies WHERE LOWER(name)=LOWER($1))`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *companyRepository) ListForUser(ctx context.Context, userID string) ([]CompanyWithRole, error) {
	const query = `
        SELECT c.id, c.name, c.plan_id, c.created_at, c.updated_at, m.role
        FROM companies c
        JOIN company_members m ON m.company_id = c.id
        WHERE m.user_id=$1
        ORDER BY c.created_at ASC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CompanyWithRole
	for rows.Next() {
		var entry CompanyWithRole
		if err := rows.Scan(
			&entry.Company.ID,
			&entry.Company.Name,
			&entry.Company.PlanID,
			&entry.Company.CreatedAt,
			&entry.Company.UpdatedAt,
			&entry.Role,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
