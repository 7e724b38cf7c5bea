package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ats-service/internal/domain"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// MemberWithEmail joins a membership with the identity's email for display.
type MemberWithEmail struct {
	Membership domain.Membership
	Email      string
}

// MembershipRepository encapsulates company membership persistence.
type MembershipRepository interface {
	Create(ctx context.Context, membership *domain.Membership) error
	GetByCompanyAndUser(ctx context.Context, companyID, userID string) (*domain.Membership, error)
	GetByID(ctx context.Context, id string) (*domain.Membership, error)
	ListByCompany(ctx context.Context, companyID string) ([]MemberWithEmail, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Membership, error)
	UpdateRole(ctx context.Context, companyID, memberID string, role domain.MemberRole) error
	Delete(ctx context.Context, companyID, memberID string) error
}

type membershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository returns a Postgres-backed implementation.
func NewMembershipRepository(pool *pgxpool.Pool) MembershipRepository {
	return &membershipRepository{pool: pool}
}

func (r *membershipRepository) Create(ctx context.Context, membership *domain.Membership) error {
	const query = `
        INSERT INTO company_members (company_id, user_id, role)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		membership.CompanyID,
		membership.UserID,
		membership.Role,
	).Scan(&membership.ID, &membership.CreatedAt)
	if isUniqueViolation(err) {
		return apperrors.NewConflict("User is already a member of this company", nil)
	}
	return err
}

func (r *membershipRepository) GetByCompanyAndUser(ctx context.Context, companyID, userID string) (*domain.Membership, error) {
	const query = `
        SELECT id, company_id, user_id, role, created_at
        FROM company_members WHERE company_id=$1 AND user_id=$2`
	return r.fetchSingle(ctx, query, companyID, userID)
}

func (r *membershipRepository) GetByID(ctx context.Context, id string) (*domain.Membership, error) {
	const query = `
        SELECT id, company_id, user_id, role, created_at
        FROM company_members WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *membershipRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Membership, error) {
	var membership domain.Membership
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&membership.ID,
		&membership.CompanyID,
		&membership.UserID,
		&membership.Role,
		&membership.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *membershipRepository) ListByCompany(ctx context.Context, companyID string) ([]MemberWithEmail, error) {
	const query = `
        SELECT m.id, m.company_id, m.user_id, m.role, m.created_at, i.email
        FROM company_members m
        JOIN identities i ON i.id = m.user_id
        WHERE m.company_id=$1
        ORDER BY m.created_at ASC`
	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MemberWithEmail
	for rows.Next() {
		var entry MemberWithEmail
		if err := rows.Scan(
			&entry.Membership.ID,
			&entry.Membership.CompanyID,
			&entry.Membership.UserID,
			&entry.Membership.Role,
			&entry.Membership.CreatedAt,
			&entry.Email,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *membershipRepository) ListByUser(ctx context.Context, userID string) ([]domain.Membership, error) {
	const query = `
        SELECT id, company_id, user_id, role, created_at
        FROM company_members WHERE user_id=$1
        ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Membership
	for rows.Next() {
		var membership domain.Membership
		if err := rows.Scan(
			&membership.ID,
			&membership.CompanyID,
			&membership.UserID,
			&membership.Role,
			&membership.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, membership)
	}
	return result, rows.Err()
}

func (r *membershipRepository) UpdateRole(ctx context.Context, companyID, memberID string, role domain.MemberRole) error {
	const query = `
        UPDATE company_members SET role=$1
        WHERE id=$2 AND company_id=$3`
	cmd, err := r.pool.Exec(ctx, query, role, memberID, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *membershipRepository) Delete(ctx context.Context, companyID, memberID string) error {
	const query = `DELETE FROM company_members WHERE id=$1 AND company_id=$2`
	cmd, err := r.pool.Exec(ctx, query, memberID, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
