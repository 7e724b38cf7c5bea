package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/ats-service/internal/auth"
	"github.com/spec-kit/ats-service/internal/domain"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// postgresProvider keeps identities in a dedicated table standing in for the
// managed auth backend.
type postgresProvider struct {
	pool       *pgxpool.Pool
	bcryptCost int
	logger     *zap.Logger
}

// NewPostgresProvider builds the default Provider implementation.
func NewPostgresProvider(pool *pgxpool.Pool, bcryptCost int, logger *zap.Logger) Provider {
	return &postgresProvider{pool: pool, bcryptCost: bcryptCost, logger: logger.Named("identity")}
}

const identityColumns = `id, email, password_hash, verified_at, metadata, created_at, updated_at`

func (p *postgresProvider) CreateIdentity(ctx context.Context, input CreateIdentityInput) (*domain.Identity, error) {
	hash, err := auth.HashPassword(input.Password, p.bcryptCost)
	if err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(input.Metadata)
	if err != nil {
		return nil, err
	}

	identity := &domain.Identity{
		Email:        input.Email,
		PasswordHash: hash,
		Metadata:     input.Metadata,
	}

	if input.RequireVerification {
		token := uuid.NewString()
		const query = `
            INSERT INTO identities (email, password_hash, metadata, verification_token)
            VALUES ($1,$2,$3,$4)
            RETURNING id, created_at, updated_at`
		err = p.pool.QueryRow(ctx, query, input.Email, hash, metadata, token).
			Scan(&identity.ID, &identity.CreatedAt, &identity.UpdatedAt)
		if err == nil {
			p.sendVerificationEmail(input.Email, token)
		}
	} else {
		const query = `
            INSERT INTO identities (email, password_hash, metadata, verified_at)
            VALUES ($1,$2,$3,NOW())
            RETURNING id, verified_at, created_at, updated_at`
		err = p.pool.QueryRow(ctx, query, input.Email, hash, metadata).
			Scan(&identity.ID, &identity.VerifiedAt, &identity.CreatedAt, &identity.UpdatedAt)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.NewConflict("This email is already registered", nil)
		}
		return nil, err
	}
	return identity, nil
}

func (p *postgresProvider) DeleteIdentity(ctx context.Context, id string) error {
	cmd, err := p.pool.Exec(ctx, `DELETE FROM identities WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (p *postgresProvider) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM identities WHERE id=$1`, identityColumns)
	return p.fetchSingle(ctx, query, id)
}

func (p *postgresProvider) FindIDByEmail(ctx context.Context, email string) (string, error) {
	const query = `SELECT id FROM identities WHERE LOWER(email)=LOWER($1)`
	var id string
	err := p.pool.QueryRow(ctx, query, email).Scan(&id)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *postgresProvider) Authenticate(ctx context.Context, email, password string) (*domain.Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM identities WHERE LOWER(email)=LOWER($1)`, identityColumns)
	identity, err := p.fetchSingle(ctx, query, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthorized("Invalid login credentials")
		}
		return nil, err
	}
	if !identity.Verified() {
		return nil, apperrors.NewUnauthorized("Email not confirmed")
	}
	if err := auth.ComparePassword(identity.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("Invalid login credentials")
	}
	return identity, nil
}

func (p *postgresProvider) SendInvitation(ctx context.Context, email string, metadata domain.IdentityMetadata) (*domain.Identity, error) {
	payload, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	identity := &domain.Identity{Email: email, Metadata: metadata}

	const query = `
        INSERT INTO identities (email, metadata, invite_token)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	if err := p.pool.QueryRow(ctx, query, email, payload, token).
		Scan(&identity.ID, &identity.CreatedAt, &identity.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.NewConflict("This email is already registered", nil)
		}
		return nil, err
	}

	// Stand-in for the provider's invitation email dispatch.
	p.logger.Info("invitation email dispatched",
		zap.String("email", email),
		zap.String("invite_token", token))
	return identity, nil
}

func (p *postgresProvider) VerifyEmail(ctx context.Context, token string) (*domain.Identity, error) {
	const query = `
        UPDATE identities
        SET verified_at=NOW(), verification_token=NULL, updated_at=NOW()
        WHERE verification_token=$1 AND verified_at IS NULL
        RETURNING ` + identityColumns
	identity, err := p.scanRow(p.pool.QueryRow(ctx, query, token))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("verification token", nil)
		}
		return nil, err
	}
	return identity, nil
}

func (p *postgresProvider) AcceptInvite(ctx context.Context, token, password string) (*domain.Identity, error) {
	hash, err := auth.HashPassword(password, p.bcryptCost)
	if err != nil {
		return nil, err
	}

	const query = `
        UPDATE identities
        SET password_hash=$1, verified_at=NOW(), invite_token=NULL, updated_at=NOW()
        WHERE invite_token=$2
        RETURNING ` + identityColumns
	identity, err := p.scanRow(p.pool.QueryRow(ctx, query, hash, token))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("invitation", nil)
		}
		return nil, err
	}
	return identity, nil
}

func (p *postgresProvider) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Identity, error) {
	return p.scanRow(p.pool.QueryRow(ctx, query, args...))
}

func (p *postgresProvider) scanRow(row pgx.Row) (*domain.Identity, error) {
	var (
		identity domain.Identity
		metadata []byte
	)
	if err := row.Scan(
		&identity.ID,
		&identity.Email,
		&identity.PasswordHash,
		&identity.VerifiedAt,
		&metadata,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &identity.Metadata); err != nil {
			return nil, err
		}
	}
	return &identity, nil
}

func (p *postgresProvider) sendVerificationEmail(email, token string) {
	// Stand-in for the provider's confirmation email dispatch.
	p.logger.Info("verification email dispatched",
		zap.String("email", email),
		zap.String("verification_token", token))
}
