package service

import (
	"context"
	"time"

	"github.com/spec-kit/ats-service/internal/auth"
	"github.com/spec-kit/ats-service/internal/config"
	"github.com/spec-kit/ats-service/internal/domain"
	"github.com/spec-kit/ats-service/internal/identity"
)

// AuthService coordinates sign-in and invite/verification token flows.
type AuthService struct {
	identities identity.Provider
	tokenMgr   *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, identities identity.Provider) *AuthService {
	return &AuthService{
		identities: identities,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
	}
}

// SignIn authenticates an identity and issues an access token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.Identity, string, time.Time, error) {
	ident, err := s.identities.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	token, exp, err := s.tokenMgr.GenerateToken(ident.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return ident, token, exp, nil
}

// VerifyEmail consumes a verification token and issues an access token so the
// caller lands signed in.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*domain.Identity, string, time.Time, error) {
	ident, err := s.identities.VerifyEmail(ctx, token)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	accessToken, exp, err := s.tokenMgr.GenerateToken(ident.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return ident, accessToken, exp, nil
}

// AcceptInvite consumes a one-time invite token, sets the password and signs
// the new member in.
func (s *AuthService) AcceptInvite(ctx context.Context, token, password string) (*domain.Identity, string, time.Time, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return nil, "", time.Time{}, err
	}
	ident, err := s.identities.AcceptInvite(ctx, token, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	accessToken, exp, err := s.tokenMgr.GenerateToken(ident.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return ident, accessToken, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
