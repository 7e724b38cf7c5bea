package dto

import "time"

// SignUpRequest payload.
type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"company_name"`
	PlanID      string `json:"plan_id"`
}

// SignInRequest payload.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyEmailRequest payload.
type VerifyEmailRequest struct {
	Token string `json:"token"`
}

// AcceptInviteRequest payload.
type AcceptInviteRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// IdentityResponse describes the authenticated account.
type IdentityResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

// SessionResponse carries an access token plus account info.
type SessionResponse struct {
	AccessToken string           `json:"access_token"`
	ExpiresAt   time.Time        `json:"expires_at"`
	Identity    IdentityResponse `json:"identity"`
}

// SignUpResponse reports the outcome of registration. When email
// verification is pending no company exists yet.
type SignUpResponse struct {
	Identity            IdentityResponse `json:"identity"`
	PendingVerification bool             `json:"pending_verification"`
	Company             *CompanyResponse `json:"company,omitempty"`
}

// BootstrapResponse reports the caller's companies after deferred setup.
type BootstrapResponse struct {
	Identity  IdentityResponse `json:"identity"`
	Companies []CompanySummary `json:"companies"`
}
