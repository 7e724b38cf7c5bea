package domain

import "time"

// IdentityMetadata carries sign-up and invitation context on the identity
// record so deferred provisioning can resume without extra state.
type IdentityMetadata struct {
	CompanyName      string `json:"company_name,omitempty"`
	PlanID           string `json:"plan_id,omitempty"`
	InvitedBy        string `json:"invited_by,omitempty"`
	InvitedToCompany string `json:"invited_to_company,omitempty"`
	Role             string `json:"role,omitempty"`
}

// Identity is a credentialed account held by the identity provider.
type Identity struct {
	ID           string
	Email        string
	PasswordHash string
	VerifiedAt   *time.Time
	Metadata     IdentityMetadata
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Verified reports whether the identity confirmed its email.
func (i *Identity) Verified() bool {
	return i.VerifiedAt != nil
}
