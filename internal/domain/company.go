package domain

import "time"

// Company is a tenant. All jobs, candidates and applications hang off one.
type Company struct {
	ID        string
	Name      string
	PlanID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MemberRole enumerates what a member may do inside a company.
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

// Valid reports whether the role is one of the known values.
func (r MemberRole) Valid() bool {
	return r == MemberRoleAdmin || r == MemberRoleMember
}

// Membership grants an identity access to a company with a role.
type Membership struct {
	ID        string
	CompanyID string
	UserID    string
	Role      MemberRole
	CreatedAt time.Time
}
