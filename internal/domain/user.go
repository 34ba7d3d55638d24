package domain

import "time"

// Role is a caller's privilege level within its tenant.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User represents an end user. A user belongs to exactly one tenant and
// is created with RoleMember at signup.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	TenantSlug   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
