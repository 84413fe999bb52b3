package domain

import "time"

// Role enumerates operator privileges.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleTenantAdmin Role = "tenant_admin"
	RoleUser        Role = "user"
)

// Session is the server-side record behind an issued access token.
type Session struct {
	ID         string
	OperatorID string
	Role       Role
	ExpiresAt  time.Time
	IssuedAt   time.Time
}
