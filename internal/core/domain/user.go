package domain

import "time"

// Role is the authorization level assigned to a user account.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanActAs reports whether a holder of role r satisfies a requirement for
// the required role. superadmin satisfies admin requirements; there is no
// other implicit hierarchy.
func (r Role) CanActAs(required Role) bool {
	if r == required {
		return true
	}
	return r == RoleSuperAdmin && required == RoleAdmin
}

// User models an authenticated account. The password hash is never
// serialized to any external representation.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	Active        bool      `json:"active"`
	EmailVerified bool      `json:"email_verified"`
	LastActiveAt  time.Time `json:"last_active_at,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
