package domain

import "time"

// Role is the closed set of privileges a user can hold. Entitlement is the
// existence of a grant row, never a flag on the user.
type Role string

const (
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role. Grants are only ever written for
// valid roles, so an unknown role read back from storage is corruption.
func (r Role) Valid() bool {
	return r == RoleAdmin
}

func (r Role) String() string { return string(r) }

// RoleGrant is a persisted fact that a user holds a role.
type RoleGrant struct {
	ID        string
	UserID    string
	Role      Role
	CreatedAt time.Time
}
