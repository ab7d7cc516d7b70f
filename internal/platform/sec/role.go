// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access, including book and chapter deletion
	RoleAdmin UserRole = "admin"

	// Can author chapters, save drafts and publish them
	RoleEditor UserRole = "editor"

	// Default role; read access plus personal drafts
	RoleMember UserRole = "member"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	return r.level() > 0
}

func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 30
	case RoleEditor:
		return 20
	case RoleMember:
		return 10
	default:
		return 0
	}
}
