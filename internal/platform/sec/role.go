// Copyright (c) 2026 Bookworm. All rights reserved.
// Author: dev@bookwormhq.dev

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access
	RoleAdmin UserRole = "admin"

	// Can manage the catalog, loans, and member accounts
	RoleLibrarian UserRole = "librarian"

	// Default role for registered library members
	RoleMember UserRole = "member"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// IsValid reports whether the role is one of the known role values.
func (r UserRole) IsValid() bool {
	return r.level() > 0
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-30) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 30
	case RoleLibrarian:
		return 20
	case RoleMember:
		return 10
	default:
		return 0
	}
}
