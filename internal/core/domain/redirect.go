package domain

import "strings"

// Route prefixes the redirect policy navigates between.
const (
	PathAdmin         = "/admin"
	PathDashboard     = "/dashboard"
	PathRoleSelection = "/role-selection"
)

// RedirectTarget decides where a principal with the given role should be
// sent from currentPath. An empty string means stay in place. The function
// is pure: no clock, no I/O.
//
// Rules: admin goes to /admin, every other role to /dashboard/{role}. No
// navigation happens when the user is already under their own target or on
// the role-selection page (prevents redirect loops on re-resolution).
func RedirectTarget(role, currentPath string) string {
	if role == "" {
		return ""
	}

	target := PathAdmin
	if role != RoleAdmin {
		target = PathDashboard + "/" + role
	}

	if strings.HasPrefix(currentPath, target) || strings.HasPrefix(currentPath, PathRoleSelection) {
		return ""
	}
	return target
}
