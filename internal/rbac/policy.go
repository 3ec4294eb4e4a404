package rbac

// HasPermission reports whether role holds the given permission. Roles
// absent from the table, including the empty role, hold nothing.
func HasPermission(role Role, perm Permission) bool {
	set, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}

// CanAccessProfile decides whether the current user may view the profile
// owned by targetUserID. Officers holding view:all-profiles may view any
// profile; everyone else is limited to their own. IDs are compared as
// strings with no normalization; callers convert numeric ids beforehand.
func CanAccessProfile(currentUserID string, currentUserRole Role, targetUserID string) bool {
	if currentUserID == "" || currentUserRole == "" {
		return false
	}
	if HasPermission(currentUserRole, PermViewAllProfiles) {
		return true
	}
	return currentUserID == targetUserID
}

// CanEditProfile decides whether the current user may mutate the profile
// owned by targetUserID. Only the owner may edit, and only when their role
// holds edit:own-profile. Officers can view all profiles but edit only
// their own; that asymmetry is intended policy.
func CanEditProfile(currentUserID string, currentUserRole Role, targetUserID string) bool {
	if currentUserID == "" || currentUserRole == "" {
		return false
	}
	return currentUserID == targetUserID && HasPermission(currentUserRole, PermEditOwnProfile)
}
