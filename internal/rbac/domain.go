package rbac

// Role is one of the two fixed actor categories.
type Role string

// Known roles.
const (
	RoleUser    Role = "user"
	RoleOfficer Role = "officer"
)

// Permission is a named capability an actor may hold.
type Permission string

// Known permissions.
const (
	PermViewOwnProfile   Permission = "view:own-profile"
	PermEditOwnProfile   Permission = "edit:own-profile"
	PermViewAllProfiles  Permission = "view:all-profiles"
	PermAccessReviewPage Permission = "access:review-page"
	PermViewAllReviews   Permission = "view:all-reviews"
	PermViewOwnReview    Permission = "view:own-review"
)

// rolePermissions maps each role to its fixed permission set. The table is
// process-wide configuration and is never mutated after package init.
var rolePermissions = map[Role]map[Permission]struct{}{
	RoleUser: {
		PermViewOwnProfile: {},
		PermEditOwnProfile: {},
		PermViewOwnReview:  {},
	},
	RoleOfficer: {
		PermViewOwnProfile:   {},
		PermEditOwnProfile:   {},
		PermViewAllProfiles:  {},
		PermAccessReviewPage: {},
		PermViewAllReviews:   {},
	},
}

// ParseRole maps an external directory role to an application role.
// Elevated directory roles (admin, moderator) act as officers; everything
// else, including the empty string, is a regular user.
func ParseRole(external string) Role {
	switch external {
	case "admin", "moderator":
		return RoleOfficer
	default:
		return RoleUser
	}
}

// Permissions returns the permission set held by role, in no particular
// order. Unknown roles yield nil.
func Permissions(role Role) []Permission {
	set, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	perms := make([]Permission, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	return perms
}
