package access

import "strings"

type Role string

const (
	RoleDeveloper    Role = "developer"
	RoleOrganization Role = "organization"
	RoleAdmin        Role = "admin"
)

// ParseRole maps a stored role string onto the closed Role set.
// Anything unrecognised comes back as "" (no role), never as a privileged role.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleDeveloper:
		return RoleDeveloper
	case RoleOrganization:
		return RoleOrganization
	case RoleAdmin:
		return RoleAdmin
	}
	return ""
}

func (r Role) Valid() bool {
	return r == RoleDeveloper || r == RoleOrganization || r == RoleAdmin
}

type OrganizationStatus string

const (
	OrgPending  OrganizationStatus = "pending"
	OrgApproved OrganizationStatus = "approved"
	OrgRejected OrganizationStatus = "rejected"
	OrgBlocked  OrganizationStatus = "blocked"
)

func ParseOrganizationStatus(s string) OrganizationStatus {
	switch OrganizationStatus(strings.ToLower(strings.TrimSpace(s))) {
	case OrgPending:
		return OrgPending
	case OrgApproved:
		return OrgApproved
	case OrgRejected:
		return OrgRejected
	case OrgBlocked:
		return OrgBlocked
	}
	return ""
}

// Reviewed reports whether an admin has decided on the organization.
// Anything else, including an empty or unknown status, is still under review.
func (s OrganizationStatus) Reviewed() bool {
	return s == OrgApproved || s == OrgRejected || s == OrgBlocked
}

// IsAdmin folds the role enum and the legacy is_admin column into one predicate.
// Either signal is enough.
func IsAdmin(role Role, legacyFlag bool) bool {
	return role == RoleAdmin || legacyFlag
}
