package access

// SessionFacts is what the session provider knows about the caller for one request.
type SessionFacts struct {
	Authenticated      bool               `json:"authenticated"`
	Loading            bool               `json:"loading"`
	Role               Role               `json:"role,omitempty"`
	OrganizationStatus OrganizationStatus `json:"organization_status,omitempty"`
	Blocked            bool               `json:"blocked"`
	Admin              bool               `json:"admin"` // IsAdmin(role, legacy flag)
	UserID             string             `json:"user_id,omitempty"`
}

// HasProfile reports whether the profile behind the session has been loaded.
func (f SessionFacts) HasProfile() bool {
	return f.Authenticated && f.Role != ""
}

// HardBlocked covers both the account-level flag and a blocked organization.
func (f SessionFacts) HardBlocked() bool {
	if f.Blocked {
		return true
	}
	return f.Role == RoleOrganization && f.OrganizationStatus == OrgBlocked
}

type RouteRequirement struct {
	RequireAuth bool   `json:"require_auth"`
	Roles       []Role `json:"required_roles,omitempty"`
}

// Protected is the usual requirement: signed in, optionally with one of roles.
func Protected(roles ...Role) RouteRequirement {
	return RouteRequirement{RequireAuth: true, Roles: roles}
}

func (r RouteRequirement) allows(role Role) bool {
	for _, want := range r.Roles {
		if want == role {
			return true
		}
	}
	return false
}

type VerdictKind string

const (
	VerdictLoading  VerdictKind = "loading"
	VerdictAllow    VerdictKind = "allow"
	VerdictRedirect VerdictKind = "redirect"
)

// Redirect reasons.
const (
	ReasonUnauthenticated      = "unauthenticated"
	ReasonBlocked              = "blocked"
	ReasonPendingApproval      = "organization_pending"
	ReasonRejectedOrganization = "organization_rejected"
	ReasonInsufficientRole     = "insufficient_role"
	ReasonAlreadySignedIn      = "already_signed_in"
)

type Verdict struct {
	Kind     VerdictKind `json:"kind"`
	Path     string      `json:"path,omitempty"`
	Reason   string      `json:"reason,omitempty"`
	ReturnTo string      `json:"return_to,omitempty"`
}

func Loading() Verdict { return Verdict{Kind: VerdictLoading} }

func Allow() Verdict { return Verdict{Kind: VerdictAllow} }

func Redirect(path, reason string) Verdict {
	return Verdict{Kind: VerdictRedirect, Path: path, Reason: reason}
}

func (v Verdict) Allowed() bool { return v.Kind == VerdictAllow }
