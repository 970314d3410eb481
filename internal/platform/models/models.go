package models

import "devtogether/internal/engine/access"

type Profile struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	PasswordHash       string `json:"-"`
	FullName           string `json:"full_name"`
	Role               string `json:"role"`                          // developer, organization, admin
	OrganizationStatus string `json:"organization_status,omitempty"` // pending, approved, rejected, blocked
	Blocked            bool   `json:"blocked"`
	IsAdmin            bool   `json:"is_admin"` // legacy flag predating the admin role
	CreatedAt          int64  `json:"created_at"`
	UpdatedAt          int64  `json:"updated_at"`
	DeletedAt          *int64 `json:"deleted_at,omitempty"`
}

// SessionFacts derives the access facts for a signed-in owner of p.
// A nil or deleted profile yields an authenticated session with no role.
func (p *Profile) SessionFacts() access.SessionFacts {
	if p == nil {
		return access.SessionFacts{Authenticated: true}
	}
	if p.DeletedAt != nil {
		return access.SessionFacts{Authenticated: true, UserID: p.ID}
	}

	role := access.ParseRole(p.Role)
	facts := access.SessionFacts{
		Authenticated: true,
		Role:          role,
		Blocked:       p.Blocked,
		Admin:         access.IsAdmin(role, p.IsAdmin),
		UserID:        p.ID,
	}
	if role == access.RoleOrganization {
		facts.OrganizationStatus = access.ParseOrganizationStatus(p.OrganizationStatus)
	}
	return facts
}
