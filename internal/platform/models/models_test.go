package models

import (
	"testing"

	"devtogether/internal/engine/access"
)

func TestProfile_SessionFacts(t *testing.T) {
	deleted := int64(1700000000)

	tests := []struct {
		name    string
		profile *Profile
		want    access.SessionFacts
	}{
		{
			name:    "Nil profile",
			profile: nil,
			want:    access.SessionFacts{Authenticated: true},
		},
		{
			name:    "Deleted profile",
			profile: &Profile{ID: "u1", Role: "developer", DeletedAt: &deleted},
			want:    access.SessionFacts{Authenticated: true, UserID: "u1"},
		},
		{
			name:    "Organization",
			profile: &Profile{ID: "u1", Role: "organization", OrganizationStatus: "pending"},
			want:    access.SessionFacts{Authenticated: true, Role: access.RoleOrganization, OrganizationStatus: access.OrgPending, UserID: "u1"},
		},
		{
			name:    "Status ignored for developers",
			profile: &Profile{ID: "u1", Role: "developer", OrganizationStatus: "blocked"},
			want:    access.SessionFacts{Authenticated: true, Role: access.RoleDeveloper, UserID: "u1"},
		},
		{
			name:    "Legacy admin flag",
			profile: &Profile{ID: "u1", Role: "developer", IsAdmin: true, Blocked: true},
			want:    access.SessionFacts{Authenticated: true, Role: access.RoleDeveloper, Admin: true, Blocked: true, UserID: "u1"},
		},
		{
			name:    "Unknown role",
			profile: &Profile{ID: "u1", Role: "owner"},
			want:    access.SessionFacts{Authenticated: true, UserID: "u1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.SessionFacts(); got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
