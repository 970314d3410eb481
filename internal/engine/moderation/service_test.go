package moderation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devtogether/internal/engine/access"
	"devtogether/internal/engine/notifications"
	"devtogether/internal/platform/models"
)

type memoryProfiles struct {
	byID   map[string]*models.Profile
	admins []string
	err    error
}

func (m *memoryProfiles) GetByID(id string) (*models.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memoryProfiles) ListByOrganizationStatus(status string, limit, offset int) ([]*models.Profile, error) {
	var out []*models.Profile
	for _, p := range m.byID {
		if p.Role == "organization" && p.OrganizationStatus == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryProfiles) ListAdminIDs() ([]string, error) { return m.admins, m.err }

func (m *memoryProfiles) UpdateOrganizationStatus(id, status string) error {
	m.byID[id].OrganizationStatus = status
	return nil
}

func (m *memoryProfiles) SetBlocked(id string, blocked bool) error {
	m.byID[id].Blocked = blocked
	return nil
}

type sent struct {
	userID string
	typ    notifications.Type
	data   notifications.Data
}

type recordingNotifier struct {
	sent []sent
	err  error
}

func (r *recordingNotifier) Notify(userID string, typ notifications.Type, title, message string, data notifications.Data) (*notifications.Notification, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.sent = append(r.sent, sent{userID, typ, data})
	return &notifications.Notification{UserID: userID, Type: typ, Data: data}, nil
}

func newFixture() (*Service, *memoryProfiles, *recordingNotifier) {
	profiles := &memoryProfiles{
		byID: map[string]*models.Profile{
			"usr_admin": {ID: "usr_admin", Role: "admin"},
			"usr_org":   {ID: "usr_org", Role: "organization", OrganizationStatus: "pending", FullName: "Code for Good"},
			"usr_dev":   {ID: "usr_dev", Role: "developer"},
		},
		admins: []string{"usr_admin", "usr_legacy"},
	}
	notifier := &recordingNotifier{}
	return NewService(profiles, notifier, nil), profiles, notifier
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to access.OrganizationStatus
		want     bool
	}{
		{access.OrgPending, access.OrgApproved, true},
		{access.OrgPending, access.OrgRejected, true},
		{access.OrgPending, access.OrgBlocked, true},
		{access.OrgApproved, access.OrgBlocked, true},
		{access.OrgApproved, access.OrgPending, false},
		{access.OrgRejected, access.OrgApproved, false},
		{access.OrgBlocked, access.OrgApproved, false},
		{access.OrgPending, access.OrgPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestService_SetOrganizationStatus(t *testing.T) {
	svc, profiles, notifier := newFixture()

	p, err := svc.SetOrganizationStatus(nil, "usr_admin", "usr_org", access.OrgApproved, "")
	require.NoError(t, err)
	assert.Equal(t, "approved", p.OrganizationStatus)
	assert.Equal(t, "approved", profiles.byID["usr_org"].OrganizationStatus)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "usr_org", notifier.sent[0].userID)
	assert.Equal(t, notifications.TypeStatusChange, notifier.sent[0].typ)
	assert.Equal(t, "approved", notifier.sent[0].data["status"])

	// the approved organization now passes the approval rules
	facts := profiles.byID["usr_org"].SessionFacts()
	assert.True(t, access.NewEngine().Evaluate(access.Protected(access.RoleOrganization), facts, "/my-projects").Allowed())
}

func TestService_SetOrganizationStatus_UnknownStatusReviewable(t *testing.T) {
	svc, profiles, _ := newFixture()
	profiles.byID["usr_org"].OrganizationStatus = ""

	facts := profiles.byID["usr_org"].SessionFacts()
	v := access.NewEngine().Evaluate(access.Protected(access.RoleOrganization), facts, "/projects/create")
	assert.Equal(t, access.Redirect(access.PendingApprovalPath, access.ReasonPendingApproval), v)

	p, err := svc.SetOrganizationStatus(nil, "usr_admin", "usr_org", access.OrgApproved, "")
	require.NoError(t, err)
	assert.Equal(t, "approved", p.OrganizationStatus)
}

func TestService_SetOrganizationStatus_Errors(t *testing.T) {
	svc, profiles, notifier := newFixture()
	profiles.byID["usr_org"].OrganizationStatus = "rejected"

	_, err := svc.SetOrganizationStatus(nil, "usr_admin", "usr_org", access.OrgApproved, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.SetOrganizationStatus(nil, "usr_admin", "usr_dev", access.OrgApproved, "")
	assert.ErrorIs(t, err, ErrNotOrganization)

	_, err = svc.SetOrganizationStatus(nil, "usr_admin", "usr_missing", access.OrgApproved, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SetOrganizationStatus(nil, "usr_org", "usr_org", access.OrgApproved, "")
	assert.ErrorIs(t, err, ErrSelfModeration)

	assert.Empty(t, notifier.sent)
}

func TestService_SetBlocked(t *testing.T) {
	svc, profiles, notifier := newFixture()

	p, err := svc.SetBlocked(nil, "usr_admin", "usr_dev", true, "spam")
	require.NoError(t, err)
	assert.True(t, p.Blocked)
	assert.True(t, profiles.byID["usr_dev"].Blocked)
	require.Len(t, notifier.sent, 1)

	// repeating the same state is a no-op
	_, err = svc.SetBlocked(nil, "usr_admin", "usr_dev", true, "spam")
	require.NoError(t, err)
	assert.Len(t, notifier.sent, 1)

	v := access.NewEngine().Evaluate(access.Protected(), profiles.byID["usr_dev"].SessionFacts(), "/dashboard")
	assert.Equal(t, access.Redirect(access.BlockedPath, access.ReasonBlocked), v)

	_, err = svc.SetBlocked(nil, "usr_admin", "usr_dev", false, "")
	require.NoError(t, err)
	assert.False(t, profiles.byID["usr_dev"].Blocked)
}

func TestService_NotificationFailureDoesNotUndo(t *testing.T) {
	svc, profiles, notifier := newFixture()
	notifier.err = errors.New("disk full")

	_, err := svc.SetOrganizationStatus(nil, "usr_admin", "usr_org", access.OrgRejected, "incomplete details")
	require.NoError(t, err)
	assert.Equal(t, "rejected", profiles.byID["usr_org"].OrganizationStatus)
}

func TestService_OrganizationSubmitted(t *testing.T) {
	svc, profiles, notifier := newFixture()

	svc.OrganizationSubmitted(profiles.byID["usr_org"])

	require.Len(t, notifier.sent, 2)
	for _, s := range notifier.sent {
		assert.Equal(t, notifications.TypeModeration, s.typ)
		n := &notifications.Notification{Type: s.typ, Data: s.data}
		assert.Equal(t, notifications.NavigationResult{Path: "/admin", Tab: "organizations"}, notifications.Resolve(n, access.RoleAdmin, s.userID))
	}
}

func TestService_Organizations(t *testing.T) {
	svc, _, _ := newFixture()

	list, err := svc.Organizations(access.OrgPending, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "usr_org", list[0].ID)
}
