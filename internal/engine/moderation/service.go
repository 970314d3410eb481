package moderation

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"devtogether/internal/engine/access"
	"devtogether/internal/engine/notifications"
	"devtogether/internal/platform/audit"
	"devtogether/internal/platform/models"
)

var (
	ErrNotFound          = errors.New("profile not found")
	ErrNotOrganization   = errors.New("profile is not an organization")
	ErrInvalidTransition = errors.New("organization status transition not allowed")
	ErrSelfModeration    = errors.New("admins cannot moderate themselves")
)

type ProfileStore interface {
	GetByID(id string) (*models.Profile, error)
	ListByOrganizationStatus(status string, limit, offset int) ([]*models.Profile, error)
	ListAdminIDs() ([]string, error)
	UpdateOrganizationStatus(id, status string) error
	SetBlocked(id string, blocked bool) error
}

type Notifier interface {
	Notify(userID string, typ notifications.Type, title, message string, data notifications.Data) (*notifications.Notification, error)
}

type Service struct {
	profiles ProfileStore
	notifier Notifier
	audit    *audit.Logger
}

func NewService(profiles ProfileStore, notifier Notifier, auditLogger *audit.Logger) *Service {
	return &Service{profiles: profiles, notifier: notifier, audit: auditLogger}
}

// Organizations lists organizations in status, oldest first. Pending is the review queue.
func (s *Service) Organizations(status access.OrganizationStatus, limit, offset int) ([]*models.Profile, error) {
	return s.profiles.ListByOrganizationStatus(string(status), limit, offset)
}

// SetOrganizationStatus moves an organization through its review lifecycle
// and tells the organization about it.
func (s *Service) SetOrganizationStatus(r *http.Request, actorID, orgID string, to access.OrganizationStatus, reason string) (*models.Profile, error) {
	if actorID == orgID {
		return nil, ErrSelfModeration
	}
	p, err := s.load(orgID)
	if err != nil {
		return nil, err
	}
	if access.ParseRole(p.Role) != access.RoleOrganization {
		return nil, ErrNotOrganization
	}

	from := access.ParseOrganizationStatus(p.OrganizationStatus)
	if !from.Reviewed() {
		from = access.OrgPending
	}
	if !CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if err := s.profiles.UpdateOrganizationStatus(orgID, string(to)); err != nil {
		return nil, err
	}
	p.OrganizationStatus = string(to)

	s.audit.Log(r, actorID, audit.ActionOrganizationStatus, "profile", orgID, map[string]interface{}{
		"from":   string(from),
		"to":     string(to),
		"reason": reason,
	})
	s.notify(orgID, notifications.TypeStatusChange, "Organization "+string(to), statusMessage(to, reason), notifications.Data{
		"organizationId": orgID,
		"status":         string(to),
	})
	return p, nil
}

// SetBlocked applies or lifts the account-wide hard block.
func (s *Service) SetBlocked(r *http.Request, actorID, userID string, blocked bool, reason string) (*models.Profile, error) {
	if actorID == userID {
		return nil, ErrSelfModeration
	}
	p, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	if p.Blocked == blocked {
		return p, nil
	}
	if err := s.profiles.SetBlocked(userID, blocked); err != nil {
		return nil, err
	}
	p.Blocked = blocked

	action, title := audit.ActionUnblock, "Account restored"
	if blocked {
		action, title = audit.ActionBlock, "Account blocked"
	}
	s.audit.Log(r, actorID, action, "profile", userID, map[string]interface{}{"reason": reason})
	s.notify(userID, notifications.TypeStatusChange, title, reason, notifications.Data{"blocked": blocked})
	return p, nil
}

// OrganizationSubmitted asks every admin to review a newly registered organization.
func (s *Service) OrganizationSubmitted(org *models.Profile) {
	admins, err := s.profiles.ListAdminIDs()
	if err != nil {
		log.Error().Err(err).Str("organization_id", org.ID).Msg("failed to list admins for review request")
		return
	}
	for _, adminID := range admins {
		s.notify(adminID, notifications.TypeModeration, "Organization awaiting review", org.FullName+" registered and needs approval", notifications.Data{
			"type":             "organizations",
			"organizationId":   org.ID,
			"organizationName": org.FullName,
		})
	}
}

func (s *Service) load(id string) (*models.Profile, error) {
	p, err := s.profiles.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.DeletedAt != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// notify is best effort; a failed notification does not undo moderation.
func (s *Service) notify(userID string, typ notifications.Type, title, message string, data notifications.Data) {
	if _, err := s.notifier.Notify(userID, typ, title, message, data); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("type", string(typ)).Msg("failed to send moderation notification")
	}
}

func statusMessage(to access.OrganizationStatus, reason string) string {
	var msg string
	switch to {
	case access.OrgApproved:
		msg = "Your organization has been approved. You can now post projects."
	case access.OrgRejected:
		msg = "Your organization application was not approved."
	case access.OrgBlocked:
		msg = "Your organization has been blocked."
	}
	if reason != "" {
		msg += " Reason: " + reason
	}
	return msg
}
