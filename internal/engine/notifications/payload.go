package notifications

import (
	"fmt"
	"strconv"
	"strings"
)

// Payload is the typed view of Notification.Data. Each notification type
// decodes to exactly one payload struct; empty fields mean "absent".
type Payload interface {
	payloadType() Type
}

type ModerationPayload struct {
	OrganizationID   string
	OrganizationName string
	ProjectID        string
	ProjectTitle     string
	Subject          string // data.type: "organizations" | "projects"
	Priority         string
}

type ApplicationPayload struct {
	ProjectID     string
	ApplicationID string
	Status        string
}

// ProjectPayload is carried by both project and status_change notifications.
type ProjectPayload struct {
	Kind      Type
	ProjectID string
	Status    string
}

// WorkspacePayload is carried by team, chat and promotion notifications.
type WorkspacePayload struct {
	Kind      Type
	ProjectID string
	MessageID string
}

type FeedbackPayload struct {
	DeveloperID string
	FeedbackID  string
	ProjectID   string
}

type AchievementPayload struct {
	AchievementID string
}

type SystemPayload struct {
	ActionURL string
}

// UnknownPayload is what an unrecognised type decodes to.
type UnknownPayload struct {
	Kind Type
}

func (ModerationPayload) payloadType() Type { return TypeModeration }
func (ApplicationPayload) payloadType() Type { return TypeApplication }
func (p ProjectPayload) payloadType() Type { return p.Kind }
func (p WorkspacePayload) payloadType() Type { return p.Kind }
func (FeedbackPayload) payloadType() Type { return TypeFeedback }
func (AchievementPayload) payloadType() Type { return TypeAchievement }
func (SystemPayload) payloadType() Type { return TypeSystem }
func (p UnknownPayload) payloadType() Type { return p.Kind }

// Payload decodes n.Data according to n.Type.
func (n *Notification) Payload() Payload {
	d := n.Data
	switch n.Type {
	case TypeModeration:
		return ModerationPayload{
			OrganizationID:   d.Field("organizationId"),
			OrganizationName: d.Field("organizationName"),
			ProjectID:        d.Field("projectId"),
			ProjectTitle:     d.Field("projectTitle"),
			Subject:          d.Field("type"),
			Priority:         d.Field("priority"),
		}
	case TypeApplication:
		return ApplicationPayload{
			ProjectID:     d.Field("projectId"),
			ApplicationID: d.Field("applicationId"),
			Status:        d.Field("status"),
		}
	case TypeProject, TypeStatusChange:
		return ProjectPayload{
			Kind:      n.Type,
			ProjectID: d.Field("projectId"),
			Status:    strings.ToLower(d.Field("status")),
		}
	case TypeTeam, TypeChat, TypePromotion:
		return WorkspacePayload{
			Kind:      n.Type,
			ProjectID: d.Field("projectId"),
			MessageID: d.Field("messageId"),
		}
	case TypeFeedback:
		return FeedbackPayload{
			DeveloperID: d.Field("developerId"),
			FeedbackID:  d.Field("feedbackId"),
			ProjectID:   d.Field("projectId"),
		}
	case TypeAchievement:
		return AchievementPayload{AchievementID: d.Field("achievementId")}
	case TypeSystem:
		return SystemPayload{ActionURL: d.Field("actionUrl")}
	}
	return UnknownPayload{Kind: n.Type}
}

// Field reads key as a trimmed string. Numbers are formatted, anything else
// (maps, slices, bools, nil) reads as absent.
func (d Data) Field(key string) string {
	if d == nil {
		return ""
	}
	switch v := d[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	}
	return ""
}
