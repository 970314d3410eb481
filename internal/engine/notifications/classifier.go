package notifications

import "strings"

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Context is the display metadata for a notification badge or list item.
type Context struct {
	Priority   Priority `json:"priority"`
	Category   string   `json:"category"`
	ActionText string   `json:"action_text"`
}

var contexts = map[Type]Context{
	TypeModeration:   {PriorityHigh, "Admin Action Required", "Review in Admin Dashboard"},
	TypePromotion:    {PriorityHigh, "Role Promotion", "View Workspace"},
	TypeApplication:  {PriorityHigh, "Application Update", "View Application"},
	TypeStatusChange: {PriorityHigh, "Status Update", "View Project"},
	TypeProject:      {PriorityMedium, "Project Update", "View Project"},
	TypeTeam:         {PriorityMedium, "Team Update", "Open Workspace"},
	TypeChat:         {PriorityMedium, "New Message", "Open Chat"},
	TypeFeedback:     {PriorityMedium, "Feedback", "View Feedback"},
	TypeAchievement:  {PriorityLow, "Achievement", "View Achievements"},
	TypeSystem:       {PriorityLow, "System", "View Details"},
}

var defaultContext = Context{PriorityLow, "Notification", "View Details"}

// Classify returns the display context for n. It ignores the viewer's role.
func Classify(n *Notification) Context {
	if n == nil {
		return defaultContext
	}
	c, ok := contexts[n.Type]
	if !ok {
		return defaultContext
	}
	if p, ok := n.Payload().(ModerationPayload); ok {
		if override := parsePriority(p.Priority); override != "" {
			c.Priority = override
		}
	}
	return c
}

func parsePriority(s string) Priority {
	switch Priority(strings.ToLower(s)) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityMedium:
		return PriorityMedium
	case PriorityLow:
		return PriorityLow
	}
	return ""
}
