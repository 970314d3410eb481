package notifications

import (
	"net/url"
	"strings"

	"devtogether/internal/engine/access"
)

// NavigationResult is where clicking a notification takes the viewer.
// Path is always a non-empty absolute route.
type NavigationResult struct {
	Path      string `json:"path"`
	Tab       string `json:"tab,omitempty"`
	Highlight string `json:"highlight,omitempty"`
	External  bool   `json:"external,omitempty"`
}

const (
	dashboardPath = "/dashboard"
	adminPath     = "/admin"
)

func dashboard() NavigationResult { return NavigationResult{Path: dashboardPath} }

// Resolve maps n to a destination for a viewer with role. Missing payload
// fields and unknown roles fall back to the dashboard.
func Resolve(n *Notification, role access.Role, userID string) NavigationResult {
	if n == nil {
		return dashboard()
	}
	switch p := n.Payload().(type) {
	case ModerationPayload:
		return resolveModeration(p, role)
	case ApplicationPayload:
		return resolveApplication(p, role)
	case ProjectPayload:
		return resolveProject(p, role)
	case WorkspacePayload:
		return resolveWorkspace(p, role)
	case FeedbackPayload:
		return resolveFeedback(p, role)
	case AchievementPayload:
		return NavigationResult{Path: "/profile", Tab: "achievements"}
	case SystemPayload:
		return resolveSystem(p)
	}
	return dashboard()
}

func resolveModeration(p ModerationPayload, role access.Role) NavigationResult {
	if role != access.RoleAdmin {
		return dashboard()
	}
	res := NavigationResult{Path: adminPath}
	switch {
	// Organizations are reviewed before their projects, so they win a tie.
	case p.OrganizationID != "" || p.OrganizationName != "" || p.Subject == "organizations":
		res.Tab = "organizations"
	case p.ProjectID != "" || p.ProjectTitle != "" || p.Subject == "projects":
		res.Tab = "projects"
	}
	return res
}

func resolveApplication(p ApplicationPayload, role access.Role) NavigationResult {
	switch role {
	case access.RoleAdmin:
		return adminProjects(p.ProjectID)
	case access.RoleOrganization:
		return NavigationResult{Path: "/applications"}
	case access.RoleDeveloper:
		if p.ProjectID == "" {
			return NavigationResult{Path: "/my-applications"}
		}
		res := NavigationResult{Path: projectPath(p.ProjectID)}
		if p.ApplicationID != "" {
			res.Highlight = "application-" + p.ApplicationID
		}
		return res
	}
	return dashboard()
}

func resolveProject(p ProjectPayload, role access.Role) NavigationResult {
	switch role {
	case access.RoleAdmin:
		return adminProjects(p.ProjectID)
	case access.RoleOrganization:
		switch p.Status {
		case "approved", "open":
			if p.ProjectID != "" {
				return NavigationResult{Path: projectPath(p.ProjectID)}
			}
			return NavigationResult{Path: "/my-projects"}
		case "rejected", "cancelled":
			return NavigationResult{Path: "/my-projects"}
		}
		if p.ProjectID != "" {
			return NavigationResult{Path: projectPath(p.ProjectID)}
		}
		return NavigationResult{Path: "/organization/dashboard"}
	case access.RoleDeveloper:
		if p.ProjectID != "" {
			return NavigationResult{Path: workspacePath(p.ProjectID)}
		}
		return dashboard()
	}
	return dashboard()
}

func resolveWorkspace(p WorkspacePayload, role access.Role) NavigationResult {
	if role != access.RoleOrganization && role != access.RoleDeveloper {
		return dashboard()
	}
	if p.ProjectID == "" {
		return dashboard()
	}
	res := NavigationResult{Path: workspacePath(p.ProjectID)}
	if p.MessageID != "" {
		res.Tab = "chat"
	}
	return res
}

func resolveFeedback(p FeedbackPayload, role access.Role) NavigationResult {
	switch role {
	case access.RoleOrganization:
		if p.DeveloperID != "" {
			return NavigationResult{Path: "/profile/" + url.PathEscape(p.DeveloperID)}
		}
		return NavigationResult{Path: "/organization/dashboard"}
	case access.RoleDeveloper:
		res := NavigationResult{Path: "/profile"}
		if p.FeedbackID != "" {
			res.Highlight = "feedback-" + p.FeedbackID
		}
		return res
	}
	return dashboard()
}

// resolveSystem follows the producer's action URL when it is an absolute
// in-app path or a full http(s) URL. Anything else goes to the dashboard.
func resolveSystem(p SystemPayload) NavigationResult {
	if p.ActionURL == "" {
		return dashboard()
	}
	if strings.HasPrefix(p.ActionURL, "/") && !strings.HasPrefix(p.ActionURL, "//") {
		return NavigationResult{Path: p.ActionURL}
	}
	u, err := url.Parse(p.ActionURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return dashboard()
	}
	return NavigationResult{Path: p.ActionURL, External: true}
}

func adminProjects(projectID string) NavigationResult {
	res := NavigationResult{Path: adminPath}
	if projectID != "" {
		res.Tab = "projects"
	}
	return res
}

func projectPath(id string) string   { return "/projects/" + url.PathEscape(id) }
func workspacePath(id string) string { return "/workspace/" + url.PathEscape(id) }
