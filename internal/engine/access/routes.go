package access

import "strings"

// Route is one page of the application and what it takes to see it.
// PublicOnly pages (login, register) are hidden from signed-in users.
type Route struct {
	Pattern     string
	Requirement RouteRequirement
	PublicOnly  bool
}

type RouteTable struct {
	routes []compiledRoute
}

type compiledRoute struct {
	Route
	segments []string
}

// DefaultRoutes is the page map of the application.
var DefaultRoutes = []Route{
	{Pattern: "/", Requirement: RouteRequirement{}},
	{Pattern: "/auth/login", PublicOnly: true},
	{Pattern: "/auth/register", PublicOnly: true},
	{Pattern: "/auth/callback", Requirement: RouteRequirement{}},
	{Pattern: "/dashboard", Requirement: Protected()},
	{Pattern: "/notifications", Requirement: Protected()},
	{Pattern: "/profile", Requirement: Protected()},
	{Pattern: "/profile/:id", Requirement: Protected()},
	{Pattern: "/projects", Requirement: Protected()},
	{Pattern: "/projects/create", Requirement: Protected(RoleOrganization)},
	{Pattern: "/projects/:id", Requirement: Protected()},
	{Pattern: "/projects/:id/edit", Requirement: Protected(RoleOrganization)},
	{Pattern: "/my-projects", Requirement: Protected(RoleOrganization)},
	{Pattern: "/applications", Requirement: Protected(RoleOrganization)},
	{Pattern: "/my-applications", Requirement: Protected(RoleDeveloper)},
	{Pattern: "/organization/dashboard", Requirement: Protected(RoleOrganization)},
	{Pattern: "/workspace/:projectId", Requirement: Protected(RoleDeveloper, RoleOrganization)},
	{Pattern: "/admin", Requirement: Protected(RoleAdmin)},
	{Pattern: PendingApprovalPath, Requirement: Protected()},
	{Pattern: RejectedOrganizationPath, Requirement: Protected()},
	{Pattern: BlockedPath, Requirement: Protected()},
}

func NewRouteTable(routes []Route) *RouteTable {
	t := &RouteTable{routes: make([]compiledRoute, 0, len(routes))}
	for _, r := range routes {
		t.routes = append(t.routes, compiledRoute{Route: r, segments: splitPath(r.Pattern)})
	}
	return t
}

// Match finds the route for path. Static segments win over :params, so
// /projects/create never resolves to /projects/:id.
// Unknown paths get a sign-in requirement rather than none.
func (t *RouteTable) Match(path string) (Route, bool) {
	segs := splitPath(path)
	best, bestScore := -1, -1
	for i, r := range t.routes {
		score, ok := matchSegments(r.segments, segs)
		if ok && score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return Route{Pattern: path, Requirement: Protected()}, false
	}
	return t.routes[best].Route, true
}

// Check resolves path in the table and evaluates it for facts.
func (t *RouteTable) Check(e *Engine, facts SessionFacts, path string) Verdict {
	route, _ := t.Match(path)
	if route.PublicOnly {
		return e.EvaluatePublic(facts, DashboardPath)
	}
	v := e.Evaluate(route.Requirement, facts, "/"+strings.Join(splitPath(path), "/"))
	if v.ReturnTo != "" {
		v.ReturnTo = path
	}
	return v
}

func matchSegments(pattern, path []string) (int, bool) {
	if len(pattern) != len(path) {
		return 0, false
	}
	score := 0
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if path[i] == "" {
				return 0, false
			}
			continue
		}
		if p != path[i] {
			return 0, false
		}
		score++
	}
	return score, true
}

func splitPath(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
