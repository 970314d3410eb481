package access

import "strings"

const (
	LoginPath                = "/auth/login"
	DashboardPath            = "/dashboard"
	PendingApprovalPath      = "/pending-approval"
	RejectedOrganizationPath = "/rejected-organization"
	BlockedPath              = "/blocked"
)

type input struct {
	req   RouteRequirement
	facts SessionFacts
	path  string
}

// rule returns ok=true when it decides the verdict. Rules run top to bottom.
type rule struct {
	name  string
	match func(in input) (Verdict, bool)
}

var defaultRules = []rule{
	{"loading", func(in input) (Verdict, bool) {
		if in.facts.Loading {
			return Loading(), true
		}
		return Verdict{}, false
	}},
	{"authentication", func(in input) (Verdict, bool) {
		if in.req.RequireAuth && !in.facts.Authenticated {
			v := Redirect(LoginPath, ReasonUnauthenticated)
			v.ReturnTo = in.path
			return v, true
		}
		return Verdict{}, false
	}},
	// Hard block beats the organization lifecycle gates so a pending or
	// rejected organization that is also blocked always lands on /blocked.
	{"hard_block", func(in input) (Verdict, bool) {
		if !in.facts.HardBlocked() {
			return Verdict{}, false
		}
		if in.path == BlockedPath {
			return Allow(), true
		}
		return Redirect(BlockedPath, ReasonBlocked), true
	}},
	// An organization without a recognised decision is held as pending.
	{"organization_pending", func(in input) (Verdict, bool) {
		if !isOrganization(in.facts) || in.facts.OrganizationStatus.Reviewed() {
			return Verdict{}, false
		}
		if isAuthPath(in.path) || in.path == PendingApprovalPath {
			return Verdict{}, false
		}
		return Redirect(PendingApprovalPath, ReasonPendingApproval), true
	}},
	{"organization_rejected", func(in input) (Verdict, bool) {
		if !isOrganization(in.facts) || in.facts.OrganizationStatus != OrgRejected {
			return Verdict{}, false
		}
		if isAuthPath(in.path) || in.path == RejectedOrganizationPath {
			return Verdict{}, false
		}
		return Redirect(RejectedOrganizationPath, ReasonRejectedOrganization), true
	}},
	{"required_role", func(in input) (Verdict, bool) {
		if len(in.req.Roles) == 0 || hasRole(in.req, in.facts) {
			return Verdict{}, false
		}
		return Redirect(DashboardPath, ReasonInsufficientRole), true
	}},
}

// Engine evaluates route requirements against session facts.
// The zero value is not usable; call NewEngine.
type Engine struct {
	rules []rule
}

func NewEngine() *Engine {
	return &Engine{rules: defaultRules}
}

// Evaluate returns the verdict for showing currentPath, guarded by req, to the session in facts.
func (e *Engine) Evaluate(req RouteRequirement, facts SessionFacts, currentPath string) Verdict {
	in := input{req: req, facts: facts, path: currentPath}
	for _, r := range e.rules {
		if v, ok := r.match(in); ok {
			return v
		}
	}
	return Allow()
}

// EvaluateAccount applies only the loading and authentication rules. It guards
// what a gated account still needs to reach, such as its own notifications.
func (e *Engine) EvaluateAccount(facts SessionFacts, currentPath string) Verdict {
	in := input{req: Protected(), facts: facts, path: currentPath}
	for _, r := range e.rules {
		if !accountRules[r.name] {
			continue
		}
		if v, ok := r.match(in); ok {
			return v
		}
	}
	return Allow()
}

var accountRules = map[string]bool{"loading": true, "authentication": true}

// EvaluatePublic guards pages that signed-in users should not see (login, register).
func (e *Engine) EvaluatePublic(facts SessionFacts, defaultRedirect string) Verdict {
	if facts.Loading {
		return Loading()
	}
	if facts.HasProfile() {
		if defaultRedirect == "" {
			defaultRedirect = DashboardPath
		}
		return Redirect(defaultRedirect, ReasonAlreadySignedIn)
	}
	return Allow()
}

// RuleNames lists the rules in evaluation order.
func (e *Engine) RuleNames() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.name
	}
	return names
}

func hasRole(req RouteRequirement, facts SessionFacts) bool {
	if !facts.Authenticated {
		return false
	}
	if req.allows(facts.Role) {
		return true
	}
	if facts.Role == RoleAdmin && req.allows(RoleDeveloper) {
		return true
	}
	return facts.Admin && req.allows(RoleAdmin)
}

func isOrganization(f SessionFacts) bool {
	return f.HasProfile() && f.Role == RoleOrganization
}

func isAuthPath(path string) bool {
	return path == "/auth" || strings.HasPrefix(path, "/auth/")
}
