package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"devtogether/internal/engine/access"
	"devtogether/internal/pkg/errors"
	"devtogether/internal/pkg/metrics"
	"devtogether/internal/platform/audit"
)

// RetryAfterSeconds is sent with 503 while a session is still loading.
const RetryAfterSeconds = "1"

// VerdictResponse is the body of a non-allow verdict.
type VerdictResponse struct {
	Kind     access.VerdictKind `json:"kind"`
	Redirect string             `json:"redirect,omitempty"`
	Reason   string             `json:"reason,omitempty"`
	ReturnTo string             `json:"return_to,omitempty"`
}

func NewVerdictResponse(v access.Verdict) VerdictResponse {
	return VerdictResponse{Kind: v.Kind, Redirect: v.Path, Reason: v.Reason, ReturnTo: v.ReturnTo}
}

// AccessMiddleware enforces the access policy on API routes. It must run
// after SessionMiddleware.
type AccessMiddleware struct {
	engine *access.Engine
	audit  *audit.Logger
}

func NewAccessMiddleware(engine *access.Engine, auditLogger *audit.Logger) *AccessMiddleware {
	return &AccessMiddleware{engine: engine, audit: auditLogger}
}

// Require guards a route with req.
func (m *AccessMiddleware) Require(req access.RouteRequirement) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			facts := FactsFrom(r.Context())
			v := m.engine.Evaluate(req, facts, r.URL.Path)
			if m.Enforce(w, r, facts, v) {
				next(w, r)
			}
		}
	}
}

// RequireAccount guards a route that any signed-in account may use, whatever
// its block or review state.
func (m *AccessMiddleware) RequireAccount() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			facts := FactsFrom(r.Context())
			if m.Enforce(w, r, facts, m.engine.EvaluateAccount(facts, r.URL.Path)) {
				next(w, r)
			}
		}
	}
}

// Public guards a route meant for visitors without a profile.
func (m *AccessMiddleware) Public(defaultRedirect string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			facts := FactsFrom(r.Context())
			if m.Enforce(w, r, facts, m.engine.EvaluatePublic(facts, defaultRedirect)) {
				next(w, r)
			}
		}
	}
}

// Enforce writes the response for a non-allow verdict and reports whether
// the request may proceed.
func (m *AccessMiddleware) Enforce(w http.ResponseWriter, r *http.Request, facts access.SessionFacts, v access.Verdict) bool {
	metrics.ObserveVerdict(string(v.Kind), v.Reason)

	switch v.Kind {
	case access.VerdictAllow:
		return true
	case access.VerdictLoading:
		w.Header().Set("Retry-After", RetryAfterSeconds)
		errors.WriteError(w, http.StatusServiceUnavailable, errors.ErrCodeUnavailable, "Session is still loading", NewVerdictResponse(v))
		return false
	}

	log.Info().
		Str("user_id", facts.UserID).
		Str("path", r.URL.Path).
		Str("redirect", v.Path).
		Str("reason", v.Reason).
		Msg("access denied")
	m.audit.Log(r, facts.UserID, audit.ActionAccessDenied, "route", r.URL.Path, map[string]interface{}{
		"redirect": v.Path,
		"reason":   v.Reason,
	})

	if v.Reason == access.ReasonUnauthenticated {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Authentication required", NewVerdictResponse(v))
		return false
	}
	errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Access denied", NewVerdictResponse(v))
	return false
}
