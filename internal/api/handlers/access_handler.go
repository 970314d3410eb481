package handlers

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"devtogether/internal/api/middleware"
	"devtogether/internal/engine/access"
	"devtogether/internal/pkg/errors"
	"devtogether/internal/pkg/metrics"
	"devtogether/internal/platform/auth"
)

// AccessHandler answers page-level access questions for the web client.
type AccessHandler struct {
	engine   *access.Engine
	routes   *access.RouteTable
	returnTo *auth.ReturnToStore
}

func NewAccessHandler(engine *access.Engine, routes *access.RouteTable, returnTo *auth.ReturnToStore) *AccessHandler {
	return &AccessHandler{engine: engine, routes: routes, returnTo: returnTo}
}

type SessionResponse struct {
	Facts      access.SessionFacts `json:"facts"`
	HasProfile bool                `json:"has_profile"`
}

func (h *AccessHandler) Session(w http.ResponseWriter, r *http.Request) {
	facts := middleware.FactsFrom(r.Context())
	errors.WriteJSON(w, http.StatusOK, SessionResponse{Facts: facts, HasProfile: facts.HasProfile()})
}

type AccessCheckResponse struct {
	Path    string         `json:"path"`
	Route   string         `json:"route"`
	Known   bool           `json:"known"`
	Verdict access.Verdict `json:"verdict"`
}

// Check evaluates ?path= for the current session. Sign-in redirects remember
// the requested page so login can return to it.
func (h *AccessHandler) Check(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if !strings.HasPrefix(path, "/") {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "path must be an absolute application path", nil)
		return
	}

	facts := middleware.FactsFrom(r.Context())
	route, known := h.routes.Match(path)
	v := h.routes.Check(h.engine, facts, path)
	metrics.ObserveVerdict(string(v.Kind), v.Reason)

	if v.Reason == access.ReasonUnauthenticated && v.ReturnTo != "" {
		if err := h.returnTo.Save(w, r, v.ReturnTo); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to save return path")
		}
	}

	errors.WriteJSON(w, http.StatusOK, AccessCheckResponse{
		Path:    path,
		Route:   route.Pattern,
		Known:   known,
		Verdict: v,
	})
}
