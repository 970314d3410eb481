package handlers

import (
	"encoding/json"
	stdErrors "errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"devtogether/internal/api/middleware"
	"devtogether/internal/engine/access"
	"devtogether/internal/engine/moderation"
	"devtogether/internal/pkg/errors"
	"devtogether/internal/platform/models"
)

type ModerationHandler struct {
	service *moderation.Service
}

func NewModerationHandler(service *moderation.Service) *ModerationHandler {
	return &ModerationHandler{service: service}
}

// ListOrganizations returns organizations in ?status= (pending by default), oldest first.
func (h *ModerationHandler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r, 50)

	status := access.OrgPending
	if raw := r.URL.Query().Get("status"); raw != "" {
		if status = access.ParseOrganizationStatus(raw); status == "" {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown organization status", nil)
			return
		}
	}

	profiles, err := h.service.Organizations(status, limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list pending organizations")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list organizations", nil)
		return
	}
	if profiles == nil {
		profiles = []*models.Profile{}
	}
	errors.WriteJSON(w, http.StatusOK, profiles)
}

type OrganizationStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h *ModerationHandler) SetOrganizationStatus(w http.ResponseWriter, r *http.Request) {
	var req OrganizationStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	status := access.ParseOrganizationStatus(req.Status)
	if status == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown organization status", nil)
		return
	}

	actor := middleware.FactsFrom(r.Context())
	profile, err := h.service.SetOrganizationStatus(r, actor.UserID, param(r, "id"), status, req.Reason)
	if err != nil {
		writeModerationError(w, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, profile)
}

type BlockRequest struct {
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason"`
}

func (h *ModerationHandler) SetBlocked(w http.ResponseWriter, r *http.Request) {
	var req BlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	actor := middleware.FactsFrom(r.Context())
	profile, err := h.service.SetBlocked(r, actor.UserID, param(r, "id"), req.Blocked, req.Reason)
	if err != nil {
		writeModerationError(w, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, profile)
}

func writeModerationError(w http.ResponseWriter, err error) {
	switch {
	case stdErrors.Is(err, moderation.ErrNotFound):
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Profile not found", nil)
	case stdErrors.Is(err, moderation.ErrNotOrganization), stdErrors.Is(err, moderation.ErrSelfModeration):
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
	case stdErrors.Is(err, moderation.ErrInvalidTransition):
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, err.Error(), nil)
	default:
		log.Error().Err(err).Msg("moderation failed")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Moderation failed", nil)
	}
}
