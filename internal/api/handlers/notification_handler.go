package handlers

import (
	stdErrors "errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"devtogether/internal/api/middleware"
	"devtogether/internal/engine/notifications"
	"devtogether/internal/pkg/errors"
)

type NotificationHandler struct {
	service  *notifications.Service
	pageSize int
}

func NewNotificationHandler(service *notifications.Service, pageSize int) *NotificationHandler {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &NotificationHandler{service: service, pageSize: pageSize}
}

type NotificationListResponse struct {
	Items  []notifications.Item `json:"items"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// List returns the caller's notifications, newest first. ?unread=true narrows to unread.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	facts := middleware.FactsFrom(r.Context())
	limit, offset := page(r, h.pageSize)
	unreadOnly := r.URL.Query().Get("unread") == "true"

	items, err := h.service.List(facts, unreadOnly, limit, offset)
	if err != nil {
		log.Error().Err(err).Str("user_id", facts.UserID).Msg("failed to list notifications")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list notifications", nil)
		return
	}

	errors.WriteJSON(w, http.StatusOK, NotificationListResponse{Items: items, Limit: limit, Offset: offset})
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	facts := middleware.FactsFrom(r.Context())

	count, err := h.service.UnreadCount(facts.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", facts.UserID).Msg("failed to count unread notifications")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to count notifications", nil)
		return
	}

	errors.WriteJSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	facts := middleware.FactsFrom(r.Context())

	if err := h.service.MarkRead(facts.UserID, param(r, "id")); err != nil {
		h.writeLookupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	facts := middleware.FactsFrom(r.Context())

	n, err := h.service.MarkAllRead(facts.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", facts.UserID).Msg("failed to mark notifications read")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update notifications", nil)
		return
	}

	errors.WriteJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

// Target resolves where the notification leads for the caller and marks it read.
func (h *NotificationHandler) Target(w http.ResponseWriter, r *http.Request) {
	facts := middleware.FactsFrom(r.Context())

	item, err := h.service.Open(facts, param(r, "id"))
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	errors.WriteJSON(w, http.StatusOK, item)
}

func (h *NotificationHandler) writeLookupError(w http.ResponseWriter, err error) {
	if stdErrors.Is(err, notifications.ErrNotFound) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Notification not found", nil)
		return
	}
	log.Error().Err(err).Msg("notification lookup failed")
	errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load notification", nil)
}
