package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"devtogether/internal/pkg/errors"
	"devtogether/internal/platform/audit"
)

type AuditHandler struct {
	logger *audit.Logger
}

func NewAuditHandler(logger *audit.Logger) *AuditHandler {
	return &AuditHandler{logger: logger}
}

// List returns recent audit entries. ?action= narrows to one action.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r, 100)

	logs, err := h.logger.List(r.URL.Query().Get("action"), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list audit logs")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list audit logs", nil)
		return
	}
	errors.WriteJSON(w, http.StatusOK, logs)
}
