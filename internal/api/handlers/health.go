package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"devtogether/internal/pkg/errors"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp int64             `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "healthy"}
	status, code := "healthy", http.StatusOK

	if err := h.db.PingContext(r.Context()); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		status, code = "degraded", http.StatusServiceUnavailable
	}

	errors.WriteJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().Unix(),
		Checks:    checks,
	})
}
