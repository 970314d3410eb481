package audit

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"devtogether/internal/pkg/parser"
)

// Actions recorded by the API.
const (
	ActionAccessDenied       = "access.denied"
	ActionSignup             = "auth.signup"
	ActionLogin              = "auth.login"
	ActionOrganizationStatus = "moderation.organization_status"
	ActionBlock              = "moderation.block"
	ActionUnblock            = "moderation.unblock"
)

type AuditLog struct {
	ID           string                 `json:"id"`
	UserID       string                 `json:"user_id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	Metadata     map[string]interface{} `json:"metadata"`
	IPAddress    string                 `json:"ip_address"`
	UserAgent    string                 `json:"user_agent"`
	CreatedAt    int64                  `json:"created_at"`
}

type Logger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

// Log records an entry in the background. A nil Logger discards entries.
func (l *Logger) Log(r *http.Request, userID, action, resourceType, resourceID string, metadata map[string]interface{}) {
	if l == nil {
		return
	}
	entry := NewEntry(r, userID, action, resourceType, resourceID, metadata)
	go func() {
		if err := l.Record(entry); err != nil {
			log.Error().Err(err).Str("action", action).Msg("failed to write audit log")
		}
	}()
}

// NewEntry captures the caller's address and client from r.
func NewEntry(r *http.Request, userID, action, resourceType, resourceID string, metadata map[string]interface{}) *AuditLog {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	entry := &AuditLog{
		ID:           "aud_" + uuid.NewString(),
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     metadata,
		IPAddress:    "unknown",
		UserAgent:    "unknown",
		CreatedAt:    time.Now().Unix(),
	}
	if r != nil {
		entry.IPAddress = parser.ClientIP(r)
		if ua := r.UserAgent(); ua != "" {
			entry.UserAgent = ua
			os, browser := parser.ParseUserAgent(ua)
			metadata["os"] = os
			metadata["browser"] = browser
		}
	}
	return entry
}

func (l *Logger) Record(e *AuditLog) error {
	metaJSON, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}
	_, err = l.db.Exec(`
		INSERT INTO audit_logs (id, user_id, action, resource_type, resource_id, metadata, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.UserID, e.Action, e.ResourceType, e.ResourceID, string(metaJSON), e.IPAddress, e.UserAgent, e.CreatedAt)
	return err
}

// List returns the newest entries first, optionally narrowed to one action.
func (l *Logger) List(action string, limit, offset int) ([]*AuditLog, error) {
	query := `SELECT id, user_id, action, resource_type, resource_id, metadata, ip_address, user_agent, created_at FROM audit_logs`
	args := []interface{}{}
	if action != "" {
		query += ` WHERE action = ?`
		args = append(args, action)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []*AuditLog{}
	for rows.Next() {
		e := &AuditLog{}
		var metaStr string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.ResourceType, &e.ResourceID, &metaStr, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(metaStr), &e.Metadata); err != nil {
			e.Metadata = map[string]interface{}{}
		}
		logs = append(logs, e)
	}
	return logs, rows.Err()
}
