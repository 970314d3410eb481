package notifications

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type Type string

const (
	TypeApplication  Type = "application"
	TypeProject      Type = "project"
	TypeTeam         Type = "team"
	TypeAchievement  Type = "achievement"
	TypeSystem       Type = "system"
	TypeModeration   Type = "moderation"
	TypeChat         Type = "chat"
	TypeStatusChange Type = "status_change"
	TypeFeedback     Type = "feedback"
	TypePromotion    Type = "promotion"
)

// Types lists every notification type the producers emit.
var Types = []Type{
	TypeApplication, TypeProject, TypeTeam, TypeAchievement, TypeSystem,
	TypeModeration, TypeChat, TypeStatusChange, TypeFeedback, TypePromotion,
}

func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Type      Type   `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Data      Data   `json:"data,omitempty"` // JSON
	Read      bool   `json:"read"`
	CreatedAt int64  `json:"created_at"`
}

// Data is the free-form payload written by the producer. Any key may be missing.
type Data map[string]any

// Value implements the driver.Valuer interface for Data
func (d Data) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for Data
func (d *Data) Scan(value interface{}) error {
	var b []byte
	switch v := value.(type) {
	case nil:
		*d = Data{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, d)
}

func (n *Notification) Created() time.Time {
	return time.Unix(n.CreatedAt, 0)
}
