package notifications

import (
	"database/sql"
	"errors"
)

var ErrNotFound = errors.New("notification not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(n *Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, data, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		n.ID,
		n.UserID,
		string(n.Type),
		n.Title,
		n.Message,
		n.Data,
		n.Read,
		n.CreatedAt,
	)
	return err
}

// GetByID only returns notifications owned by userID.
func (r *Repository) GetByID(userID, id string) (*Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, data, read, created_at
		FROM notifications WHERE id = ? AND user_id = ?
	`
	n, err := scanNotification(r.db.QueryRow(query, id, userID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return n, err
}

func (r *Repository) ListByUser(userID string, unreadOnly bool, limit, offset int) ([]*Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, data, read, created_at
		FROM notifications WHERE user_id = ?
	`
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	rows, err := r.db.Query(query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func (r *Repository) UnreadCount(userID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0`, userID).Scan(&count)
	return count, err
}

func (r *Repository) MarkRead(userID, id string) error {
	res, err := r.db.Exec(`UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) MarkAllRead(userID string) (int64, error) {
	res, err := r.db.Exec(`UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PurgeRead deletes read notifications created before the unix timestamp.
func (r *Repository) PurgeRead(before int64) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM notifications WHERE read = 1 AND created_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNotification(row rowScanner) (*Notification, error) {
	var n Notification
	var typ string
	err := row.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Message, &n.Data, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.Type = Type(typ)
	return &n, nil
}
