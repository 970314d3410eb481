package repositories

import (
	"database/sql"
	"time"

	"devtogether/internal/platform/models"
)

const profileColumns = `id, email, password_hash, full_name, role, organization_status, is_blocked, is_admin, created_at, updated_at, deleted_at`

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(p *models.Profile) error {
	_, err := r.db.Exec(`
		INSERT INTO profiles (id, email, password_hash, full_name, role, organization_status, is_blocked, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Email, p.PasswordHash, p.FullName, p.Role, nullString(p.OrganizationStatus), p.Blocked, p.IsAdmin, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *ProfileRepository) GetByID(id string) (*models.Profile, error) {
	return r.getOne(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
}

func (r *ProfileRepository) GetByEmail(email string) (*models.Profile, error) {
	return r.getOne(`SELECT `+profileColumns+` FROM profiles WHERE email = ?`, email)
}

// ListByOrganizationStatus feeds the admin review queue.
func (r *ProfileRepository) ListByOrganizationStatus(status string, limit, offset int) ([]*models.Profile, error) {
	rows, err := r.db.Query(`
		SELECT `+profileColumns+`
		FROM profiles WHERE role = 'organization' AND organization_status = ? AND deleted_at IS NULL
		ORDER BY created_at ASC LIMIT ? OFFSET ?
	`, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *ProfileRepository) UpdateOrganizationStatus(id, status string) error {
	return r.exec(`UPDATE profiles SET organization_status = ?, updated_at = ? WHERE id = ?`, status, time.Now().Unix(), id)
}

func (r *ProfileRepository) SetBlocked(id string, blocked bool) error {
	return r.exec(`UPDATE profiles SET is_blocked = ?, updated_at = ? WHERE id = ?`, blocked, time.Now().Unix(), id)
}

func (r *ProfileRepository) getOne(query string, arg string) (*models.Profile, error) {
	p, err := scanProfile(r.db.QueryRow(query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepository) exec(query string, args ...interface{}) error {
	res, err := r.db.Exec(query, args...)
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

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row scanner) (*models.Profile, error) {
	p := &models.Profile{}
	var orgStatus sql.NullString
	var deletedAt sql.NullInt64
	err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.Role, &orgStatus, &p.Blocked, &p.IsAdmin, &p.CreatedAt, &p.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	p.OrganizationStatus = orgStatus.String
	if deletedAt.Valid {
		p.DeletedAt = new(int64)
		*p.DeletedAt = deletedAt.Int64
	}
	return p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ListAdminIDs returns every profile that may act as an admin, including legacy flag holders.
func (r *ProfileRepository) ListAdminIDs() ([]string, error) {
	rows, err := r.db.Query(`SELECT id FROM profiles WHERE (role = 'admin' OR is_admin = 1) AND deleted_at IS NULL ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
