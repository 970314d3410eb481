package auth

import (
	"crypto/sha256"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"devtogether/internal/platform/config"
)

const (
	sessionName    = "devtogether-nav"
	sessionKeyPath = "return_to"
)

// ReturnToStore remembers the page an anonymous visitor asked for, so login
// can send them back there.
type ReturnToStore struct {
	store *sessions.CookieStore
}

func NewReturnToStore(cfg config.SessionConfig) *ReturnToStore {
	key := sha256.Sum256([]byte(cfg.Secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &ReturnToStore{store: store}
}

// Save records path. Only in-app absolute paths are kept.
func (s *ReturnToStore) Save(w http.ResponseWriter, r *http.Request, path string) error {
	if !isLocalPath(path) {
		return nil
	}
	session, err := s.store.Get(r, sessionName)
	if err != nil && session == nil {
		return err
	}
	session.Values[sessionKeyPath] = path
	return session.Save(r, w)
}

// Pop returns the saved path, if any, and clears it.
func (s *ReturnToStore) Pop(w http.ResponseWriter, r *http.Request) string {
	session, err := s.store.Get(r, sessionName)
	if err != nil || session == nil {
		return ""
	}
	path, _ := session.Values[sessionKeyPath].(string)
	if path == "" {
		return ""
	}
	delete(session.Values, sessionKeyPath)
	_ = session.Save(r, w)
	if !isLocalPath(path) {
		return ""
	}
	return path
}

func isLocalPath(path string) bool {
	return strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//") && !strings.HasPrefix(path, "/\\")
}
