package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"devtogether/internal/api/handlers"
	"devtogether/internal/api/middleware"
	"devtogether/internal/engine/access"
	"devtogether/internal/engine/moderation"
	"devtogether/internal/engine/notifications"
	"devtogether/internal/platform/audit"
	"devtogether/internal/platform/auth"
	"devtogether/internal/platform/config"
	"devtogether/internal/platform/database"
	"devtogether/internal/platform/models"
	"devtogether/internal/platform/repositories"
)

type testServer struct {
	handler  http.Handler
	db       *sql.DB
	profiles *repositories.ProfileRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, file, _, _ := runtime.Caller(0)
	require.NoError(t, database.Migrate(db, filepath.Join(filepath.Dir(file), "..", "..", "migrations")))

	profileRepo := repositories.NewProfileRepository(db)
	tokenSvc := auth.NewTokenService(config.JWTConfig{Secret: "test", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	returnTo := auth.NewReturnToStore(config.SessionConfig{Secret: "test", MaxAge: 600})
	auditLogger := audit.NewLogger(db)
	engine := access.NewEngine()
	notificationSvc := notifications.NewService(notifications.NewRepository(db))
	moderationSvc := moderation.NewService(profileRepo, notificationSvc, auditLogger)

	router := NewRouter(&Dependencies{
		AuthHandler:         handlers.NewAuthHandler(profileRepo, tokenSvc, returnTo, moderationSvc, auditLogger),
		AccessHandler:       handlers.NewAccessHandler(engine, access.NewRouteTable(access.DefaultRoutes), returnTo),
		NotificationHandler: handlers.NewNotificationHandler(notificationSvc, 20),
		ModerationHandler:   handlers.NewModerationHandler(moderationSvc),
		AuditHandler:        handlers.NewAuditHandler(auditLogger),
		HealthHandler:       handlers.NewHealthHandler(db),
		SessionMiddleware:   middleware.NewSessionMiddleware(tokenSvc, profileRepo),
		AccessMiddleware:    middleware.NewAccessMiddleware(engine, nil),
		RateLimiter:         middleware.NewRateLimiter(config.RateLimitConfig{AuthPerMinute: 100, APIReadPerMinute: 100, APIWritePerMinute: 100}),
	})

	return &testServer{handler: router, db: db, profiles: profileRepo}
}

type call struct {
	method  string
	path    string
	token   string
	body    interface{}
	cookies []*http.Cookie
}

func (s *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func (s *testServer) signup(t *testing.T, email, role string) handlers.AuthResponse {
	t.Helper()
	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/auth/signup", body: handlers.SignupRequest{
		Email: email, Password: "s3cret-password", FullName: "Test " + role, Role: role,
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp handlers.AuthResponse
	decode(t, rec, &resp)
	return resp
}

func (s *testServer) seedAdmin(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-password"), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now().Unix()
	require.NoError(t, s.profiles.Create(&models.Profile{
		ID: "usr_admin", Email: "admin@devtogether.org", PasswordHash: string(hash),
		FullName: "Admin", Role: "admin", CreatedAt: now, UpdatedAt: now,
	}))

	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/auth/login", body: handlers.LoginRequest{Email: "admin@devtogether.org", Password: "admin-password"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp handlers.AuthResponse
	decode(t, rec, &resp)
	return resp.AccessToken
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccessCheck_ReturnsToRequestedPageAfterLogin(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "dev@example.com", "developer")

	rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/access?path=/projects/p1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var check handlers.AccessCheckResponse
	decode(t, rec, &check)
	assert.Equal(t, "/projects/:id", check.Route)
	assert.Equal(t, access.VerdictRedirect, check.Verdict.Kind)
	assert.Equal(t, access.LoginPath, check.Verdict.Path)
	assert.Equal(t, "/projects/p1", check.Verdict.ReturnTo)

	rec = s.do(t, call{
		method:  http.MethodPost,
		path:    "/api/v1/auth/login",
		body:    handlers.LoginRequest{Email: "dev@example.com", Password: "s3cret-password"},
		cookies: rec.Result().Cookies(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login handlers.AuthResponse
	decode(t, rec, &login)
	assert.Equal(t, "/projects/p1", login.ReturnTo)
}

func TestAccessCheck_RoleRoutes(t *testing.T) {
	s := newTestServer(t)
	dev := s.signup(t, "dev@example.com", "developer")

	tests := []struct {
		path string
		want access.Verdict
	}{
		{"/dashboard", access.Allow()},
		{"/my-applications", access.Allow()},
		{"/projects/create", access.Redirect(access.DashboardPath, access.ReasonInsufficientRole)},
		{"/admin", access.Redirect(access.DashboardPath, access.ReasonInsufficientRole)},
		{"/auth/login", access.Redirect(access.DashboardPath, access.ReasonAlreadySignedIn)},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/access?path=" + tt.path, token: dev.AccessToken})
			require.Equal(t, http.StatusOK, rec.Code)

			var check handlers.AccessCheckResponse
			decode(t, rec, &check)
			assert.Equal(t, tt.want, check.Verdict)
		})
	}
}

func TestSignup_Validation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/auth/signup", body: handlers.SignupRequest{
		Email: "root@example.com", Password: "s3cret-password", FullName: "Root", Role: "admin",
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.signup(t, "dev@example.com", "developer")
	rec = s.do(t, call{method: http.MethodPost, path: "/api/v1/auth/signup", body: handlers.SignupRequest{
		Email: "DEV@example.com", Password: "s3cret-password", FullName: "Dev", Role: "developer",
	}})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestOrganizationReviewFlow(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.seedAdmin(t)
	org := s.signup(t, "team@nonprofit.org", "organization")
	assert.Equal(t, "pending", org.Profile.OrganizationStatus)

	// pending organizations are held at the approval page
	rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/me/notifications", token: org.AccessToken})
	require.Equal(t, http.StatusForbidden, rec.Code)
	var denied struct {
		Details middleware.VerdictResponse `json:"details"`
	}
	decode(t, rec, &denied)
	assert.Equal(t, access.PendingApprovalPath, denied.Details.Redirect)

	// the admin was asked to review it
	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/me/notifications", token: adminToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list handlers.NotificationListResponse
	decode(t, rec, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "/admin?tab=organizations", list.Items[0].URL)
	assert.Equal(t, notifications.PriorityHigh, list.Items[0].Context.Priority)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/organizations", token: adminToken})
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []*models.Profile
	decode(t, rec, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, org.Profile.ID, pending[0].ID)

	rec = s.do(t, call{
		method: http.MethodPut,
		path:   "/api/v1/admin/organizations/" + org.Profile.ID + "/status",
		token:  adminToken,
		body:   handlers.OrganizationStatusRequest{Status: "approved"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// approved organizations are let through and told about it
	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/me/notifications", token: org.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, notifications.TypeStatusChange, list.Items[0].Type)
	assert.Equal(t, "/my-projects", list.Items[0].URL)

	// approving twice is not a valid transition
	rec = s.do(t, call{
		method: http.MethodPut,
		path:   "/api/v1/admin/organizations/" + org.Profile.ID + "/status",
		token:  adminToken,
		body:   handlers.OrganizationStatusRequest{Status: "approved"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestNotificationTargetMarksRead(t *testing.T) {
	s := newTestServer(t)
	dev := s.signup(t, "dev@example.com", "developer")

	svc := notifications.NewService(notifications.NewRepository(s.db))
	n, err := svc.Notify(dev.Profile.ID, notifications.TypeApplication, "Application accepted", "", notifications.Data{"projectId": "p1", "applicationId": "a1"})
	require.NoError(t, err)

	rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/me/notifications/unread-count", token: dev.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	var count map[string]int
	decode(t, rec, &count)
	assert.Equal(t, 1, count["unread"])

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/notifications/" + n.ID + "/target", token: dev.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var item notifications.Item
	decode(t, rec, &item)
	assert.Equal(t, "/projects/p1?highlight=application-a1", item.URL)
	assert.True(t, item.Read)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/me/notifications/unread-count", token: dev.AccessToken})
	decode(t, rec, &count)
	assert.Equal(t, 0, count["unread"])

	// other users cannot open it
	other := s.signup(t, "other@example.com", "developer")
	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/notifications/" + n.ID + "/target", token: other.AccessToken})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	dev := s.signup(t, "dev@example.com", "developer")

	rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/audit-logs", token: dev.AccessToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/audit-logs"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBlockedAccount(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.seedAdmin(t)
	dev := s.signup(t, "dev@example.com", "developer")

	rec := s.do(t, call{
		method: http.MethodPut,
		path:   "/api/v1/admin/profiles/" + dev.Profile.ID + "/block",
		token:  adminToken,
		body:   handlers.BlockRequest{Blocked: true, Reason: "spam"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/access?path=/dashboard", token: dev.AccessToken})
	var check handlers.AccessCheckResponse
	decode(t, rec, &check)
	assert.Equal(t, access.Redirect(access.BlockedPath, access.ReasonBlocked), check.Verdict)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/access?path=/blocked", token: dev.AccessToken})
	var holding handlers.AccessCheckResponse
	decode(t, rec, &holding)
	assert.Equal(t, access.Allow(), holding.Verdict)

	// the block notice stays readable
	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/me/notifications", token: dev.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list handlers.NotificationListResponse
	decode(t, rec, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, notifications.TypeStatusChange, list.Items[0].Type)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/notifications/" + list.Items[0].ID + "/target", token: dev.AccessToken})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
