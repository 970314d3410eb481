package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "devtogether/internal/api/context"
	"devtogether/internal/api/handlers"
	"devtogether/internal/api/middleware"
	"devtogether/internal/engine/access"
	"devtogether/internal/pkg/metrics"
)

type Dependencies struct {
	AuthHandler         *handlers.AuthHandler
	AccessHandler       *handlers.AccessHandler
	NotificationHandler *handlers.NotificationHandler
	ModerationHandler   *handlers.ModerationHandler
	AuditHandler        *handlers.AuditHandler
	HealthHandler       *handlers.HealthHandler
	SessionMiddleware   *middleware.SessionMiddleware
	AccessMiddleware    *middleware.AccessMiddleware
	RateLimiter         *middleware.RateLimiter
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	session := deps.SessionMiddleware.Handle
	guard := deps.AccessMiddleware
	limit := deps.RateLimiter.Limit
	account := guard.RequireAccount()
	adminOnly := guard.Require(access.Protected(access.RoleAdmin))

	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())

	// Authentication
	router.POST("/api/v1/auth/signup",
		chain(deps.AuthHandler.Signup, session, limit(middleware.LimitAuth), guard.Public("")))
	router.POST("/api/v1/auth/login",
		chain(deps.AuthHandler.Login, session, limit(middleware.LimitAuth), guard.Public("")))
	router.POST("/api/v1/auth/refresh",
		chain(deps.AuthHandler.Refresh, limit(middleware.LimitAuth)))

	// Session and page access
	router.GET("/api/v1/session",
		chain(deps.AccessHandler.Session, session, limit(middleware.LimitAPIRead)))
	router.GET("/api/v1/access",
		chain(deps.AccessHandler.Check, session, limit(middleware.LimitAPIRead)))

	// Notifications. Collection routes live under /me because httprouter
	// cannot mix static segments with :id at the same level. Pending, rejected
	// and blocked accounts keep them so moderation notices stay readable.
	router.GET("/api/v1/me/notifications",
		chain(deps.NotificationHandler.List, session, limit(middleware.LimitAPIRead), account))
	router.GET("/api/v1/me/notifications/unread-count",
		chain(deps.NotificationHandler.UnreadCount, session, limit(middleware.LimitAPIRead), account))
	router.POST("/api/v1/me/notifications/read-all",
		chain(deps.NotificationHandler.MarkAllRead, session, limit(middleware.LimitAPIWrite), account))
	router.GET("/api/v1/notifications/:id/target",
		chain(deps.NotificationHandler.Target, session, limit(middleware.LimitAPIWrite), account))
	router.POST("/api/v1/notifications/:id/read",
		chain(deps.NotificationHandler.MarkRead, session, limit(middleware.LimitAPIWrite), account))

	// Administration
	router.GET("/api/v1/admin/organizations",
		chain(deps.ModerationHandler.ListOrganizations, session, limit(middleware.LimitAPIRead), adminOnly))
	router.PUT("/api/v1/admin/organizations/:id/status",
		chain(deps.ModerationHandler.SetOrganizationStatus, session, limit(middleware.LimitAPIWrite), adminOnly))
	router.PUT("/api/v1/admin/profiles/:id/block",
		chain(deps.ModerationHandler.SetBlocked, session, limit(middleware.LimitAPIWrite), adminOnly))
	router.GET("/api/v1/admin/audit-logs",
		chain(deps.AuditHandler.List, session, limit(middleware.LimitAPIRead), adminOnly))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
