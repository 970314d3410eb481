package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"devtogether/internal/api"
	"devtogether/internal/api/handlers"
	"devtogether/internal/api/middleware"
	"devtogether/internal/engine/access"
	"devtogether/internal/engine/moderation"
	"devtogether/internal/engine/notifications"
	"devtogether/internal/pkg/logger"
	"devtogether/internal/pkg/metrics"
	"devtogether/internal/platform/audit"
	"devtogether/internal/platform/auth"
	"devtogether/internal/platform/config"
	"devtogether/internal/platform/database"
	"devtogether/internal/platform/repositories"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging)
	metrics.Init()

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories
	profileRepo := repositories.NewProfileRepository(db)
	notificationRepo := notifications.NewRepository(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	returnTo := auth.NewReturnToStore(cfg.Session)
	auditLogger := audit.NewLogger(db)
	engine := access.NewEngine()
	notificationSvc := notifications.NewService(notificationRepo)
	moderationSvc := moderation.NewService(profileRepo, notificationSvc, auditLogger)

	// Middleware
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)

	deps := &api.Dependencies{
		AuthHandler:         handlers.NewAuthHandler(profileRepo, tokenSvc, returnTo, moderationSvc, auditLogger),
		AccessHandler:       handlers.NewAccessHandler(engine, access.NewRouteTable(access.DefaultRoutes), returnTo),
		NotificationHandler: handlers.NewNotificationHandler(notificationSvc, cfg.Notifications.PageSize),
		ModerationHandler:   handlers.NewModerationHandler(moderationSvc),
		AuditHandler:        handlers.NewAuditHandler(auditLogger),
		HealthHandler:       handlers.NewHealthHandler(db),
		SessionMiddleware:   middleware.NewSessionMiddleware(tokenSvc, profileRepo),
		AccessMiddleware:    middleware.NewAccessMiddleware(engine, auditLogger),
		RateLimiter:         rateLimiter,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rateLimiter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Strs("rules", engine.RuleNames()).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
