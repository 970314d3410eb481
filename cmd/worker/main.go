package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"devtogether/internal/engine/notifications"
	"devtogether/internal/pkg/logger"
	"devtogether/internal/pkg/metrics"
	"devtogether/internal/platform/config"
	"devtogether/internal/platform/database"
	"devtogether/internal/workers"
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

	log.Info().Msg("starting background workers")

	purger := workers.NewNotificationPurger(notifications.NewService(notifications.NewRepository(db)), cfg.Notifications)
	purger.Run(ctx)

	log.Info().Msg("workers stopped")
}
