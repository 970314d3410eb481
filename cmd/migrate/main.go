package main

import (
	"flag"

	"github.com/rs/zerolog/log"

	"devtogether/internal/pkg/logger"
	"devtogether/internal/platform/config"
	"devtogether/internal/platform/database"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	dir := flag.String("dir", "", "Migration directory (defaults to database.migrations_dir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Logging)

	if *dir == "" {
		*dir = cfg.Database.MigrationsDir
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db, *dir); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	log.Info().Str("database", cfg.Database.Path).Msg("migration completed successfully")
}
