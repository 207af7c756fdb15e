package main

import (
	"context"
	"flag"
	"log"

	"github.com/alexivanou/powderscout/internal/catalog"
	"github.com/alexivanou/powderscout/internal/config"
	"github.com/alexivanou/powderscout/internal/database"
	"github.com/alexivanou/powderscout/internal/repository"
	"github.com/alexivanou/powderscout/internal/seeder"
	"go.uber.org/zap"
)

func main() {
	var (
		fetch = flag.Bool("fetch", false, "Fetch the catalog from the upstream source instead of a local export")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if err := database.Migrate(db, cfg.DB, "migrations"); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	store, closeStore, err := repository.Open(ctx, db, cfg.DB.Type, cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to open cache store", zap.Error(err))
	}
	defer closeStore()

	cat := catalog.New(catalog.NewHTTPSource(cfg.Sources.ResortsURL, cfg.Sources.ResortsTimeout), store, logger)

	if *fetch {
		logger.Info("Fetching catalog from source", zap.String("url", cfg.Sources.ResortsURL))
		if err := cat.Invalidate(ctx); err != nil {
			logger.Fatal("Failed to clear cached catalog", zap.Error(err))
		}
		resorts := cat.Load(ctx)
		if len(resorts) == 0 {
			logger.Fatal("Source returned no usable resorts")
		}
		logger.Info("Catalog import completed", zap.Int("resorts", len(resorts)))
		return
	}

	count, err := seeder.Seed(ctx, seeder.NewParser(cfg.Seeder), cat, logger)
	if err != nil {
		logger.Fatal("Failed to seed catalog", zap.Error(err))
	}
	logger.Info("Catalog import completed", zap.Int("resorts", count))
}
