package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/powderscout/internal/api"
	"github.com/alexivanou/powderscout/internal/catalog"
	"github.com/alexivanou/powderscout/internal/config"
	"github.com/alexivanou/powderscout/internal/database"
	"github.com/alexivanou/powderscout/internal/geocoding"
	"github.com/alexivanou/powderscout/internal/logging"
	"github.com/alexivanou/powderscout/internal/repository"
	"github.com/alexivanou/powderscout/internal/seeder"
	"github.com/alexivanou/powderscout/internal/service"
	"github.com/alexivanou/powderscout/internal/stats"
	"github.com/alexivanou/powderscout/internal/weather"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(context.Background(), cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	ctx := context.Background()
	if err := database.Migrate(db, cfg.DB, "migrations"); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	store, closeStore, err := repository.Open(ctx, db, cfg.DB.Type, cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to open cache store", zap.Error(err))
	}
	defer closeStore()
	logger.Info("Using cache backend", zap.String("backend", string(cfg.Cache.Backend)))

	cat := catalog.New(catalog.NewHTTPSource(cfg.Sources.ResortsURL, cfg.Sources.ResortsTimeout), store, logger)

	seeded, err := repository.IsSeeded(ctx, store)
	if err != nil {
		logger.Warn("Failed to check cached catalog", zap.Error(err))
	} else if !seeded {
		autoSeed(ctx, cat, cfg, logger)
	}

	// Warm the catalog; early requests join this load
	go func() {
		resorts := cat.Load(ctx)
		logger.Info("Catalog warmed", zap.Int("resorts", len(resorts)))
	}()

	svc := service.NewService(
		cat,
		weather.NewClient(cfg.Sources, logger),
		geocoding.NewClient(cfg.Sources, logger),
		store,
		cfg.Discovery,
		logger,
	)
	statsCollector := stats.NewCollector(db, cfg.DB, cat)
	router := api.NewRouter(svc, statsCollector, cfg.Server, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// autoSeed imports a local ski area export when one is present. Without it
// the catalog is fetched from the network on first use.
func autoSeed(ctx context.Context, cat *catalog.Catalog, cfg *config.Config, logger *zap.Logger) {
	parser := seeder.NewParser(cfg.Seeder)
	if !parser.Available() {
		logger.Info("No local ski area export, catalog will be fetched on demand", zap.String("path", parser.Path()))
		return
	}

	logger.Info("Cache is empty, seeding catalog...")
	if _, err := seeder.Seed(ctx, parser, cat, logger); err != nil {
		logger.Warn("Failed to seed catalog", zap.Error(err))
	}
}
