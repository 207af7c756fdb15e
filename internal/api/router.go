package api

import (
	"github.com/alexivanou/powderscout/internal/config"
	"github.com/alexivanou/powderscout/internal/service"
	"github.com/alexivanou/powderscout/internal/stats"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter creates a new HTTP router
func NewRouter(service service.ServiceInterface, statsCollector *stats.Collector, cfg config.ServerConfig, logger *zap.Logger) *mux.Router {
	logger = logger.Named("api")
	handler := NewHandler(service, logger)
	statsHandler := NewStatsHandler(statsCollector, logger)

	router := mux.NewRouter()
	router.Use(RequestLogger(logger))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.Use(RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	v1.HandleFunc("/resorts", handler.GetResorts).Methods("GET")
	v1.HandleFunc("/places", handler.SearchPlaces).Methods("GET")
	v1.HandleFunc("/settings/radius", handler.GetRadius).Methods("GET")
	v1.HandleFunc("/settings/radius", handler.SetRadius).Methods("PUT")
	v1.HandleFunc("/catalog", handler.GetCatalog).Methods("GET")
	v1.HandleFunc("/catalog/refresh", handler.RefreshCatalog).Methods("POST")
	v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	return router
}
