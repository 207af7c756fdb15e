package service

import (
	"context"
	"errors"

	"github.com/alexivanou/powderscout/internal/catalog"
	"github.com/alexivanou/powderscout/internal/config"
	"github.com/alexivanou/powderscout/internal/model"
	"github.com/alexivanou/powderscout/internal/repository"
	"go.uber.org/zap"
)

// Validation errors. Handlers map them to 400 responses.
var (
	ErrQueryTooShort = errors.New("query must be longer than 2 characters")
	ErrInvalidRadius = errors.New("radius must be greater than 0 and at most 20000 km")
	ErrInvalidDay    = errors.New("day must be 0, 1 or 2")
)

// ResortCatalog is the part of the catalog the service depends on
type ResortCatalog interface {
	Load(ctx context.Context) []model.Resort
	Nearby(lat, lon, radiusKm float64) []model.Resort
	Invalidate(ctx context.Context) error
	State() catalog.State
	Len() int
}

// ForecastFetcher returns a resort's multi-day forecast, or an absent value
type ForecastFetcher interface {
	Forecast(ctx context.Context, lat, lon float64, peak, base model.Optional[int]) model.Optional[model.Forecast]
}

// PlaceSearcher resolves free text to candidate locations
type PlaceSearcher interface {
	Search(ctx context.Context, query string) []model.LocationResult
}

// Service provides business logic for the API
type Service struct {
	catalog  ResortCatalog
	weather  ForecastFetcher
	places   PlaceSearcher
	settings repository.Store
	cfg      config.DiscoveryConfig
	logger   *zap.Logger
}

// NewService creates a new service instance
func NewService(
	catalog ResortCatalog,
	weather ForecastFetcher,
	places PlaceSearcher,
	settings repository.Store,
	cfg config.DiscoveryConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		catalog:  catalog,
		weather:  weather,
		places:   places,
		settings: settings,
		cfg:      cfg,
		logger:   logger.Named("service"),
	}
}

// RefreshCatalog drops the cached catalog and loads it again from the source.
// It returns the number of resorts now available.
func (s *Service) RefreshCatalog(ctx context.Context) (int, error) {
	if err := s.catalog.Invalidate(ctx); err != nil {
		return 0, err
	}
	resorts := s.catalog.Load(ctx)
	s.logger.Info("Catalog refreshed", zap.Int("resorts", len(resorts)))
	return len(resorts), nil
}

// CatalogStatus reports the catalog lifecycle state and size
func (s *Service) CatalogStatus() model.CatalogStatus {
	return model.CatalogStatus{
		State:   s.catalog.State().String(),
		Resorts: s.catalog.Len(),
	}
}
