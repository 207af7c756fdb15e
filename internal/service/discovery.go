package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexivanou/powderscout/internal/model"
	"github.com/alexivanou/powderscout/internal/ranking"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultLocationName = "Nearby"

// Discover finds resorts around a point and fetches their forecasts.
// The search radius widens through the configured fallbacks until something
// is found. A nil result with a nil error means no resorts exist in any
// radius.
func (s *Service) Discover(ctx context.Context, req model.DiscoverRequest) (*model.DiscoveryResult, error) {
	start := time.Now()
	id := uuid.NewString()
	logger := s.logger.With(zap.String("request_id", id))

	radius := req.RadiusKm
	if radius <= 0 {
		radius = s.preferredRadius(ctx)
	}

	if resorts := s.catalog.Load(ctx); len(resorts) == 0 {
		logger.Warn("Catalog is empty, nothing to discover")
		return nil, nil
	}

	var nearby []model.Resort
	for _, r := range s.searchRadii(radius) {
		radius = r
		nearby = s.catalog.Nearby(req.Lat, req.Lon, r)
		if len(nearby) > 0 {
			break
		}
		logger.Debug("No resorts within radius", zap.Float64("radius_km", r))
	}
	if len(nearby) == 0 {
		logger.Info("No ski resorts found", zap.Float64("lat", req.Lat), zap.Float64("lon", req.Lon))
		return nil, nil
	}

	if len(nearby) > s.cfg.MaxResults {
		nearby = nearby[:s.cfg.MaxResults]
	}

	results := make([]model.ResortForecast, len(nearby))
	var g errgroup.Group
	g.SetLimit(s.cfg.MaxConcurrentFetches)
	for i, resort := range nearby {
		i, resort := i, resort
		g.Go(func() error {
			results[i] = model.ResortForecast{
				Resort:   resort,
				Forecast: s.weather.Forecast(ctx, resort.Latitude, resort.Longitude, resort.PeakElevation, resort.BaseElevation),
			}
			return nil
		})
	}
	_ = g.Wait()

	name := req.Name
	if name == "" {
		name = defaultLocationName
	}

	logger.Info("Discovery completed",
		zap.String("location", name),
		zap.Float64("radius_km", radius),
		zap.Int("resorts", len(results)),
		zap.Duration("duration", time.Since(start)),
	)

	return &model.DiscoveryResult{
		ID:       id,
		Location: name,
		Origin:   model.Coordinate{Lat: req.Lat, Lon: req.Lon},
		RadiusKm: radius,
		Resorts:  results,
	}, nil
}

// DiscoverRanked runs a discovery and ranks the result against one forecast day
func (s *Service) DiscoverRanked(ctx context.Context, req model.DiscoverRequest, day int, mode ranking.SortMode) (*model.RankedResponse, error) {
	if day < 0 || day >= model.ForecastDays {
		return nil, ErrInvalidDay
	}

	result, err := s.Discover(ctx, req)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	ranked, err := Rank(result.Resorts, day, mode)
	if err != nil {
		return nil, err
	}

	return &model.RankedResponse{
		ID:       result.ID,
		Location: result.Location,
		Origin:   result.Origin,
		RadiusKm: result.RadiusKm,
		Day:      day,
		Sort:     string(mode),
		Resorts:  ranked,
	}, nil
}

// Rank scores resorts against the chosen forecast day and orders them for display
func Rank(resorts []model.ResortForecast, day int, mode ranking.SortMode) ([]model.ScoredResort, error) {
	selected, err := ranking.SelectDay(resorts, day)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDay, err)
	}
	return ranking.Sort(ranking.Rank(selected), mode), nil
}

// searchRadii returns the requested radius followed by every wider fallback
func (s *Service) searchRadii(requested float64) []float64 {
	radii := []float64{requested}
	for _, r := range s.cfg.FallbackRadiiKm {
		if r > requested {
			radii = append(radii, r)
		}
	}
	return radii
}
