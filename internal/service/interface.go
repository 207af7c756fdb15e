package service

import (
	"context"

	"github.com/alexivanou/powderscout/internal/model"
	"github.com/alexivanou/powderscout/internal/ranking"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	Discover(ctx context.Context, req model.DiscoverRequest) (*model.DiscoveryResult, error)
	DiscoverRanked(ctx context.Context, req model.DiscoverRequest, day int, mode ranking.SortMode) (*model.RankedResponse, error)
	SearchPlaces(ctx context.Context, query string) (*model.PlacesResponse, error)
	GetRadius(ctx context.Context) (float64, error)
	SetRadius(ctx context.Context, km float64) error
	RefreshCatalog(ctx context.Context) (int, error)
	CatalogStatus() model.CatalogStatus
}

var _ ServiceInterface = (*Service)(nil)
