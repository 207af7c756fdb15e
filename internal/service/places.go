package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/alexivanou/powderscout/internal/model"
)

const minQueryLength = 3

// SearchPlaces looks up locations by name
func (s *Service) SearchPlaces(ctx context.Context, query string) (*model.PlacesResponse, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLength {
		return nil, ErrQueryTooShort
	}
	return &model.PlacesResponse{Results: s.places.Search(ctx, query)}, nil
}
