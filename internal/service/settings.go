package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexivanou/powderscout/internal/repository"
	"go.uber.org/zap"
)

// MaxRadiusKm is roughly half the Earth's circumference
const MaxRadiusKm = 20000

// GetRadius returns the saved search radius, or the default when none is saved
func (s *Service) GetRadius(ctx context.Context) (float64, error) {
	data, err := s.settings.Get(ctx, repository.KeyRadius)
	if err != nil {
		return 0, fmt.Errorf("failed to read radius: %w", err)
	}
	if data == nil {
		return s.cfg.DefaultRadiusKm, nil
	}

	km, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil || !validRadius(km) {
		s.logger.Warn("Ignoring invalid saved radius", zap.ByteString("value", data))
		return s.cfg.DefaultRadiusKm, nil
	}
	return km, nil
}

// SetRadius saves the preferred search radius
func (s *Service) SetRadius(ctx context.Context, km float64) error {
	if !validRadius(km) {
		return ErrInvalidRadius
	}
	value := strconv.FormatFloat(km, 'f', -1, 64)
	if err := s.settings.Set(ctx, repository.KeyRadius, []byte(value)); err != nil {
		return fmt.Errorf("failed to save radius: %w", err)
	}
	return nil
}

// preferredRadius never fails: storage errors fall back to the default
func (s *Service) preferredRadius(ctx context.Context) float64 {
	km, err := s.GetRadius(ctx)
	if err != nil {
		s.logger.Warn("Using default radius", zap.Error(err))
		return s.cfg.DefaultRadiusKm
	}
	return km
}

func validRadius(km float64) bool {
	return !math.IsNaN(km) && km > 0 && km <= MaxRadiusKm
}
