package seeder

import (
	"context"
	"fmt"

	"github.com/alexivanou/powderscout/internal/model"
	"go.uber.org/zap"
)

// Target receives the imported catalog
type Target interface {
	Replace(ctx context.Context, resorts []model.Resort) error
}

// Seed parses the offline export and installs it as the current catalog.
// It returns the number of resorts imported.
func Seed(ctx context.Context, parser *Parser, target Target, logger *zap.Logger) (int, error) {
	logger.Info("Parsing ski areas", zap.String("path", parser.Path()))

	resorts, err := parser.ParseResorts()
	if err != nil {
		return 0, fmt.Errorf("failed to parse ski areas: %w", err)
	}
	if len(resorts) == 0 {
		return 0, fmt.Errorf("no resorts found in %s", parser.Path())
	}

	if err := target.Replace(ctx, resorts); err != nil {
		return 0, fmt.Errorf("failed to store catalog: %w", err)
	}

	logger.Info("Seeded catalog", zap.Int("resorts", len(resorts)))
	return len(resorts), nil
}
