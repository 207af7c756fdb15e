package repository

import (
	"context"

	"github.com/alexivanou/powderscout/internal/config"
	"github.com/jmoiron/sqlx"
)

// Well-known keys of the persistent cache
const (
	KeyResorts = "ski_resorts"
	KeyRadius  = "radius"
)

// Store is the persistent key/value cache. Get returns (nil, nil) for a
// missing key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// NewStore creates a SQL backed store based on DB type
func NewStore(db *sqlx.DB, dbType config.DBType) Store {
	if dbType == config.DBTypePostgreSQL {
		return &pgStore{db: db}
	}

	// Default to SQLite
	return &sqliteStore{db: db}
}
