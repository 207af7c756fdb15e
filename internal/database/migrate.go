package database

import (
	"errors"
	"fmt"

	"github.com/alexivanou/powderscout/internal/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
)

// MigrationsSource returns the migrations directory URL for the database type
func MigrationsSource(dir string, cfg config.DBConfig) string {
	if cfg.IsSQLite() {
		return "file://" + dir + "/sqlite"
	}
	return "file://" + dir + "/postgres"
}

// Migrate applies all pending up migrations found under dir
func Migrate(db *sqlx.DB, cfg config.DBConfig, dir string) error {
	var m *migrate.Migrate
	var err error

	sourcePath := MigrationsSource(dir, cfg)

	if cfg.IsSQLite() {
		// Reuse the open handle; a second connection would see a different in-memory database
		driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("could not create sqlite driver: %w", err)
		}
		m, err = migrate.NewWithDatabaseInstance(sourcePath, "sqlite3", driver)
		if err != nil {
			return fmt.Errorf("could not create migrate instance: %w", err)
		}
	} else {
		m, err = migrate.New(sourcePath, cfg.DSN())
		if err != nil {
			return fmt.Errorf("could not create migrate instance: %w", err)
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
