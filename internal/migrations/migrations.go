package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitedb "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed sql
var files embed.FS

// Dir returns the embedded migration directory for a database driver
func Dir(driverName string) (string, error) {
	switch driverName {
	case "postgres", "sqlite3":
		return "sql/" + driverName, nil
	default:
		return "", fmt.Errorf("no migrations for driver %q", driverName)
	}
}

// Up applies all pending migrations
func Up(db *sql.DB, driverName string, logger *zap.Logger) error {
	dir, err := Dir(driverName)
	if err != nil {
		return err
	}

	source, err := iofs.New(files, dir)
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	var driver database.Driver
	switch driverName {
	case "postgres":
		driver, err = postgresdb.WithInstance(db, &postgresdb.Config{})
	case "sqlite3":
		driver, err = sqlitedb.WithInstance(db, &sqlitedb.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply", zap.String("driver", driverName))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations applied successfully", zap.String("driver", driverName))
	return nil
}
