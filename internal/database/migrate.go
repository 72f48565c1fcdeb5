package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrateUp applies every pending migration.
func MigrateUp(databaseURL string) error {
	m, err := newMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("database schema up to date")
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, _ := m.Version()
	slog.Info("database migrated", "version", version, "dirty", dirty)
	return nil
}

// MigrateDown rolls back the given number of migrations; steps <= 0 rolls back all of them.
func MigrateDown(databaseURL string, steps int) error {
	m, err := newMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}

	return nil
}

func newMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	target, err := migrationURL(databaseURL)
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, target)
	if err != nil {
		return nil, fmt.Errorf("init migrator: %w", err)
	}

	return m, nil
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		slog.Warn("close migrator", "source_error", srcErr, "database_error", dbErr)
	}
}

// migrationURL rewrites a postgres URL to the scheme the pgx/v5 migrate driver registers.
func migrationURL(databaseURL string) (string, error) {
	trimmed := strings.TrimSpace(databaseURL)
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(trimmed, prefix) {
			return "pgx5://" + strings.TrimPrefix(trimmed, prefix), nil
		}
	}

	if strings.HasPrefix(trimmed, "pgx5://") {
		return trimmed, nil
	}

	return "", fmt.Errorf("database URL must use the postgres:// scheme")
}
