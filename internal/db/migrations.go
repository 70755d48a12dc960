package db

import (
	"context"
	"database/sql"
	_ "embed"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Embed migration files
//
//go:embed migrations/001_initial_schema.sql
var migration001 string

//go:embed migrations/002_weekly_routine.sql
var migration002 string

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{version: 1, sql: migration001},
	{version: 2, sql: migration002},
}

// RunMigrations executes all pending migrations
func RunMigrations(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return eris.Wrap(err, "failed to create schema_migrations table")
	}

	for _, m := range migrations {
		applied, err := isMigrationApplied(ctx, db, m.version)
		if err != nil {
			return eris.Wrapf(err, "failed to check migration %d", m.version)
		}

		if applied {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return eris.Wrapf(err, "failed to begin transaction for migration %d", m.version)
		}

		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			//nolint:errcheck // Rollback in error path
			tx.Rollback()
			return eris.Wrapf(err, "failed to execute migration %d", m.version)
		}

		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			//nolint:errcheck // Rollback in error path
			tx.Rollback()
			return eris.Wrapf(err, "failed to record migration %d", m.version)
		}

		if err := tx.Commit(); err != nil {
			return eris.Wrapf(err, "failed to commit migration %d", m.version)
		}

		logger.Debug("applied migration", zap.Int("version", m.version))
	}

	return nil
}

// isMigrationApplied checks if a migration version has been applied
func isMigrationApplied(ctx context.Context, db *sql.DB, version int) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, eris.Wrap(err, "failed to query schema_migrations")
	}
	return count > 0, nil
}
