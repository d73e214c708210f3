package db

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"

	"github.com/pressly/goose/v3"

	"resume-generator/internal/shared/telemetry"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the names of the embedded migration files in order.
func Migrations() ([]string, error) {
	return fs.Glob(migrationFiles, "migrations/*.sql")
}

// RunMigrations applies the batch report schema. A nil database is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, database, "migrations"); err != nil {
		return err
	}
	version, err := goose.GetDBVersionContext(ctx, database)
	if err != nil {
		return err
	}
	telemetry.Info("db.migrated", map[string]any{"version": version})
	return nil
}
