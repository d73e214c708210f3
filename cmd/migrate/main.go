package main

// Run database migrations for the batch report store:
//   go run ./cmd/migrate

import (
	"context"
	"os"
	"strings"

	"resume-generator/internal/shared/config"
	"resume-generator/internal/shared/storage/db"
	"resume-generator/internal/shared/telemetry"
)

func main() {
	config.LoadEnvFiles(".env", "cmd/.env")
	cfg, err := config.Load(config.New(), os.Getenv("RESUMEGEN_CONFIG"))
	if err != nil {
		telemetry.Error("migrate.config_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.SetLevel(cfg.Log.Level)
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Error("migrate.config_failed", map[string]any{"error": "DATABASE_URL is required"})
		os.Exit(1)
	}
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		sqlDB.Close()
		os.Exit(1)
	}
}
