package migration

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var embedded embed.FS

// Migrations returns the embedded goose migration files rooted at their directory.
func Migrations() (fs.FS, error) {
	return fs.Sub(embedded, "sql")
}

// EnsureMigrated applies every pending migration. It is a no-op when the schema is current.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	fsys, err := Migrations()
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		log.Error("db_migration_failed", zap.String("status", "error"), zap.Error(err))
		return fmt.Errorf("create migration provider: %w", err)
	}

	pending, err := provider.HasPending(ctx)
	if err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("check pending migrations: %w", err)
	}
	if !pending {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("msg", "schema already current, skipping migration"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"))

	results, err := provider.Up(ctx)
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		fields := []zap.Field{
			zap.String("migration_step", r.Source.Path),
			zap.Int64("version", r.Source.Version),
			zap.Int64("step_duration_ms", r.Duration.Milliseconds()),
		}
		if r.Error != nil {
			log.Error("db_migration_step", append(fields, zap.String("status", "error"), zap.Error(r.Error))...)
			continue
		}
		log.Info("db_migration_step", append(fields, zap.String("status", "success"))...)
	}
	if err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("apply migrations: %w", err)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int("applied", len(results)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
