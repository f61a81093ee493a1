package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"docuisine/internal/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrate brings the schema up to date. Postgres runs the versioned goose
// migrations; mysql and sqlite fall back to gorm's AutoMigrate over the
// domain models.
func Migrate(ctx context.Context, db *gorm.DB, driver string) error {
	if driver != "postgres" {
		if err := db.WithContext(ctx).AutoMigrate(domain.Models()...); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return RunGoose(ctx, sqlDB, "up")
}

// RunGoose executes a goose command (up, down, status, version, redo, reset)
// against the embedded postgres migrations.
func RunGoose(ctx context.Context, db *sql.DB, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, migrationsDir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateTo moves the schema up or down to the given version.
func MigrateTo(ctx context.Context, db *sql.DB, version string) error {
	target, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", version, err)
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}
	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, migrationsDir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, db, migrationsDir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}
