// Command migrate manages the database schema outside the api process.
//
//	migrate up
//	migrate status
//	migrate to 1
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"docuisine/internal/app"
	"docuisine/internal/core/config"
	"docuisine/internal/core/database"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "migrate",
		Usage: "manage the docuisine database schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the yaml config",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Commands: []*cli.Command{
			gooseCommand("up", "apply all pending migrations"),
			gooseCommand("down", "roll back the latest migration"),
			gooseCommand("status", "print the state of every migration"),
			gooseCommand("version", "print the current schema version"),
			{
				Name:      "to",
				Usage:     "migrate up or down to a specific version",
				ArgsUsage: "<version>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					v := cmd.Args().First()
					if v == "" {
						return fmt.Errorf("version is required")
					}
					return withDB(ctx, cmd, "to", func(db *sql.DB) error {
						return database.MigrateTo(ctx, db, v)
					})
				},
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func gooseCommand(name, usage string) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withDB(ctx, cmd, name, func(db *sql.DB) error {
				return database.RunGoose(ctx, db, name)
			})
		},
	}
}

// withDB opens the configured database and runs fn against it. Only
// postgres carries versioned migrations; other drivers support "up", which
// runs gorm's AutoMigrate.
func withDB(ctx context.Context, cmd *cli.Command, name string, fn func(*sql.DB) error) error {
	cfg, err := config.Read(cmd.String("config"))
	if err != nil {
		return err
	}
	cfg.DB.AutoMigrate = false
	log, _, cleanup := app.NewLogger(cfg)
	defer cleanup()

	gdb, err := app.OpenDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	db, err := gdb.DB()
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.DB.Driver != "postgres" {
		if name != "up" {
			return fmt.Errorf("%s: versioned migrations need postgres, driver is %s", name, cfg.DB.Driver)
		}
		if err := database.Migrate(ctx, gdb, cfg.DB.Driver); err != nil {
			return err
		}
		log.Info("automigrate done", zap.String("driver", cfg.DB.Driver))
		return nil
	}

	if err := fn(db); err != nil {
		log.Error("migrate failed", zap.String("cmd", name), zap.Error(err))
		return err
	}
	log.Info("migrate done", zap.String("cmd", name))
	return nil
}
