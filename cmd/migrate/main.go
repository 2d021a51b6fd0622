package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smartbites/backend/config"
	"github.com/smartbites/backend/internal/database"
	"github.com/smartbites/backend/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "migrate",
		Usage: "Manage the SmartBites database schema",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Create or update every table",
				Action: withDatabase(func(db *gorm.DB, log *zap.Logger) error {
					return database.RunMigrations(db, log)
				}),
			},
			{
				Name:  "drop",
				Usage: "Drop every application table",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm that all data should be destroyed",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if !cmd.Bool("yes") {
						return fmt.Errorf("refusing to drop tables without --yes")
					}
					return withDatabase(database.DropAll)(ctx, cmd)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func withDatabase(fn func(db *gorm.DB, log *zap.Logger) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		log, err := logger.New(logger.Config{Level: cfg.App.LogLevel, Format: "console"})
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		db, err := database.Open(cfg.Database, log)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close(db) }()

		return fn(db, log)
	}
}
