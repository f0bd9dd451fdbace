package main

import (
	"context"
	"fmt"
	"os"

	"strot/internal/db"
	"strot/internal/seed"
	"strot/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with donation categories and the admin account",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "skip-admin",
			Usage: "Only sync donation categories",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c.String("env-prefix"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		logrus.Info("Seeding categories...")
		if err := seed.SeedCategories(ctx, os.Stdout, store.NewCategoryRepository(pool)); err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}

		if c.Bool("skip-admin") {
			return nil
		}

		logrus.Info("Seeding admin account...")
		if err := seed.SeedAdmin(ctx, os.Stdout, store.NewUserRepository(pool), cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}

		return nil
	},
}
