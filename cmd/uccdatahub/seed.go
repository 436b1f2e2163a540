package main

import (
	"context"
	"fmt"

	"uccdatahub/internal/db"
	"uccdatahub/internal/importer"
	"uccdatahub/internal/seed"
	"uccdatahub/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with demo users and sample filing data",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
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

		if err := store.EnsureSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}

		userRepo := store.NewUserRepository(pool)
		filingRepo := store.NewFilingRepository(pool)

		logrus.Info("Seeding demo users...")
		if err := seed.SeedDemoUsers(ctx, userRepo); err != nil {
			return fmt.Errorf("failed to seed demo users: %w", err)
		}

		logrus.Info("Seeding sample filings...")
		logger := logrus.New()
		uploadImporter := importer.New(importer.NewFilingStore(filingRepo), logger)
		if err := seed.SeedSampleFilings(ctx, uploadImporter); err != nil {
			return fmt.Errorf("failed to seed sample filings: %w", err)
		}

		logrus.Info("Seed complete")

		return nil
	},
}
