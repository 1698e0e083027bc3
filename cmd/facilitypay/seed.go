package main

import (
	"context"
	"fmt"

	"facilitypay/internal/db"
	"facilitypay/internal/seed"
	"facilitypay/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with initial data",
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

		if err := seed.SeedDefaultAdmin(ctx, store.NewAdminRepository(pool)); err != nil {
			return fmt.Errorf("failed to seed default admin: %w", err)
		}

		if err := seed.SeedFacilities(ctx, store.NewFacilityRepository(pool)); err != nil {
			return fmt.Errorf("failed to seed facilities: %w", err)
		}

		if err := seed.SeedDocuments(ctx, store.NewDocumentRepository(pool)); err != nil {
			return fmt.Errorf("failed to seed consent documents: %w", err)
		}

		if err := seed.SeedSystemFormFields(ctx, pool); err != nil {
			return fmt.Errorf("failed to seed system form fields: %w", err)
		}

		logrus.Info("Seed complete")
		return nil
	},
}
