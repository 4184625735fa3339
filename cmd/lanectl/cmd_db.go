package main

import (
	"context"
	"database/sql"
	"errors"
	"lane-posting-service/internal/adapters/repositories"
	"lane-posting-service/internal/platform/db"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedPath string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create the Postgres schema",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load cities, rate matrices and lanes from a JSON seed file",
	Long: `Create the schema if needed and upsert the seed file's cities and
rate matrices. Seeded lanes are inserted as pending; existing lane ids are
left untouched.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedPath, "file", "f", "", "Seed file (default: SEED_PATH or config)")
}

func openDB(ctx context.Context) (*sql.DB, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return db.Open(ctx, cfg.Database.URL, db.DefaultPoolOptions())
}

func runSchema(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	conn, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	logger.Info("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return err
	}
	logger.Info("Schema ready.")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	path := seedPath
	if path == "" {
		path = cfg.Database.SeedPath
	}

	conn, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := repositories.InitSchema(ctx, conn); err != nil {
		return err
	}

	logger.Info("Seeding database...", zap.String("file", path))
	if err := repositories.SeedFromJSON(ctx, conn, path); err != nil {
		return err
	}
	logger.Info("Seeding complete.")
	return nil
}
