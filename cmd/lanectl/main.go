// Command lanectl manages lane reference data and generates posting CSVs
// from the command line, against Postgres or fully offline from a seed file.
package main

import (
	"context"
	"fmt"
	"lane-posting-service/internal/config"
	"lane-posting-service/internal/platform/obs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configFile  string
	databaseURL string
	logLevel    string
	timeout     time.Duration

	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "lanectl",
	Short: "Lane posting tooling",
	Long: `lanectl prepares the lane database and generates marketplace
bulk-upload CSVs for freight lanes.

Commands that read reference data use Postgres (DATABASE_URL) unless
--offline names a seed file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found (using environment variables)")
		}

		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
		if databaseURL != "" {
			cfg.Database.URL = databaseURL
		}

		level := cfg.Log.Level
		if logLevel != "" {
			level = logLevel
		}
		l, err := obs.NewLogger(level, "console")
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.Get("CONFIG_FILE", ""), "YAML config file")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres URL (or set DATABASE_URL env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(generateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandContext bounds a command by --timeout and carries the logger.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	return obs.WithLogger(ctx, logger), cancel
}
