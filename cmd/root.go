package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/a2companion/internal/app"
	"github.com/abhisek/a2companion/internal/config"
	"github.com/abhisek/a2companion/internal/logging"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "a2c",
	Short: "Archero 2 event catalog companion",
	Long: `a2c reads the published Archero 2 event catalog, validates catalog content
before it ships, and tracks your per-task event progress locally.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		applyFlags(cmd, c)
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		logger, err = logging.New(c.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML config file")
	pf.String("db", "", "Path to SQLite progress database (overrides A2C_DB env var)")
	pf.String("content-root", "", "Local directory serving the catalog")
	pf.String("content-url", "", "Base URL serving the catalog (wins over --content-root)")
	pf.BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(versionCmd)
}

// applyFlags overlays explicitly set flags on c.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("db") {
		c.DBPath, _ = flags.GetString("db")
	}
	if flags.Changed("content-root") {
		c.Content.Root, _ = flags.GetString("content-root")
		c.Content.BaseURL = ""
	}
	if flags.Changed("content-url") {
		c.Content.BaseURL, _ = flags.GetString("content-url")
	}
}

// openApp builds the application services for commands that need them.
func openApp() (*app.App, error) {
	return app.New(cfg, logger, app.Options{})
}
