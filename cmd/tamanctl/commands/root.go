package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taman-digital/internal/app"
	"taman-digital/internal/config"
	"taman-digital/internal/logger"
)

var (
	// Global flags
	logLevel   string
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tamanctl",
	Short: "Maintenance tool for Taman Digital",
	Long: `tamanctl runs maintenance tasks against the configured Taman Digital
storage. It reads the same environment and .env files as the server.

Commands:
  sweep   - Purge trashed posts past their retention period
  export  - Write a post as a Markdown document
  stats   - Show writing statistics for an author`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// withApp loads the configuration, wires the application and runs fn.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger.SetLevel(cfg.LogLevel)

	a, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}
