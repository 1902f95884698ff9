// Package cli implements the newsflash command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deusflow/newsflash/internal/config"
	"github.com/deusflow/newsflash/internal/logger"
)

var (
	cfg        *config.Config
	debug      bool
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "newsflash",
	Short: "NewsFlash - headlines, related articles and topic summaries",
	Long: `NewsFlash serves NewsAPI headlines with keyword based related articles
and model written topic summaries.

Configuration is read from the environment and an optional .env file.

Example usage:
  newsflash serve                        # Start the HTTP API
  newsflash headlines --category science # Print top science headlines
  newsflash keywords --title "..."       # Extract keywords from an article`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if debug {
			cfg.Debug = true
		}
		logger.Init(cfg.Debug)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON")
}
