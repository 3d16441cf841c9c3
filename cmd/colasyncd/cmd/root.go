// Package cmd implements the colasyncd CLI: consolidation of worker stores,
// upload to the remote database, chronological classification, and
// company/brand index maintenance.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bevalc-intelligence/cola-engine/internal/platform/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "colasyncd",
	Short: "Sync, classification, and index maintenance daemon for the COLA corpus",
	Long: `colasyncd merges worker-local stores into the consolidated store,
uploads the consolidated store to the remote database, runs the
chronological classification pass, and keeps the company/brand identity
tables current.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional TOML/YAML settings file")
}

func loadSettings() (*config.Settings, error) {
	return config.Load(configPath)
}
