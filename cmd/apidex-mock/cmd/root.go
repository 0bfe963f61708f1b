// Package cmd implements the CLI commands for apidex-mock.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/apidex/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "apidex-mock",
	Short: "Serve a mock API directory",
	Long: "apidex-mock serves an in-memory API directory with the same REST surface\n" +
		"as the real directory, for developing and testing the apidex client.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file path (defaults apply when empty)")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(versionCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
