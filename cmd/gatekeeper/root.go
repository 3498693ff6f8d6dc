package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/gatekeeper/pkg/cli"
	"mercator-hq/gatekeeper/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gatekeeper",
	Short: "Gatekeeper - policy validation engine for data-sharing contracts",
	Long: `Gatekeeper validates data-sharing contracts against a governance
policy catalog before data leaves the organization.

It provides:
  - Deterministic rule evaluation (field presence, conditionals, constraints)
  - Semantic policy review via an external reasoning backend (fail-open)
  - Risk-scaled validation strategies (FAST, BALANCED, THOROUGH, ADAPTIVE)
  - An auditable evidence trail of every validation run`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var cmdErr *cli.CommandError
		if errors.As(err, &cmdErr) {
			os.Exit(cmdErr.ExitCode())
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "gatekeeper.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadEngineConfig loads the configuration file, or falls back to defaults
// when the default config file is absent. An explicitly requested file must
// exist.
func loadEngineConfig(cmd *cobra.Command) (*config.Config, error) {
	if _, err := os.Stat(cfgFile); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %q: %w", cfgFile, err)
		}
		if cmd.Flags().Changed("config") {
			return nil, fmt.Errorf("config file %q does not exist", cfgFile)
		}
		cfg := &config.Config{}
		config.ApplyDefaults(cfg)
		return cfg, nil
	}
	return config.LoadConfigWithEnvOverrides(cfgFile)
}
