package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/confgate/confgate/pkg/gate"
	"github.com/confgate/confgate/pkg/telemetry"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "confgate",
		Short: "ConfGate - Configuration Schema Gate",
		Long: `ConfGate guards operational configuration behind schema validation.

It loads a directory of named schema documents, verifies every
cross-document reference up front, and checks cluster configs against a
root document:
  - Shared semantic types (posint, percentage, aws_region)
  - Cross-document $ref resolution with cycle detection
  - Deterministic, sorted violation reports
  - Watch mode with automatic schema reload`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "confgate.yaml", "gate config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	// Add subcommands
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newSchemasCommand())

	return rootCmd
}

// resolveGateConfig loads the gate config file named by --config. A missing
// file is only an error when the flag was set explicitly; otherwise the
// built-in defaults apply.
func resolveGateConfig(cmd *cobra.Command) (*gate.Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		if cmd.Flag("config").Changed {
			return nil, fmt.Errorf("gate config %s: %w", configPath, err)
		}
		return gate.DefaultConfig(), nil
	}
	return gate.LoadConfig(configPath)
}

func telemetryConfig() *telemetry.Config {
	cfg := telemetry.DefaultConfig()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg
}
