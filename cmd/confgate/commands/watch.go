package commands

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/confgate/confgate/pkg/gate"
	"github.com/confgate/confgate/pkg/telemetry"
)

func newWatchCommand() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch [path...]",
		Short: "Continuously recheck configs as files change",
		Long: `Watch the schema directory and config paths, rechecking every config
whenever a file changes.

Schema edits reload the whole schema set before rechecking; a broken
edit keeps the previous set serving and is reported, so a bad schema
push never silently stops validation. Results stream to stdout as they
are produced. Runs until interrupted.`,
		Example: `  # Watch the paths named in confgate.yaml
  confgate watch

  # Watch a directory with metrics exposed
  confgate watch --metrics-addr :9102 ./configs

  # Stream results as JSON lines
  confgate watch --json ./configs`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGateConfig(cmd)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.ConfigPaths = args
			}
			if metricsAddr != "" {
				cfg.Watch.MetricsAddr = metricsAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log.Info().
				Str("schema_dir", cfg.SchemaDir).
				Int("config_paths", len(cfg.ConfigPaths)).
				Str("metrics_addr", cfg.Watch.MetricsAddr).
				Msg("Starting watch mode")

			tcfg := telemetry.WatchConfig()
			if verbose {
				tcfg.Logging.Level = "debug"
			}
			if cfg.Watch.MetricsAddr != "" {
				tcfg.Metrics.ListenAddress = cfg.Watch.MetricsAddr
			} else {
				tcfg.Metrics.Enabled = false
			}
			tel, err := telemetry.NewTelemetry(tcfg)
			if err != nil {
				return err
			}
			defer tel.Shutdown(context.Background())

			if tcfg.Metrics.Enabled {
				if err := tel.StartMetricsServer(); err != nil {
					return err
				}
			}

			g, err := gate.New(cfg, gate.WithTelemetry(tel))
			if err != nil {
				return err
			}

			// Initial pass so the current state is known before waiting
			// for changes.
			results, err := g.CheckAll(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range results {
				printResult(r)
			}

			if err := g.Watch(cmd.Context(), printResult); err != nil {
				return err
			}
			defer g.StopWatching()

			<-cmd.Context().Done()
			log.Info().Msg("Watch mode stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Prometheus listen address (overrides config file)")

	return cmd
}
