package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/confgate/confgate/pkg/gate"
	"github.com/confgate/confgate/pkg/telemetry"
)

// ErrViolations signals that checking ran to completion and found
// nonconforming configs. The CLI maps it to a distinct exit code from
// operational and schema-integrity errors.
var ErrViolations = errors.New("configuration does not conform")

func newValidateCommand() *cobra.Command {
	var (
		schemaDir    string
		rootDocument string
		closed       bool
	)

	cmd := &cobra.Command{
		Use:   "validate [path...]",
		Short: "Validate config files against the schema set",
		Long: `Validate config files against the loaded schema documents.

Paths given as arguments override the config_paths of the gate config
file; directories are walked for YAML and JSON files. Every violation in
every file is reported, sorted by path. A nonconforming config exits 1;
a config that cannot be checked at all (unreadable file, dangling or
cyclic schema reference) exits 2.`,
		Example: `  # Validate the paths named in confgate.yaml
  confgate validate

  # Validate a specific directory
  confgate validate ./configs

  # Validate one file against a different schema set
  confgate validate --schema-dir ./schemas/staging ./configs/prod.yaml

  # Machine-readable output
  confgate validate --json ./configs`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGateConfig(cmd)
			if err != nil {
				return err
			}
			if schemaDir != "" {
				cfg.SchemaDir = schemaDir
			}
			if rootDocument != "" {
				cfg.RootDocument = rootDocument
			}
			if closed {
				cfg.ClosedObjects = true
			}
			if len(args) > 0 {
				cfg.ConfigPaths = args
			}

			log.Info().
				Str("schema_dir", cfg.SchemaDir).
				Str("root_document", cfg.RootDocument).
				Int("config_paths", len(cfg.ConfigPaths)).
				Msg("Validating configuration")

			tel, err := telemetry.NewTelemetry(telemetryConfig())
			if err != nil {
				return err
			}
			defer tel.Shutdown(context.Background())

			g, err := gate.New(cfg, gate.WithTelemetry(tel))
			if err != nil {
				return err
			}

			results, err := g.CheckAll(cmd.Context())
			if err != nil {
				return err
			}
			return printResults(results)
		},
	}

	cmd.Flags().StringVar(&schemaDir, "schema-dir", "", "schema directory (overrides config file)")
	cmd.Flags().StringVar(&rootDocument, "root-document", "", "document to validate against (overrides config file)")
	cmd.Flags().BoolVar(&closed, "closed", false, "reject undeclared keys on all object shapes")

	return cmd
}

// resultView carries a Result plus its error rendered as a string, since
// errors do not marshal.
type resultView struct {
	gate.Result
	Error string `json:"error,omitempty"`
}

func newResultView(r gate.Result) resultView {
	view := resultView{Result: r}
	if r.Err != nil {
		view.Error = r.Err.Error()
	}
	return view
}

// printResults renders one batch of results and folds them into an exit
// status: nil when everything conforms, ErrViolations when violations were
// found, a plain error when any check could not run.
func printResults(results []gate.Result) error {
	if jsonOutput {
		views := make([]resultView, len(results))
		for i, r := range results {
			views[i] = newResultView(r)
		}
		data, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		for _, r := range results {
			printTextResult(r)
		}
	}

	var violations, errored int
	for _, r := range results {
		if r.Err != nil {
			errored++
		} else {
			violations += len(r.Report)
		}
	}
	if errored > 0 {
		return fmt.Errorf("%d of %d configs could not be checked", errored, len(results))
	}
	if violations > 0 {
		return fmt.Errorf("%w: %d violations", ErrViolations, violations)
	}
	return nil
}

// printResult renders a single result as it arrives, one JSON object per
// line in JSON mode. Watch mode streams through this.
func printResult(r gate.Result) {
	if jsonOutput {
		data, err := json.Marshal(newResultView(r))
		if err != nil {
			log.Error().Err(err).Msg("Failed to encode result")
			return
		}
		fmt.Println(string(data))
		return
	}
	printTextResult(r)
}

func printTextResult(r gate.Result) {
	switch {
	case r.Err != nil:
		fmt.Printf("%s: error: %v\n", r.Path, r.Err)
	case r.Passed():
		fmt.Printf("%s: ok\n", r.Path)
	default:
		fmt.Printf("%s: %d violations\n", r.Path, len(r.Report))
		for _, v := range r.Report {
			if v.Expected != "" {
				fmt.Printf("  %s: %s (expected %s)\n", v.Path, v.Message, v.Expected)
			} else {
				fmt.Printf("  %s: %s\n", v.Path, v.Message)
			}
		}
	}
}
