package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/confgate/confgate/pkg/gate"
	"github.com/confgate/confgate/pkg/telemetry"
)

func newSchemasCommand() *cobra.Command {
	var schemaDir string

	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "List the loaded schema documents",
		Long: `Load the schema set and list its documents.

Loading alone is a useful check: it verifies every document parses,
every reference target exists, and every format constraint names a
registered checker. A schema set this command accepts will not fail
integrity checks at validation time, except through reference cycles,
which only surface when a cyclic path is actually walked.`,
		Example: `  # List documents from the configured schema directory
  confgate schemas

  # List documents from a specific directory
  confgate schemas --schema-dir ./schemas/staging`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGateConfig(cmd)
			if err != nil {
				return err
			}
			if schemaDir != "" {
				cfg.SchemaDir = schemaDir
			}

			log.Info().
				Str("schema_dir", cfg.SchemaDir).
				Msg("Loading schema documents")

			tel, err := telemetry.NewTelemetry(telemetryConfig())
			if err != nil {
				return err
			}
			defer tel.Shutdown(context.Background())

			g, err := gate.New(cfg, gate.WithTelemetry(tel))
			if err != nil {
				return err
			}

			return printDocuments(g)
		},
	}

	cmd.Flags().StringVar(&schemaDir, "schema-dir", "", "schema directory (overrides config file)")

	return cmd
}

type documentView struct {
	Name        string   `json:"name"`
	HasRoot     bool     `json:"has_root"`
	Definitions []string `json:"definitions,omitempty"`
}

func printDocuments(g *gate.Gate) error {
	store := g.Store()
	views := make([]documentView, 0, len(g.Documents()))
	for _, name := range g.Documents() {
		doc, err := store.Document(name)
		if err != nil {
			return err
		}
		view := documentView{Name: name, HasRoot: doc.Root != nil}
		for defName := range doc.Definitions {
			view.Definitions = append(view.Definitions, defName)
		}
		sort.Strings(view.Definitions)
		views = append(views, view)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, view := range views {
		var parts []string
		if view.HasRoot {
			parts = append(parts, "root schema")
		}
		if len(view.Definitions) > 0 {
			parts = append(parts, fmt.Sprintf("%d definitions: %s",
				len(view.Definitions), strings.Join(view.Definitions, ", ")))
		}
		fmt.Printf("%s (%s)\n", view.Name, strings.Join(parts, "; "))
	}
	return nil
}
