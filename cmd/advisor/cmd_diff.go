package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cprima/methodology-advisor/internal/engine"
	"github.com/cprima/methodology-advisor/internal/render"
)

var diffFlags struct {
	source string
	from   string
	to     string
	format string
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Report structural changes between the previous and active catalogs",
	RunE:  runDiff,
}

func init() {
	f := diffCmd.Flags()
	f.StringVarP(&diffFlags.source, "source", "s", "methodology.json", "Methodology document path")
	f.StringVar(&diffFlags.from, "from", "", "Source version (defaults to the previous version)")
	f.StringVar(&diffFlags.to, "to", "", "Target version (defaults to the active version)")
	f.StringVarP(&diffFlags.format, "format", "f", "markdown", "Output format: markdown or json")
}

func runDiff(cmd *cobra.Command, _ []string) error {
	eng, err := engine.New(cmd.Context(), diffFlags.source)
	if err != nil {
		return err
	}

	art := eng.Artifact()
	from, to := diffFlags.from, diffFlags.to
	if to == "" {
		to = art.Current.Program.Version
	}
	if from == "" {
		from = art.Previous.Program.Version
	}

	diff, err := eng.DiffCatalogs(cmd.Context(), from, to)
	if err != nil {
		return err
	}

	switch diffFlags.format {
	case "markdown":
		fmt.Fprint(cmd.OutOrStdout(), render.CatalogDiff(diff))
	case "json":
		data, err := json.MarshalIndent(diff, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
	default:
		return fmt.Errorf("format %q is not supported", diffFlags.format)
	}
	return nil
}
