package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cprima/methodology-advisor/internal/catalog"
	"github.com/cprima/methodology-advisor/internal/catalog/compile"
	"github.com/cprima/methodology-advisor/internal/engine"
	"github.com/cprima/methodology-advisor/internal/store/sqlite"
)

var compileFlags struct {
	source  string
	outDir  string
	archive string
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Validate and compile the methodology document into artifact files",
	Long: `Reads the multi-version methodology document, selects the active and
previous versions, validates both, and compiles the gate rules. On
success the stripped catalogs and the compiled rules are written to the
output directory. Any validation or compilation failure aborts with a
nonzero exit and no files are written.`,
	RunE: runCompile,
}

func init() {
	f := compileCmd.Flags()
	f.StringVarP(&compileFlags.source, "source", "s", "methodology.json", "Methodology document path")
	f.StringVarP(&compileFlags.outDir, "out", "o", "var", "Output directory for compiled artifacts")
	f.StringVar(&compileFlags.archive, "archive", "", "SQLite archive path; records the run when set")
}

func runCompile(cmd *cobra.Command, _ []string) error {
	doc, err := catalog.LoadDocument(compileFlags.source)
	if err != nil {
		return err
	}
	art, err := engine.Build(doc)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(compileFlags.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	outputs := []struct {
		name    string
		payload any
	}{
		{"catalog.current.json", art.Current},
		{"catalog.previous.json", art.Previous},
		{"compiled.rules.json", art},
	}
	for _, out := range outputs {
		path := filepath.Join(compileFlags.outDir, out.name)
		if err := writeJSONFile(path, out.payload); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	}

	if compileFlags.archive != "" {
		if err := archiveRun(cmd.Context(), art); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "archived run to %s\n", compileFlags.archive)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "compiled %s (previous %s): %d phases, %d gate checks\n",
		art.Current.Program.Version, art.Previous.Program.Version, len(art.Current.Phases), len(art.Checks))
	return nil
}

func writeJSONFile(path string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func archiveRun(ctx context.Context, art *compile.Artifact) error {
	st, err := sqlite.Open(compileFlags.archive)
	if err != nil {
		return err
	}
	defer st.Close()

	run := sqlite.Run{
		CurrentVersion:     art.Current.Program.Version,
		PreviousVersion:    art.Previous.Program.Version,
		CurrentFingerprint: art.Current.Program.Fingerprint,
	}
	if run.CatalogCurrent, err = json.Marshal(art.Current); err != nil {
		return fmt.Errorf("marshal current catalog: %w", err)
	}
	if run.CatalogPrevious, err = json.Marshal(art.Previous); err != nil {
		return fmt.Errorf("marshal previous catalog: %w", err)
	}
	if run.CompiledRules, err = json.Marshal(art); err != nil {
		return fmt.Errorf("marshal compiled rules: %w", err)
	}

	_, err = st.RecordRun(ctx, run)
	return err
}
