package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cprima/methodology-advisor/internal/catalog"
)

var fingerprintFlags struct {
	source string
}

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint [program-id version]",
	Short: "Compute or verify catalog version fingerprints",
	Long: `With a program id and version, prints the expected fingerprint. With
--source, verifies the declared fingerprint of every version in the
document and exits nonzero on any mismatch.`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runFingerprint,
}

func init() {
	fingerprintCmd.Flags().StringVarP(&fingerprintFlags.source, "source", "s", "", "Methodology document path to verify")
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	if len(args) == 2 {
		fmt.Fprintln(cmd.OutOrStdout(), catalog.Fingerprint(args[0], args[1]))
		return nil
	}
	if fingerprintFlags.source == "" {
		return fmt.Errorf("pass a program id and version, or --source to verify a document")
	}

	doc, err := catalog.LoadDocument(fingerprintFlags.source)
	if err != nil {
		return err
	}

	var mismatches int
	for i := range doc {
		prog := doc[i].Program
		want := catalog.Fingerprint(prog.ID, prog.Version)
		status := "ok"
		if prog.Fingerprint != want {
			status = fmt.Sprintf("MISMATCH (declared %s, expected %s)", prog.Fingerprint, want)
			mismatches++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s: %s\n", prog.ID, prog.Version, prog.Status, status)
	}
	if mismatches > 0 {
		return fmt.Errorf("%d fingerprint mismatch(es)", mismatches)
	}
	return nil
}
