// Package render formats engine results as plain Markdown. Output is
// deliberately austere: no colors, no Unicode symbols, PASS/FAIL words
// over glyphs, so it reads the same in any client.
package render

import (
	"fmt"
	"strings"

	"github.com/cprima/methodology-advisor/internal/advisor"
	"github.com/cprima/methodology-advisor/internal/catalog"
	"github.com/cprima/methodology-advisor/internal/gate"
	"github.com/cprima/methodology-advisor/internal/migrate"
)

// GateEvaluation renders one evaluation result.
func GateEvaluation(ev *gate.Evaluation) string {
	var b strings.Builder

	title := ev.GateID
	if title == "" {
		title = "all gates"
	}
	fmt.Fprintf(&b, "# Gate Evaluation: %s\n\n", title)
	fmt.Fprintf(&b, "Status: %s\n", passFail(ev.Pass))
	fmt.Fprintf(&b, "Checks: %d/%d passed\n\n", ev.Passed, ev.TotalChecks)

	for _, check := range ev.Checks {
		fmt.Fprintf(&b, "## %s %s\n", passFail(check.Pass), check.CheckID)
		fmt.Fprintf(&b, "- Gate: %s\n", check.GateID)
		fmt.Fprintf(&b, "- Message: %s\n", check.Message)
		fmt.Fprintf(&b, "- Targets: %s\n", strings.Join(check.Targets, ", "))
		if len(check.Failures) > 0 {
			fmt.Fprintf(&b, "- Failed targets: %s\n", strings.Join(check.Failures, ", "))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// MigrationReport renders the outcome of an overlay migration.
func MigrationReport(res *migrate.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Migration Report: %s -> %s\n\n", res.FromVersion, res.ToVersion)
	compat := "INCOMPATIBLE"
	if res.Compatible {
		compat = "COMPATIBLE"
	}
	fmt.Fprintf(&b, "## Compatibility: %s\n\n", compat)

	b.WriteString("## State\n\n")
	section(&b, "Carried Nodes", res.Carried, "No nodes carried.")

	b.WriteString("### Renamed Nodes\n")
	if len(res.Renamed) > 0 {
		for _, r := range res.Renamed {
			fmt.Fprintf(&b, "- %s -> %s\n", r.From, r.To)
		}
	} else {
		b.WriteString("No nodes renamed.\n")
	}
	b.WriteString("\n")

	section(&b, "Dropped Nodes", res.Dropped, "No nodes dropped.")

	b.WriteString("### Nodes to Add\n")
	if len(res.NodesToAdd) > 0 {
		for _, n := range res.NodesToAdd {
			advisory := ""
			if n.AdvisoryAvailable {
				advisory = ", advisory available"
			}
			fmt.Fprintf(&b, "- %s (phase: %s%s)\n", n.ID, n.Phase, advisory)
		}
	} else {
		b.WriteString("No new nodes to add to state.\n")
	}
	b.WriteString("\n")

	b.WriteString("## Warnings\n")
	if len(res.Warnings) > 0 {
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	} else {
		b.WriteString("No warnings.\n")
	}

	return b.String()
}

// CatalogDiff renders a structural diff between two versions.
func CatalogDiff(d *migrate.Diff) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Catalog Diff: %s -> %s\n\n", d.FromVersion, d.ToVersion)

	b.WriteString("## Fingerprints\n")
	fmt.Fprintf(&b, "- From: %s\n", d.FromFingerprint)
	fmt.Fprintf(&b, "- To: %s\n\n", d.ToFingerprint)

	delta := func(name string, dd migrate.IDDelta) {
		fmt.Fprintf(&b, "## %s\n\n", name)
		fmt.Fprintf(&b, "Added: %d\n", len(dd.Added))
		fmt.Fprintf(&b, "Removed: %d\n", len(dd.Removed))
		fmt.Fprintf(&b, "Changed: %d\n", len(dd.Changed))
		fmt.Fprintf(&b, "Unchanged: %d\n\n", len(dd.Unchanged))
		if len(dd.Added) > 0 {
			fmt.Fprintf(&b, "Added: %s\n\n", strings.Join(dd.Added, ", "))
		}
		if len(dd.Removed) > 0 {
			fmt.Fprintf(&b, "Removed: %s\n\n", strings.Join(dd.Removed, ", "))
		}
		if len(dd.Changed) > 0 {
			fmt.Fprintf(&b, "Changed: %s\n\n", strings.Join(dd.Changed, ", "))
		}
	}
	delta("Phases", d.Phases)
	delta("Nodes", d.Nodes)
	delta("Gates", d.Gates)

	if len(d.Renames) > 0 {
		b.WriteString("## Renames\n")
		for _, r := range d.Renames {
			fmt.Fprintf(&b, "- %s -> %s\n", r.From, r.To)
		}
		b.WriteString("\n")
	}

	if len(d.AdvisoryAdded) > 0 {
		b.WriteString("## Advisory\n")
		b.WriteString("New advisory content:\n")
		for _, id := range d.AdvisoryAdded {
			fmt.Fprintf(&b, "- %s\n", id)
		}
	}

	return b.String()
}

// AdvisorySuggestions renders suggestion results with fenced code blocks
// for examples and templates.
func AdvisorySuggestions(s *advisor.Suggestions) string {
	var b strings.Builder

	b.WriteString("# Advisory Suggestions\n\n")
	if s.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n\n", s.Context)
	}

	for _, note := range s.Notes {
		fmt.Fprintf(&b, "Note: %s\n\n", note)
	}

	for _, suggestion := range s.Suggestions {
		fmt.Fprintf(&b, "## %s\n\n", suggestion.Source)
		fmt.Fprintf(&b, "### %s\n\n", titleCase(suggestion.Type))
		for _, item := range suggestion.Items {
			renderItem(&b, item)
		}
	}

	fmt.Fprintf(&b, "Total items: %d\n", s.TotalItems)
	return b.String()
}

func renderItem(b *strings.Builder, item any) {
	switch v := item.(type) {
	case catalog.Example:
		fmt.Fprintf(b, "#### %s\n", v.Title)
		if v.Description != "" {
			fmt.Fprintf(b, "%s\n\n", v.Description)
		}
		if v.Code != "" {
			fmt.Fprintf(b, "```\n%s\n```\n\n", v.Code)
		}
		if v.Context != "" {
			fmt.Fprintf(b, "Context: %s\n\n", v.Context)
		}
	case catalog.Template:
		fmt.Fprintf(b, "#### %s\n\n", v.Name)
		lang := v.Format
		if lang == "" {
			lang = "text"
		}
		fmt.Fprintf(b, "```%s\n%s\n```\n\n", lang, v.Content)
	case catalog.AntiPattern:
		fmt.Fprintf(b, "#### %s\n", v.Title)
		fmt.Fprintf(b, "Problem: %s\n\n", v.Problem)
		fmt.Fprintf(b, "Solution: %s\n\n", v.Solution)
		if v.Example != "" {
			fmt.Fprintf(b, "Example: %s\n\n", v.Example)
		}
	case catalog.SuccessCriterion:
		fmt.Fprintf(b, "#### %s\n", v.Criterion)
		if v.Verification != "" {
			fmt.Fprintf(b, "Verification: %s\n\n", v.Verification)
		}
		if v.Evidence != "" {
			fmt.Fprintf(b, "Evidence: %s\n\n", v.Evidence)
		}
	default:
		fmt.Fprintf(b, "- %v\n\n", v)
	}
}

func passFail(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

func section(b *strings.Builder, title string, ids []string, empty string) {
	fmt.Fprintf(b, "### %s\n", title)
	if len(ids) > 0 {
		for _, id := range ids {
			fmt.Fprintf(b, "- %s\n", id)
		}
	} else {
		b.WriteString(empty + "\n")
	}
	b.WriteString("\n")
}

func titleCase(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
