package compile

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cprima/methodology-advisor/internal/catalog"
	platerrors "github.com/cprima/methodology-advisor/internal/platform/errors"
)

func fixtureCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Program: catalog.Program{
			ID:          "demo",
			Version:     "0.4.0",
			Status:      catalog.StatusActive,
			Fingerprint: catalog.Fingerprint("demo", "0.4.0"),
			Supersedes:  "0.3.0",
		},
		Levels: []catalog.Level{{ID: "core"}, {ID: "advanced"}},
		Tags:   []catalog.Tag{{ID: "security"}, {ID: "transport"}},
		Phases: []catalog.Phase{
			{
				ID: "getting-started",
				Nodes: []catalog.Node{
					{ID: "server-naming", Door: catalog.DoorTwoWay, Level: "core", Tags: []string{"transport"}},
				},
			},
			{
				ID: "core-features",
				Nodes: []catalog.Node{
					{ID: "auth-oauth21", Door: catalog.DoorOneWay, Level: "core", Tags: []string{"security"}},
					{ID: "tool-atomicity", Door: catalog.DoorTwoWay, Level: "core", Tags: []string{"security", "transport"}},
					{ID: "perf-budget", Door: catalog.DoorGuardrail, Level: "advanced"},
				},
				Gate: &catalog.Gate{
					ID: "core-features-gate",
					Checks: []catalog.GateCheck{
						{ID: "cf-gate-1", Predicate: catalog.Predicate{
							Kind: "node-field-present", Condition: "status.state == done", Target: "auth-oauth21"}},
						{ID: "cf-gate-2", Predicate: catalog.Predicate{
							Kind: "evidence-meets", Condition: "has_evidence:security:pass", Targets: []string{"auth-oauth21", "tool-atomicity"}}},
					},
				},
				Advisory: &catalog.Advisory{
					Examples: []catalog.Example{{Title: "Naming an MCP server"}},
				},
			},
		},
		GlobalGates: []catalog.Gate{
			{
				ID: "G-Risk",
				Checks: []catalog.GateCheck{
					{ID: "gr-1", Predicate: catalog.Predicate{
						Kind: "all-of", Targets: []string{"core-features-gate"}}},
					{ID: "gr-2", Predicate: catalog.Predicate{
						Kind: "evidence-meets", Condition: "has_evidence:security",
						Query: &catalog.TargetQuery{Phase: "core-features", Level: "core", Tags: []string{"security"}}}},
				},
			},
		},
	}
}

func previousCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Program: catalog.Program{
			ID:          "demo",
			Version:     "0.3.0",
			Status:      catalog.StatusFrozen,
			Fingerprint: catalog.Fingerprint("demo", "0.3.0"),
		},
	}
}

func TestCompileIndices(t *testing.T) {
	art, err := Compile(fixtureCatalog(), previousCatalog())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	idx := art.Indices

	wantNodeToPhase := map[string]string{
		"server-naming":  "getting-started",
		"auth-oauth21":   "core-features",
		"tool-atomicity": "core-features",
		"perf-budget":    "core-features",
	}
	if diff := cmp.Diff(wantNodeToPhase, idx.NodeToPhase); diff != "" {
		t.Errorf("NodeToPhase mismatch (-want +got):\n%s", diff)
	}

	wantPhaseToNodes := map[string][]string{
		"getting-started": {"server-naming"},
		"core-features":   {"auth-oauth21", "tool-atomicity", "perf-budget"},
	}
	if diff := cmp.Diff(wantPhaseToNodes, idx.PhaseToNodes); diff != "" {
		t.Errorf("PhaseToNodes mismatch (-want +got):\n%s", diff)
	}

	// Index inverses agree: the union of phase_to_nodes equals the domain
	// of node_to_phase, and every node appears in exactly one phase.
	seen := make(map[string]int)
	for phaseID, nodes := range idx.PhaseToNodes {
		for _, id := range nodes {
			seen[id]++
			if idx.NodeToPhase[id] != phaseID {
				t.Errorf("node %s indexed to %s but listed under %s", id, idx.NodeToPhase[id], phaseID)
			}
		}
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("node %s appears in %d phases", id, count)
		}
	}
	if len(seen) != len(idx.NodeToPhase) {
		t.Errorf("phase_to_nodes covers %d nodes, node_to_phase %d", len(seen), len(idx.NodeToPhase))
	}

	if diff := cmp.Diff([]string{"auth-oauth21", "tool-atomicity"}, idx.TagIndex["security"]); diff != "" {
		t.Errorf("TagIndex[security] mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"auth-oauth21"}, idx.DoorIndex["one-way"]); diff != "" {
		t.Errorf("DoorIndex[one-way] mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"perf-budget"}, idx.LevelIndex["advanced"]); diff != "" {
		t.Errorf("LevelIndex[advanced] mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"auth-oauth21"}, idx.DoorLevelBuckets["one-way:core"]); diff != "" {
		t.Errorf("DoorLevelBuckets[one-way:core] mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileNormalizesTargets(t *testing.T) {
	art, err := Compile(fixtureCatalog(), previousCatalog())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	// Singular target becomes a one-element sequence.
	check := art.CheckByID("cf-gate-1")
	if check == nil {
		t.Fatalf("CheckByID(cf-gate-1) = nil")
	}
	if diff := cmp.Diff([]string{"auth-oauth21"}, check.Targets); diff != "" {
		t.Errorf("cf-gate-1 targets mismatch (-want +got):\n%s", diff)
	}
	if check.Field != "status.state" || check.Value != "done" {
		t.Errorf("status token should bind field=status.state value=done, got field=%q value=%q", check.Field, check.Value)
	}

	// Query resolution: phase, then level, then tag filters.
	query := art.CheckByID("gr-2")
	if query == nil {
		t.Fatalf("CheckByID(gr-2) = nil")
	}
	if diff := cmp.Diff([]string{"auth-oauth21", "tool-atomicity"}, query.Targets); diff != "" {
		t.Errorf("gr-2 query targets mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileEvidenceSpec(t *testing.T) {
	art, err := Compile(fixtureCatalog(), previousCatalog())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	check := art.CheckByID("cf-gate-2")
	if check == nil {
		t.Fatalf("CheckByID(cf-gate-2) = nil")
	}
	if check.Token != TokenHasEvidence || check.EvidenceType != "security" || check.EvidenceResult != "pass" {
		t.Errorf("evidence spec = (%s, %s, %s)", check.Token, check.EvidenceType, check.EvidenceResult)
	}

	bare := art.CheckByID("gr-2")
	if bare.EvidenceType != "security" || bare.EvidenceResult != "" {
		t.Errorf("bare evidence spec = (%s, %s), want (security, )", bare.EvidenceType, bare.EvidenceResult)
	}
}

func TestCompileRejectsUnknownToken(t *testing.T) {
	tests := []struct {
		name      string
		condition string
	}{
		{"pending is not a valid comparison value", "status.state == pending"},
		{"unknown token", "status.blocked"},
		{"empty evidence type", "has_evidence:"},
		{"evidence with too many parts", "has_evidence:a:b:c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := fixtureCatalog()
			cat.Phases[1].Gate.Checks[0].Predicate.Condition = tt.condition

			_, err := Compile(cat, previousCatalog())
			if err == nil {
				t.Fatalf("Compile() should reject condition %q", tt.condition)
			}
			if !errors.Is(err, platerrors.New(platerrors.CodeCompilationUnknownToken, "")) {
				t.Errorf("error code = %s, want unknown token", platerrors.CodeOf(err))
			}
			if !strings.Contains(err.Error(), "cf-gate-1") {
				t.Errorf("diagnostic should name the owning check, got %q", err.Error())
			}
		})
	}
}

func TestCompileRejectsUnknownKind(t *testing.T) {
	cat := fixtureCatalog()
	cat.Phases[1].Gate.Checks[0].Predicate = catalog.Predicate{
		Kind: "some-of", Target: "auth-oauth21"}

	_, err := Compile(cat, previousCatalog())
	if !errors.Is(err, platerrors.New(platerrors.CodeCompilationUnknownKind, "")) {
		t.Errorf("error = %v, want unknown kind", err)
	}
}

func TestCompileRejectsMissingTargets(t *testing.T) {
	cat := fixtureCatalog()
	cat.Phases[1].Gate.Checks[0].Predicate = catalog.Predicate{
		Kind: "node-field-present", Condition: "status.state == done"}

	_, err := Compile(cat, previousCatalog())
	if !errors.Is(err, platerrors.New(platerrors.CodeCompilationBadTargets, "")) {
		t.Errorf("error = %v, want bad targets", err)
	}
}

func TestCompileIsIdempotent(t *testing.T) {
	first, err := Compile(fixtureCatalog(), previousCatalog())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	second, err := Compile(fixtureCatalog(), previousCatalog())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if diff := cmp.Diff(first.Checks, second.Checks); diff != "" {
		t.Errorf("compiled checks differ across runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Indices, second.Indices); diff != "" {
		t.Errorf("indices differ across runs (-first +second):\n%s", diff)
	}
}

func TestAdvisoryRegistry(t *testing.T) {
	art, err := Compile(fixtureCatalog(), previousCatalog())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	reg := art.Advisory

	entry := reg.PhaseAdvisory["core-features"]
	if !entry.Present {
		t.Errorf("core-features advisory should be present")
	}
	if entry.Counts["examples"] != 1 {
		t.Errorf("examples count = %d, want 1", entry.Counts["examples"])
	}

	// Absence is recorded, not conflated with an empty advisory.
	bare, ok := reg.PhaseAdvisory["getting-started"]
	if !ok {
		t.Fatalf("getting-started must appear in the registry")
	}
	if bare.Present {
		t.Errorf("getting-started advisory should be absent")
	}
	if bare.Counts != nil {
		t.Errorf("absent advisory should carry no counts")
	}

	if entry, ok := reg.NodeAdvisory["auth-oauth21"]; !ok || entry.Present {
		t.Errorf("auth-oauth21 node advisory should be recorded absent")
	}
}

func TestGateIDs(t *testing.T) {
	art, err := Compile(fixtureCatalog(), previousCatalog())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if diff := cmp.Diff([]string{"core-features-gate", "G-Risk"}, art.GateIDs()); diff != "" {
		t.Errorf("GateIDs mismatch (-want +got):\n%s", diff)
	}
	if got := len(art.GateChecks("core-features-gate")); got != 2 {
		t.Errorf("GateChecks(core-features-gate) = %d checks, want 2", got)
	}
	if art.GateChecks("nope") != nil {
		t.Errorf("GateChecks(nope) should be nil")
	}
}
