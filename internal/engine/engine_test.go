package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cprima/methodology-advisor/internal/advisor"
	"github.com/cprima/methodology-advisor/internal/catalog"
	"github.com/cprima/methodology-advisor/internal/overlay"
	"github.com/cprima/methodology-advisor/internal/platform/errors"
)

const sampleDocument = `[
  {
    "program": {
      "id": "mcp-methodology",
      "title": "MCP Server Methodology",
      "version": "0.4.0",
      "status": "active",
      "fingerprint": "%s",
      "supersedes": "0.3.0"
    },
    "levels": [{"id": "core", "title": "Core"}],
    "tags": [{"id": "security", "title": "Security"}],
    "phases": [
      {
        "id": "core-features",
        "title": "Core Features",
        "nodes": [
          {
            "id": "auth-oauth21",
            "title": "Adopt OAuth 2.1",
            "door": "one-way",
            "level": "core",
            "tags": ["security"],
            "_search_stemmed": "adopt oauth"
          },
          {
            "id": "transport-choice",
            "title": "Pick a transport",
            "door": "one-way",
            "level": "core",
            "renamed_from": "transport-pick"
          }
        ],
        "gate": {
          "id": "core-features-gate",
          "checks": [
            {
              "id": "auth-done",
              "predicate": {
                "kind": "node-field-present",
                "condition": "status.state == done",
                "target": "auth-oauth21"
              }
            }
          ]
        }
      }
    ]
  },
  {
    "program": {
      "id": "mcp-methodology",
      "title": "MCP Server Methodology",
      "version": "0.3.0",
      "status": "frozen",
      "fingerprint": "%s"
    },
    "levels": [{"id": "core", "title": "Core"}],
    "tags": [{"id": "security", "title": "Security"}],
    "phases": [
      {
        "id": "core-features",
        "title": "Core Features",
        "nodes": [
          {
            "id": "auth-oauth21",
            "title": "Adopt OAuth 2.1",
            "door": "one-way",
            "level": "core",
            "tags": ["security"]
          },
          {
            "id": "transport-pick",
            "title": "Pick a transport",
            "door": "one-way",
            "level": "core"
          }
        ]
      }
    ]
  }
]`

func renderDocument() string {
	return fmt.Sprintf(sampleDocument,
		catalog.Fingerprint("mcp-methodology", "0.4.0"),
		catalog.Fingerprint("mcp-methodology", "0.3.0"))
}

func writeDocument(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "methodology.json")
	if err := os.WriteFile(path, []byte(renderDocument()), 0o644); err != nil {
		t.Fatalf("writing document: %v", err)
	}
	return path
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(context.Background(), writeDocument(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func TestNewServesPipeline(t *testing.T) {
	e := newEngine(t)
	art := e.Artifact()

	if art.Current.Program.Version != "0.4.0" {
		t.Errorf("current version = %s", art.Current.Program.Version)
	}
	if art.Previous.Program.Version != "0.3.0" {
		t.Errorf("previous version = %s", art.Previous.Program.Version)
	}

	// Derived search fields never survive ingest.
	node := art.Current.NodeByID("auth-oauth21")
	if node.SearchStemmed != "" {
		t.Errorf("_search_stemmed survived ingest: %q", node.SearchStemmed)
	}
}

func TestNewFailsOnMissingDocument(t *testing.T) {
	_, err := New(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("New() should fail on a missing document")
	}
	if !errors.CodeOf(err).Fatal() {
		t.Errorf("pipeline failure must be startup-fatal, code = %s", errors.CodeOf(err))
	}
}

func TestEvaluateGate(t *testing.T) {
	e := newEngine(t)
	ov := &overlay.Overlay{Nodes: map[string]overlay.NodeState{
		"auth-oauth21": {Status: overlay.StatusEntry{State: "done"}},
	}}

	ev, err := e.EvaluateGate(context.Background(), "core-features-gate", ov)
	if err != nil {
		t.Fatalf("EvaluateGate() error = %v", err)
	}
	if !ev.Pass {
		t.Errorf("gate should pass: %+v", ev.Checks)
	}

	_, err = e.EvaluateGate(context.Background(), "no-such-gate", ov)
	if errors.CodeOf(err) != errors.CodeGateUnknown {
		t.Errorf("unknown gate code = %s", errors.CodeOf(err))
	}
}

func TestMigrateState(t *testing.T) {
	e := newEngine(t)
	ov := &overlay.Overlay{Nodes: map[string]overlay.NodeState{
		"transport-pick": {Status: overlay.StatusEntry{State: "done"}},
	}}

	res, err := e.MigrateState(context.Background(), "0.3.0", "0.4.0", ov)
	if err != nil {
		t.Fatalf("MigrateState() error = %v", err)
	}
	if !res.Compatible {
		t.Errorf("rename-only migration should be compatible: %+v", res)
	}
	if _, ok := res.Overlay.Node("transport-choice"); !ok {
		t.Error("state should carry under the renamed id")
	}
}

func TestMigrateStateUnknownVersion(t *testing.T) {
	e := newEngine(t)

	_, err := e.MigrateState(context.Background(), "0.1.0", "0.4.0", nil)
	if errors.CodeOf(err) != errors.CodeVersionUnknown {
		t.Fatalf("error code = %s, want %s", errors.CodeOf(err), errors.CodeVersionUnknown)
	}
	if errors.CodeOf(err).Fatal() {
		t.Error("unknown version must be request-scoped")
	}
}

func TestDiffCatalogs(t *testing.T) {
	e := newEngine(t)

	d, err := e.DiffCatalogs(context.Background(), "0.3.0", "0.4.0")
	if err != nil {
		t.Fatalf("DiffCatalogs() error = %v", err)
	}
	if len(d.Renames) != 1 || d.Renames[0].From != "transport-pick" {
		t.Errorf("renames = %+v", d.Renames)
	}
	if len(d.Gates.Added) != 1 || d.Gates.Added[0] != "core-features-gate" {
		t.Errorf("gates added = %v", d.Gates.Added)
	}
}

func TestSuggestNeverFails(t *testing.T) {
	e := newEngine(t)

	out := e.Suggest(context.Background(), advisor.Request{Context: "anything at all"})
	if out == nil {
		t.Fatal("Suggest() must return a result")
	}
}

func TestReloadSwapsAtomically(t *testing.T) {
	path := writeDocument(t)
	e, err := New(context.Background(), path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	before := e.Artifact()

	// A broken document must not disturb the served artifact.
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("corrupting document: %v", err)
	}
	if err := e.Reload(context.Background()); err == nil {
		t.Fatal("Reload() should fail on a broken document")
	}
	if e.Artifact() != before {
		t.Error("failed reload must leave the served artifact in place")
	}

	// A fixed document swaps in a fresh artifact.
	if err := os.WriteFile(path, []byte(renderDocument()), 0o644); err != nil {
		t.Fatalf("restoring document: %v", err)
	}
	if err := e.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if e.Artifact() == before {
		t.Error("successful reload should swap in a new artifact")
	}
}
