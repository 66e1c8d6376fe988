package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cprima/methodology-advisor/internal/catalog"
	"github.com/cprima/methodology-advisor/internal/store/sqlite"
)

const documentTemplate = `[
  {
    "program": {"id": "demo", "title": "Demo", "version": "0.4.0", "status": "active",
                "fingerprint": "%s", "supersedes": "0.3.0"},
    "levels": [{"id": "core", "title": "Core"}],
    "tags": [],
    "phases": [
      {
        "id": "core-features",
        "title": "Core Features",
        "nodes": [
          {"id": "auth-oauth21", "title": "Adopt OAuth 2.1", "door": "one-way", "level": "core"}
        ],
        "gate": {
          "id": "core-features-gate",
          "checks": [
            {"id": "auth-done",
             "predicate": {"kind": "node-field-present", "condition": "status.state == done",
                           "target": "auth-oauth21"}}
          ]
        }
      }
    ]
  },
  {
    "program": {"id": "demo", "title": "Demo", "version": "0.3.0", "status": "frozen",
                "fingerprint": "%s"},
    "levels": [{"id": "core", "title": "Core"}],
    "tags": [],
    "phases": [
      {
        "id": "core-features",
        "title": "Core Features",
        "nodes": [
          {"id": "auth-oauth21", "title": "Adopt OAuth 2.1", "door": "one-way", "level": "core"}
        ]
      }
    ]
  }
]`

func writeDocument(t *testing.T) string {
	t.Helper()
	doc := fmt.Sprintf(documentTemplate,
		catalog.Fingerprint("demo", "0.4.0"),
		catalog.Fingerprint("demo", "0.3.0"))
	path := filepath.Join(t.TempDir(), "methodology.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompileWritesArtifacts(t *testing.T) {
	source := writeDocument(t)
	outDir := filepath.Join(t.TempDir(), "var")
	archive := filepath.Join(t.TempDir(), "runs.db")

	compileFlags.source = source
	compileFlags.outDir = outDir
	compileFlags.archive = archive

	var out bytes.Buffer
	compileCmd.SetOut(&out)
	compileCmd.SetContext(context.Background())
	if err := runCompile(compileCmd, nil); err != nil {
		t.Fatalf("compile: %v\n%s", err, out.String())
	}

	for _, name := range []string{"catalog.current.json", "catalog.previous.json", "compiled.rules.json"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("%s not written: %v", name, err)
		}
		if !bytes.HasSuffix(data, []byte("\n")) {
			t.Errorf("%s should end with a newline", name)
		}
	}

	st, err := sqlite.Open(archive)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer st.Close()
	run, err := st.LatestRun(context.Background())
	if err != nil {
		t.Fatalf("latest run: %v", err)
	}
	if run.CurrentVersion != "0.4.0" || run.PreviousVersion != "0.3.0" {
		t.Errorf("archived run versions = %s / %s", run.CurrentVersion, run.PreviousVersion)
	}
}

func TestCompileFailsOnMissingDocument(t *testing.T) {
	compileFlags.source = filepath.Join(t.TempDir(), "absent.json")
	compileFlags.outDir = t.TempDir()
	compileFlags.archive = ""

	compileCmd.SetOut(new(bytes.Buffer))
	compileCmd.SetContext(context.Background())
	if err := runCompile(compileCmd, nil); err == nil {
		t.Fatal("compile should fail without a document")
	}
}

func TestDiffDefaultsToVersionPair(t *testing.T) {
	diffFlags.source = writeDocument(t)
	diffFlags.from = ""
	diffFlags.to = ""
	diffFlags.format = "markdown"

	var out bytes.Buffer
	diffCmd.SetOut(&out)
	diffCmd.SetContext(context.Background())
	if err := runDiff(diffCmd, nil); err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !strings.Contains(out.String(), "# Catalog Diff: 0.3.0 -> 0.4.0") {
		t.Errorf("diff output = %q", out.String())
	}
}

func TestDiffRejectsUnknownFormat(t *testing.T) {
	diffFlags.source = writeDocument(t)
	diffFlags.from = ""
	diffFlags.to = ""
	diffFlags.format = "yaml"

	diffCmd.SetOut(new(bytes.Buffer))
	diffCmd.SetContext(context.Background())
	if err := runDiff(diffCmd, nil); err == nil {
		t.Fatal("diff should reject format yaml")
	}
}

func TestFingerprintComputes(t *testing.T) {
	fingerprintFlags.source = ""

	var out bytes.Buffer
	fingerprintCmd.SetOut(&out)
	if err := runFingerprint(fingerprintCmd, []string{"demo", "0.4.0"}); err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if strings.TrimSpace(out.String()) != catalog.Fingerprint("demo", "0.4.0") {
		t.Errorf("fingerprint output = %q", out.String())
	}
}

func TestFingerprintVerifiesDocument(t *testing.T) {
	fingerprintFlags.source = writeDocument(t)

	var out bytes.Buffer
	fingerprintCmd.SetOut(&out)
	if err := runFingerprint(fingerprintCmd, nil); err != nil {
		t.Fatalf("fingerprint: %v\n%s", err, out.String())
	}
	if strings.Count(out.String(), ": ok") != 2 {
		t.Errorf("verification output = %q", out.String())
	}
}
