// Package engine orchestrates the catalog pipeline and serves the four
// read-only operations over the compiled artifact. The pipeline runs
// once at startup; Reload builds a complete replacement artifact and
// swaps it atomically, so concurrent callers always observe a
// consistent snapshot.
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cprima/methodology-advisor/internal/advisor"
	"github.com/cprima/methodology-advisor/internal/catalog"
	"github.com/cprima/methodology-advisor/internal/catalog/compile"
	"github.com/cprima/methodology-advisor/internal/catalog/ingest"
	"github.com/cprima/methodology-advisor/internal/catalog/validate"
	"github.com/cprima/methodology-advisor/internal/gate"
	"github.com/cprima/methodology-advisor/internal/migrate"
	"github.com/cprima/methodology-advisor/internal/overlay"
	"github.com/cprima/methodology-advisor/internal/platform/errors"
)

// Engine holds the served artifact and answers operations against it.
type Engine struct {
	docPath   string
	artifact  atomic.Pointer[compile.Artifact]
	contracts gate.ContractChecker
	tracer    trace.Tracer
	logger    *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithContractChecker supplies the collaborator behind adr-has-section
// checks. Without one those predicates fail closed.
func WithContractChecker(c gate.ContractChecker) Option {
	return func(e *Engine) { e.contracts = c }
}

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New runs the ingest, validate, compile pipeline on the document at
// docPath and returns a serving engine. Any pipeline failure is
// startup-fatal: no engine is returned.
func New(ctx context.Context, docPath string, opts ...Option) (*Engine, error) {
	e := &Engine{
		docPath: docPath,
		tracer:  otel.Tracer("methodology-advisor/engine"),
		logger:  log.New(log.Writer(), "[engine] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.Reload(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Build runs the pipeline on an already-decoded document. It is the
// pure core of New and Reload, exposed for callers that hold the
// document in memory (the compile pipeline CLI).
func Build(doc catalog.Document) (*compile.Artifact, error) {
	sel, err := ingest.Select(doc)
	if err != nil {
		return nil, err
	}
	ingest.StripDerived(sel.Current)
	ingest.StripDerived(sel.Previous)

	if err := validate.Catalogs(sel.Current, sel.Previous); err != nil {
		return nil, err
	}
	return compile.Compile(sel.Current, sel.Previous)
}

// Reload rebuilds the artifact from the document path and swaps it in.
// On failure the previously served artifact stays in place untouched.
func (e *Engine) Reload(ctx context.Context) error {
	_, span := e.tracer.Start(ctx, "engine.Reload")
	defer span.End()

	doc, err := catalog.LoadDocument(e.docPath)
	if err != nil {
		return err
	}
	art, err := Build(doc)
	if err != nil {
		return err
	}

	e.artifact.Store(art)
	e.logger.Printf("serving catalog %s (previous %s), %d compiled checks",
		art.Current.Program.Version, art.Previous.Program.Version, len(art.Checks))
	span.SetAttributes(
		attribute.String("catalog.version", art.Current.Program.Version),
		attribute.Int("catalog.checks", len(art.Checks)),
	)
	return nil
}

// Artifact returns the currently served artifact.
func (e *Engine) Artifact() *compile.Artifact {
	return e.artifact.Load()
}

// EvaluateGate evaluates one gate, or every compiled check when gateID
// is empty, against the caller's overlay.
func (e *Engine) EvaluateGate(ctx context.Context, gateID string, ov *overlay.Overlay) (*gate.Evaluation, error) {
	_, span := e.tracer.Start(ctx, "engine.EvaluateGate",
		trace.WithAttributes(attribute.String("gate.id", gateID)))
	defer span.End()

	ev, err := gate.Evaluate(e.Artifact(), gateID, ov, e.contracts)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Bool("gate.pass", ev.Pass))
	return ev, nil
}

// MigrateState re-keys the caller's overlay from one catalog version
// onto another.
func (e *Engine) MigrateState(ctx context.Context, fromVersion, toVersion string, ov *overlay.Overlay) (*migrate.Result, error) {
	_, span := e.tracer.Start(ctx, "engine.MigrateState")
	defer span.End()

	if ov == nil {
		ov = &overlay.Overlay{}
	}
	if err := ov.Validate(); err != nil {
		return nil, err
	}

	art := e.Artifact()
	from, err := e.resolveVersion(art, fromVersion)
	if err != nil {
		return nil, err
	}
	to, err := e.resolveVersion(art, toVersion)
	if err != nil {
		return nil, err
	}
	return migrate.Apply(from, to, ov), nil
}

// DiffCatalogs computes the structural diff between two served catalog
// versions.
func (e *Engine) DiffCatalogs(ctx context.Context, fromVersion, toVersion string) (*migrate.Diff, error) {
	_, span := e.tracer.Start(ctx, "engine.DiffCatalogs")
	defer span.End()

	art := e.Artifact()
	from, err := e.resolveVersion(art, fromVersion)
	if err != nil {
		return nil, err
	}
	to, err := e.resolveVersion(art, toVersion)
	if err != nil {
		return nil, err
	}
	return migrate.Compute(from, to), nil
}

// Suggest returns best-effort advisory content. It never fails.
func (e *Engine) Suggest(ctx context.Context, req advisor.Request) *advisor.Suggestions {
	_, span := e.tracer.Start(ctx, "engine.Suggest")
	defer span.End()

	return advisor.Suggest(e.Artifact(), req)
}

// resolveVersion maps a version string onto one of the two served
// catalogs. Anything else is a request-scoped error naming the
// available versions.
func (e *Engine) resolveVersion(art *compile.Artifact, version string) (*catalog.Catalog, error) {
	switch version {
	case art.Current.Program.Version:
		return art.Current, nil
	case art.Previous.Program.Version:
		return art.Previous, nil
	}
	available := []string{art.Previous.Program.Version, art.Current.Program.Version}
	return nil, errors.WithMetadata(errors.CodeVersionUnknown,
		fmt.Sprintf("version %s is not served (available: %s)", version, strings.Join(available, ", ")),
		map[string]string{"version": version, "available": strings.Join(available, ", ")})
}
