package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cprima/methodology-advisor/internal/advisor"
	"github.com/cprima/methodology-advisor/internal/engine"
	"github.com/cprima/methodology-advisor/internal/render"
)

func resolveFormat(format string) (string, error) {
	switch format {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("format %q is not supported (json, markdown)", format)
}

// EvaluateGateHandler evaluates a gate against the caller's overlay.
func EvaluateGateHandler(eng *engine.Engine) mcp.ToolHandlerFor[EvaluateGateInput, EvaluateGateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EvaluateGateInput) (*mcp.CallToolResult, EvaluateGateResult, error) {
		format, err := resolveFormat(input.Format)
		if err != nil {
			return nil, EvaluateGateResult{}, err
		}

		ev, err := eng.EvaluateGate(ctx, input.GateID, input.State)
		if err != nil {
			return nil, EvaluateGateResult{}, err
		}

		if format == FormatMarkdown {
			return nil, EvaluateGateResult{Markdown: render.GateEvaluation(ev)}, nil
		}
		return nil, EvaluateGateResult{Evaluation: ev}, nil
	}
}

// MigrateStateHandler re-keys the caller's overlay across versions.
func MigrateStateHandler(eng *engine.Engine) mcp.ToolHandlerFor[MigrateStateInput, MigrateStateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MigrateStateInput) (*mcp.CallToolResult, MigrateStateResult, error) {
		format, err := resolveFormat(input.Format)
		if err != nil {
			return nil, MigrateStateResult{}, err
		}
		if input.FromVersion == "" || input.ToVersion == "" {
			return nil, MigrateStateResult{}, fmt.Errorf("from_version and to_version are required")
		}

		res, err := eng.MigrateState(ctx, input.FromVersion, input.ToVersion, input.State)
		if err != nil {
			return nil, MigrateStateResult{}, err
		}

		if format == FormatMarkdown {
			return nil, MigrateStateResult{Markdown: render.MigrationReport(res)}, nil
		}
		return nil, MigrateStateResult{Report: res}, nil
	}
}

// DiffCatalogsHandler diffs two served catalog versions.
func DiffCatalogsHandler(eng *engine.Engine) mcp.ToolHandlerFor[DiffCatalogsInput, DiffCatalogsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DiffCatalogsInput) (*mcp.CallToolResult, DiffCatalogsResult, error) {
		format, err := resolveFormat(input.Format)
		if err != nil {
			return nil, DiffCatalogsResult{}, err
		}
		if input.FromVersion == "" || input.ToVersion == "" {
			return nil, DiffCatalogsResult{}, fmt.Errorf("from_version and to_version are required")
		}

		d, err := eng.DiffCatalogs(ctx, input.FromVersion, input.ToVersion)
		if err != nil {
			return nil, DiffCatalogsResult{}, err
		}

		if format == FormatMarkdown {
			return nil, DiffCatalogsResult{Markdown: render.CatalogDiff(d)}, nil
		}
		return nil, DiffCatalogsResult{Diff: d}, nil
	}
}

// SuggestAdvisoryHandler retrieves best-effort advisory content.
func SuggestAdvisoryHandler(eng *engine.Engine) mcp.ToolHandlerFor[SuggestAdvisoryInput, SuggestAdvisoryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SuggestAdvisoryInput) (*mcp.CallToolResult, SuggestAdvisoryResult, error) {
		format, err := resolveFormat(input.Format)
		if err != nil {
			return nil, SuggestAdvisoryResult{}, err
		}

		out := eng.Suggest(ctx, advisor.Request{
			Context: input.Context,
			NodeID:  input.NodeID,
			PhaseID: input.PhaseID,
			Type:    input.AdvisoryType,
		})

		if format == FormatMarkdown {
			return nil, SuggestAdvisoryResult{Markdown: render.AdvisorySuggestions(out)}, nil
		}
		return nil, SuggestAdvisoryResult{Suggestions: out}, nil
	}
}
