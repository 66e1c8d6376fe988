// Package domain defines the MCP tool and resource surface of the
// methodology advisor: typed inputs and outputs, tool schemas, and the
// handlers that bind them to the engine.
package domain

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cprima/methodology-advisor/internal/advisor"
	"github.com/cprima/methodology-advisor/internal/gate"
	"github.com/cprima/methodology-advisor/internal/migrate"
	"github.com/cprima/methodology-advisor/internal/overlay"
)

// FormatJSON and FormatMarkdown are the accepted response formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// EvaluateGateInput represents the MCP tool input for gate evaluation.
type EvaluateGateInput struct {
	GateID string           `json:"gate_id,omitempty" jsonschema:"gate id to evaluate; empty evaluates every compiled check"`
	State  *overlay.Overlay `json:"state,omitempty" jsonschema:"client state overlay with node statuses, evidence, and artifacts"`
	Format string           `json:"format,omitempty" jsonschema:"response format (json, markdown); defaults to json"`
}

// EvaluateGateResult represents the MCP tool output for gate evaluation.
type EvaluateGateResult struct {
	Evaluation *gate.Evaluation `json:"evaluation,omitempty" jsonschema:"structured evaluation result"`
	Markdown   string           `json:"markdown,omitempty" jsonschema:"rendered Markdown report"`
}

// MigrateStateInput represents the MCP tool input for overlay migration.
type MigrateStateInput struct {
	FromVersion string           `json:"from_version" jsonschema:"source catalog version"`
	ToVersion   string           `json:"to_version" jsonschema:"target catalog version"`
	State       *overlay.Overlay `json:"state,omitempty" jsonschema:"client state overlay keyed by source-version node ids"`
	Format      string           `json:"format,omitempty" jsonschema:"response format (json, markdown); defaults to json"`
}

// MigrateStateResult represents the MCP tool output for overlay migration.
type MigrateStateResult struct {
	Report   *migrate.Result `json:"report,omitempty" jsonschema:"structured migration report"`
	Markdown string          `json:"markdown,omitempty" jsonschema:"rendered Markdown report"`
}

// DiffCatalogsInput represents the MCP tool input for catalog diffing.
type DiffCatalogsInput struct {
	FromVersion string `json:"from_version" jsonschema:"source catalog version"`
	ToVersion   string `json:"to_version" jsonschema:"target catalog version"`
	Format      string `json:"format,omitempty" jsonschema:"response format (json, markdown); defaults to json"`
}

// DiffCatalogsResult represents the MCP tool output for catalog diffing.
type DiffCatalogsResult struct {
	Diff     *migrate.Diff `json:"diff,omitempty" jsonschema:"structural delta between the versions"`
	Markdown string        `json:"markdown,omitempty" jsonschema:"rendered Markdown report"`
}

// SuggestAdvisoryInput represents the MCP tool input for advisory lookup.
type SuggestAdvisoryInput struct {
	Context      string `json:"context" jsonschema:"description of the situation or question"`
	NodeID       string `json:"node_id,omitempty" jsonschema:"optional node id to scope the lookup"`
	PhaseID      string `json:"phase_id,omitempty" jsonschema:"optional phase id to scope the lookup"`
	AdvisoryType string `json:"advisory_type,omitempty" jsonschema:"optional filter (examples, templates, anti_patterns, success_criteria)"`
	Format       string `json:"format,omitempty" jsonschema:"response format (json, markdown); defaults to json"`
}

// SuggestAdvisoryResult represents the MCP tool output for advisory lookup.
type SuggestAdvisoryResult struct {
	Suggestions *advisor.Suggestions `json:"suggestions,omitempty" jsonschema:"ranked advisory content"`
	Markdown    string               `json:"markdown,omitempty" jsonschema:"rendered Markdown report"`
}

// EvaluateGateTool defines the MCP tool schema for gate evaluation.
func EvaluateGateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "evaluate_gate",
		Description: "Checks whether a client state satisfies a readiness gate, or all gates",
	}
}

// MigrateStateTool defines the MCP tool schema for overlay migration.
func MigrateStateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "migrate_state",
		Description: "Re-keys a client state from one catalog version onto another",
	}
}

// DiffCatalogsTool defines the MCP tool schema for catalog diffing.
func DiffCatalogsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "diff_catalogs",
		Description: "Inspects structural differences between two served catalog versions",
	}
}

// SuggestAdvisoryTool defines the MCP tool schema for advisory lookup.
func SuggestAdvisoryTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "suggest_advisory",
		Description: "Retrieves phase and node advisory content (examples, templates, anti-patterns, success criteria)",
	}
}
