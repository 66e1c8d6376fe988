// Package catalog defines the typed document model for the methodology
// catalog: a versioned program of phases, decision nodes, readiness gates,
// and evidence policies, plus the shared level/tag vocabularies.
package catalog

import "encoding/json"

// Status is the lifecycle status of a catalog version.
type Status string

const (
	StatusFrozen     Status = "frozen"
	StatusActive     Status = "active"
	StatusPrevious   Status = "previous"
	StatusPrerelease Status = "prerelease"
)

// Door classifies the reversibility of a decision node.
type Door string

const (
	DoorOneWay      Door = "one-way"
	DoorTwoWay      Door = "two-way"
	DoorGuardrail   Door = "guardrail"
	DoorOperational Door = "operational"
)

// Document is the raw multi-version catalog array, ordered newest first.
type Document []*Catalog

// Catalog is one versioned snapshot of the methodology document.
type Catalog struct {
	Program     Program `json:"program"`
	Levels      []Level `json:"levels"`
	Tags        []Tag   `json:"tags"`
	Phases      []Phase `json:"phases"`
	GlobalGates []Gate  `json:"global_gates,omitempty"`
}

// Program identifies a catalog version.
type Program struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Version     string `json:"version"`
	Status      Status `json:"status"`
	Fingerprint string `json:"fingerprint"`
	Supersedes  string `json:"supersedes,omitempty"`
}

// Level is a catalog-global maturity level referenced by id from nodes.
type Level struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Tag is a catalog-global label referenced by id from nodes.
type Tag struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// Phase groups an ordered sequence of nodes behind an optional gate.
type Phase struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	Nodes       []Node    `json:"nodes"`
	Gate        *Gate     `json:"gate,omitempty"`
	Advisory    *Advisory `json:"advisory,omitempty"`
}

// Node is a single decision point in a phase.
type Node struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Summary        string           `json:"summary,omitempty"`
	Why            string           `json:"why,omitempty"`
	Door           Door             `json:"door"`
	Level          string           `json:"level"`
	Tags           []string         `json:"tags,omitempty"`
	Effort         Effort           `json:"effort,omitempty"`
	EvidencePolicy []EvidencePolicy `json:"evidence_policy,omitempty"`
	Blocks         []Block          `json:"blocks,omitempty"`
	Status         string           `json:"status,omitempty"`
	RenamedFrom    string           `json:"renamed_from,omitempty"`
	Advisory       *Advisory        `json:"advisory,omitempty"`

	// SearchStemmed is a derived search-index field regenerated by tooling.
	// It may appear in raw input but never survives ingest.
	SearchStemmed string `json:"_search_stemmed,omitempty"`
}

// Effort is the authoring-time effort estimate for a node.
type Effort struct {
	Size  string `json:"size,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// Block declares that this node blocks on another node or phase.
type Block struct {
	On     string `json:"on"`
	Reason string `json:"reason,omitempty"`
}

// EvidencePolicy declares what evidence a node requires and when.
type EvidencePolicy struct {
	Type       string `json:"type"`
	RequiredAt string `json:"required_at"` // gate, completion, always
	Criteria   string `json:"criteria,omitempty"`
	AppliesTo  string `json:"applies_to,omitempty"` // optional node/phase reference
}

// Gate is a named set of checks guarding a phase or program milestone.
// Phase gates and global gates share this shape; gate ids are unique
// across both scopes.
type Gate struct {
	ID        string      `json:"id"`
	Purpose   string      `json:"purpose,omitempty"`
	AppliesTo []string    `json:"applies_to,omitempty"`
	Checks    []GateCheck `json:"checks"`
	Approvers []string    `json:"approvers,omitempty"`
	Outcomes  []string    `json:"outcomes,omitempty"`
}

// GateCheck is a single predicate within a gate.
type GateCheck struct {
	ID          string    `json:"id"`
	Description string    `json:"description,omitempty"`
	Predicate   Predicate `json:"predicate"`
}

// Predicate is the raw, uncompiled rule attached to a gate check.
// Exactly one of Target, Targets, or Query supplies the target set;
// compilation always normalizes to an ordered target slice.
type Predicate struct {
	Kind         string       `json:"kind"`
	Condition    string       `json:"condition,omitempty"`
	Target       string       `json:"target,omitempty"`
	Targets      []string     `json:"targets,omitempty"`
	Query        *TargetQuery `json:"query,omitempty"`
	Field        string       `json:"field,omitempty"`
	Value        string       `json:"value,omitempty"`
	ArtifactType string       `json:"artifact_type,omitempty"`
	Section      string       `json:"section,omitempty"`
}

// TargetQuery selects target nodes by phase, level, and tags instead of
// naming them explicitly.
type TargetQuery struct {
	Phase string   `json:"phase,omitempty"`
	Level string   `json:"level,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// Advisory is optional non-authoritative guidance attached to a phase or
// node. Absence of the whole block is meaningful and distinct from an
// advisory with empty sections.
type Advisory struct {
	Examples        []Example          `json:"examples,omitempty"`
	Templates       []Template         `json:"templates,omitempty"`
	AntiPatterns    []AntiPattern      `json:"anti_patterns,omitempty"`
	SuccessCriteria []SuccessCriterion `json:"success_criteria,omitempty"`

	// Phase-only sections, carried opaquely.
	DecisionTrees        []json.RawMessage `json:"decision_trees,omitempty"`
	ToolRecommendations  []json.RawMessage `json:"tool_recommendations,omitempty"`
	RelatedResources     []json.RawMessage `json:"related_resources,omitempty"`
	ConversationStarters []json.RawMessage `json:"conversation_starters,omitempty"`
}

// Example is a worked advisory example.
type Example struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Code        string `json:"code,omitempty"`
	Context     string `json:"context,omitempty"`
}

// Template is a fill-in advisory template.
type Template struct {
	Name    string `json:"name"`
	Format  string `json:"format,omitempty"`
	Content string `json:"content"`
}

// AntiPattern documents a known failure mode and its remedy.
type AntiPattern struct {
	Title    string `json:"title"`
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
	Example  string `json:"example,omitempty"`
}

// SuccessCriterion is a verifiable completion criterion.
type SuccessCriterion struct {
	Criterion    string `json:"criterion"`
	Verification string `json:"verification,omitempty"`
	Evidence     string `json:"evidence,omitempty"`
}

// NodeByID returns the node with the given id, or nil.
func (c *Catalog) NodeByID(id string) *Node {
	for pi := range c.Phases {
		for ni := range c.Phases[pi].Nodes {
			if c.Phases[pi].Nodes[ni].ID == id {
				return &c.Phases[pi].Nodes[ni]
			}
		}
	}
	return nil
}

// PhaseByID returns the phase with the given id, or nil.
func (c *Catalog) PhaseByID(id string) *Phase {
	for i := range c.Phases {
		if c.Phases[i].ID == id {
			return &c.Phases[i]
		}
	}
	return nil
}

// NodeIDs returns every node id in document order.
func (c *Catalog) NodeIDs() []string {
	var ids []string
	for _, phase := range c.Phases {
		for _, node := range phase.Nodes {
			ids = append(ids, node.ID)
		}
	}
	return ids
}

// HasAdvisory reports whether any phase of the catalog carries advisory
// content. Older catalog versions predate the advisory schema entirely.
func (c *Catalog) HasAdvisory() bool {
	for i := range c.Phases {
		if c.Phases[i].Advisory != nil {
			return true
		}
		for j := range c.Phases[i].Nodes {
			if c.Phases[i].Nodes[j].Advisory != nil {
				return true
			}
		}
	}
	return false
}
