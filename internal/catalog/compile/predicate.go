package compile

import (
	"fmt"
	"strings"

	"github.com/cprima/methodology-advisor/internal/catalog"
	"github.com/cprima/methodology-advisor/internal/platform/errors"
)

// Kind is the closed set of predicate kinds. Compilation rejects anything
// outside this set.
type Kind string

const (
	KindNodeFieldPresent Kind = "node-field-present"
	KindEvidenceMeets    Kind = "evidence-meets"
	KindAllOf            Kind = "all-of"
	KindADRHasSection    Kind = "adr-has-section"
	KindArtifactExists   Kind = "artifact-exists"
)

// Token is the closed set of condition-token surface forms. The grammar
// admits exactly three: "status.state == done", "has_evidence:<type>[:result]",
// and "has_contract". Everything else fails compilation.
type Token string

const (
	TokenNone        Token = ""
	TokenStatusDone  Token = "status.state == done"
	TokenHasEvidence Token = "has_evidence"
	TokenHasContract Token = "has_contract"
)

// Check is one gate check compiled into its locked, typed representation.
// Evaluation switches on Kind and Token; no string parsing happens after
// compilation.
type Check struct {
	CheckID     string `json:"check_id"`
	GateID      string `json:"gate_id"`
	GateType    string `json:"gate_type"` // "phase" or "global"
	Description string `json:"description,omitempty"`

	Kind    Kind     `json:"kind"`
	Targets []string `json:"targets"`

	Token          Token  `json:"condition_token,omitempty"`
	EvidenceType   string `json:"evidence_type,omitempty"`
	EvidenceResult string `json:"evidence_result,omitempty"`

	// Field/Value constrain node-field-present checks. Field defaults to
	// "decision_value"; Value empty means any value satisfies.
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`

	ArtifactType string `json:"artifact_type,omitempty"`
	Section      string `json:"section,omitempty"`
}

// compilePredicate turns one raw predicate into a Check, resolving its
// targets and validating its condition against the locked grammar.
func compilePredicate(raw catalog.Predicate, check catalog.GateCheck, gate *catalog.Gate, gateType string, idx *Indices, cat *catalog.Catalog) (Check, error) {
	compiled := Check{
		CheckID:      check.ID,
		GateID:       gate.ID,
		GateType:     gateType,
		Description:  check.Description,
		Field:        raw.Field,
		Value:        raw.Value,
		ArtifactType: raw.ArtifactType,
		Section:      raw.Section,
	}

	kind := Kind(raw.Kind)
	switch kind {
	case KindNodeFieldPresent, KindEvidenceMeets, KindAllOf, KindADRHasSection, KindArtifactExists:
		compiled.Kind = kind
	default:
		return Check{}, errors.WithMetadata(errors.CodeCompilationUnknownKind,
			fmt.Sprintf("gate %s check %s: predicate kind %q is not in the locked grammar", gate.ID, check.ID, raw.Kind),
			map[string]string{"gate_id": gate.ID, "check_id": check.ID, "kind": raw.Kind})
	}

	token, evType, evResult, err := parseCondition(raw.Condition, gate.ID, check.ID)
	if err != nil {
		return Check{}, err
	}
	compiled.Token = token
	compiled.EvidenceType = evType
	compiled.EvidenceResult = evResult

	if err := bindCondition(&compiled, gate.ID, check.ID); err != nil {
		return Check{}, err
	}

	targets, err := resolveTargets(raw, idx, cat)
	if err != nil {
		return Check{}, errors.WithMetadata(errors.CodeCompilationBadTargets,
			fmt.Sprintf("gate %s check %s: %v", gate.ID, check.ID, err),
			map[string]string{"gate_id": gate.ID, "check_id": check.ID})
	}
	compiled.Targets = targets

	return compiled, nil
}

// parseCondition validates a raw condition string against the three
// locked token forms. An empty condition is legal for kinds that do not
// need one; bindCondition enforces per-kind requirements.
func parseCondition(condition, gateID, checkID string) (Token, string, string, error) {
	switch {
	case condition == "":
		return TokenNone, "", "", nil
	case condition == string(TokenStatusDone):
		return TokenStatusDone, "", "", nil
	case condition == string(TokenHasContract):
		return TokenHasContract, "", "", nil
	case strings.HasPrefix(condition, "has_evidence:"):
		parts := strings.Split(condition, ":")
		switch len(parts) {
		case 2:
			if parts[1] == "" {
				break
			}
			return TokenHasEvidence, parts[1], "", nil
		case 3:
			if parts[1] == "" || parts[2] == "" {
				break
			}
			return TokenHasEvidence, parts[1], parts[2], nil
		}
	}
	return TokenNone, "", "", errors.WithMetadata(errors.CodeCompilationUnknownToken,
		fmt.Sprintf("gate %s check %s: condition %q is not in the locked grammar", gateID, checkID, condition),
		map[string]string{"gate_id": gateID, "check_id": checkID, "token": condition})
}

// bindCondition enforces which tokens each kind accepts and fills in the
// kind's executable fields.
func bindCondition(c *Check, gateID, checkID string) error {
	badToken := func() error {
		return errors.WithMetadata(errors.CodeCompilationUnknownToken,
			fmt.Sprintf("gate %s check %s: token %q cannot drive a %s predicate", gateID, checkID, c.Token, c.Kind),
			map[string]string{"gate_id": gateID, "check_id": checkID, "token": string(c.Token), "kind": string(c.Kind)})
	}

	switch c.Kind {
	case KindNodeFieldPresent:
		switch c.Token {
		case TokenStatusDone:
			// The locked status token reduces to a field presence check.
			c.Field = "status.state"
			c.Value = "done"
		case TokenNone:
			if c.Field == "" {
				c.Field = "decision_value"
			}
		default:
			return badToken()
		}
	case KindEvidenceMeets:
		if c.Token != TokenHasEvidence {
			return badToken()
		}
	case KindAllOf:
		if c.Token != TokenNone {
			return badToken()
		}
	case KindADRHasSection:
		if c.Token != TokenHasContract && c.Token != TokenNone {
			return badToken()
		}
		c.Token = TokenHasContract
	case KindArtifactExists:
		if c.Token != TokenNone {
			return badToken()
		}
		if c.ArtifactType == "" {
			return errors.WithMetadata(errors.CodeCompilationBadTargets,
				fmt.Sprintf("gate %s check %s: artifact-exists requires artifact_type", gateID, checkID),
				map[string]string{"gate_id": gateID, "check_id": checkID})
		}
	}
	return nil
}

// resolveTargets normalizes the three target spellings into one ordered
// slice. A singular target becomes a one-element sequence; a query is
// resolved against the indices with phase, then level, then tag filters.
func resolveTargets(raw catalog.Predicate, idx *Indices, cat *catalog.Catalog) ([]string, error) {
	switch {
	case raw.Target != "":
		return []string{raw.Target}, nil
	case len(raw.Targets) > 0:
		out := make([]string, len(raw.Targets))
		copy(out, raw.Targets)
		return out, nil
	case raw.Query != nil:
		return resolveQuery(raw.Query, idx, cat), nil
	}
	return nil, fmt.Errorf("predicate names no target, targets, or query")
}

func resolveQuery(q *catalog.TargetQuery, idx *Indices, cat *catalog.Catalog) []string {
	var targets []string
	if q.Phase != "" {
		targets = append(targets, idx.PhaseToNodes[q.Phase]...)
	} else {
		for _, phase := range cat.Phases {
			for _, node := range phase.Nodes {
				targets = append(targets, node.ID)
			}
		}
	}

	if q.Level != "" {
		var filtered []string
		for _, id := range targets {
			if node := cat.NodeByID(id); node != nil && node.Level == q.Level {
				filtered = append(filtered, id)
			}
		}
		targets = filtered
	}

	if len(q.Tags) > 0 {
		var filtered []string
		for _, id := range targets {
			node := cat.NodeByID(id)
			if node == nil {
				continue
			}
			if hasAllTags(node, q.Tags) {
				filtered = append(filtered, id)
			}
		}
		targets = filtered
	}

	return targets
}

func hasAllTags(node *catalog.Node, required []string) bool {
	tags := make(map[string]struct{}, len(node.Tags))
	for _, tag := range node.Tags {
		tags[tag] = struct{}{}
	}
	for _, tag := range required {
		if _, ok := tags[tag]; !ok {
			return false
		}
	}
	return true
}
