// Package gate evaluates compiled gate checks against a caller-supplied
// state overlay. Evaluation is pure: it reads the artifact and the
// overlay and mutates neither.
package gate

import (
	"fmt"
	"strings"

	"github.com/cprima/methodology-advisor/internal/catalog/compile"
	"github.com/cprima/methodology-advisor/internal/overlay"
	"github.com/cprima/methodology-advisor/internal/platform/errors"
)

// ContractChecker answers contract document questions the overlay alone
// cannot. Callers that have no checker pass nil; adr-has-section checks
// then fail closed.
type ContractChecker interface {
	// ADRHasSection reports whether the contract document at ref
	// contains the named section.
	ADRHasSection(ref, section string) bool
}

// Evaluation is the result of evaluating one gate, or all gates when
// the gate id was empty.
type Evaluation struct {
	GateID      string        `json:"gate_id,omitempty"`
	Pass        bool          `json:"pass"`
	TotalChecks int           `json:"total_checks"`
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	Checks      []CheckResult `json:"checks"`
}

// CheckResult is the outcome of one compiled check.
type CheckResult struct {
	CheckID      string   `json:"check_id"`
	GateID       string   `json:"gate_id"`
	Pass         bool     `json:"pass"`
	Message      string   `json:"message"`
	Targets      []string `json:"targets"`
	FirstFailing string   `json:"first_failing,omitempty"`
	Failures     []string `json:"failures,omitempty"`
}

// Evaluate runs the named gate's checks against the overlay. An empty
// gateID evaluates every compiled check. An unknown gateID is a
// request-scoped error; an invalid overlay likewise.
func Evaluate(art *compile.Artifact, gateID string, ov *overlay.Overlay, contracts ContractChecker) (*Evaluation, error) {
	if ov == nil {
		ov = &overlay.Overlay{}
	}
	if err := ov.Validate(); err != nil {
		return nil, err
	}

	var checks []*compile.Check
	if gateID == "" {
		for i := range art.Checks {
			checks = append(checks, &art.Checks[i])
		}
	} else {
		checks = art.GateChecks(gateID)
		if checks == nil {
			return nil, errors.WithMetadata(errors.CodeGateUnknown,
				fmt.Sprintf("gate %s is not in the compiled catalog (known gates: %s)", gateID, strings.Join(art.GateIDs(), ", ")),
				map[string]string{"gate_id": gateID})
		}
	}

	ev := &Evaluation{GateID: gateID, TotalChecks: len(checks)}
	eval := evaluator{art: art, overlay: ov, contracts: contracts}
	for _, check := range checks {
		result := eval.check(check, nil)
		if result.Pass {
			ev.Passed++
		} else {
			ev.Failed++
		}
		ev.Checks = append(ev.Checks, result)
	}
	ev.Pass = ev.Failed == 0

	return ev, nil
}

type evaluator struct {
	art       *compile.Artifact
	overlay   *overlay.Overlay
	contracts ContractChecker
}

// check evaluates one compiled check. visiting carries the all-of
// recursion path for cycle detection.
func (e evaluator) check(c *compile.Check, visiting map[string]bool) CheckResult {
	result := CheckResult{
		CheckID: c.CheckID,
		GateID:  c.GateID,
		Targets: c.Targets,
	}

	switch c.Kind {
	case compile.KindAllOf:
		result.Failures = e.allOf(c, visiting)
	default:
		for _, target := range c.Targets {
			if !e.target(c, target) {
				result.Failures = append(result.Failures, target)
			}
		}
	}

	result.Pass = len(result.Failures) == 0
	if !result.Pass {
		result.FirstFailing = result.Failures[0]
	}
	result.Message = message(c, result)

	return result
}

// target evaluates one non-composite check against a single target node.
func (e evaluator) target(c *compile.Check, nodeID string) bool {
	state, ok := e.overlay.Node(nodeID)
	if !ok {
		return false
	}

	switch c.Kind {
	case compile.KindNodeFieldPresent:
		return state.FieldPresent(c.Field, c.Value)
	case compile.KindEvidenceMeets:
		return state.HasEvidence(c.EvidenceType, c.EvidenceResult)
	case compile.KindADRHasSection:
		ref := state.Artifacts["adr"]
		if ref == "" || e.contracts == nil {
			return false
		}
		return e.contracts.ADRHasSection(ref, c.Section)
	case compile.KindArtifactExists:
		// The overlay's artifact map is authoritative; attached
		// references are taken at their word.
		return state.Artifacts[c.ArtifactType] != ""
	}
	return false
}

// allOf resolves composite targets as gate or check ids against the
// compiled table and returns the failing ones. A target on the current
// recursion path is a cycle and fails closed.
func (e evaluator) allOf(c *compile.Check, visiting map[string]bool) []string {
	if visiting == nil {
		visiting = make(map[string]bool)
	}
	visiting[c.CheckID] = true
	defer delete(visiting, c.CheckID)

	var failures []string
	for _, target := range c.Targets {
		if visiting[target] {
			failures = append(failures, target)
			continue
		}
		if refs := e.art.GateChecks(target); refs != nil {
			if visiting[target] || !e.gatePass(target, refs, visiting) {
				failures = append(failures, target)
			}
			continue
		}
		ref := e.art.CheckByID(target)
		if ref == nil {
			failures = append(failures, target)
			continue
		}
		if !e.check(ref, visiting).Pass {
			failures = append(failures, target)
		}
	}
	return failures
}

func (e evaluator) gatePass(gateID string, checks []*compile.Check, visiting map[string]bool) bool {
	if visiting[gateID] {
		return false
	}
	visiting[gateID] = true
	defer delete(visiting, gateID)

	for _, check := range checks {
		if !e.check(check, visiting).Pass {
			return false
		}
	}
	return true
}

func message(c *compile.Check, r CheckResult) string {
	if r.Pass {
		return fmt.Sprintf("check %s passed (%d targets)", c.CheckID, len(c.Targets))
	}

	switch c.Kind {
	case compile.KindNodeFieldPresent:
		return fmt.Sprintf("check %s failed: %s missing %s", c.CheckID, r.FirstFailing, describeField(c))
	case compile.KindEvidenceMeets:
		return fmt.Sprintf("check %s failed: %s missing evidence %s", c.CheckID, r.FirstFailing, describeEvidence(c))
	case compile.KindAllOf:
		return fmt.Sprintf("check %s failed: required checks not satisfied: %s", c.CheckID, strings.Join(r.Failures, ", "))
	case compile.KindADRHasSection:
		return fmt.Sprintf("check %s failed: %s has no contract section %q", c.CheckID, r.FirstFailing, c.Section)
	case compile.KindArtifactExists:
		return fmt.Sprintf("check %s failed: %s missing artifact %q", c.CheckID, r.FirstFailing, c.ArtifactType)
	}
	return fmt.Sprintf("check %s failed", c.CheckID)
}

func describeField(c *compile.Check) string {
	if c.Value != "" {
		return fmt.Sprintf("%s == %s", c.Field, c.Value)
	}
	return c.Field
}

func describeEvidence(c *compile.Check) string {
	if c.EvidenceResult != "" {
		return c.EvidenceType + ":" + c.EvidenceResult
	}
	return c.EvidenceType
}
