// Package overlay models the caller-supplied project state evaluated
// against compiled gates. The engine holds no state of its own; every
// evaluation and migration receives an overlay from the caller.
package overlay

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cprima/methodology-advisor/internal/platform/errors"
)

// Overlay is per-node project state keyed by node id.
type Overlay struct {
	Nodes map[string]NodeState `json:"nodes" validate:"dive"`
}

// NodeState is the caller's record for one node.
type NodeState struct {
	Status        StatusEntry       `json:"status"`
	DecisionValue map[string]any    `json:"decision_value,omitempty"`
	Evidence      []Evidence        `json:"evidence,omitempty" validate:"dive"`
	Artifacts     map[string]string `json:"artifacts,omitempty"`
}

// StatusEntry carries the node's lifecycle state.
type StatusEntry struct {
	State string `json:"state" validate:"required,oneof=done pending blocked"`
	Cause string `json:"cause,omitempty"`
}

// Evidence is one recorded piece of evidence attached to a node.
type Evidence struct {
	Type    string `json:"type" validate:"required"`
	Result  string `json:"result,omitempty"`
	Details string `json:"details,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the overlay's shape. Failures are request-scoped and
// reported with the offending node and field.
func (o *Overlay) Validate() error {
	for nodeID, state := range o.Nodes {
		if err := validate.Struct(state); err != nil {
			var fields []string
			var verrs validator.ValidationErrors
			if stderrors.As(err, &verrs) {
				for _, fe := range verrs {
					fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
				}
			}
			return errors.WithMetadata(errors.CodeOverlayInvalid,
				fmt.Sprintf("overlay node %s: %s", nodeID, strings.Join(fields, ", ")),
				map[string]string{"node_id": nodeID})
		}
	}
	return nil
}

// Node returns the state for a node id and whether the overlay has one.
func (o *Overlay) Node(id string) (NodeState, bool) {
	state, ok := o.Nodes[id]
	return state, ok
}

// HasEvidence reports whether the node carries evidence of the given
// type, and when result is non-empty, with that result.
func (s NodeState) HasEvidence(evType, result string) bool {
	for _, ev := range s.Evidence {
		if ev.Type != evType {
			continue
		}
		if result == "" || ev.Result == result {
			return true
		}
	}
	return false
}

// FieldPresent reports whether the named field is present on the node
// and, when value is non-empty, equals it. Fields are dotted paths into
// the state; "status.state" and "decision_value" keys are recognized.
func (s NodeState) FieldPresent(field, value string) bool {
	switch {
	case field == "status.state":
		if s.Status.State == "" {
			return false
		}
		return value == "" || s.Status.State == value
	case field == "decision_value":
		return len(s.DecisionValue) > 0
	case strings.HasPrefix(field, "decision_value."):
		key := strings.TrimPrefix(field, "decision_value.")
		v, ok := s.DecisionValue[key]
		if !ok {
			return false
		}
		if value == "" {
			return true
		}
		return fmt.Sprintf("%v", v) == value
	}
	return false
}
