// Package compile builds the immutable compiled artifact from a
// validated catalog pair: bidirectional indices, the locked predicate
// table, and the advisory registry.
package compile

import "github.com/cprima/methodology-advisor/internal/catalog"

// Artifact is the compiled, query-optimized form of one validated
// ingest. It is built once, never patched, and safe to share by
// reference across concurrent callers.
type Artifact struct {
	Current  *catalog.Catalog `json:"-"`
	Previous *catalog.Catalog `json:"-"`

	Indices  *Indices `json:"indices"`
	Checks   []Check  `json:"gates"`
	Advisory Registry `json:"advisory"`

	checksByID   map[string]*Check
	checksByGate map[string][]*Check
}

// Compile builds the artifact from the validated catalog pair.
// Compilation is total over validated input: the only failure mode is a
// predicate outside the locked grammar.
func Compile(current, previous *catalog.Catalog) (*Artifact, error) {
	art := &Artifact{
		Current:  current,
		Previous: previous,
		Indices:  buildIndices(current),
		Advisory: buildRegistry(current),
	}

	appendGate := func(gate *catalog.Gate, gateType string) error {
		for _, check := range gate.Checks {
			compiled, err := compilePredicate(check.Predicate, check, gate, gateType, art.Indices, current)
			if err != nil {
				return err
			}
			art.Checks = append(art.Checks, compiled)
		}
		return nil
	}

	for i := range current.Phases {
		if current.Phases[i].Gate == nil {
			continue
		}
		if err := appendGate(current.Phases[i].Gate, "phase"); err != nil {
			return nil, err
		}
	}
	for i := range current.GlobalGates {
		if err := appendGate(&current.GlobalGates[i], "global"); err != nil {
			return nil, err
		}
	}

	art.index()
	return art, nil
}

func (a *Artifact) index() {
	a.checksByID = make(map[string]*Check, len(a.Checks))
	a.checksByGate = make(map[string][]*Check)
	for i := range a.Checks {
		check := &a.Checks[i]
		a.checksByID[check.CheckID] = check
		a.checksByGate[check.GateID] = append(a.checksByGate[check.GateID], check)
	}
}

// CheckByID returns the compiled check with the given id, or nil.
func (a *Artifact) CheckByID(id string) *Check {
	return a.checksByID[id]
}

// GateChecks returns the compiled checks of the given gate, in catalog
// order, or nil if the gate is unknown.
func (a *Artifact) GateChecks(gateID string) []*Check {
	return a.checksByGate[gateID]
}

// GateIDs returns every compiled gate id in sorted-stable catalog order.
func (a *Artifact) GateIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for i := range a.Checks {
		id := a.Checks[i].GateID
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
