// Package validate runs the ordered, fail-fast invariant checks over the
// selected catalog pair. The first failure aborts with a typed error; no
// partial output is ever produced.
package validate

import (
	"fmt"
	"reflect"

	"github.com/cprima/methodology-advisor/internal/catalog"
	"github.com/cprima/methodology-advisor/internal/platform/errors"
)

// Catalogs validates the active/previous catalog pair. Checks run in a
// fixed order and the first failure wins:
//
//  1. canonical-current: the active catalog's levels, tags, and global
//     gates must equal the previous catalog's (the active version is
//     authoritative for shared vocabularies)
//  2. fingerprint format on both programs
//  3. gate id uniqueness across phase gates and global gates
//  4. every declared gate carries at least one check
//  5. referential integrity of blocks, gate applies_to, and evidence
//     policy references
//
// Validation never mutates its input.
func Catalogs(current, previous *catalog.Catalog) error {
	checks := []func(current, previous *catalog.Catalog) error{
		checkCanonicalCurrent,
		checkFingerprints,
		checkGateIDsUnique,
		checkGatesNotEmpty,
		checkReferences,
	}
	for _, check := range checks {
		if err := check(current, previous); err != nil {
			return err
		}
	}
	return nil
}

// checkCanonicalCurrent enforces equality of the shared vocabularies.
// The comparison is strict equality, not subset: a previous catalog that
// is missing (or carries extra) levels, tags, or global gates fails.
func checkCanonicalCurrent(current, previous *catalog.Catalog) error {
	if !reflect.DeepEqual(current.Levels, previous.Levels) {
		return canonicalMismatch("levels", current, previous)
	}
	if !reflect.DeepEqual(current.Tags, previous.Tags) {
		return canonicalMismatch("tags", current, previous)
	}

	if len(current.GlobalGates) != len(previous.GlobalGates) {
		return canonicalMismatch("global_gates", current, previous)
	}
	for i := range current.GlobalGates {
		if current.GlobalGates[i].ID != previous.GlobalGates[i].ID {
			return errors.WithMetadata(errors.CodeValidationCanonicalMismatch,
				fmt.Sprintf("global_gates[%d].id differs: current=%q previous=%q",
					i, current.GlobalGates[i].ID, previous.GlobalGates[i].ID),
				map[string]string{
					"rule":     "canonical-current",
					"field":    fmt.Sprintf("global_gates[%d].id", i),
					"current":  current.GlobalGates[i].ID,
					"previous": previous.GlobalGates[i].ID,
				})
		}
		if !reflect.DeepEqual(current.GlobalGates[i], previous.GlobalGates[i]) {
			return canonicalMismatch(fmt.Sprintf("global_gates[%d]", i), current, previous)
		}
	}
	return nil
}

func canonicalMismatch(field string, current, previous *catalog.Catalog) error {
	return errors.WithMetadata(errors.CodeValidationCanonicalMismatch,
		fmt.Sprintf("%s differ between active %s and previous %s (active is canonical)",
			field, current.Program.Version, previous.Program.Version),
		map[string]string{
			"rule":     "canonical-current",
			"field":    field,
			"current":  current.Program.Version,
			"previous": previous.Program.Version,
		})
}

func checkFingerprints(current, previous *catalog.Catalog) error {
	for _, c := range []*catalog.Catalog{current, previous} {
		if !catalog.ValidFingerprint(c.Program.Fingerprint) {
			return errors.WithMetadata(errors.CodeValidationFingerprintFormat,
				fmt.Sprintf("catalog %s fingerprint must be 64 lowercase hex chars, got %q",
					c.Program.Version, c.Program.Fingerprint),
				map[string]string{
					"rule":        "fingerprint-format",
					"version":     c.Program.Version,
					"fingerprint": c.Program.Fingerprint,
				})
		}
	}
	return nil
}

// checkGateIDsUnique walks phase gates then global gates of the active
// catalog; ids must be unique across both scopes combined.
func checkGateIDsUnique(current, _ *catalog.Catalog) error {
	seen := make(map[string]struct{})

	record := func(id string) error {
		if id == "" {
			return nil
		}
		if _, dup := seen[id]; dup {
			return errors.WithMetadata(errors.CodeValidationDuplicateGateID,
				fmt.Sprintf("duplicate gate id %q", id),
				map[string]string{"rule": "gate-id-uniqueness", "gate_id": id})
		}
		seen[id] = struct{}{}
		return nil
	}

	for _, phase := range current.Phases {
		if phase.Gate == nil {
			continue
		}
		if err := record(phase.Gate.ID); err != nil {
			return err
		}
	}
	for _, gate := range current.GlobalGates {
		if err := record(gate.ID); err != nil {
			return err
		}
	}
	return nil
}

// checkGatesNotEmpty rejects gates declared without checks. A checkless
// gate would compile to nothing and its id would be unanswerable at
// evaluation time.
func checkGatesNotEmpty(current, _ *catalog.Catalog) error {
	emptyGate := func(id string) error {
		return errors.WithMetadata(errors.CodeValidationEmptyGate,
			fmt.Sprintf("gate %q declares no checks", id),
			map[string]string{"rule": "gate-checks-nonempty", "gate_id": id})
	}

	for _, phase := range current.Phases {
		if phase.Gate != nil && len(phase.Gate.Checks) == 0 {
			return emptyGate(phase.Gate.ID)
		}
	}
	for _, gate := range current.GlobalGates {
		if len(gate.Checks) == 0 {
			return emptyGate(gate.ID)
		}
	}
	return nil
}

// checkReferences resolves every Block.on, Gate.applies_to, and evidence
// policy applies_to reference against the same catalog's node and phase
// ids. Both catalogs are checked independently.
func checkReferences(current, previous *catalog.Catalog) error {
	for _, c := range []*catalog.Catalog{current, previous} {
		known := make(map[string]struct{})
		for _, phase := range c.Phases {
			known[phase.ID] = struct{}{}
			for _, node := range phase.Nodes {
				known[node.ID] = struct{}{}
			}
		}

		dangling := func(kind, owner, ref string) error {
			return errors.WithMetadata(errors.CodeValidationDanglingReference,
				fmt.Sprintf("catalog %s: %s %q references unknown id %q",
					c.Program.Version, kind, owner, ref),
				map[string]string{
					"rule":      "referential-integrity",
					"version":   c.Program.Version,
					"kind":      kind,
					"owner":     owner,
					"reference": ref,
				})
		}

		for _, phase := range c.Phases {
			for _, node := range phase.Nodes {
				for _, block := range node.Blocks {
					if _, ok := known[block.On]; !ok {
						return dangling("block", node.ID, block.On)
					}
				}
				for _, policy := range node.EvidencePolicy {
					if policy.AppliesTo == "" {
						continue
					}
					if _, ok := known[policy.AppliesTo]; !ok {
						return dangling("evidence policy", node.ID, policy.AppliesTo)
					}
				}
			}
			if phase.Gate != nil {
				for _, ref := range phase.Gate.AppliesTo {
					if _, ok := known[ref]; !ok {
						return dangling("gate", phase.Gate.ID, ref)
					}
				}
			}
		}
		for _, gate := range c.GlobalGates {
			for _, ref := range gate.AppliesTo {
				if _, ok := known[ref]; !ok {
					return dangling("gate", gate.ID, ref)
				}
			}
		}
	}
	return nil
}
