// Package migrate computes structural diffs between catalog versions
// and re-keys caller overlays across them. Both operations are pure and
// total: any pair of valid catalogs diffs, any overlay migrates.
package migrate

import (
	"fmt"
	"sort"

	"github.com/cprima/methodology-advisor/internal/catalog"
)

// Diff is the structural delta between two catalog versions.
type Diff struct {
	FromVersion     string `json:"from_version"`
	ToVersion       string `json:"to_version"`
	FromFingerprint string `json:"from_fingerprint"`
	ToFingerprint   string `json:"to_fingerprint"`

	Phases  IDDelta  `json:"phases"`
	Nodes   IDDelta  `json:"nodes"`
	Gates   IDDelta  `json:"gates"`
	Renames []Rename `json:"renames,omitempty"`

	// AdvisoryAdded lists node and phase ids whose advisory content is
	// present in the target but not the source.
	AdvisoryAdded []string `json:"advisory_added,omitempty"`
}

// IDDelta buckets ids by how they changed between versions.
type IDDelta struct {
	Added     []string `json:"added,omitempty"`
	Removed   []string `json:"removed,omitempty"`
	Changed   []string `json:"changed,omitempty"`
	Unchanged []string `json:"unchanged,omitempty"`
}

// Rename is one declared node identity link between versions.
type Rename struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Compute diffs source against target. Renames come from the target's
// declared renamed_from links; a renamed node counts as neither added
// nor removed.
func Compute(from, to *catalog.Catalog) *Diff {
	d := &Diff{
		FromVersion:     from.Program.Version,
		ToVersion:       to.Program.Version,
		FromFingerprint: from.Program.Fingerprint,
		ToFingerprint:   to.Program.Fingerprint,
	}

	renamed := renameMap(to)
	for old, now := range renamed {
		d.Renames = append(d.Renames, Rename{From: old, To: now})
	}
	sort.Slice(d.Renames, func(i, j int) bool { return d.Renames[i].From < d.Renames[j].From })

	d.Phases = diffPhases(from, to)
	d.Nodes = diffNodes(from, to, renamed)
	d.Gates = diffGates(from, to)
	d.AdvisoryAdded = advisoryAdded(from, to)

	return d
}

// renameMap extracts old-id to new-id links declared on the target.
func renameMap(to *catalog.Catalog) map[string]string {
	renamed := make(map[string]string)
	for _, phase := range to.Phases {
		for _, node := range phase.Nodes {
			if node.RenamedFrom != "" {
				renamed[node.RenamedFrom] = node.ID
			}
		}
	}
	return renamed
}

func diffPhases(from, to *catalog.Catalog) IDDelta {
	fromPhases := make(map[string]*catalog.Phase)
	for i := range from.Phases {
		fromPhases[from.Phases[i].ID] = &from.Phases[i]
	}

	var delta IDDelta
	seen := make(map[string]bool)
	for i := range to.Phases {
		phase := &to.Phases[i]
		seen[phase.ID] = true
		old, ok := fromPhases[phase.ID]
		switch {
		case !ok:
			delta.Added = append(delta.Added, phase.ID)
		case old.Title != phase.Title:
			delta.Changed = append(delta.Changed, phase.ID)
		default:
			delta.Unchanged = append(delta.Unchanged, phase.ID)
		}
	}
	for i := range from.Phases {
		if !seen[from.Phases[i].ID] {
			delta.Removed = append(delta.Removed, from.Phases[i].ID)
		}
	}
	return delta
}

func diffNodes(from, to *catalog.Catalog, renamed map[string]string) IDDelta {
	fromNodes := make(map[string]*catalog.Node)
	for i := range from.Phases {
		for j := range from.Phases[i].Nodes {
			node := &from.Phases[i].Nodes[j]
			fromNodes[node.ID] = node
		}
	}
	renamedOld := make(map[string]bool, len(renamed))
	for old := range renamed {
		renamedOld[old] = true
	}

	var delta IDDelta
	seen := make(map[string]bool)
	for i := range to.Phases {
		for j := range to.Phases[i].Nodes {
			node := &to.Phases[i].Nodes[j]
			seen[node.ID] = true

			old, ok := fromNodes[node.ID]
			if !ok {
				if node.RenamedFrom != "" && fromNodes[node.RenamedFrom] != nil {
					// Identity survives the rename; the rename list
					// carries it, not added/removed.
					continue
				}
				delta.Added = append(delta.Added, node.ID)
				continue
			}
			if nodeChanged(old, node) {
				delta.Changed = append(delta.Changed, node.ID)
			} else {
				delta.Unchanged = append(delta.Unchanged, node.ID)
			}
		}
	}
	for id := range fromNodes {
		if !seen[id] && !renamedOld[id] {
			delta.Removed = append(delta.Removed, id)
		}
	}
	sort.Strings(delta.Removed)
	return delta
}

func nodeChanged(old, now *catalog.Node) bool {
	if old.Title != now.Title || old.Door != now.Door || old.Level != now.Level {
		return true
	}
	if len(old.Tags) != len(now.Tags) {
		return true
	}
	for i := range old.Tags {
		if old.Tags[i] != now.Tags[i] {
			return true
		}
	}
	return false
}

func diffGates(from, to *catalog.Catalog) IDDelta {
	collect := func(cat *catalog.Catalog) map[string]int {
		gates := make(map[string]int)
		for i := range cat.Phases {
			if gate := cat.Phases[i].Gate; gate != nil {
				gates[gate.ID] = len(gate.Checks)
			}
		}
		for i := range cat.GlobalGates {
			gates[cat.GlobalGates[i].ID] = len(cat.GlobalGates[i].Checks)
		}
		return gates
	}

	fromGates := collect(from)
	toGates := collect(to)

	var delta IDDelta
	for id, checks := range toGates {
		oldChecks, ok := fromGates[id]
		switch {
		case !ok:
			delta.Added = append(delta.Added, id)
		case oldChecks != checks:
			delta.Changed = append(delta.Changed, id)
		default:
			delta.Unchanged = append(delta.Unchanged, id)
		}
	}
	for id := range fromGates {
		if _, ok := toGates[id]; !ok {
			delta.Removed = append(delta.Removed, id)
		}
	}
	sort.Strings(delta.Added)
	sort.Strings(delta.Removed)
	sort.Strings(delta.Changed)
	sort.Strings(delta.Unchanged)
	return delta
}

// advisoryAdded lists phase and node ids that gained advisory content.
func advisoryAdded(from, to *catalog.Catalog) []string {
	had := make(map[string]bool)
	for i := range from.Phases {
		phase := &from.Phases[i]
		if phase.Advisory != nil {
			had["phase:"+phase.ID] = true
		}
		for j := range phase.Nodes {
			if phase.Nodes[j].Advisory != nil {
				had["node:"+phase.Nodes[j].ID] = true
			}
		}
	}

	var added []string
	for i := range to.Phases {
		phase := &to.Phases[i]
		if phase.Advisory != nil && !had["phase:"+phase.ID] {
			added = append(added, fmt.Sprintf("phase:%s", phase.ID))
		}
		for j := range phase.Nodes {
			node := &phase.Nodes[j]
			if node.Advisory != nil && !had["node:"+node.ID] {
				added = append(added, fmt.Sprintf("node:%s", node.ID))
			}
		}
	}
	return added
}
