package migrate

import (
	"fmt"
	"sort"

	"github.com/cprima/methodology-advisor/internal/catalog"
	"github.com/cprima/methodology-advisor/internal/overlay"
)

// Result is the outcome of re-keying an overlay from one catalog
// version onto another. Nothing is lost silently: every dropped entry
// carries a warning.
type Result struct {
	FromVersion string `json:"from_version"`
	ToVersion   string `json:"to_version"`

	Overlay *overlay.Overlay `json:"overlay"`

	Carried []string `json:"carried,omitempty"`
	Renamed []Rename `json:"renamed,omitempty"`
	Dropped []string `json:"dropped,omitempty"`

	// NodesToAdd lists node ids new in the target with no overlay entry
	// yet, with advisory availability for each.
	NodesToAdd []NodeToAdd `json:"nodes_to_add,omitempty"`

	Warnings   []string `json:"warnings,omitempty"`
	Compatible bool     `json:"compatible"`
}

// NodeToAdd is one target node the migrated overlay does not cover yet.
type NodeToAdd struct {
	ID                string `json:"id"`
	Phase             string `json:"phase"`
	AdvisoryAvailable bool   `json:"advisory_available"`
}

// Apply re-keys ov from the source catalog onto the target catalog.
// Entries for unchanged ids carry verbatim; entries for renamed ids
// carry under the new id; entries for ids absent from the target are
// dropped with a warning. The input overlay is never mutated.
func Apply(from, to *catalog.Catalog, ov *overlay.Overlay) *Result {
	if ov == nil {
		ov = &overlay.Overlay{}
	}

	res := &Result{
		FromVersion: from.Program.Version,
		ToVersion:   to.Program.Version,
		Overlay:     &overlay.Overlay{Nodes: make(map[string]overlay.NodeState, len(ov.Nodes))},
	}

	targetIDs := make(map[string]bool)
	for i := range to.Phases {
		for j := range to.Phases[i].Nodes {
			targetIDs[to.Phases[i].Nodes[j].ID] = true
		}
	}
	renamed := renameMap(to)

	ids := make([]string, 0, len(ov.Nodes))
	for id := range ov.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		state := ov.Nodes[id]
		switch {
		case targetIDs[id]:
			res.Overlay.Nodes[id] = state
			res.Carried = append(res.Carried, id)
		case renamed[id] != "":
			newID := renamed[id]
			res.Overlay.Nodes[newID] = state
			res.Renamed = append(res.Renamed, Rename{From: id, To: newID})
		default:
			res.Dropped = append(res.Dropped, id)
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("node %s is absent from version %s; its state was dropped", id, to.Program.Version))
		}
	}

	for i := range to.Phases {
		phase := &to.Phases[i]
		for j := range phase.Nodes {
			node := &phase.Nodes[j]
			if _, covered := res.Overlay.Nodes[node.ID]; covered {
				continue
			}
			res.NodesToAdd = append(res.NodesToAdd, NodeToAdd{
				ID:                node.ID,
				Phase:             phase.ID,
				AdvisoryAvailable: node.Advisory != nil,
			})
		}
	}

	res.Compatible = len(res.Dropped) == 0
	return res
}
