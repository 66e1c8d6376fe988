package compile

import "github.com/cprima/methodology-advisor/internal/catalog"

// Registry is the advisory lookup: for every phase and node of the
// active catalog it records whether advisory content is present and, if
// so, how many items each section holds. Absence of advisory is legal
// and distinct from an advisory with empty sections.
type Registry struct {
	PhaseAdvisory map[string]Entry `json:"phase_advisory"`
	NodeAdvisory  map[string]Entry `json:"node_advisory"`
}

// Entry records advisory presence for one phase or node.
type Entry struct {
	Present bool           `json:"present"`
	Counts  map[string]int `json:"counts,omitempty"`
}

func buildRegistry(cat *catalog.Catalog) Registry {
	reg := Registry{
		PhaseAdvisory: make(map[string]Entry),
		NodeAdvisory:  make(map[string]Entry),
	}

	for _, phase := range cat.Phases {
		reg.PhaseAdvisory[phase.ID] = advisoryEntry(phase.Advisory, true)
		for _, node := range phase.Nodes {
			reg.NodeAdvisory[node.ID] = advisoryEntry(node.Advisory, false)
		}
	}

	return reg
}

func advisoryEntry(adv *catalog.Advisory, phaseScope bool) Entry {
	if adv == nil {
		return Entry{Present: false}
	}

	counts := map[string]int{
		"examples":         len(adv.Examples),
		"templates":        len(adv.Templates),
		"anti_patterns":    len(adv.AntiPatterns),
		"success_criteria": len(adv.SuccessCriteria),
	}
	if phaseScope {
		counts["decision_trees"] = len(adv.DecisionTrees)
		counts["tool_recommendations"] = len(adv.ToolRecommendations)
		counts["related_resources"] = len(adv.RelatedResources)
		counts["conversation_starters"] = len(adv.ConversationStarters)
	}

	return Entry{Present: true, Counts: counts}
}
