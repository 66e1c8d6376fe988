// Package advisor serves best-effort advisory suggestions from the
// compiled artifact. Unlike gate evaluation, suggestion never fails: an
// unknown id or an empty match yields an answer, not an error.
package advisor

import (
	"sort"
	"strings"

	"github.com/cprima/methodology-advisor/internal/catalog"
	"github.com/cprima/methodology-advisor/internal/catalog/compile"
)

// Request narrows a suggestion query. Context is free text; the id and
// type fields are optional filters.
type Request struct {
	Context string `json:"context"`
	NodeID  string `json:"node_id,omitempty"`
	PhaseID string `json:"phase_id,omitempty"`
	// Type filters to one of examples, templates, anti_patterns,
	// success_criteria. Empty means all.
	Type string `json:"advisory_type,omitempty"`
}

// Suggestions is the advisory content selected for a request.
type Suggestions struct {
	Context     string       `json:"context"`
	Suggestions []Suggestion `json:"suggestions"`
	TotalItems  int          `json:"total_items"`

	// Notes carry best-effort diagnostics such as unknown ids with the
	// valid alternatives. They never abort the request.
	Notes []string `json:"notes,omitempty"`
}

// Suggestion is one advisory section drawn from a node or phase.
type Suggestion struct {
	Source string `json:"source"` // "node:<id>" or "phase:<id>"
	Type   string `json:"type"`
	Items  []any  `json:"items"`
	Score  int    `json:"-"`
}

var coreTypes = []string{"examples", "templates", "anti_patterns", "success_criteria"}

var phaseOnlyTypes = []string{"decision_trees", "tool_recommendations", "related_resources", "conversation_starters"}

// Suggest selects advisory content for the request against the served
// artifact. With a node or phase id it returns that scope's advisory;
// without either it keyword-matches the context against nodes that
// carry advisory, ranked by match count.
func Suggest(art *compile.Artifact, req Request) *Suggestions {
	out := &Suggestions{Context: req.Context, Suggestions: []Suggestion{}}
	types := coreTypes
	if req.Type != "" {
		types = []string{req.Type}
	}
	current := art.Current

	if req.NodeID != "" {
		node := current.NodeByID(req.NodeID)
		if node == nil {
			out.Notes = append(out.Notes, unknownIDNote("node_id", req.NodeID, current.NodeIDs()))
		} else {
			out.collect("node:"+node.ID, node.Advisory, types, 0)
		}
	}

	if req.PhaseID != "" {
		phase := current.PhaseByID(req.PhaseID)
		if phase == nil {
			var ids []string
			for i := range current.Phases {
				ids = append(ids, current.Phases[i].ID)
			}
			out.Notes = append(out.Notes, unknownIDNote("phase_id", req.PhaseID, ids))
		} else {
			out.collect("phase:"+phase.ID, phase.Advisory, types, 0)
			if req.Type == "" {
				out.collect("phase:"+phase.ID, phase.Advisory, phaseOnlyTypes, 0)
			}
		}
	}

	if req.NodeID == "" && req.PhaseID == "" {
		out.searchByContext(art, req.Context, types)
	}

	for _, s := range out.Suggestions {
		out.TotalItems += len(s.Items)
	}
	return out
}

// searchByContext keyword-matches the context against nodes the
// advisory registry marks present, ranked by how many keywords hit.
func (out *Suggestions) searchByContext(art *compile.Artifact, context string, types []string) {
	keywords := strings.Fields(strings.ToLower(context))
	if len(keywords) == 0 {
		return
	}

	type hit struct {
		node  *catalog.Node
		score int
	}
	var hits []hit
	for _, id := range art.Current.NodeIDs() {
		entry, ok := art.Advisory.NodeAdvisory[id]
		if !ok || !entry.Present {
			continue
		}
		node := art.Current.NodeByID(id)
		if node == nil {
			continue
		}
		if score := matchScore(node, keywords); score > 0 {
			hits = append(hits, hit{node: node, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	for _, h := range hits {
		out.collect("node:"+h.node.ID, h.node.Advisory, types, h.score)
	}
}

// matchScore counts context keywords found in the node's title, summary,
// and tags.
func matchScore(node *catalog.Node, keywords []string) int {
	haystack := strings.ToLower(node.Title + " " + node.Summary + " " + strings.Join(node.Tags, " "))
	score := 0
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			score++
		}
	}
	return score
}

// collect appends one suggestion per non-empty requested section.
func (out *Suggestions) collect(source string, adv *catalog.Advisory, types []string, score int) {
	if adv == nil {
		return
	}
	for _, t := range types {
		items := sectionItems(adv, t)
		if len(items) == 0 {
			continue
		}
		out.Suggestions = append(out.Suggestions, Suggestion{Source: source, Type: t, Items: items, Score: score})
	}
}

func sectionItems(adv *catalog.Advisory, t string) []any {
	var items []any
	switch t {
	case "examples":
		for _, v := range adv.Examples {
			items = append(items, v)
		}
	case "templates":
		for _, v := range adv.Templates {
			items = append(items, v)
		}
	case "anti_patterns":
		for _, v := range adv.AntiPatterns {
			items = append(items, v)
		}
	case "success_criteria":
		for _, v := range adv.SuccessCriteria {
			items = append(items, v)
		}
	case "decision_trees":
		for _, v := range adv.DecisionTrees {
			items = append(items, v)
		}
	case "tool_recommendations":
		for _, v := range adv.ToolRecommendations {
			items = append(items, v)
		}
	case "related_resources":
		for _, v := range adv.RelatedResources {
			items = append(items, v)
		}
	case "conversation_starters":
		for _, v := range adv.ConversationStarters {
			items = append(items, v)
		}
	}
	return items
}

func unknownIDNote(field, value string, valid []string) string {
	sorted := append([]string(nil), valid...)
	sort.Strings(sorted)
	return "unknown " + field + " " + value + "; valid: " + strings.Join(sorted, ", ")
}
