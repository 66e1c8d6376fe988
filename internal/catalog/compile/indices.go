package compile

import "github.com/cprima/methodology-advisor/internal/catalog"

// Indices are the query-optimized lookup structures built from the
// validated active catalog. phase_to_nodes preserves document order;
// the remaining maps bucket node ids by the attribute they index.
type Indices struct {
	NodeToPhase      map[string]string   `json:"node_to_phase"`
	PhaseToNodes     map[string][]string `json:"phase_to_nodes"`
	TagIndex         map[string][]string `json:"tag_to_nodes"`
	DoorIndex        map[string][]string `json:"door_to_nodes"`
	LevelIndex       map[string][]string `json:"level_to_nodes"`
	DoorLevelBuckets map[string][]string `json:"door_level_buckets"` // "door:level" keys
}

func buildIndices(cat *catalog.Catalog) *Indices {
	idx := &Indices{
		NodeToPhase:      make(map[string]string),
		PhaseToNodes:     make(map[string][]string),
		TagIndex:         make(map[string][]string),
		DoorIndex:        make(map[string][]string),
		LevelIndex:       make(map[string][]string),
		DoorLevelBuckets: make(map[string][]string),
	}

	for _, phase := range cat.Phases {
		idx.PhaseToNodes[phase.ID] = []string{}
		for _, node := range phase.Nodes {
			idx.NodeToPhase[node.ID] = phase.ID
			idx.PhaseToNodes[phase.ID] = append(idx.PhaseToNodes[phase.ID], node.ID)

			for _, tag := range node.Tags {
				idx.TagIndex[tag] = append(idx.TagIndex[tag], node.ID)
			}
			if node.Door != "" {
				idx.DoorIndex[string(node.Door)] = append(idx.DoorIndex[string(node.Door)], node.ID)
			}
			if node.Level != "" {
				idx.LevelIndex[node.Level] = append(idx.LevelIndex[node.Level], node.ID)
			}
			if node.Door != "" && node.Level != "" {
				key := string(node.Door) + ":" + node.Level
				idx.DoorLevelBuckets[key] = append(idx.DoorLevelBuckets[key], node.ID)
			}
		}
	}

	return idx
}
