// Package ingest selects the active and previous catalog versions from a
// raw multi-version document and strips derived fields.
package ingest

import (
	"fmt"

	"github.com/cprima/methodology-advisor/internal/catalog"
	"github.com/cprima/methodology-advisor/internal/platform/errors"
)

// Selection is the outcome of picking catalog versions from a document.
type Selection struct {
	Current  *catalog.Catalog
	Previous *catalog.Catalog
}

// Select picks the active and previous catalogs from the document.
//
// The active catalog is the first entry, in document order, whose status
// is not frozen. The previous catalog is the entry whose version equals
// the active catalog's supersedes reference. Selection is explicit about
// its failure modes rather than trusting array ordering:
//
//   - no non-frozen entry: SELECTION_NO_ACTIVE_CATALOG
//   - active entry without a supersedes reference: SELECTION_MISSING_SUPERSEDES
//   - supersedes names a version absent from the document: SELECTION_DANGLING_SUPERSEDES
//
// Both selected catalogs have derived fields stripped before being
// returned, so nothing downstream ever depends on caller-regenerable
// search data.
func Select(doc catalog.Document) (Selection, error) {
	var current *catalog.Catalog
	for _, c := range doc {
		if c.Program.Status != catalog.StatusFrozen {
			current = c
			break
		}
	}
	if current == nil {
		return Selection{}, errors.New(errors.CodeSelectionNoActive,
			"no active catalog found (all catalog versions are frozen)")
	}

	supersedes := current.Program.Supersedes
	if supersedes == "" {
		return Selection{}, errors.WithMetadata(errors.CodeSelectionMissingSupersedes,
			fmt.Sprintf("active catalog %s has no supersedes reference", current.Program.Version),
			map[string]string{"version": current.Program.Version})
	}

	previous := doc.ByVersion(supersedes)
	if previous == nil {
		return Selection{}, errors.WithMetadata(errors.CodeSelectionDanglingSupersedes,
			fmt.Sprintf("previous catalog %s not found (referenced by active %s)", supersedes, current.Program.Version),
			map[string]string{"supersedes": supersedes, "version": current.Program.Version})
	}

	StripDerived(current)
	StripDerived(previous)

	return Selection{Current: current, Previous: previous}, nil
}

// StripDerived removes every schema-derived, non-authoritative field from
// the catalog's nodes, in place. Today that is the precomputed stemmed
// search text.
func StripDerived(c *catalog.Catalog) {
	for pi := range c.Phases {
		for ni := range c.Phases[pi].Nodes {
			c.Phases[pi].Nodes[ni].SearchStemmed = ""
		}
	}
}
