package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cprima/methodology-advisor/internal/platform/errors"
)

// LoadDocument reads a multi-version catalog document from a JSON file.
func LoadDocument(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDocumentUnreadable, fmt.Sprintf("open document %s", path), err)
	}
	defer f.Close()
	return DecodeDocument(f)
}

// DecodeDocument parses a multi-version catalog document from r.
func DecodeDocument(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.CodeDocumentUnreadable, "decode document", err)
	}
	if len(doc) == 0 {
		return nil, errors.New(errors.CodeDocumentEmpty, "document contains no catalog versions")
	}
	return doc, nil
}

// ByVersion returns the catalog with the given program version, or nil.
func (d Document) ByVersion(version string) *Catalog {
	for _, c := range d {
		if c.Program.Version == version {
			return c
		}
	}
	return nil
}
