// Package stream locates bundle files and loads them as document trees.
package stream

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	fc "github.com/gofhir/fhircodes"
	"github.com/gofhir/fhircodes/tree"
)

// DefaultPattern matches JSON files directly under the root.
const DefaultPattern = "*.json"

// ErrDuplicateDocument is returned by Discover when two files name the same
// document, since their tables would share one output file.
var ErrDuplicateDocument = errors.New("duplicate document id")

// Document is one bundle file.
type Document struct {
	// ID names the document in tables, logs and issues
	ID string

	// Path is the file location
	Path string
}

// Discover walks root and returns the files whose slash-separated path
// relative to root matches pattern, sorted by path. Matching files must have
// distinct document names.
func Discover(root, pattern string) ([]Document, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("file pattern %q: %w", pattern, err)
	}

	var docs []Document
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if g.Match(filepath.ToSlash(rel)) {
			docs = append(docs, Document{ID: DocumentName(path), Path: path})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })

	seen := make(map[string]string, len(docs))
	for _, d := range docs {
		if prev, ok := seen[d.ID]; ok {
			return nil, fmt.Errorf("%w: %q from %s and %s", ErrDuplicateDocument, d.ID, prev, d.Path)
		}
		seen[d.ID] = d.Path
	}
	return docs, nil
}

// DocumentName returns the file name up to its first '.', so
// "patient-1.fhir.json" names document "patient-1". A name starting with '.'
// keeps its full stem.
func DocumentName(path string) string {
	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.IndexByte(stem, '.'); i > 0 {
		stem = stem[:i]
	}
	return stem
}

// Load reads and parses the document's file. Parse failures wrap
// fhircodes.ErrDocument.
func (d Document) Load() (*tree.Node, error) {
	data, err := os.ReadFile(d.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fc.ErrDocument, d.ID, err)
	}
	return Parse(d.ID, data)
}

// Parse decodes bundle bytes into a document tree. Failures wrap
// fhircodes.ErrDocument.
func Parse(id string, data []byte) (*tree.Node, error) {
	n, err := tree.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fc.ErrDocument, id, err)
	}
	return n, nil
}

// DocumentID returns d.ID.
func (d Document) DocumentID() string {
	return d.ID
}
