package report

import (
	"io"
	"path/filepath"

	"github.com/gofhir/fhircodes/aggregate"
	"github.com/gofhir/fhircodes/terminology"
)

// Writer places run outputs in a directory layout: per-document tables under
// TableDir, corpus files under DataDir.
type Writer struct {
	TableDir string
	DataDir  string

	// CodeSystems also writes each dictionary as an R4 CodeSystem
	CodeSystems bool
}

// TablePath returns where the table of document id is written.
func (w *Writer) TablePath(id string) string {
	return filepath.Join(w.TableDir, id+TableExt)
}

// Table writes the table of one document.
func (w *Writer) Table(doc *aggregate.Document) error {
	return WriteFile(w.TablePath(doc.ID), func(out io.Writer) error {
		return WriteTable(out, doc.Table())
	})
}

// Corpus writes the section summary and the dictionaries. It returns the
// paths written.
func (w *Writer) Corpus(c *aggregate.Corpus) ([]string, error) {
	var written []string

	summary := filepath.Join(w.DataDir, SummaryFile)
	if err := WriteFile(summary, func(out io.Writer) error {
		return WriteSummary(out, c.Summary())
	}); err != nil {
		return written, err
	}
	written = append(written, summary)

	for _, d := range []struct {
		name string
		dict *terminology.Dictionary
	}{
		{SNOMEDFile, c.SNOMED()},
		{RxNormFile, c.RxNorm()},
	} {
		path := filepath.Join(w.DataDir, d.name)
		if err := WriteFile(path, func(out io.Writer) error {
			return WriteDictionary(out, d.dict)
		}); err != nil {
			return written, err
		}
		written = append(written, path)

		if !w.CodeSystems {
			continue
		}
		path = filepath.Join(w.DataDir, d.name[:len(d.name)-len(filepath.Ext(d.name))]+CodeSystemExt)
		if err := WriteFile(path, func(out io.Writer) error {
			return WriteCodeSystem(out, d.dict)
		}); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
