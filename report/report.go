// Package report writes extraction results: per-document code tables, the
// section summary and the code dictionaries.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofhir/fhircodes/aggregate"
	"github.com/gofhir/fhircodes/terminology"
)

// Output file names of a corpus run.
const (
	SNOMEDFile    = "snomed_found.json"
	RxNormFile    = "rxcui_found.json"
	SummaryFile   = "RB_Section_Summary.txt"
	TableExt      = ".txt"
	CodeSystemExt = ".codesystem.json"
)

var tableHeader = []string{"code", "count", "negation"}

// WriteTable writes rows as "code,count,negation" CSV.
func WriteTable(w io.Writer, rows []aggregate.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Key, strconv.Itoa(r.Count), strconv.Itoa(r.Negations)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary writes two fixed-width lines per section: the section code with
// column titles, then the means.
func WriteSummary(w io.Writer, rows []aggregate.SummaryRow) error {
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%10s%10s%10s%10s%10s\n", r.Section, "words", "chars", "#snomed", "#rxnorm"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%10s%10.3f%10.3f%10.3f%10.3f\n", "", r.Words, r.Chars, r.SNOMED, r.RxNorm); err != nil {
			return err
		}
	}
	return nil
}

// WriteDictionary writes d as a code -> description JSON object, indented by
// four spaces with codes sorted.
func WriteDictionary(w io.Writer, d *terminology.Dictionary) error {
	data, err := json.MarshalIndent(d.Map(), "", "    ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteCodeSystem writes d as an R4 CodeSystem resource.
func WriteCodeSystem(w io.Writer, d *terminology.Dictionary) error {
	data, err := json.Marshal(d.CodeSystem())
	if err != nil {
		return fmt.Errorf("encode codesystem: %w", err)
	}
	var resource map[string]any
	if err := json.Unmarshal(data, &resource); err != nil {
		return fmt.Errorf("encode codesystem: %w", err)
	}
	resource["resourceType"] = "CodeSystem"

	data, err = json.MarshalIndent(resource, "", "  ")
	if err != nil {
		return fmt.Errorf("encode codesystem: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteFile creates path, including parent directories, and fills it with
// write.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
