package aggregate

import (
	"sort"
	"sync"

	"github.com/gofhir/fhircodes/terminology"
)

// SummaryRow holds per-section means over the documents that contain the
// section.
type SummaryRow struct {
	Section   string
	Documents int
	Words     float64
	Chars     float64
	SNOMED    float64
	RxNorm    float64
}

// Corpus merges document results for a whole run.
type Corpus struct {
	mu sync.Mutex

	documents int
	sections  map[string][]SectionTally

	snomed *terminology.Dictionary
	rxnorm *terminology.Dictionary
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{
		sections: make(map[string][]SectionTally),
		snomed:   terminology.NewDictionary(terminology.SystemSNOMED),
		rxnorm:   terminology.NewDictionary(terminology.SystemRxNorm),
	}
}

// Merge folds doc into the corpus. Description registrations are replayed in
// the order the document made them, so later documents overwrite earlier ones.
func (c *Corpus) Merge(doc *Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.documents++
	for _, code := range doc.observed {
		c.sections[code] = append(c.sections[code], *doc.tallies[code])
	}
	for _, code := range doc.descriptions {
		if d := c.dictionary(code.System); d != nil {
			d.Set(code.Code, code.Text)
		}
	}
}

func (c *Corpus) dictionary(system terminology.System) *terminology.Dictionary {
	switch system {
	case terminology.SystemSNOMED:
		return c.snomed
	case terminology.SystemRxNorm:
		return c.rxnorm
	default:
		return nil
	}
}

// Seed copies existing descriptions into the corpus dictionaries. Codes seen
// during the run overwrite seeded descriptions.
func (c *Corpus) Seed(d *terminology.Dictionary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if target := c.dictionary(d.System()); target != nil {
		target.Merge(d)
	}
}

// SNOMED returns the SNOMED code descriptions.
func (c *Corpus) SNOMED() *terminology.Dictionary {
	return c.snomed
}

// RxNorm returns the RxNorm code descriptions.
func (c *Corpus) RxNorm() *terminology.Dictionary {
	return c.rxnorm
}

// Documents returns the number of merged documents.
func (c *Corpus) Documents() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.documents
}

// Summary returns one row per observed section, sorted by section code.
func (c *Corpus) Summary() []SummaryRow {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows := make([]SummaryRow, 0, len(c.sections))
	for code, tallies := range c.sections {
		row := SummaryRow{Section: code, Documents: len(tallies)}
		for _, t := range tallies {
			row.Words += float64(t.Words)
			row.Chars += float64(t.Chars)
			row.SNOMED += float64(t.SNOMED)
			row.RxNorm += float64(t.RxNorm)
		}
		n := float64(len(tallies))
		row.Words /= n
		row.Chars /= n
		row.SNOMED /= n
		row.RxNorm /= n
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Section < rows[j].Section })
	return rows
}
