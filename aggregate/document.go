package aggregate

import (
	"sort"

	fc "github.com/gofhir/fhircodes"
	"github.com/gofhir/fhircodes/resource"
	"github.com/gofhir/fhircodes/section"
	"github.com/gofhir/fhircodes/terminology"
)

// Count is the tally for one composite key. Negations never exceeds Count.
type Count struct {
	Count     int
	Negations int
}

// Row is one line of a per-document table.
type Row struct {
	Key       string
	Count     int
	Negations int
}

// SectionTally holds one document's statistics for one section.
type SectionTally struct {
	Words  int
	Chars  int
	SNOMED int
	RxNorm int
}

// Document accumulates the result of one bundle.
type Document struct {
	ID string

	additional bool
	counts     map[string]*Count
	tallies    map[string]*SectionTally
	observed   []string

	// descriptions are replayed into the corpus dictionaries in order
	descriptions []terminology.Code

	issues []fc.Issue
}

// NewDocument creates an empty document result. A section of index is
// observed only when it references at least one resource; entries falling
// into any other section are tallied but never reach the corpus summary.
func NewDocument(id string, index *section.Index, includeAdditional bool) *Document {
	d := &Document{
		ID:         id,
		additional: includeAdditional,
		counts:     make(map[string]*Count),
		tallies:    make(map[string]*SectionTally),
	}
	if index != nil {
		for _, s := range index.Sections() {
			t := d.tally(s.Code)
			t.Words += s.WordCount
			t.Chars += s.CharCount
			if len(s.Members) > 0 {
				d.observed = append(d.observed, s.Code)
			}
		}
	}
	return d
}

func (d *Document) tally(code string) *SectionTally {
	t, ok := d.tallies[code]
	if !ok {
		t = &SectionTally{}
		d.tallies[code] = t
	}
	return t
}

// Add counts the codes of entry under the section index assigns it to.
func (d *Document) Add(entry *resource.ClinicalEntry, index *section.Index) {
	sectionCode := index.SectionOf(entry.UUID)

	t := d.tally(sectionCode)
	for _, code := range entry.Codes(true) {
		switch code.System {
		case terminology.SystemSNOMED:
			t.SNOMED++
		case terminology.SystemRxNorm:
			t.RxNorm++
		}
	}

	family := entry.FamilyHistory()
	for _, code := range entry.Codes(d.additional) {
		key := Key(sectionCode, family, code)
		if key == "" {
			continue
		}
		c, ok := d.counts[key]
		if !ok {
			c = &Count{}
			d.counts[key] = c
		}
		c.Count++
		if entry.Negated {
			c.Negations++
		}
		d.descriptions = append(d.descriptions, code)
	}
}

// AddIssue records a skipped entry or reference.
func (d *Document) AddIssue(issue fc.Issue) {
	d.issues = append(d.issues, issue)
}

// Issues returns the recorded issues in order.
func (d *Document) Issues() []fc.Issue {
	return d.issues
}

// Count returns the tally for key.
func (d *Document) Count(key string) (Count, bool) {
	c, ok := d.counts[key]
	if !ok {
		return Count{}, false
	}
	return *c, true
}

// Len returns the number of distinct keys.
func (d *Document) Len() int {
	return len(d.counts)
}

// Table returns the rows sorted by count descending, then key ascending.
func (d *Document) Table() []Row {
	rows := make([]Row, 0, len(d.counts))
	for k, c := range d.counts {
		rows = append(rows, Row{Key: k, Count: c.Count, Negations: c.Negations})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

// Sections returns the observed section codes in first-seen order.
func (d *Document) Sections() []string {
	return d.observed
}

// Tally returns the statistics of a section, observed or not.
func (d *Document) Tally(code string) (SectionTally, bool) {
	t, ok := d.tallies[code]
	if !ok {
		return SectionTally{}, false
	}
	return *t, true
}
