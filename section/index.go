package section

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"

	fc "github.com/gofhir/fhircodes"
	"github.com/gofhir/fhircodes/tree"
)

// resourceUUID finds the resource identifier inside an entry reference such
// as "urn:uuid:..." or "Condition/...".
var resourceUUID = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// sectionListPath locates the Composition section list in a document bundle.
var (
	sectionListPath = tree.MustParsePath("entry[0].resource.section")
	divPath         = tree.MustParsePath("text.div")
	codingCodePath  = tree.MustParsePath("coding[0].code")
)

// Section is one normalized section of a document.
type Section struct {
	// RawCode is the code as first seen in the bundle
	RawCode string
	// Code is the normalized section code
	Code string

	WordCount int
	CharCount int

	// Members lists referenced resource uuids in reference order
	Members []string
}

// Index resolves resource uuids to section codes for one document.
type Index struct {
	fallback string
	byUUID   map[string]string
	sections map[string]*Section
	order    []string
	listed   bool
}

func newIndex(fallback string) *Index {
	return &Index{
		fallback: fallback,
		byUUID:   make(map[string]string),
		sections: make(map[string]*Section),
	}
}

// SectionOf returns the section code for a resource uuid, or the fallback.
func (x *Index) SectionOf(id string) string {
	if code, ok := x.byUUID[id]; ok {
		return code
	}
	return x.fallback
}

// Section returns the section stored under a normalized code.
func (x *Index) Section(code string) (*Section, bool) {
	s, ok := x.sections[code]
	return s, ok
}

// Codes returns the normalized section codes in first-seen order.
func (x *Index) Codes() []string {
	return x.order
}

// Sections returns the sections in first-seen order.
func (x *Index) Sections() []*Section {
	out := make([]*Section, 0, len(x.order))
	for _, code := range x.order {
		out = append(out, x.sections[code])
	}
	return out
}

// HasSectionList reports whether the bundle carried a section list.
func (x *Index) HasSectionList() bool {
	return x.listed
}

// Fallback returns the fallback section code.
func (x *Index) Fallback() string {
	return x.fallback
}

func (x *Index) section(raw, code string) *Section {
	s, ok := x.sections[code]
	if !ok {
		s = &Section{RawCode: raw, Code: code}
		x.sections[code] = s
		x.order = append(x.order, code)
	}
	return s
}

// Builder builds an Index from a bundle's section list.
type Builder struct {
	norm *Normalizer
}

// NewBuilder creates a builder using the given normalizer.
func NewBuilder(norm *Normalizer) *Builder {
	return &Builder{norm: norm}
}

// Build reads entry[0].resource.section of bundle. A bundle without a section
// list yields an Index that maps every uuid to the fallback, together with one
// structural-absence issue. Unusable references are reported and skipped.
func (b *Builder) Build(bundle *tree.Node) (*Index, []fc.Issue) {
	x := newIndex(b.norm.Fallback())

	list, ok := bundle.Lookup(sectionListPath)
	if !ok || !list.IsArray() {
		issue := fc.NewIssue(fc.IssueStructuralAbsence).
			Entry(0, "", "").
			Diagnostics("bundle has no section list at " + sectionListPath.String()).
			Build()
		return x, []fc.Issue{issue}
	}
	x.listed = true

	var issues []fc.Issue
	for i, item := range list.Items() {
		raw := rawSectionCode(item)
		s := x.section(raw, b.norm.Normalize(raw))

		if div, ok := item.Lookup(divPath); ok {
			text, _ := div.AsString()
			words, chars := CountText(text)
			s.WordCount += words
			s.CharCount += chars
		}

		refs, ok := item.Get("entry")
		if !ok {
			continue
		}
		for j, ref := range refs.Items() {
			id, ok := referenceUUID(ref)
			if !ok {
				issues = append(issues, fc.NewIssue(fc.IssueStructuralAbsence).
					Entry(0, "", "").
					Diagnostics(fmt.Sprintf("section %d (%s) reference %d has no resource uuid", i, s.Code, j)).
					Build())
				continue
			}
			x.byUUID[id] = s.Code
			s.Members = append(s.Members, id)
		}
	}
	return x, issues
}

// rawSectionCode accepts both a plain code string and a CodeableConcept.
func rawSectionCode(item *tree.Node) string {
	code, ok := item.Get("code")
	if !ok {
		return ""
	}
	if s, ok := code.AsString(); ok {
		return s
	}
	if c, ok := code.Lookup(codingCodePath); ok {
		return c.Text()
	}
	return ""
}

func referenceUUID(ref *tree.Node) (string, bool) {
	s, ok := ref.GetString("reference")
	if !ok {
		return "", false
	}
	m := resourceUUID.FindString(s)
	if m == "" {
		return "", false
	}
	id, err := uuid.Parse(m)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
