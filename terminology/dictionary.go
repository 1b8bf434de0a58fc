package terminology

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/gofhir/fhir/r4"
)

// Dictionary maps codes of one system to their descriptions. A later Set for
// the same code replaces the earlier description.
type Dictionary struct {
	mu      sync.RWMutex
	system  System
	entries map[string]string
}

// NewDictionary creates an empty dictionary for system.
func NewDictionary(system System) *Dictionary {
	return &Dictionary{
		system:  system,
		entries: make(map[string]string),
	}
}

// System returns the dictionary's code system.
func (d *Dictionary) System() System {
	return d.system
}

// Set records description for code.
func (d *Dictionary) Set(code, description string) {
	d.mu.Lock()
	d.entries[code] = description
	d.mu.Unlock()
}

// Get returns the description for code.
func (d *Dictionary) Get(code string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	desc, ok := d.entries[code]
	return desc, ok
}

// Len returns the number of codes.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Codes returns all codes in sorted order.
func (d *Dictionary) Codes() []string {
	d.mu.RLock()
	codes := make([]string, 0, len(d.entries))
	for c := range d.entries {
		codes = append(codes, c)
	}
	d.mu.RUnlock()
	sort.Strings(codes)
	return codes
}

// Map returns a copy of the entries.
func (d *Dictionary) Map() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]string, len(d.entries))
	for k, v := range d.entries {
		out[k] = v
	}
	return out
}

// Merge copies every entry of other into d, overwriting existing codes.
func (d *Dictionary) Merge(other *Dictionary) {
	for code, desc := range other.Map() {
		d.Set(code, desc)
	}
}

// MarshalJSON encodes the dictionary as a flat code -> description object.
func (d *Dictionary) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Map())
}

// CodeSystem exports the dictionary as an R4 CodeSystem, concepts sorted by code.
func (d *Dictionary) CodeSystem() *r4.CodeSystem {
	url := d.system.URI()
	cs := &r4.CodeSystem{Url: &url}
	entries := d.Map()
	for _, code := range d.Codes() {
		display := entries[code]
		cs.Concept = append(cs.Concept, r4.CodeSystemConcept{
			Code:    &code,
			Display: &display,
		})
	}
	return cs
}

// LoadCodeSystem adds the concepts of cs, nested ones included.
func (d *Dictionary) LoadCodeSystem(cs *r4.CodeSystem) error {
	if cs == nil {
		return fmt.Errorf("codesystem is nil")
	}
	if cs.Url != nil && d.system != SystemOther && *cs.Url != d.system.URI() {
		return fmt.Errorf("codesystem %s does not match %s", *cs.Url, d.system)
	}
	d.loadConcepts(cs.Concept)
	return nil
}

func (d *Dictionary) loadConcepts(concepts []r4.CodeSystemConcept) {
	for i := range concepts {
		concept := &concepts[i]
		if concept.Code != nil {
			display := ""
			if concept.Display != nil {
				display = *concept.Display
			}
			d.Set(*concept.Code, display)
		}
		if len(concept.Concept) > 0 {
			d.loadConcepts(concept.Concept)
		}
	}
}
