package resource

import (
	"github.com/gofhir/fhircodes/tree"
)

// Kind identifies a supported clinical resource kind.
type Kind int

const (
	KindUnknown Kind = iota
	KindCondition
	KindFamilyHistory
	KindMedication
	KindMedicationStatement
	KindProcedure
)

// String returns the FHIR resourceType for the kind.
func (k Kind) String() string {
	switch k {
	case KindCondition:
		return "Condition"
	case KindFamilyHistory:
		return "FamilyMemberHistory"
	case KindMedication:
		return "Medication"
	case KindMedicationStatement:
		return "MedicationStatement"
	case KindProcedure:
		return "Procedure"
	default:
		return "Unknown"
	}
}

// Dispatch describes where a kind keeps its main coded concept.
type Dispatch struct {
	Kind     Kind
	MainPath tree.Path
}

var dispatch = map[string]Dispatch{
	"Condition":           {KindCondition, tree.MustParsePath("code")},
	"Medication":          {KindMedication, tree.MustParsePath("code")},
	"Procedure":           {KindProcedure, tree.MustParsePath("code")},
	"MedicationStatement": {KindMedicationStatement, tree.MustParsePath("medicationCodeableConcept")},
	"FamilyMemberHistory": {KindFamilyHistory, tree.MustParsePath("condition[0].code")},
	"FamilyHistory":       {KindFamilyHistory, tree.MustParsePath("condition[0].code")},
}

// Lookup returns the dispatch row for a resourceType.
func Lookup(resourceType string) (Dispatch, bool) {
	d, ok := dispatch[resourceType]
	return d, ok
}
