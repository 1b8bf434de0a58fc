package resource

import (
	"fmt"

	"github.com/google/uuid"

	fc "github.com/gofhir/fhircodes"
	"github.com/gofhir/fhircodes/terminology"
	"github.com/gofhir/fhircodes/tree"
)

// ClinicalEntry is one classified resource with its codes.
type ClinicalEntry struct {
	UUID string
	Kind Kind

	MainCode terminology.Code

	// AdditionalCodes holds every other coded concept in the resource, in
	// document order, without sentinel codes
	AdditionalCodes []terminology.Code

	Negated bool
}

// FamilyHistory reports whether the entry describes a relative's condition.
func (e *ClinicalEntry) FamilyHistory() bool {
	return e.Kind == KindFamilyHistory
}

// Codes returns the main code followed, when additional is set, by the
// additional codes.
func (e *ClinicalEntry) Codes(additional bool) []terminology.Code {
	codes := make([]terminology.Code, 0, 1+len(e.AdditionalCodes))
	codes = append(codes, e.MainCode)
	if additional {
		codes = append(codes, e.AdditionalCodes...)
	}
	return codes
}

// Classifier turns bundle resources into ClinicalEntry values.
type Classifier struct {
	negation NegationPolicy
}

// NewClassifier creates a classifier using the given negation policy.
// A nil policy never marks entries negated.
func NewClassifier(negation NegationPolicy) *Classifier {
	if negation == nil {
		negation = AnyOf(nil)
	}
	return &Classifier{negation: negation}
}

// NewClassifierFromOptions builds the negation policy described by opts:
// presence of NegationField, ORed with NegationExpression when set.
func NewClassifierFromOptions(opts *fc.Options, exprs *ExpressionCache) (*Classifier, error) {
	policies := AnyOf{FieldPresence(opts.NegationField)}
	if opts.NegationExpression != "" {
		p, err := NewExpressionPolicy(opts.NegationExpression, exprs, opts.Log())
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return NewClassifier(policies), nil
}

// Classify reads one resource. It returns either an entry or an issue
// explaining why the resource was skipped. Issues carry the resource id and
// type; the caller adds document and entry position.
func (c *Classifier) Classify(res *tree.Node) (*ClinicalEntry, *fc.Issue) {
	resourceType, _ := res.GetString("resourceType")
	id, _ := res.GetString("id")

	if resourceType == "" || id == "" {
		issue := fc.NewIssue(fc.IssueStructuralAbsence).
			Entry(-1, id, resourceType).
			Diagnostics("resource has no resourceType or id").
			Build()
		return nil, &issue
	}

	d, ok := Lookup(resourceType)
	if !ok {
		issue := fc.NewIssue(fc.IssueUnrecognizedResourceKind).
			Entry(-1, id, resourceType).
			Diagnostics(fmt.Sprintf("resource type %q is not extracted", resourceType)).
			Build()
		return nil, &issue
	}

	concept, ok := res.Lookup(d.MainPath)
	if !ok {
		issue := fc.NewIssue(fc.IssueStructuralAbsence).
			Entry(-1, id, resourceType).
			Diagnostics(fmt.Sprintf("%s has no %s", resourceType, d.MainPath)).
			Build()
		return nil, &issue
	}

	return &ClinicalEntry{
		UUID:            canonicalID(id),
		Kind:            d.Kind,
		MainCode:        terminology.Normalize(concept),
		AdditionalCodes: terminology.ExtractAll(res, d.MainPath),
		Negated:         c.negation.Negated(res),
	}, nil
}

// canonicalID lowercases uuid ids so they match section references.
func canonicalID(id string) string {
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}
