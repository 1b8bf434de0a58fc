package resource

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fc "github.com/gofhir/fhircodes"
	"github.com/gofhir/fhircodes/pkg/logger"
	"github.com/gofhir/fhircodes/terminology"
	"github.com/gofhir/fhircodes/tree"
)

func parse(t *testing.T, s string) *tree.Node {
	t.Helper()
	n, err := tree.ParseDocument([]byte(s))
	require.NoError(t, err)
	return n
}

func TestLookup(t *testing.T) {
	tests := []struct {
		resourceType string
		want         Kind
		path         string
	}{
		{"Condition", KindCondition, "code"},
		{"Medication", KindMedication, "code"},
		{"Procedure", KindProcedure, "code"},
		{"MedicationStatement", KindMedicationStatement, "medicationCodeableConcept"},
		{"FamilyMemberHistory", KindFamilyHistory, "condition[0].code"},
		{"FamilyHistory", KindFamilyHistory, "condition[0].code"},
	}

	for _, tt := range tests {
		t.Run(tt.resourceType, func(t *testing.T) {
			d, ok := Lookup(tt.resourceType)
			require.True(t, ok)
			assert.Equal(t, tt.want, d.Kind)
			assert.Equal(t, tt.path, d.MainPath.String())
		})
	}

	_, ok := Lookup("Observation")
	assert.False(t, ok)
}

func TestClassify_Medication(t *testing.T) {
	res := parse(t, `{
		"resourceType": "Medication",
		"id": "11111111-1111-1111-1111-111111111111",
		"code": {"coding": [{"code": "1191", "system": "http://www.nlm.nih.gov/research/umls/rxnorm"}], "text": "aspirin"}
	}`)

	entry, issue := NewClassifier(FieldPresence(fc.DefaultNegationField)).Classify(res)
	require.Nil(t, issue)
	require.NotNil(t, entry)

	assert.Equal(t, "11111111-1111-1111-1111-111111111111", entry.UUID)
	assert.Equal(t, KindMedication, entry.Kind)
	assert.Equal(t, terminology.Code{Code: "1191", Text: "aspirin", System: terminology.SystemRxNorm}, entry.MainCode)
	assert.Empty(t, entry.AdditionalCodes)
	assert.False(t, entry.Negated)
	assert.False(t, entry.FamilyHistory())
}

func TestClassify_ConditionWithAdditionalCodesAndNegation(t *testing.T) {
	res := parse(t, `{
		"resourceType": "Condition",
		"id": "22222222-2222-2222-2222-222222222222",
		"code": {"coding": [{"code": "44054006", "system": "http://snomed.info/sct"}], "text": "Diabetes"},
		"bodySite": [{"coding": [{"code": "368209003", "system": "http://snomed.info/sct"}], "text": "Arm"}],
		"severity": {"text": "no coding here"},
		"evidence": [{"code": [{"coding": [], "text": "empty"}]}],
		"abatementString": "resolved"
	}`)

	entry, issue := NewClassifier(FieldPresence(fc.DefaultNegationField)).Classify(res)
	require.Nil(t, issue)
	require.NotNil(t, entry)

	assert.True(t, entry.Negated)
	assert.Equal(t, "44054006", entry.MainCode.Code)
	require.Len(t, entry.AdditionalCodes, 1)
	assert.Equal(t, "368209003", entry.AdditionalCodes[0].Code)

	for _, c := range entry.AdditionalCodes {
		assert.NotEqual(t, terminology.UnknownCode, c.Code)
	}

	assert.Len(t, entry.Codes(true), 2)
	assert.Len(t, entry.Codes(false), 1)
}

func TestClassify_FamilyHistory(t *testing.T) {
	res := parse(t, `{
		"resourceType": "FamilyMemberHistory",
		"id": "33333333-3333-3333-3333-333333333333",
		"relationship": {"coding": [{"code": "FTH", "system": "http://terminology.hl7.org/CodeSystem/v3-RoleCode"}]},
		"condition": [
			{"code": {"coding": [{"code": "22298006", "system": "http://snomed.info/sct"}], "text": "MI"}},
			{"code": {"coding": [{"code": "38341003", "system": "http://snomed.info/sct"}], "text": "HTN"}}
		]
	}`)

	entry, issue := NewClassifier(nil).Classify(res)
	require.Nil(t, issue)
	require.NotNil(t, entry)

	assert.True(t, entry.FamilyHistory())
	assert.Equal(t, "22298006", entry.MainCode.Code)

	var codes []string
	for _, c := range entry.AdditionalCodes {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"FTH", "38341003"}, codes)
}

func TestClassify_Issues(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want fc.IssueKind
	}{
		{"unrecognized kind", `{"resourceType": "Observation", "id": "a", "code": {}}`, fc.IssueUnrecognizedResourceKind},
		{"missing resourceType", `{"id": "a", "code": {}}`, fc.IssueStructuralAbsence},
		{"missing id", `{"resourceType": "Condition", "code": {}}`, fc.IssueStructuralAbsence},
		{"missing main code", `{"resourceType": "MedicationStatement", "id": "a", "code": {}}`, fc.IssueStructuralAbsence},
		{"family history without condition", `{"resourceType": "FamilyMemberHistory", "id": "a"}`, fc.IssueStructuralAbsence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, issue := NewClassifier(nil).Classify(parse(t, tt.in))
			assert.Nil(t, entry)
			require.NotNil(t, issue)
			assert.Equal(t, tt.want, issue.Kind)
		})
	}
}

func TestClassify_MalformedMainCodeDegrades(t *testing.T) {
	res := parse(t, `{"resourceType": "Procedure", "id": "p1", "code": {"text": "appendectomy"}}`)

	entry, issue := NewClassifier(nil).Classify(res)
	require.Nil(t, issue)
	require.NotNil(t, entry)
	assert.True(t, entry.MainCode.IsUnknown())
	assert.Equal(t, "appendectomy", entry.MainCode.Text)
	assert.Equal(t, "p1", entry.UUID)
}

func TestFieldPresence(t *testing.T) {
	res := parse(t, `{"resourceType": "Condition", "abatementString": null}`)

	assert.True(t, FieldPresence("abatementString").Negated(res))
	assert.False(t, FieldPresence("other").Negated(res))
	assert.False(t, FieldPresence("").Negated(res))
}

func TestExpressionPolicy(t *testing.T) {
	exprs := NewExpressionCache(4)
	p, err := NewExpressionPolicy("verificationStatus = 'refuted'", exprs, logger.New(io.Discard, logger.LevelNone))
	require.NoError(t, err)
	assert.Equal(t, 1, exprs.Len())

	assert.True(t, p.Negated(parse(t, `{"resourceType": "Condition", "verificationStatus": "refuted"}`)))
	assert.False(t, p.Negated(parse(t, `{"resourceType": "Condition", "verificationStatus": "confirmed"}`)))
	assert.False(t, p.Negated(parse(t, `{"resourceType": "Condition"}`)))

	_, err = NewExpressionPolicy("verificationStatus = 'refuted'", exprs, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), exprs.Stats().Hits)
}

func TestExpressionPolicy_CompileError(t *testing.T) {
	_, err := NewExpressionPolicy("where(", NewExpressionCache(4), nil)
	assert.Error(t, err)
}

func TestNewClassifierFromOptions(t *testing.T) {
	opts := fc.Apply(
		fc.WithNegationExpression("status = 'entered-in-error'"),
		fc.WithLogger(logger.New(io.Discard, logger.LevelNone)),
	)
	c, err := NewClassifierFromOptions(opts, NewExpressionCache(opts.ExpressionCacheSize))
	require.NoError(t, err)

	byField := parse(t, `{"resourceType": "Condition", "id": "a", "code": {}, "abatementString": "x"}`)
	byExpr := parse(t, `{"resourceType": "Condition", "id": "b", "code": {}, "status": "entered-in-error"}`)
	neither := parse(t, `{"resourceType": "Condition", "id": "c", "code": {}}`)

	for _, tt := range []struct {
		res  *tree.Node
		want bool
	}{{byField, true}, {byExpr, true}, {neither, false}} {
		entry, issue := c.Classify(tt.res)
		require.Nil(t, issue)
		assert.Equal(t, tt.want, entry.Negated)
	}

	_, err = NewClassifierFromOptions(fc.Apply(fc.WithNegationExpression("((")), nil)
	assert.Error(t, err)
}
