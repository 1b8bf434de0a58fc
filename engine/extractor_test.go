package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fc "github.com/gofhir/fhircodes"
	"github.com/gofhir/fhircodes/aggregate"
	"github.com/gofhir/fhircodes/pkg/logger"
	"github.com/gofhir/fhircodes/tree"
)

const rxnorm = "http://www.nlm.nih.gov/research/umls/rxnorm"

func aspirinBundle(extra string) string {
	return `{
  "resourceType": "Bundle",
  "entry": [
    {"resource": {"resourceType": "Composition", "section": [
      {"code": "10160-0", "text": {"div": "<div>Medication: aspirin taken.</div>"},
       "entry": [{"reference": "urn:uuid:11111111-1111-1111-1111-111111111111"}]}
    ]}},
    {"resource": {"resourceType": "Medication", "id": "11111111-1111-1111-1111-111111111111",
      "code": {"coding": [{"code": "1191", "system": "` + rxnorm + `"}], "text": "aspirin"}` + extra + `}}
  ]
}`
}

func newTestExtractor(t *testing.T, out io.Writer, opts ...fc.Option) *Extractor {
	t.Helper()
	if out == nil {
		out = io.Discard
	}
	opts = append([]fc.Option{fc.WithLogger(logger.New(out, logger.LevelDebug))}, opts...)
	e, err := New(opts...)
	require.NoError(t, err)
	return e
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(fc.WithSectionPattern("("), fc.WithLogger(logger.New(io.Discard, logger.LevelNone)))
	assert.Error(t, err)

	_, err = New(fc.WithNegationExpression("(("), fc.WithLogger(logger.New(io.Discard, logger.LevelNone)))
	assert.Error(t, err)
}

func TestProcessBytes_Aspirin(t *testing.T) {
	e := newTestExtractor(t, nil)

	doc, err := e.ProcessBytes(context.Background(), "patient-1", []byte(aspirinBundle("")))
	require.NoError(t, err)

	assert.Equal(t, []aggregate.Row{{Key: "10160-0_rxn_1191", Count: 1, Negations: 0}}, doc.Table())
	assert.Empty(t, doc.Issues())

	desc, ok := e.Corpus().RxNorm().Get("1191")
	require.True(t, ok)
	assert.Equal(t, "aspirin", desc)

	summary := e.Corpus().Summary()
	require.Len(t, summary, 1)
	assert.Equal(t, "10160-0", summary[0].Section)
	assert.InDelta(t, 2.0, summary[0].Words, 1e-9)
	assert.InDelta(t, 15.0, summary[0].Chars, 1e-9)
	assert.InDelta(t, 1.0, summary[0].RxNorm, 1e-9)

	assert.Equal(t, uint64(1), e.Metrics().DocumentsTotal())
	assert.Equal(t, uint64(1), e.Metrics().EntriesClassified())
	assert.Equal(t, uint64(1), e.Metrics().RowsEmitted())
}

func TestProcessBytes_Negated(t *testing.T) {
	e := newTestExtractor(t, nil)

	doc, err := e.ProcessBytes(context.Background(), "patient-1", []byte(aspirinBundle(`, "abatementString": "stopped"`)))
	require.NoError(t, err)
	assert.Equal(t, []aggregate.Row{{Key: "10160-0_rxn_1191", Count: 1, Negations: 1}}, doc.Table())
}

func TestProcessBytes_UnrecognizedKindSkipsEntry(t *testing.T) {
	var buf bytes.Buffer
	e := newTestExtractor(t, &buf)

	bundle := strings.Replace(aspirinBundle(""), `    ]}},`, `    ]}},
    {"resource": {"resourceType": "Observation", "id": "obs-1",
      "code": {"coding": [{"code": "8302-2", "system": "http://snomed.info/sct"}]}}},`, 1)

	doc, err := e.ProcessBytes(context.Background(), "patient-2", []byte(bundle))
	require.NoError(t, err)

	assert.Equal(t, []aggregate.Row{{Key: "10160-0_rxn_1191", Count: 1}}, doc.Table())
	require.Len(t, doc.Issues(), 1)
	issue := doc.Issues()[0]
	assert.Equal(t, fc.IssueUnrecognizedResourceKind, issue.Kind)
	assert.Equal(t, "patient-2", issue.Document)
	assert.Equal(t, 1, issue.EntryIndex)
	assert.Equal(t, "obs-1", issue.EntryID)
	assert.Equal(t, "Observation", issue.ResourceType)

	assert.Equal(t, 1, strings.Count(buf.String(), string(fc.IssueUnrecognizedResourceKind)))
	assert.Contains(t, buf.String(), `"document":"patient-2"`)
	assert.Equal(t, uint64(1), e.Metrics().EntriesSkipped())
}

func TestProcessBytes_MissingSectionList(t *testing.T) {
	e := newTestExtractor(t, nil)

	bundle := `{"entry": [
		{"resource": {"resourceType": "Composition"}},
		{"resource": {"resourceType": "Condition", "id": "c1",
			"code": {"coding": [{"code": "44054006", "system": "http://snomed.info/sct"}], "text": "Diabetes"}}},
		{"fullUrl": "no resource"}
	]}`

	doc, err := e.ProcessBytes(context.Background(), "d", []byte(bundle))
	require.NoError(t, err)
	assert.Equal(t, []aggregate.Row{{Key: "00000-0_sct_44054006", Count: 1}}, doc.Table())

	var kinds []fc.IssueKind
	for _, issue := range doc.Issues() {
		kinds = append(kinds, issue.Kind)
	}
	assert.Equal(t, []fc.IssueKind{fc.IssueStructuralAbsence, fc.IssueStructuralAbsence}, kinds)
}

func TestProcessBytes_WholeDocumentFailure(t *testing.T) {
	var buf bytes.Buffer
	e := newTestExtractor(t, &buf)

	for _, data := range []string{`{"entry": [`, `[1, 2]`, ``} {
		_, err := e.ProcessBytes(context.Background(), "broken", []byte(data))
		require.Error(t, err)
		assert.ErrorIs(t, err, fc.ErrDocument)
	}

	doc, err := e.ProcessBytes(context.Background(), "ok", []byte(aspirinBundle("")))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Len())

	assert.Equal(t, uint64(4), e.Metrics().DocumentsTotal())
	assert.Equal(t, uint64(3), e.Metrics().DocumentsFailed())
	assert.Equal(t, uint64(3), e.Metrics().IssueCount(fc.IssueWholeDocumentFailure))
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Equal(t, 1, e.Corpus().Documents())
}

func TestExtract_NonObjectTree(t *testing.T) {
	e := newTestExtractor(t, nil)
	_, err := e.Extract(context.Background(), "x", tree.NewArray())
	assert.ErrorIs(t, err, fc.ErrDocument)
	assert.ErrorIs(t, err, tree.ErrNotObject)
}

type memSource struct {
	id   string
	data string
}

func (m memSource) DocumentID() string { return m.id }

func (m memSource) Load() (*tree.Node, error) {
	return tree.ParseDocument([]byte(m.data))
}

func corpusSources(n int) []Source {
	sources := make([]Source, 0, n)
	for i := 0; i < n; i++ {
		// every document describes 1191 differently, so merge order shows in the dictionary
		bundle := strings.Replace(aspirinBundle(""), `"text": "aspirin"`, fmt.Sprintf(`"text": "aspirin %d"`, i), 1)
		if i%4 == 3 {
			bundle = `{"entry": [`
		}
		if i%5 == 1 {
			bundle = strings.Replace(bundle, `"code": "10160-0"`, `"code": "bogus"`, 1)
		}
		sources = append(sources, memSource{id: fmt.Sprintf("doc-%02d", i), data: bundle})
	}
	return sources
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	sources := corpusSources(24)

	run := func(workers int) (*Extractor, []Result) {
		e := newTestExtractor(t, nil, fc.WithWorkerCount(workers))
		var (
			mu    sync.Mutex
			calls int
		)
		results, err := e.Run(context.Background(), sources, func(Result) {
			mu.Lock()
			calls++
			mu.Unlock()
		})
		require.NoError(t, err)
		assert.Equal(t, len(sources), calls)
		return e, results
	}

	seq, seqResults := run(1)
	par, parResults := run(6)

	require.Len(t, parResults, len(seqResults))
	for i := range seqResults {
		assert.Equal(t, seqResults[i].ID, parResults[i].ID)
		if seqResults[i].Err != nil {
			assert.ErrorIs(t, parResults[i].Err, fc.ErrDocument)
			continue
		}
		assert.Equal(t, seqResults[i].Document.Table(), parResults[i].Document.Table())
	}

	assert.Equal(t, seq.Corpus().Summary(), par.Corpus().Summary())
	assert.Equal(t, seq.Corpus().RxNorm().Map(), par.Corpus().RxNorm().Map())

	desc, _ := par.Corpus().RxNorm().Get("1191")
	assert.Equal(t, "aspirin 22", desc)
	assert.Equal(t, seq.Metrics().DocumentsFailed(), par.Metrics().DocumentsFailed())
	assert.Equal(t, uint64(6), par.Metrics().DocumentsFailed())
}

func TestRun_Cancelled(t *testing.T) {
	e := newTestExtractor(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := e.Run(ctx, corpusSources(3), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	assert.Equal(t, 0, e.Corpus().Documents())
}

func BenchmarkExtract(b *testing.B) {
	e, err := New(fc.WithLogger(logger.New(io.Discard, logger.LevelNone)))
	require.NoError(b, err)
	bundle, err := tree.ParseDocument([]byte(aspirinBundle("")))
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Extract(context.Background(), "bench", bundle)
	}
}
