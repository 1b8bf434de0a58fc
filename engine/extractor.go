// Package engine runs code extraction over FHIR document bundles.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	fc "github.com/gofhir/fhircodes"
	"github.com/gofhir/fhircodes/aggregate"
	"github.com/gofhir/fhircodes/pkg/logger"
	"github.com/gofhir/fhircodes/resource"
	"github.com/gofhir/fhircodes/section"
	"github.com/gofhir/fhircodes/stream"
	"github.com/gofhir/fhircodes/tree"
	"github.com/gofhir/fhircodes/worker"
)

// Extractor classifies and counts the codes of document bundles.
// It coordinates section indexing, classification and aggregation.
type Extractor struct {
	// Configuration
	options *fc.Options
	log     *logger.Logger

	sections   *section.Builder
	classifier *resource.Classifier
	exprs      *resource.ExpressionCache

	corpus  *aggregate.Corpus
	metrics *fc.Metrics
}

// New creates an Extractor. It fails when the section pattern or the negation
// expression do not compile.
func New(opts ...fc.Option) (*Extractor, error) {
	options := fc.Apply(opts...)

	norm, err := section.NewNormalizer(options.SectionPattern, options.FallbackSection)
	if err != nil {
		return nil, err
	}

	exprs := resource.NewExpressionCache(options.ExpressionCacheSize)
	classifier, err := resource.NewClassifierFromOptions(options, exprs)
	if err != nil {
		return nil, err
	}

	return &Extractor{
		options:    options,
		log:        options.Log(),
		sections:   section.NewBuilder(norm),
		classifier: classifier,
		exprs:      exprs,
		corpus:     aggregate.NewCorpus(),
		metrics:    fc.NewMetrics(),
	}, nil
}

// Options returns the extractor's configuration.
func (e *Extractor) Options() *fc.Options {
	return e.options
}

// Corpus returns the aggregate of every processed document.
func (e *Extractor) Corpus() *aggregate.Corpus {
	return e.corpus
}

// Metrics returns the extractor's metrics.
func (e *Extractor) Metrics() *fc.Metrics {
	return e.metrics
}

// ProcessBytes parses a bundle and processes it like Process.
func (e *Extractor) ProcessBytes(ctx context.Context, id string, data []byte) (*aggregate.Document, error) {
	bundle, err := stream.Parse(id, data)
	if err != nil {
		e.fail(id, time.Now(), err)
		return nil, err
	}
	return e.Process(ctx, id, bundle)
}

// Process extracts one bundle and merges the result into the corpus.
func (e *Extractor) Process(ctx context.Context, id string, bundle *tree.Node) (*aggregate.Document, error) {
	doc, err := e.Extract(ctx, id, bundle)
	if err != nil {
		return nil, err
	}
	e.corpus.Merge(doc)
	return doc, nil
}

// Extract builds the result of one bundle without touching the corpus.
// Only a bundle that is not an object fails; entry problems become issues on
// the returned document.
func (e *Extractor) Extract(ctx context.Context, id string, bundle *tree.Node) (*aggregate.Document, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !bundle.IsObject() {
		err := fmt.Errorf("%w: %s: %w", fc.ErrDocument, id, tree.ErrNotObject)
		e.fail(id, start, err)
		return nil, err
	}

	log := e.log.With("document", id)

	index, issues := e.sections.Build(bundle)
	doc := aggregate.NewDocument(id, index, e.options.IncludeAdditionalCodes)
	for _, issue := range issues {
		e.report(log, doc, id, issue)
	}

	entries, _ := bundle.Get("entry")
	classified, skipped := 0, 0
	for i, entry := range entries.Items() {
		if i == 0 {
			continue
		}
		res, ok := entry.Get("resource")
		if !ok || !res.IsObject() {
			e.report(log, doc, id, fc.NewIssue(fc.IssueStructuralAbsence).
				Entry(i, "", "").
				Diagnostics("entry has no resource").
				Build())
			skipped++
			continue
		}

		clinical, issue := e.classifier.Classify(res)
		if issue != nil {
			issue.EntryIndex = i
			e.report(log, doc, id, *issue)
			skipped++
			continue
		}

		if clinical.MainCode.IsUnknown() {
			log.WithInt("entry", i).With("resourceType", clinical.Kind.String()).
				Debug("%s %s: main code degraded to %s", fc.IssueMalformedCode, clinical.UUID, clinical.MainCode)
			e.metrics.RecordIssue(fc.IssueMalformedCode)
		}

		doc.Add(clinical, index)
		classified++
	}

	e.metrics.RecordEntries(classified, skipped)
	e.metrics.RecordRows(doc.Len())
	e.metrics.RecordDocument(time.Since(start), false)
	log.Debug("extracted %d entries (%d skipped), %d keys", classified, skipped, doc.Len())
	return doc, nil
}

func (e *Extractor) report(log *logger.Logger, doc *aggregate.Document, id string, issue fc.Issue) {
	issue.Document = id
	doc.AddIssue(issue)
	e.metrics.RecordIssue(issue.Kind)

	l := log
	if issue.EntryIndex >= 0 {
		l = l.WithInt("entry", issue.EntryIndex)
	}
	if issue.EntryID != "" {
		l = l.With("entryId", issue.EntryID)
	}
	if issue.ResourceType != "" {
		l = l.With("resourceType", issue.ResourceType)
	}
	l.Warn("%s: %s", issue.Kind, issue.Diagnostics)
}

func (e *Extractor) fail(id string, start time.Time, err error) {
	e.metrics.RecordIssue(fc.IssueWholeDocumentFailure)
	e.metrics.RecordDocument(time.Since(start), true)
	e.log.With("document", id).Error("%s: %v", fc.IssueWholeDocumentFailure, err)
}

// Source is a document that can be loaded on demand.
type Source interface {
	DocumentID() string
	Load() (*tree.Node, error)
}

// Result is the outcome of one document of a Run.
type Result struct {
	ID       string
	Document *aggregate.Document
	Err      error
}

// Run loads and extracts every source, using WorkerCount goroutines, and
// merges the documents into the corpus in source order. A failed document
// is logged and reported on its Result; the run continues. progress, when
// non-nil, is called once per finished document and may be called
// concurrently.
func (e *Extractor) Run(ctx context.Context, sources []Source, progress func(Result)) ([]Result, error) {
	batch, err := worker.Map(ctx, sources, e.options.WorkerCount,
		func(ctx context.Context, _ int, src Source) (*aggregate.Document, error) {
			doc, err := e.load(ctx, src)
			if progress != nil {
				progress(Result{ID: src.DocumentID(), Document: doc, Err: err})
			}
			return doc, err
		})

	results := make([]Result, 0, len(batch.Results))
	for _, r := range batch.Results {
		id := sources[r.Index].DocumentID()
		if r.Err != nil {
			results = append(results, Result{ID: id, Err: r.Err})
			continue
		}
		e.corpus.Merge(r.Value)
		results = append(results, Result{ID: id, Document: r.Value})
	}

	e.log.Info("processed %d of %d documents (%d failed) with %d workers in %s",
		batch.Completed, len(sources), batch.Failed, e.options.WorkerCount, batch.TotalDuration)
	return results, err
}

func (e *Extractor) load(ctx context.Context, src Source) (*aggregate.Document, error) {
	start := time.Now()
	bundle, err := src.Load()
	if err != nil {
		if !errors.Is(err, fc.ErrDocument) {
			err = fmt.Errorf("%w: %s: %w", fc.ErrDocument, src.DocumentID(), err)
		}
		e.fail(src.DocumentID(), start, err)
		return nil, err
	}
	return e.Extract(ctx, src.DocumentID(), bundle)
}
