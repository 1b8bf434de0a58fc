package fhircodes

import (
	"github.com/gofhir/fhircodes/pkg/logger"
)

// Defaults for the extraction options.
const (
	DefaultSectionPattern  = `\d{2,6}-\d`
	DefaultFallbackSection = "00000-0"
	DefaultNegationField   = "abatementString"
)

// Option configures an Extractor.
type Option func(*Options)

// Options holds all configuration for code extraction.
type Options struct {
	// Aggregation
	IncludeAdditionalCodes bool

	// Negation. NegationField is checked for presence on each resource;
	// NegationExpression, when set, is a FHIRPath expression ORed with it.
	NegationField      string
	NegationExpression string

	// Sections
	SectionPattern  string
	FallbackSection string

	// Performance
	WorkerCount         int
	ExpressionCacheSize int

	Logger *logger.Logger
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		IncludeAdditionalCodes: true,

		NegationField: DefaultNegationField,

		SectionPattern:  DefaultSectionPattern,
		FallbackSection: DefaultFallbackSection,

		// Sequential processing keeps output order trivially deterministic.
		WorkerCount:         1,
		ExpressionCacheSize: 64,
	}
}

// Apply returns DefaultOptions with opts applied in order.
func Apply(opts ...Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Log returns the configured logger, or the package default.
func (o *Options) Log() *logger.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logger.Default()
}

// WithAdditionalCodes controls whether codes nested inside a resource, besides
// its main code, are counted.
func WithAdditionalCodes(enable bool) Option {
	return func(o *Options) {
		o.IncludeAdditionalCodes = enable
	}
}

// WithNegationField sets the resource field whose presence marks the entry as
// negated. An empty name disables the field check.
func WithNegationField(name string) Option {
	return func(o *Options) {
		o.NegationField = name
	}
}

// WithNegationExpression sets a FHIRPath expression that marks an entry as
// negated when it evaluates to true.
func WithNegationExpression(expr string) Option {
	return func(o *Options) {
		o.NegationExpression = expr
	}
}

// WithSectionPattern sets the regular expression a section code must fully
// match to be kept.
func WithSectionPattern(pattern string) Option {
	return func(o *Options) {
		if pattern != "" {
			o.SectionPattern = pattern
		}
	}
}

// WithFallbackSection sets the section code used for unmatched section codes
// and for resources not referenced by any section.
func WithFallbackSection(code string) Option {
	return func(o *Options) {
		if code != "" {
			o.FallbackSection = code
		}
	}
}

// WithWorkerCount sets the number of documents processed concurrently.
// Results are merged in input order regardless of the count.
func WithWorkerCount(count int) Option {
	return func(o *Options) {
		if count > 0 {
			o.WorkerCount = count
		}
	}
}

// WithExpressionCacheSize sets the compiled FHIRPath expression cache size.
func WithExpressionCacheSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.ExpressionCacheSize = size
		}
	}
}

// WithLogger sets the logger used for skipped entries and failed documents.
func WithLogger(l *logger.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}
