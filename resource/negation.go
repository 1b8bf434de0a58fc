package resource

import (
	"fmt"

	"github.com/gofhir/fhirpath"

	"github.com/gofhir/fhircodes/cache"
	"github.com/gofhir/fhircodes/pkg/logger"
	"github.com/gofhir/fhircodes/tree"
)

// NegationPolicy decides whether a resource asserts the absence of its code.
type NegationPolicy interface {
	Negated(resource *tree.Node) bool
}

// FieldPresence marks a resource negated when it holds the named field,
// whatever the field's value.
type FieldPresence string

// Negated implements NegationPolicy.
func (f FieldPresence) Negated(resource *tree.Node) bool {
	return f != "" && resource.Has(string(f))
}

// ExpressionCache holds compiled FHIRPath expressions keyed by source text.
type ExpressionCache = cache.Cache[string, *fhirpath.Expression]

// NewExpressionCache creates an expression cache with the given capacity.
func NewExpressionCache(size int) *ExpressionCache {
	return cache.New[string, *fhirpath.Expression](size)
}

// ExpressionPolicy marks a resource negated when a FHIRPath expression
// evaluates to true. Non-boolean non-empty results count as true.
type ExpressionPolicy struct {
	expr  string
	cache *ExpressionCache
	log   *logger.Logger
}

// NewExpressionPolicy compiles expr through cache and returns the policy.
func NewExpressionPolicy(expr string, exprs *ExpressionCache, log *logger.Logger) (*ExpressionPolicy, error) {
	if exprs == nil {
		exprs = NewExpressionCache(0)
	}
	if log == nil {
		log = logger.Default()
	}
	p := &ExpressionPolicy{expr: expr, cache: exprs, log: log}
	if _, err := p.compiled(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *ExpressionPolicy) compiled() (*fhirpath.Expression, error) {
	return p.cache.GetOrLoad(p.expr, func() (*fhirpath.Expression, error) {
		compiled, err := fhirpath.Compile(p.expr)
		if err != nil {
			return nil, fmt.Errorf("negation expression %q: %w", p.expr, err)
		}
		return compiled, nil
	})
}

// Negated implements NegationPolicy. Evaluation errors count as not negated.
func (p *ExpressionPolicy) Negated(resource *tree.Node) bool {
	compiled, err := p.compiled()
	if err != nil {
		p.log.Debug("%v", err)
		return false
	}
	data, err := resource.MarshalJSON()
	if err != nil {
		p.log.Debug("negation expression: encode resource: %v", err)
		return false
	}
	result, err := compiled.Evaluate(data)
	if err != nil {
		p.log.Debug("negation expression %q: %v", p.expr, err)
		return false
	}
	if result.Empty() {
		return false
	}
	b, err := result.ToBoolean()
	if err != nil {
		return true
	}
	return b
}

// AnyOf is negated when any of its policies is.
type AnyOf []NegationPolicy

// Negated implements NegationPolicy.
func (a AnyOf) Negated(resource *tree.Node) bool {
	for _, p := range a {
		if p.Negated(resource) {
			return true
		}
	}
	return false
}
