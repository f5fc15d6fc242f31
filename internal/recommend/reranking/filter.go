// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package reranking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/tomtom215/rankengine/internal/cache"
	"github.com/tomtom215/rankengine/internal/models"
)

// ErrInvalidFilter is returned for expressions that do not compile to a
// boolean.
var ErrInvalidFilter = errors.New("invalid filter expression")

// MaxFilterLength bounds accepted expression size.
const MaxFilterLength = 1024

// maxCachedFilters bounds the compiled expression cache; it is reset when
// full.
const maxCachedFilters = 256

var (
	filterEnv     *cel.Env
	filterEnvErr  error
	filterEnvOnce sync.Once
)

// env returns the shared CEL environment. cel.Env is safe for concurrent use.
func env() (*cel.Env, error) {
	filterEnvOnce.Do(func() {
		filterEnv, filterEnvErr = cel.NewEnv(
			cel.Variable("product", cel.MapType(cel.StringType, cel.DynType)),
			cel.Variable("score", cel.DoubleType),
			cel.Variable("algorithm", cel.StringType),
			cel.CrossTypeNumericComparisons(true),
		)
	})
	return filterEnv, filterEnvErr
}

// Filter is a compiled candidate predicate.
type Filter struct {
	expr    string
	program cel.Program
}

// CompileFilter parses and type-checks expr.
func CompileFilter(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidFilter)
	}
	if len(expr) > MaxFilterLength {
		return nil, fmt.Errorf("%w: expression longer than %d bytes", ErrInvalidFilter, MaxFilterLength)
	}

	e, err := env()
	if err != nil {
		return nil, fmt.Errorf("create filter environment: %w", err)
	}
	ast, issues := e.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: expression returns %s, want bool", ErrInvalidFilter, out)
	}
	prg, err := e.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return &Filter{expr: expr, program: prg}, nil
}

// String returns the source expression.
func (f *Filter) String() string { return f.expr }

// Match evaluates the filter for one candidate. Evaluation errors and
// non-boolean results reject the candidate.
func (f *Filter) Match(p *models.Product, rec *models.Recommendation) bool {
	out, _, err := f.program.Eval(map[string]any{
		"product":   productInput(p),
		"score":     rec.Score,
		"algorithm": rec.Algorithm,
	})
	if err != nil {
		return false
	}
	ok, isBool := out.Value().(bool)
	return isBool && ok
}

// Apply keeps the candidates that match, preserving order. Candidates whose
// product is unknown are dropped.
func (f *Filter) Apply(ctx context.Context, recs []*models.Recommendation, lookup ProductLookup) []*models.Recommendation {
	out := make([]*models.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if ctx.Err() != nil {
			break
		}
		p, ok := lookup(rec.ProductID)
		if !ok {
			continue
		}
		if f.Match(p, rec) {
			out = append(out, rec)
		}
	}
	return out
}

// productInput exposes product fields under their JSON names.
func productInput(p *models.Product) map[string]any {
	tags := make([]string, 0, len(p.Tags))
	for t := range p.TagSet() {
		tags = append(tags, t)
	}
	attrs := p.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	return map[string]any{
		"id":             p.ID,
		"name":           p.Name,
		"category":       strings.ToLower(p.Category),
		"brand":          strings.ToLower(p.Brand),
		"price":          p.Price,
		"rating":         p.Rating,
		"review_count":   int64(p.ReviewCount),
		"tags":           tags,
		"attributes":     attrs,
		"in_stock":       p.InStock,
		"view_count":     int64(p.ViewCount),
		"purchase_count": int64(p.PurchaseCount),
	}
}

// filterKey is a memo key for compiled expressions.
type filterKey string

func (k filterKey) String() string { return string(k) }

// Filters caches compiled expressions. Compile failures are not cached.
type Filters struct {
	compiled *cache.Memo[filterKey, *Filter]
}

// NewFilters creates an empty filter cache.
func NewFilters() *Filters {
	return &Filters{compiled: cache.NewMemo[filterKey, *Filter]("filters", cache.WithShards(4))}
}

// Get returns the compiled filter for expr.
func (fs *Filters) Get(ctx context.Context, expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if fs.compiled.Len() >= maxCachedFilters {
		fs.compiled.Clear()
	}
	return fs.compiled.GetOrCompute(ctx, filterKey(expr), func() (*Filter, error) {
		return CompileFilter(expr)
	})
}

// Len returns the number of cached filters.
func (fs *Filters) Len() int { return fs.compiled.Len() }

// Clear drops every cached filter.
func (fs *Filters) Clear() { fs.compiled.Clear() }
