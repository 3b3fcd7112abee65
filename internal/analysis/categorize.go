package analysis

import (
	"context"
	"fmt"

	"github.com/dvloznov/spend-insights/internal/domain"
	"github.com/dvloznov/spend-insights/internal/logger"
)

// CategoryResult holds the filtered rows and the summary of one category.
type CategoryResult struct {
	Definition Definition
	Subset     domain.Table
	Summary    SummaryTable
}

// Results are the category results of one run, keyed by CategoryID.
type Results struct {
	order []CategoryID
	byID  map[CategoryID]*CategoryResult
}

// NewResults returns an empty result set.
func NewResults() *Results {
	return &Results{byID: make(map[CategoryID]*CategoryResult)}
}

// Put stores res, replacing any earlier result for the same category.
func (r *Results) Put(res *CategoryResult) {
	id := res.Definition.ID
	if _, ok := r.byID[id]; !ok {
		r.order = append(r.order, id)
	}
	r.byID[id] = res
}

// Get returns the result for id or a DataIntegrityError when it is absent.
func (r *Results) Get(id CategoryID) (*CategoryResult, error) {
	res, ok := r.byID[id]
	if !ok {
		return nil, &domain.DataIntegrityError{Category: string(id)}
	}
	return res, nil
}

// All returns the results in the order they were produced.
func (r *Results) All() []*CategoryResult {
	out := make([]*CategoryResult, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Categorize filters and aggregates table for every category in catalog.
// The unfiltered category is always computed over the whole table.
func Categorize(ctx context.Context, table domain.Table, catalog Catalog) (*Results, error) {
	log := logger.FromContext(ctx)
	results := NewResults()

	for _, def := range catalog.Definitions() {
		subset, err := Filter(table, def)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", def.Name, err)
		}

		summary, err := Aggregate(subset, def.Pivot)
		if err != nil {
			return nil, fmt.Errorf("aggregate %q: %w", def.Name, err)
		}

		results.Put(&CategoryResult{Definition: def, Subset: subset, Summary: summary})

		log.Debug().
			Str("category", string(def.ID)).
			Int("rows", subset.Len()).
			Int("groups", summary.Len()).
			Msg("Category aggregated")
	}

	return results, nil
}
