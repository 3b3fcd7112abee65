package pipeline

import (
	"errors"

	"github.com/dvloznov/spend-insights/internal/analysis"
	"github.com/dvloznov/spend-insights/internal/domain"
)

// RequiredColumns lists every column a run over catalog reads, in first use
// order and without duplicates.
func RequiredColumns(catalog analysis.Catalog) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(cols ...string) {
		for _, c := range cols {
			if c != "" && !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}

	add(domain.RequiredColumns...)
	for _, d := range catalog.Definitions() {
		if d.Filter != nil {
			add(d.Filter.Column)
		}
		add(d.Pivot.Index...)
		for _, m := range d.Pivot.Measures {
			add(m.Column)
		}
	}
	return out
}

// ValidateColumns reports every column the catalog needs that table lacks.
// Each missing column is a SchemaError; several are joined.
func ValidateColumns(table domain.Table, catalog analysis.Catalog) error {
	missing := table.MissingColumns(RequiredColumns(catalog)...)
	if len(missing) == 0 {
		return nil
	}
	errs := make([]error, len(missing))
	for i, c := range missing {
		errs[i] = domain.MissingColumn(c)
	}
	return errors.Join(errs...)
}
