package analysis

import (
	"github.com/dvloznov/spend-insights/internal/domain"
)

// Filter returns the rows of table that belong to the category.
// Matching is exact and type-sensitive. A definition without a filter keeps
// every row. A filter column missing from the table is a SchemaError; no
// matching rows is a valid, empty result.
func Filter(table domain.Table, def Definition) (domain.Table, error) {
	if def.Filter == nil {
		return table, nil
	}
	if !table.HasColumn(def.Filter.Column) {
		return domain.Table{}, domain.MissingColumn(def.Filter.Column)
	}

	want := def.Filter.Value
	col := def.Filter.Column
	return table.Where(func(r domain.Row) bool {
		return r.Get(col).Equal(want)
	}), nil
}
