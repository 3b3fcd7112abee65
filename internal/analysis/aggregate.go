package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/spend-insights/internal/domain"
)

// SummaryRow is one group of a summary table.
type SummaryRow struct {
	Key    []domain.Value
	Values []decimal.Decimal
}

// KeyString renders the group key; composite keys are joined with ", ".
func (r SummaryRow) KeyString() string {
	parts := make([]string, len(r.Key))
	for i, k := range r.Key {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}

// SummaryTable is the grouped, aggregated and sorted view of a category.
type SummaryTable struct {
	Index    []string
	Measures []string
	Rows     []SummaryRow
}

// Columns returns the index columns followed by the measure labels.
func (s SummaryTable) Columns() []string {
	cols := make([]string, 0, len(s.Index)+len(s.Measures))
	cols = append(cols, s.Index...)
	return append(cols, s.Measures...)
}

func (s SummaryTable) Len() int      { return len(s.Rows) }
func (s SummaryTable) IsEmpty() bool { return len(s.Rows) == 0 }

func (s SummaryTable) measure(label string) int {
	for i, m := range s.Measures {
		if m == label {
			return i
		}
	}
	return -1
}

// Value returns the measure labelled label of row i, or zero when unknown.
func (s SummaryTable) Value(i int, label string) decimal.Decimal {
	m := s.measure(label)
	if m < 0 || i < 0 || i >= len(s.Rows) {
		return decimal.Zero
	}
	return s.Rows[i].Values[m]
}

// Total sums the measure labelled label over all rows.
func (s SummaryTable) Total(label string) decimal.Decimal {
	m := s.measure(label)
	total := decimal.Zero
	if m < 0 {
		return total
	}
	for _, r := range s.Rows {
		total = total.Add(r.Values[m])
	}
	return total
}

// Head returns up to n leading rows.
func (s SummaryTable) Head(n int) []SummaryRow {
	if n > len(s.Rows) {
		n = len(s.Rows)
	}
	return s.Rows[:n]
}

// Aggregate groups subset by the pivot index and applies each measure.
// Groups keep first-occurrence order until the stable descending sort on
// the SortBy measure, so equal totals stay in encounter order. Rows with an
// empty key cell are left out of every group.
func Aggregate(subset domain.Table, spec PivotSpec) (SummaryTable, error) {
	out := SummaryTable{
		Index:    append([]string(nil), spec.Index...),
		Measures: make([]string, len(spec.Measures)),
		Rows:     []SummaryRow{},
	}
	for i, m := range spec.Measures {
		out.Measures[i] = m.Label
	}

	var need []string
	need = append(need, spec.Index...)
	for _, m := range spec.Measures {
		need = append(need, m.Column)
	}
	if missing := subset.MissingColumns(need...); len(missing) > 0 {
		return SummaryTable{}, domain.MissingColumn(missing[0])
	}

	sortIdx := out.measure(spec.SortBy)
	if sortIdx < 0 {
		return SummaryTable{}, fmt.Errorf("aggregate: sort column %q is not a measure", spec.SortBy)
	}

	groups := make(map[string]int)
rows:
	for _, r := range subset.Rows {
		key := make([]domain.Value, len(spec.Index))
		var id strings.Builder
		for i, col := range spec.Index {
			v := r.Get(col)
			if v.IsEmpty() {
				continue rows
			}
			key[i] = v
			id.WriteString(v.Kind().String())
			id.WriteByte(':')
			id.WriteString(v.String())
			id.WriteByte(0)
		}

		g, ok := groups[id.String()]
		if !ok {
			g = len(out.Rows)
			groups[id.String()] = g
			vals := make([]decimal.Decimal, len(spec.Measures))
			for i := range vals {
				vals[i] = decimal.Zero
			}
			out.Rows = append(out.Rows, SummaryRow{Key: key, Values: vals})
		}

		for i, m := range spec.Measures {
			v := r.Get(m.Column)
			if v.IsEmpty() {
				continue
			}
			switch m.Func {
			case AggCount:
				out.Rows[g].Values[i] = out.Rows[g].Values[i].Add(decimal.NewFromInt(1))
			case AggSum:
				d, ok := v.Decimal()
				if !ok {
					return SummaryTable{}, &domain.SchemaError{
						Column: m.Column,
						Detail: fmt.Sprintf("cannot sum non-numeric value %q", v.String()),
					}
				}
				out.Rows[g].Values[i] = out.Rows[g].Values[i].Add(d)
			default:
				return SummaryTable{}, fmt.Errorf("aggregate: unsupported function %q", m.Func)
			}
		}
	}

	sort.SliceStable(out.Rows, func(i, j int) bool {
		return out.Rows[i].Values[sortIdx].GreaterThan(out.Rows[j].Values[sortIdx])
	})

	return out, nil
}
