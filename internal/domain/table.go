package domain

// Column names of the purchase-card transaction template.
const (
	ColMerchantName      = "Merchant Name"
	ColTransactionAmount = "Transaction Amount"
	ColTransactionDate   = "Transaction Date"
	ColPurchaserID       = "Purchaser ID"
	ColPurchaserName     = "Purchaser Name"
)

// RequiredColumns must be present in every uploaded transaction sheet.
// Category flag columns are checked when a category filter reads them.
var RequiredColumns = []string{
	ColMerchantName,
	ColTransactionAmount,
	ColTransactionDate,
	ColPurchaserID,
	ColPurchaserName,
}

// Row maps column name to cell value. A missing key reads as Empty.
type Row map[string]Value

// Get returns the value in column, or Empty when the row has none.
func (r Row) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return Empty()
}

// Table is an ordered sequence of rows sharing one column list.
// Tables are treated as immutable once loaded; helpers return new tables.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates a table with the given columns and rows.
func NewTable(columns []string, rows ...Row) Table {
	return Table{Columns: columns, Rows: rows}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// IsEmpty reports whether the table has no rows.
func (t Table) IsEmpty() bool { return len(t.Rows) == 0 }

// HasColumn reports whether column is part of the table's header.
func (t Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// MissingColumns returns the columns from want that the table lacks, in order.
func (t Table) MissingColumns(want ...string) []string {
	var missing []string
	for _, c := range want {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Where returns a table with the same columns holding the rows for which
// keep returns true.
func (t Table) Where(keep func(Row) bool) Table {
	out := Table{Columns: t.Columns, Rows: make([]Row, 0)}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// CountDistinct counts the distinct non-empty values in column.
func (t Table) CountDistinct(column string) int {
	seen := make(map[string]struct{})
	for _, r := range t.Rows {
		v := r.Get(column)
		if v.IsEmpty() {
			continue
		}
		seen[v.Kind().String()+":"+v.String()] = struct{}{}
	}
	return len(seen)
}
