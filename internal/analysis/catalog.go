// Package analysis segments a transaction table into categories, aggregates
// each category into a summary table and derives the statistical findings.
package analysis

import (
	"fmt"
	"strings"

	"github.com/dvloznov/spend-insights/internal/domain"
)

// CategoryID is the closed set of categories the findings know about.
type CategoryID string

const (
	RelevantSpend CategoryID = "relevant_spend"
	AmazonPrime   CategoryID = "amazon_prime"
	StoreTrips    CategoryID = "store_trips"
	ECommerce     CategoryID = "ecommerce"
	Office        CategoryID = "office"
	ITPeripherals CategoryID = "it_peripherals"
	MRO           CategoryID = "mro"
	DedupedUsers  CategoryID = "deduped_users"
	AllSpend      CategoryID = "all_spend"
)

// KnownCategories lists every CategoryID in report order.
var KnownCategories = []CategoryID{
	RelevantSpend, AmazonPrime, StoreTrips, ECommerce, Office, ITPeripherals, MRO, DedupedUsers, AllSpend,
}

// IsKnown reports whether id belongs to the closed enumeration.
func (id CategoryID) IsKnown() bool {
	for _, k := range KnownCategories {
		if k == id {
			return true
		}
	}
	return false
}

// AggFunc is an aggregation applied to one value column.
type AggFunc string

const (
	AggSum   AggFunc = "sum"
	AggCount AggFunc = "count"
)

// Measure is one aggregated output column.
type Measure struct {
	Column string
	Func   AggFunc
	Label  string
}

// PivotSpec describes how a category subset is summarised.
type PivotSpec struct {
	Index    []string
	Measures []Measure
	SortBy   string
}

// Summary column labels of the standard pivot.
const (
	LabelAmount = domain.ColTransactionAmount
	LabelCount  = "Transaction Count"
)

// StandardPivot groups by merchant, sums the amount and counts transactions.
func StandardPivot() PivotSpec {
	return PivotSpec{
		Index: []string{domain.ColMerchantName},
		Measures: []Measure{
			{Column: domain.ColTransactionAmount, Func: AggSum, Label: LabelAmount},
			{Column: domain.ColTransactionDate, Func: AggCount, Label: LabelCount},
		},
		SortBy: LabelAmount,
	}
}

// FilterSpec selects rows whose Column equals Value exactly.
type FilterSpec struct {
	Column string
	Value  domain.Value
}

// Definition is one named analysis category.
// A nil Filter means the category covers the whole table.
type Definition struct {
	ID     CategoryID
	Name   string
	Filter *FilterSpec
	Pivot  PivotSpec
}

// ReportSheet and DataSheet are the sheet names the category writes.
func (d Definition) ReportSheet() string { return d.Name + " Report" }
func (d Definition) DataSheet() string   { return d.Name + " Data" }

// maxSheetName is the spreadsheet limit on sheet name length.
const maxSheetName = 31

// forbiddenSheetChars may not appear in a sheet name.
const forbiddenSheetChars = `:\/?*[]`

// Catalog is an immutable, ordered set of category definitions.
type Catalog struct {
	defs []Definition
}

// NewCatalog validates defs and returns a catalog holding a copy of them.
func NewCatalog(defs []Definition) (Catalog, error) {
	ids := make(map[CategoryID]bool, len(defs))
	names := make(map[string]bool, len(defs))
	for i, d := range defs {
		if !d.ID.IsKnown() {
			return Catalog{}, fmt.Errorf("category %d: unknown id %q", i, d.ID)
		}
		if ids[d.ID] {
			return Catalog{}, fmt.Errorf("category %q: duplicate id", d.ID)
		}
		ids[d.ID] = true

		if d.Name == "" {
			return Catalog{}, fmt.Errorf("category %q: name is required", d.ID)
		}
		if strings.ContainsAny(d.Name, forbiddenSheetChars) || strings.HasPrefix(d.Name, "'") {
			return Catalog{}, fmt.Errorf("category %q: name %q has characters not allowed in a sheet name", d.ID, d.Name)
		}
		// Sheet names are case-insensitive.
		key := strings.ToLower(d.Name)
		if names[key] {
			return Catalog{}, fmt.Errorf("category %q: duplicate name %q", d.ID, d.Name)
		}
		names[key] = true
		if len([]rune(d.DataSheet())) > maxSheetName || len([]rune(d.ReportSheet())) > maxSheetName {
			return Catalog{}, fmt.Errorf("category %q: name %q too long for a sheet name", d.ID, d.Name)
		}

		if d.ID == AllSpend {
			if d.Filter != nil {
				return Catalog{}, fmt.Errorf("category %q must not have a filter", d.ID)
			}
		} else if d.Filter == nil || d.Filter.Column == "" || d.Filter.Value.IsEmpty() {
			return Catalog{}, fmt.Errorf("category %q: filter column and value are required", d.ID)
		}

		if err := validatePivot(d.Pivot); err != nil {
			return Catalog{}, fmt.Errorf("category %q: %w", d.ID, err)
		}
	}
	if !ids[AllSpend] {
		return Catalog{}, fmt.Errorf("catalog must define %q", AllSpend)
	}

	out := make([]Definition, len(defs))
	copy(out, defs)
	return Catalog{defs: out}, nil
}

func validatePivot(p PivotSpec) error {
	if len(p.Index) == 0 {
		return fmt.Errorf("pivot index is required")
	}
	if len(p.Measures) == 0 {
		return fmt.Errorf("pivot needs at least one measure")
	}
	sortFound := false
	for _, m := range p.Measures {
		if m.Column == "" || m.Label == "" {
			return fmt.Errorf("measure needs a column and a label")
		}
		if m.Func != AggSum && m.Func != AggCount {
			return fmt.Errorf("measure %q: unsupported function %q", m.Label, m.Func)
		}
		if m.Label == p.SortBy {
			sortFound = true
		}
	}
	if !sortFound {
		return fmt.Errorf("sort column %q is not a measure label", p.SortBy)
	}
	return nil
}

// Definitions returns the definitions in catalog order.
func (c Catalog) Definitions() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Lookup returns the definition for id.
func (c Catalog) Lookup(id CategoryID) (Definition, bool) {
	for _, d := range c.defs {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Len returns the number of definitions.
func (c Catalog) Len() int { return len(c.defs) }

func filterOn(column string, v domain.Value) *FilterSpec {
	return &FilterSpec{Column: column, Value: v}
}

// DefaultCatalog is the purchase-card category set: eight filtered
// categories followed by the unfiltered All Spend category.
func DefaultCatalog() Catalog {
	pivot := StandardPivot()
	c, err := NewCatalog([]Definition{
		{ID: RelevantSpend, Name: "Relevant Spend", Filter: filterOn("Relevant Merchant?", domain.Text("y")), Pivot: pivot},
		{ID: AmazonPrime, Name: "Amazon + Prime Spend", Filter: filterOn("Amazon", domain.Bool(true)), Pivot: pivot},
		{ID: StoreTrips, Name: "Trips To Stores", Filter: filterOn("Trips", domain.Bool(true)), Pivot: pivot},
		{ID: ECommerce, Name: "E-Commerce", Filter: filterOn("Ecom", domain.Bool(true)), Pivot: pivot},
		{ID: Office, Name: "Office", Filter: filterOn("Office", domain.Bool(true)), Pivot: pivot},
		{ID: ITPeripherals, Name: "IT Peripherals", Filter: filterOn("ITHelper", domain.Int(1)), Pivot: pivot},
		{ID: MRO, Name: "MRO", Filter: filterOn("MROHelper", domain.Int(1)), Pivot: pivot},
		{ID: DedupedUsers, Name: "DeDuped Users List", Filter: filterOn("User List", domain.Bool(true)), Pivot: pivot},
		{ID: AllSpend, Name: "All Spend", Pivot: pivot},
	})
	if err != nil {
		panic(fmt.Sprintf("default catalog: %v", err))
	}
	return c
}
