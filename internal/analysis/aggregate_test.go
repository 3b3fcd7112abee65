package analysis

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/spend-insights/internal/domain"
)

func TestAggregateSumsCountsAndSorts(t *testing.T) {
	table := richTable()
	relevant, err := Filter(table, Definition{ID: RelevantSpend, Name: "R", Filter: &FilterSpec{Column: "Relevant Merchant?", Value: domain.Text("y")}})
	require.NoError(t, err)

	summary, err := Aggregate(relevant, StandardPivot())
	require.NoError(t, err)

	assert.Equal(t, []string{domain.ColMerchantName, LabelAmount, LabelCount}, summary.Columns())

	var keys []string
	for _, r := range summary.Rows {
		keys = append(keys, r.KeyString())
	}
	// ACME, CORE and DYNA tie at 150 and keep first-occurrence order.
	assert.Equal(t, []string{"BOLT", "ACME", "CORE", "DYNA", "ECHO", "FOXX"}, keys)

	assert.True(t, summary.Value(1, LabelAmount).Equal(dec("150")))
	assert.True(t, summary.Value(1, LabelCount).Equal(dec("2")))
	assert.True(t, summary.Total(LabelAmount).Equal(dec("715")))
	assert.True(t, summary.Total(LabelCount).Equal(dec("7")))

	for i := 1; i < summary.Len(); i++ {
		assert.True(t, summary.Value(i-1, LabelAmount).GreaterThanOrEqual(summary.Value(i, LabelAmount)))
	}
}

func TestAggregateEmptySubset(t *testing.T) {
	empty := domain.NewTable(allColumns)

	summary, err := Aggregate(empty, StandardPivot())
	require.NoError(t, err)
	assert.True(t, summary.IsEmpty())
	assert.True(t, summary.Total(LabelAmount).Equal(decimal.Zero))
	assert.Empty(t, summary.Head(5))
}

func TestAggregateCountSkipsEmptyCells(t *testing.T) {
	table := domain.NewTable(allColumns,
		domain.Row{domain.ColMerchantName: domain.Text("A"), domain.ColTransactionAmount: domain.Int(5), domain.ColTransactionDate: domain.Text("d")},
		domain.Row{domain.ColMerchantName: domain.Text("A"), domain.ColTransactionAmount: domain.Int(5)},
		domain.Row{domain.ColTransactionAmount: domain.Int(99), domain.ColTransactionDate: domain.Text("d")},
	)

	summary, err := Aggregate(table, StandardPivot())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Len())
	assert.True(t, summary.Value(0, LabelAmount).Equal(dec("10")))
	assert.True(t, summary.Value(0, LabelCount).Equal(dec("1")))
}

func TestAggregateCompositeKey(t *testing.T) {
	table := richTable()
	spec := StandardPivot()
	spec.Index = []string{domain.ColMerchantName, domain.ColPurchaserName}

	summary, err := Aggregate(table, spec)
	require.NoError(t, err)
	assert.Equal(t, "CDW, Bob", summary.Rows[0].KeyString())
}

func TestAggregateMissingColumn(t *testing.T) {
	table := domain.NewTable([]string{domain.ColMerchantName, domain.ColTransactionAmount})

	_, err := Aggregate(table, StandardPivot())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSchema))
}

func TestAggregateRejectsNonNumericSum(t *testing.T) {
	table := domain.NewTable(allColumns,
		domain.Row{domain.ColMerchantName: domain.Text("A"), domain.ColTransactionAmount: domain.Bool(true)},
	)

	_, err := Aggregate(table, StandardPivot())
	assert.True(t, errors.Is(err, domain.ErrSchema))
}

func TestCategorizeAllSpendCoversWholeTable(t *testing.T) {
	table := richTable()
	results, err := Categorize(testContext(), table, DefaultCatalog())
	require.NoError(t, err)

	all, err := results.Get(AllSpend)
	require.NoError(t, err)

	want := decimal.Zero
	for _, r := range table.Rows {
		d, _ := r.Get(domain.ColTransactionAmount).Decimal()
		want = want.Add(d)
	}
	assert.True(t, all.Summary.Total(LabelAmount).Equal(want), "got %s want %s", all.Summary.Total(LabelAmount), want)
	assert.Equal(t, table.Len(), all.Subset.Len())

	assert.Len(t, results.All(), DefaultCatalog().Len())
	for _, res := range results.All() {
		for i := 1; i < res.Summary.Len(); i++ {
			assert.True(t, res.Summary.Value(i-1, LabelAmount).GreaterThanOrEqual(res.Summary.Value(i, LabelAmount)))
		}
	}
}

func TestCategorizeMissingFlagColumn(t *testing.T) {
	table := domain.NewTable(domain.RequiredColumns)

	_, err := Categorize(testContext(), table, DefaultCatalog())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSchema))
	assert.Contains(t, err.Error(), "Relevant Merchant?")
}

func TestResultsGetMissing(t *testing.T) {
	_, err := NewResults().Get(ECommerce)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataIntegrity))
}
