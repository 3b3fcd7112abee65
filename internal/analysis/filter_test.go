package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/spend-insights/internal/domain"
)

func TestFilterMatchesExactly(t *testing.T) {
	table := domain.NewTable([]string{"Flag", domain.ColMerchantName},
		domain.Row{"Flag": domain.Text("y"), domain.ColMerchantName: domain.Text("a")},
		domain.Row{"Flag": domain.Bool(true), domain.ColMerchantName: domain.Text("b")},
		domain.Row{"Flag": domain.Int(1), domain.ColMerchantName: domain.Text("c")},
		domain.Row{"Flag": domain.Text("Y"), domain.ColMerchantName: domain.Text("d")},
		domain.Row{domain.ColMerchantName: domain.Text("e")},
	)

	tests := []struct {
		name  string
		value domain.Value
		want  []string
	}{
		{"text y", domain.Text("y"), []string{"a"}},
		{"bool true", domain.Bool(true), []string{"b"}},
		{"number one", domain.Int(1), []string{"c"}},
		{"no match", domain.Text("n"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := Definition{ID: Office, Name: "X", Filter: &FilterSpec{Column: "Flag", Value: tt.value}}
			got, err := Filter(table, def)
			require.NoError(t, err)
			assert.Equal(t, table.Columns, got.Columns)

			var names []string
			for _, r := range got.Rows {
				names = append(names, r.Get(domain.ColMerchantName).String())
				assert.True(t, r.Get("Flag").Equal(tt.value))
			}
			assert.Equal(t, tt.want, names)

			complement := table.Where(func(r domain.Row) bool { return !r.Get("Flag").Equal(tt.value) })
			assert.Equal(t, table.Len(), got.Len()+complement.Len())
		})
	}
}

func TestFilterWithoutFilterKeepsAllRows(t *testing.T) {
	table := scenarioTable()
	def, ok := DefaultCatalog().Lookup(AllSpend)
	require.True(t, ok)

	got, err := Filter(table, def)
	require.NoError(t, err)
	assert.Equal(t, table.Len(), got.Len())
}

func TestFilterMissingColumn(t *testing.T) {
	table := domain.NewTable([]string{domain.ColMerchantName})
	def := Definition{ID: ECommerce, Name: "E-Commerce", Filter: &FilterSpec{Column: "Ecom", Value: domain.Bool(true)}}

	_, err := Filter(table, def)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSchema))
	assert.Contains(t, err.Error(), "Ecom")
}
