package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jan2 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same text", Text("y"), Text("y"), true},
		{"text case matters", Text("y"), Text("Y"), false},
		{"text vs bool", Text("y"), Bool(true), false},
		{"bool vs number", Bool(true), Int(1), false},
		{"text one vs number one", Text("1"), Int(1), false},
		{"int vs float", Int(1), Float(1.0), true},
		{"bools", Bool(true), Bool(true), true},
		{"bool mismatch", Bool(true), Bool(false), false},
		{"empties", Empty(), Empty(), true},
		{"empty vs text", Empty(), Text(""), false},
		{"same day", Time(jan2), Time(jan2.In(time.FixedZone("x", 0))), true},
		{"different day", Time(jan2), Time(jan2.AddDate(0, 0, 1)), false},
		{"time vs text", Time(jan2), Text("2024-01-02"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestValueOf(t *testing.T) {
	v, err := ValueOf("y")
	require.NoError(t, err)
	assert.True(t, v.Equal(Text("y")))

	v, err = ValueOf(true)
	require.NoError(t, err)
	assert.True(t, v.Equal(Bool(true)))

	v, err = ValueOf(1)
	require.NoError(t, err)
	assert.True(t, v.Equal(Int(1)))

	_, err = ValueOf(struct{}{})
	assert.Error(t, err)
}

func TestValueDecimal(t *testing.T) {
	d, ok := Float(15.5).Decimal()
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("15.5")))

	d, ok = Text(" 100.25 ").Decimal()
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("100.25")))

	_, ok = Text("n/a").Decimal()
	assert.False(t, ok)

	_, ok = Empty().Decimal()
	assert.False(t, ok)

	_, ok = Bool(true).Decimal()
	assert.False(t, ok)
}

func TestValueInterface(t *testing.T) {
	assert.Equal(t, "ACME", Text("ACME").Interface())
	assert.Equal(t, true, Bool(true).Interface())
	assert.Equal(t, int64(3), Int(3).Interface())
	assert.Equal(t, 15.25, Float(15.25).Interface())
	assert.Nil(t, Empty().Interface())
}

func TestTableHelpers(t *testing.T) {
	tbl := NewTable([]string{ColMerchantName, ColPurchaserID},
		Row{ColMerchantName: Text("ACME"), ColPurchaserID: Text("u1")},
		Row{ColMerchantName: Text("ACME"), ColPurchaserID: Text("u1")},
		Row{ColMerchantName: Text("BOLT"), ColPurchaserID: Text("u2")},
		Row{ColMerchantName: Text("BOLT")},
	)

	assert.Equal(t, 4, tbl.Len())
	assert.True(t, tbl.HasColumn(ColPurchaserID))
	assert.Equal(t, []string{ColPurchaserName}, tbl.MissingColumns(ColMerchantName, ColPurchaserName))
	assert.Equal(t, 2, tbl.CountDistinct(ColPurchaserID))

	acme := tbl.Where(func(r Row) bool { return r.Get(ColMerchantName).Equal(Text("ACME")) })
	assert.Equal(t, 2, acme.Len())
	assert.Equal(t, tbl.Columns, acme.Columns)

	none := tbl.Where(func(Row) bool { return false })
	assert.True(t, none.IsEmpty())
	assert.NotNil(t, none.Rows)
}

func TestErrorKinds(t *testing.T) {
	assert.True(t, errors.Is(MissingColumn(ColMerchantName), ErrSchema))
	assert.Contains(t, MissingColumn(ColMerchantName).Error(), `"Merchant Name"`)
	assert.True(t, errors.Is(&DataIntegrityError{Category: "ecommerce"}, ErrDataIntegrity))
	assert.True(t, errors.Is(&UnsupportedFileError{Filename: "a.csv"}, ErrUnsupportedFile))
	assert.False(t, errors.Is(MissingColumn("x"), ErrDataIntegrity))
}

func TestValueTime(t *testing.T) {
	v := Time(jan2)
	assert.Equal(t, KindTime, v.Kind())
	assert.Equal(t, "2024-01-02", v.String())
	assert.Equal(t, jan2, v.Interface())
	assert.False(t, v.HasClock())

	_, ok := v.Decimal()
	assert.False(t, ok)

	at, ok := v.AsTime()
	require.True(t, ok)
	assert.True(t, at.Equal(jan2))

	withClock := Time(jan2.Add(13*time.Hour + 5*time.Minute))
	assert.True(t, withClock.HasClock())
	assert.Equal(t, "2024-01-02 13:05:00", withClock.String())

	fromAny, err := ValueOf(jan2)
	require.NoError(t, err)
	assert.True(t, fromAny.Equal(v))
}
