package analysis

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/spend-insights/internal/domain"
	"github.com/dvloznov/spend-insights/internal/logger"
)

func testContext() context.Context {
	return logger.WithContext(context.Background(), zerolog.Nop())
}

var allColumns = []string{
	domain.ColMerchantName, domain.ColTransactionAmount, domain.ColTransactionDate,
	domain.ColPurchaserID, domain.ColPurchaserName,
	"Relevant Merchant?", "Amazon", "Trips", "Ecom", "Office", "ITHelper", "MROHelper", "User List",
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// txn builds a transaction row with every flag unset; flags override cells.
func txn(merchant string, amount float64, purchaserID, purchaser string, flags domain.Row) domain.Row {
	r := domain.Row{
		domain.ColMerchantName:      domain.Text(merchant),
		domain.ColTransactionAmount: domain.Float(amount),
		domain.ColTransactionDate:   domain.Text("2024-03-01"),
		domain.ColPurchaserID:       domain.Text(purchaserID),
		domain.ColPurchaserName:     domain.Text(purchaser),
		"Relevant Merchant?":        domain.Empty(),
		"Amazon":                    domain.Bool(false),
		"Trips":                     domain.Bool(false),
		"Ecom":                      domain.Bool(false),
		"Office":                    domain.Bool(false),
		"ITHelper":                  domain.Int(0),
		"MROHelper":                 domain.Int(0),
		"User List":                 domain.Bool(false),
	}
	for k, v := range flags {
		r[k] = v
	}
	return r
}

// scenarioTable is the four-row table: two relevant rows, one Amazon prime
// row and one irrelevant row.
func scenarioTable() domain.Table {
	return domain.NewTable(allColumns,
		txn("ACME", 100, "u1", "Ann", domain.Row{"Relevant Merchant?": domain.Text("y")}),
		txn("PRIME VIDEO", 15, "u2", "Bob", domain.Row{"Relevant Merchant?": domain.Text("y")}),
		txn("PRIME VIDEO", 15, "u3", "Cid", domain.Row{"Amazon": domain.Bool(true)}),
		txn("CITY PARKING", 7, "u4", "Dee", nil),
	)
}

// richTable exercises every category with ties and several purchasers.
func richTable() domain.Table {
	y := domain.Row{"Relevant Merchant?": domain.Text("y")}
	return domain.NewTable(allColumns,
		txn("ACME", 100, "u1", "Ann", y),
		txn("BOLT", 250, "u2", "Bob", y),
		txn("ACME", 50, "u2", "Bob", y),
		txn("CORE", 150, "u3", "Cid", y),
		txn("DYNA", 150, "u4", "Dee", y),
		txn("ECHO", 10, "u5", "Eve", y),
		txn("FOXX", 5, "u6", "Fay", y),
		txn("AMAZON.COM", 40, "u1", "Ann", domain.Row{"Amazon": domain.Bool(true)}),
		txn("Amazon Prime*1A2B", 14.99, "u2", "Bob", domain.Row{"Amazon": domain.Bool(true)}),
		txn("AMZN Mktp", 60, "u2", "Bob", domain.Row{"Amazon": domain.Bool(true)}),
		txn("HOME DEPOT", 80, "u3", "Cid", domain.Row{"Trips": domain.Bool(true)}),
		txn("HOME DEPOT", 20, "u4", "Dee", domain.Row{"Trips": domain.Bool(true)}),
		txn("LOWES", 30, "u4", "Dee", domain.Row{"Trips": domain.Bool(true)}),
		txn("EBAY", 70, "u5", "Eve", domain.Row{"Ecom": domain.Bool(true)}),
		txn("ETSY", 90, "u5", "Eve", domain.Row{"Ecom": domain.Bool(true)}),
		txn("WAYFAIR", 20, "u6", "Fay", domain.Row{"Ecom": domain.Bool(true)}),
		txn("NEWEGG", 5, "u6", "Fay", domain.Row{"Ecom": domain.Bool(true)}),
		txn("STAPLES", 12, "u1", "Ann", domain.Row{"Office": domain.Bool(true)}),
		txn("CDW", 300, "u2", "Bob", domain.Row{"ITHelper": domain.Int(1)}),
		txn("GRAINGER", 45, "u3", "Cid", domain.Row{"MROHelper": domain.Int(1)}),
	)
}
