package analysis

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/spend-insights/internal/domain"
)

// Finding is one labelled statistical statement.
type Finding struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Finding labels, in output order.
const (
	LabelTotalOpportunity = "1. Total Addressable Opportunity"
	LabelAmazonSpend      = "2. Amazon Spend Consolidation"
	LabelPrimeFees        = "3. Eliminate Redundant Prime Fees"
	LabelTopVendors       = "4. Top Vendors to Consolidate"
	LabelTopUsers         = "5. High-Value Users to Onboard"
	LabelStoreTrips       = "6. Reduce Soft Costs from Store Trips"
	LabelECommerce        = "7. Consolidate E-Commerce Spend"
	LabelRecommendation   = "8. Recommendation"
)

// Recommendation is the closing finding; it does not depend on the data.
const Recommendation = "Recommend a follow-up Product Basket Analysis to find item-level savings."

const (
	topVendorCount    = 5
	topPurchaserCount = 5
	topEcomCount      = 3
	primeMarker       = "PRIME"
)

// GenerateFindings derives the fixed findings from the category results.
// The prime-fee finding is only present when the Amazon subset holds at
// least one PRIME charge. A missing category is a DataIntegrityError.
func GenerateFindings(results *Results) ([]Finding, error) {
	relevant, err := results.Get(RelevantSpend)
	if err != nil {
		return nil, err
	}
	amazon, err := results.Get(AmazonPrime)
	if err != nil {
		return nil, err
	}
	trips, err := results.Get(StoreTrips)
	if err != nil {
		return nil, err
	}
	ecom, err := results.Get(ECommerce)
	if err != nil {
		return nil, err
	}

	findings := make([]Finding, 0, 8)

	findings = append(findings, Finding{
		Label: LabelTotalOpportunity,
		Text: fmt.Sprintf("Total relevant spend is %s across %d vendors.",
			FormatCurrency(relevant.Summary.Total(LabelAmount)), relevant.Summary.Len()),
	})

	findings = append(findings, Finding{
		Label: LabelAmazonSpend,
		Text: fmt.Sprintf("Identified %s of spend from %d users on Amazon.com.",
			FormatCurrency(amazon.Summary.Total(LabelAmount)), amazon.Subset.CountDistinct(domain.ColPurchaserID)),
	})

	prime := PrimeCharges(amazon.Subset)
	if prime.Count > 0 {
		findings = append(findings, Finding{
			Label: LabelPrimeFees,
			Text: fmt.Sprintf("%d separate Prime charges totaling %s can be eliminated.",
				prime.Count, FormatCurrency(prime.Total)),
		})
	}

	findings = append(findings, Finding{
		Label: LabelTopVendors,
		Text:  fmt.Sprintf("Top 5 non-Amazon vendors: %s.", TopVendors(relevant.Summary, topVendorCount)),
	})

	spenders, err := TopPurchasers(relevant.Subset, topPurchaserCount)
	if err != nil {
		return nil, err
	}
	findings = append(findings, Finding{
		Label: LabelTopUsers,
		Text:  fmt.Sprintf("Top 5 users to onboard: %s.", spenders),
	})

	findings = append(findings, Finding{
		Label: LabelStoreTrips,
		Text: fmt.Sprintf("%d trips to stores by %d employees, totaling %s.",
			trips.Summary.Total(LabelCount).IntPart(),
			trips.Subset.CountDistinct(domain.ColPurchaserID),
			FormatCurrency(trips.Summary.Total(LabelAmount))),
	})

	names := make([]string, 0, topEcomCount)
	for _, r := range ecom.Summary.Head(topEcomCount) {
		names = append(names, r.KeyString())
	}
	findings = append(findings, Finding{
		Label: LabelECommerce,
		Text: fmt.Sprintf("%s in e-commerce spend. Top vendors: %s.",
			FormatCurrency(ecom.Summary.Total(LabelAmount)), strings.Join(names, ", ")),
	})

	findings = append(findings, Finding{Label: LabelRecommendation, Text: Recommendation})

	return findings, nil
}

// PrimeSummary counts prime membership charges.
type PrimeSummary struct {
	Count int
	Total decimal.Decimal
}

// PrimeCharges selects rows whose merchant name contains "PRIME" in any
// case. Non-text merchant names never match.
func PrimeCharges(subset domain.Table) PrimeSummary {
	out := PrimeSummary{Total: decimal.Zero}
	for _, r := range subset.Rows {
		name, ok := r.Get(domain.ColMerchantName).AsText()
		if !ok || !strings.Contains(strings.ToUpper(name), primeMarker) {
			continue
		}
		out.Count++
		if d, ok := r.Get(domain.ColTransactionAmount).Decimal(); ok {
			out.Total = out.Total.Add(d)
		}
	}
	return out
}

// TopVendors formats the n leading rows of summary as "name ($amount)"
// joined with "; ".
func TopVendors(summary SummaryTable, n int) string {
	parts := make([]string, 0, n)
	for i, r := range summary.Head(n) {
		parts = append(parts, fmt.Sprintf("%s (%s)", r.KeyString(), FormatCurrency(summary.Value(i, LabelAmount))))
	}
	return strings.Join(parts, "; ")
}

// TopPurchasers sums subset amounts per purchaser name and formats the n
// largest like TopVendors.
func TopPurchasers(subset domain.Table, n int) (string, error) {
	byName, err := Aggregate(subset, PivotSpec{
		Index:    []string{domain.ColPurchaserName},
		Measures: []Measure{{Column: domain.ColTransactionAmount, Func: AggSum, Label: LabelAmount}},
		SortBy:   LabelAmount,
	})
	if err != nil {
		return "", fmt.Errorf("rank purchasers: %w", err)
	}
	return TopVendors(byName, n), nil
}
