package analysis

import (
	"strconv"

	"github.com/dvloznov/spend-insights/internal/domain"
)

// Metrics are the headline numbers returned to the caller, preformatted.
type Metrics struct {
	TotalOpportunity   string `json:"totalOpportunity"`
	AmazonSpend        string `json:"amazonSpend"`
	RedundantPrimeFees string `json:"redundantPrimeFees"`
	VendorCount        string `json:"vendorCount"`
	UserCount          string `json:"userCount"`
	StoreTrips         string `json:"storeTrips"`
	StoreTripsCost     string `json:"storeTripsCost"`
}

// Headline bundles the metrics with the ranked vendor and spender strings.
type Headline struct {
	Metrics     Metrics
	TopVendors  string
	TopSpenders string
}

// ComputeHeadline derives the caller-facing metrics from the results.
func ComputeHeadline(results *Results) (Headline, error) {
	relevant, err := results.Get(RelevantSpend)
	if err != nil {
		return Headline{}, err
	}
	amazon, err := results.Get(AmazonPrime)
	if err != nil {
		return Headline{}, err
	}
	trips, err := results.Get(StoreTrips)
	if err != nil {
		return Headline{}, err
	}

	spenders, err := TopPurchasers(relevant.Subset, topPurchaserCount)
	if err != nil {
		return Headline{}, err
	}

	prime := PrimeCharges(amazon.Subset)

	return Headline{
		Metrics: Metrics{
			TotalOpportunity:   FormatCurrency(relevant.Summary.Total(LabelAmount)),
			AmazonSpend:        FormatCurrency(amazon.Summary.Total(LabelAmount)),
			RedundantPrimeFees: FormatCurrency(prime.Total),
			VendorCount:        strconv.Itoa(relevant.Summary.Len()),
			UserCount:          strconv.Itoa(amazon.Subset.CountDistinct(domain.ColPurchaserID)),
			StoreTrips:         FormatCount(trips.Summary.Total(LabelCount).IntPart()),
			StoreTripsCost:     FormatCurrency(trips.Summary.Total(LabelAmount)),
		},
		TopVendors:  TopVendors(relevant.Summary, topVendorCount),
		TopSpenders: spenders,
	}, nil
}
