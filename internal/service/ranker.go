package service

import (
	"chatimmo/internal/engine"
	"chatimmo/internal/model"
)

// Match reason constants
const (
	ReasonBedroomsMatch = "Bedrooms match"
	ReasonPriceMatch    = "Price within budget"
	ReasonSurfaceMatch  = "Surface match"
	ReasonLocationMatch = "Location match"
	ReasonSimilarOption = "Similar option"
	ReasonGeneralMatch  = "General match"
)

// RankResults annotates listings with the reasons they were selected. The
// engine order is kept as is; listings are never re-sorted.
func RankResults(listings []model.Listing, q model.Query, tier engine.Tier) []model.ListingResult {
	results := make([]model.ListingResult, 0, len(listings))
	for _, listing := range listings {
		results = append(results, model.ListingResult{
			Listing:        listing,
			MatchedReasons: generateMatchedReasons(listing, q, tier),
		})
	}
	return results
}

// generateMatchedReasons generates human-readable reasons for why this listing matched
func generateMatchedReasons(listing model.Listing, q model.Query, tier engine.Tier) []string {
	reasons := []string{}

	if q.BedroomsMin != nil && engine.Satisfies(listing, model.Query{BedroomsMin: q.BedroomsMin}) {
		reasons = append(reasons, ReasonBedroomsMatch)
	}
	if q.PriceMax != nil && engine.Satisfies(listing, model.Query{PriceMax: q.PriceMax}) {
		reasons = append(reasons, ReasonPriceMatch)
	}
	if q.SurfaceMin != nil && engine.Satisfies(listing, model.Query{SurfaceMin: q.SurfaceMin}) {
		reasons = append(reasons, ReasonSurfaceMatch)
	}
	if q.Location != nil && engine.Satisfies(listing, model.Query{Location: q.Location}) {
		reasons = append(reasons, ReasonLocationMatch)
	}

	if !tier.Exact() {
		reasons = append(reasons, ReasonSimilarOption)
	}
	if len(reasons) == 0 {
		reasons = append(reasons, ReasonGeneralMatch)
	}
	return reasons
}
