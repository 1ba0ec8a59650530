package engine

import (
	"strings"

	"chatimmo/internal/model"

	"golang.org/x/text/cases"
)

// predicate reports whether a listing satisfies one query constraint
type predicate func(l *model.Listing) bool

// predicates returns the constraints present in q, in the fixed application
// order bedrooms, price, surface, location.
func predicates(q model.Query) []predicate {
	preds := make([]predicate, 0, 4)
	if q.BedroomsMin != nil {
		preds = append(preds, bedroomsAtLeast(*q.BedroomsMin))
	}
	if q.PriceMax != nil {
		preds = append(preds, priceAtMost(*q.PriceMax))
	}
	if q.SurfaceMin != nil {
		preds = append(preds, surfaceAtLeast(*q.SurfaceMin))
	}
	if q.Location != nil {
		preds = append(preds, locationContains(*q.Location))
	}
	return preds
}

func bedroomsAtLeast(n int) predicate {
	return func(l *model.Listing) bool { return l.Bedrooms >= n }
}

func priceAtMost(limit float64) predicate {
	return func(l *model.Listing) bool { return l.Price <= limit }
}

func surfaceAtLeast(floor float64) predicate {
	return func(l *model.Listing) bool { return l.Surface >= floor }
}

func locationContains(substr string) predicate {
	needle := fold(substr)
	return func(l *model.Listing) bool {
		return strings.Contains(fold(string(l.Location)), needle)
	}
}

// fold applies Unicode case folding. A Caser is stateful, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Filter returns every listing satisfying all constraints present in q,
// in their original order. The input slice is never modified.
func Filter(listings []model.Listing, q model.Query) []model.Listing {
	return apply(listings, predicates(q))
}

// Satisfies reports whether a single listing meets every constraint in q.
func Satisfies(l model.Listing, q model.Query) bool {
	return matchesAll(&l, predicates(q))
}

func apply(listings []model.Listing, preds []predicate) []model.Listing {
	out := make([]model.Listing, 0, len(listings))
	for i := range listings {
		if matchesAll(&listings[i], preds) {
			out = append(out, listings[i])
		}
	}
	return out
}

func matchesAll(l *model.Listing, preds []predicate) bool {
	for _, p := range preds {
		if !p(l) {
			return false
		}
	}
	return true
}

// Top returns at most k leading listings, preserving their relative order.
func Top(listings []model.Listing, k int) []model.Listing {
	if k <= 0 {
		return []model.Listing{}
	}
	if len(listings) <= k {
		return listings
	}
	return listings[:k]
}
