// Package engine answers structured property queries over an immutable catalog,
// relaxing the query in fixed tiers when the strict conjunction finds nothing.
package engine

import (
	"chatimmo/internal/model"
)

// Tier names the relaxation level that produced a recommendation
type Tier string

const (
	TierStrict          Tier = "strict"
	TierRelaxed         Tier = "relaxed"
	TierSingleAttribute Tier = "single-attribute"
	TierNone            Tier = "none"
)

// Exact reports whether the tier answered the query without relaxation
func (t Tier) Exact() bool {
	return t == TierStrict
}

// Recommendation is the outcome of Recommend
type Recommendation struct {
	Listings []model.Listing
	Tier     Tier
}

// strategy is one relaxation step; it returns the listings it selects
type strategy struct {
	tier  Tier
	apply func(catalog model.Catalog, q model.Query) []model.Listing
}

// strategies lists the relaxation steps in the order they are tried
var strategies = []strategy{
	{tier: TierStrict, apply: strictMatch},
	{tier: TierRelaxed, apply: relaxedMatch},
	{tier: TierSingleAttribute, apply: singleAttributeMatch},
}

func strictMatch(catalog model.Catalog, q model.Query) []model.Listing {
	return Filter(catalog, q)
}

func relaxedMatch(catalog model.Catalog, q model.Query) []model.Listing {
	return Filter(catalog, q.WithoutLocation())
}

// singleAttributeMatch tries bedrooms, then price, then surface, each alone
// against the full catalog and only while nothing has been found yet. With
// none of the three present the catalog is returned unfiltered.
func singleAttributeMatch(catalog model.Catalog, q model.Query) []model.Listing {
	if q.BedroomsMin == nil && q.PriceMax == nil && q.SurfaceMin == nil {
		return catalog
	}

	var found []model.Listing
	if q.BedroomsMin != nil {
		found = apply(catalog, []predicate{bedroomsAtLeast(*q.BedroomsMin)})
	}
	if len(found) == 0 && q.PriceMax != nil {
		found = apply(catalog, []predicate{priceAtMost(*q.PriceMax)})
	}
	if len(found) == 0 && q.SurfaceMin != nil {
		found = apply(catalog, []predicate{surfaceAtLeast(*q.SurfaceMin)})
	}
	return found
}

// Engine answers queries over a catalog it never mutates.
// It holds no other state and is safe for concurrent use.
type Engine struct {
	catalog model.Catalog
}

// New creates an engine over catalog
func New(catalog model.Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Catalog returns the underlying catalog; callers must treat it as read-only
func (e *Engine) Catalog() model.Catalog {
	return e.catalog
}

// Len returns the number of listings in the catalog
func (e *Engine) Len() int {
	return len(e.catalog)
}

// Recommend validates q and returns the first non-empty result among the
// strict, relaxed and single-attribute tiers. An empty result is not an error:
// it comes back with TierNone.
func (e *Engine) Recommend(q model.Query) (Recommendation, error) {
	if err := Validate(q); err != nil {
		return Recommendation{}, err
	}

	for _, s := range strategies {
		if found := s.apply(e.catalog, q); len(found) > 0 {
			return Recommendation{Listings: found, Tier: s.tier}, nil
		}
	}
	return Recommendation{Listings: []model.Listing{}, Tier: TierNone}, nil
}
