package model

// Query represents the structured constraints extracted from user intent.
// A nil field means no constraint on that attribute.
type Query struct {
	BedroomsMin *int     `json:"bedrooms_min,omitempty"`
	PriceMax    *float64 `json:"price_max,omitempty"`
	SurfaceMin  *float64 `json:"surface_min,omitempty"`
	Location    *string  `json:"location,omitempty"`
}

// IsEmpty reports whether no constraint is present
func (q Query) IsEmpty() bool {
	return q.BedroomsMin == nil && q.PriceMax == nil && q.SurfaceMin == nil && q.Location == nil
}

// WithoutLocation returns a copy of the query with the location constraint dropped
func (q Query) WithoutLocation() Query {
	q.Location = nil
	return q
}

// IntentResult represents the parsed intent from a chat message
type IntentResult struct {
	Query   Query    `json:"query"`
	Matched []string `json:"matched"` // names of the slot patterns that matched
}
