package model

// Location is the coarse area tag derived from a listing description
type Location string

// Known location tags, in derivation priority order
const (
	LocationLac2    Location = "Lac2"
	LocationTunis   Location = "Tunis"
	LocationUnknown Location = "Unknown"
)

// Listing represents a property listing loaded from the catalog source
type Listing struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Bedrooms    int      `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms   int      `json:"bathrooms" yaml:"bathrooms"`
	Surface     float64  `json:"surface" yaml:"surface"`     // m²
	Price       float64  `json:"price_tnd" yaml:"price_tnd"` // Tunisian dinars
	Parking     bool     `json:"parking" yaml:"parking"`
	Location    Location `json:"location" yaml:"location"`
	Link        string   `json:"link" yaml:"link"`
}

// Catalog is the ordered, read-only set of listings available for querying.
// It is built once at startup and never mutated afterwards.
type Catalog []Listing

// ListingResult represents a returned listing with the reasons it was selected
type ListingResult struct {
	Listing
	MatchedReasons []string `json:"matched_reasons"`
}
