package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"chatimmo/internal/model"
)

// ErrInvalidQuery is returned when a query carries a negative, non-finite or blank bound
var ErrInvalidQuery = errors.New("invalid query")

// Validate checks that every present constraint of q is usable
func Validate(q model.Query) error {
	if q.BedroomsMin != nil && *q.BedroomsMin < 0 {
		return fmt.Errorf("%w: bedrooms_min must be >= 0, got %d", ErrInvalidQuery, *q.BedroomsMin)
	}
	if q.PriceMax != nil {
		if err := checkBound("price_max", *q.PriceMax); err != nil {
			return err
		}
	}
	if q.SurfaceMin != nil {
		if err := checkBound("surface_min", *q.SurfaceMin); err != nil {
			return err
		}
	}
	if q.Location != nil && strings.TrimSpace(*q.Location) == "" {
		return fmt.Errorf("%w: location must not be blank", ErrInvalidQuery)
	}
	return nil
}

func checkBound(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a finite number", ErrInvalidQuery, field)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s must be >= 0, got %g", ErrInvalidQuery, field, v)
	}
	return nil
}
