package repository

import (
	"strings"

	"chatimmo/internal/model"
)

// DeriveLocation tags a listing from its description text. Lac2 is checked
// before Tunis, so a description naming both is tagged Lac2.
func DeriveLocation(description string) model.Location {
	switch {
	case strings.Contains(description, string(model.LocationLac2)):
		return model.LocationLac2
	case strings.Contains(description, string(model.LocationTunis)):
		return model.LocationTunis
	default:
		return model.LocationUnknown
	}
}
