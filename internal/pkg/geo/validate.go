package geo

import (
	"fmt"

	"campaignhub/internal/domain"
)

// LargeRadiusKm is the circle radius above which validation emits a warning.
const LargeRadiusKm = 1000

type Result struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate checks a location structurally and collects every problem found.
// It never mutates loc.
func Validate(loc domain.GeoLocation) Result {
	r := Result{Errors: []string{}, Warnings: []string{}}

	switch loc.Type {
	case domain.LocationPoint:
		r.Errors = append(r.Errors, checkPair("coordinates", loc.Coordinates)...)

	case domain.LocationCircle:
		r.Errors = append(r.Errors, checkPair("coordinates", loc.Coordinates)...)
		switch {
		case loc.Radius == nil:
			r.Errors = append(r.Errors, "radius is required for circle locations")
		case *loc.Radius <= 0:
			r.Errors = append(r.Errors, "radius must be greater than 0")
		case *loc.Radius > LargeRadiusKm:
			r.Warnings = append(r.Warnings, "radius is very large (>1000km)")
		}

	case domain.LocationPolygon:
		if len(loc.PolygonCoordinates) < 3 {
			r.Errors = append(r.Errors, "polygon must have at least 3 points")
		}
		for i, pt := range loc.PolygonCoordinates {
			r.Errors = append(r.Errors, checkPair(fmt.Sprintf("polygon point %d", i), pt)...)
		}

	case domain.LocationCountry, domain.LocationRegion:
		if loc.Country == "" && loc.Region == "" {
			r.Warnings = append(r.Warnings, "country or region should be specified")
		}

	default:
		r.Errors = append(r.Errors, fmt.Sprintf("unknown location type %q", loc.Type))
	}

	r.IsValid = len(r.Errors) == 0
	return r
}

// ValidateAll validates every location and returns a *domain.ValidationError
// listing the problems of the invalid ones.
func ValidateAll(locs []domain.GeoLocation) error {
	var details []string
	for i, loc := range locs {
		res := Validate(loc)
		for _, e := range res.Errors {
			details = append(details, fmt.Sprintf("target_locations[%d]: %s", i, e))
		}
	}
	if len(details) == 0 {
		return nil
	}
	return &domain.ValidationError{Message: "invalid target locations", Details: details}
}

func checkPair(label string, c []float64) []string {
	if len(c) != 2 {
		return []string{fmt.Sprintf("%s must contain exactly 2 values [longitude, latitude]", label)}
	}

	var errs []string
	if lon := c[0]; lon < -180 || lon > 180 {
		errs = append(errs, fmt.Sprintf("%s: longitude %v must be between -180 and 180", label, lon))
	}
	if lat := c[1]; lat < -90 || lat > 90 {
		errs = append(errs, fmt.Sprintf("%s: latitude %v must be between -90 and 90", label, lat))
	}
	return errs
}
