package geolocation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"campaignhub/internal/domain"
	"campaignhub/internal/pkg/geo"
)

const (
	MinQueryLength     = 2
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
	MaxCityLimit       = 200
)

type Service struct {
	geocoder Geocoder
	logger   *slog.Logger
}

func NewService(geocoder Geocoder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		geocoder: geocoder,
		logger:   logger.With(slog.String("module", "geolocation")),
	}
}

func (s *Service) Search(ctx context.Context, query, country string, limit int) ([]Place, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinQueryLength {
		return nil, &domain.ValidationError{Message: "query must be at least 2 characters"}
	}
	if limit == 0 {
		limit = DefaultSearchLimit
	}
	if limit < 1 || limit > MaxSearchLimit {
		return nil, &domain.ValidationError{Message: "limit must be between 1 and 50"}
	}

	places, err := s.geocoder.Search(ctx, query, strings.ToLower(strings.TrimSpace(country)), limit)
	if err != nil {
		s.logger.Error("location search failed", slog.String("query", query), slog.String("error", err.Error()), causeAttr(err))
		return nil, err
	}
	return places, nil
}

func (s *Service) Reverse(ctx context.Context, lat, lon float64) (*Place, error) {
	if errs := geo.Validate(domain.GeoLocation{Type: domain.LocationPoint, Coordinates: []float64{lon, lat}}).Errors; len(errs) > 0 {
		return nil, &domain.ValidationError{Message: "invalid coordinates", Details: errs}
	}

	place, err := s.geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		s.logger.Error("reverse geocoding failed",
			slog.Float64("latitude", lat),
			slog.Float64("longitude", lon),
			slog.String("error", err.Error()),
			causeAttr(err),
		)
		return nil, err
	}
	return place, nil
}

// Validate never fails; problems are reported in the result.
func (s *Service) Validate(loc domain.GeoLocation) geo.Result {
	return geo.Validate(loc)
}

type DistanceResult struct {
	DistanceKm    float64   `json:"distance_km"`
	DistanceMiles float64   `json:"distance_miles"`
	Point1        []float64 `json:"point1"`
	Point2        []float64 `json:"point2"`
}

func (s *Service) Distance(a, b []float64) (*DistanceResult, error) {
	d, err := geo.Between(a, b)
	if err != nil {
		return nil, err
	}
	return &DistanceResult{DistanceKm: d.Km, DistanceMiles: d.Miles, Point1: a, Point2: b}, nil
}

func (s *Service) Cities(country, region string, limit int) ([]City, error) {
	if limit < 0 || limit > MaxCityLimit {
		return nil, &domain.ValidationError{Message: "limit must be between 1 and 200"}
	}
	return Cities(country, region, limit), nil
}

// causeAttr logs the provider-side cause, which never reaches clients.
func causeAttr(err error) slog.Attr {
	var ext *domain.ExternalServiceError
	if errors.As(err, &ext) && ext.Err != nil {
		return slog.String("cause", ext.Err.Error())
	}
	return slog.Attr{}
}
