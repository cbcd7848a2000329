package domain

type LocationType string

const (
	LocationPoint   LocationType = "point"
	LocationCircle  LocationType = "circle"
	LocationPolygon LocationType = "polygon"
	LocationCountry LocationType = "country"
	LocationRegion  LocationType = "region"
)

// GeoLocation is a targeting area embedded in a campaign.
// Coordinates are ordered longitude, latitude.
type GeoLocation struct {
	Type               LocationType `json:"type"`
	Coordinates        []float64    `json:"coordinates,omitempty"`
	Radius             *float64     `json:"radius,omitempty"`
	PolygonCoordinates [][]float64  `json:"polygon_coordinates,omitempty"`
	Country            string       `json:"country,omitempty"`
	Region             string       `json:"region,omitempty"`
	City               string       `json:"city,omitempty"`
	Address            string       `json:"address,omitempty"`
}
