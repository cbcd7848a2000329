package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"campaignhub/internal/domain"
)

const (
	DefaultMapboxURL = "https://api.mapbox.com"
	DefaultTimeout   = 10 * time.Second

	placeTypes   = "place,locality,neighborhood,address,poi"
	providerName = "Mapbox"
	maxErrorBody = 512
)

// Place is one geocoding candidate.
type Place struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	FullName    string         `json:"full_name"`
	Coordinates []float64      `json:"coordinates"`
	PlaceType   []string       `json:"place_type"`
	Context     []PlaceContext `json:"context"`
	Relevance   float64        `json:"relevance"`
}

type PlaceContext struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	ShortCode string `json:"short_code,omitempty"`
}

// Geocoder resolves free text and coordinates into places.
type Geocoder interface {
	Search(ctx context.Context, query, country string, limit int) ([]Place, error)
	Reverse(ctx context.Context, lat, lon float64) (*Place, error)
}

// MapboxClient talks to the Mapbox Geocoding v5 API.
type MapboxClient struct {
	token   string
	baseURL string
	http    *http.Client
}

func NewMapboxClient(token, baseURL string, timeout time.Duration) *MapboxClient {
	if baseURL == "" {
		baseURL = DefaultMapboxURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &MapboxClient{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type mapboxResponse struct {
	Features []struct {
		ID        string         `json:"id"`
		Text      string         `json:"text"`
		PlaceName string         `json:"place_name"`
		Center    []float64      `json:"center"`
		PlaceType []string       `json:"place_type"`
		Context   []PlaceContext `json:"context"`
		Relevance float64        `json:"relevance"`
	} `json:"features"`
}

func (c *MapboxClient) Search(ctx context.Context, query, country string, limit int) ([]Place, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if country != "" {
		params.Set("country", country)
	}

	resp, err := c.get(ctx, url.PathEscape(query), params, "Search failed")
	if err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(resp.Features))
	for _, f := range resp.Features {
		places = append(places, Place{
			ID:          f.ID,
			Name:        f.Text,
			FullName:    f.PlaceName,
			Coordinates: f.Center,
			PlaceType:   nonNil(f.PlaceType),
			Context:     nonNilContext(f.Context),
			Relevance:   f.Relevance,
		})
	}
	return places, nil
}

// Reverse returns the best match for the point. With no match it returns a
// placeholder named "Unknown location" at the queried coordinates.
func (c *MapboxClient) Reverse(ctx context.Context, lat, lon float64) (*Place, error) {
	path := strconv.FormatFloat(lon, 'f', -1, 64) + "," + strconv.FormatFloat(lat, 'f', -1, 64)
	resp, err := c.get(ctx, path, url.Values{}, "Reverse geocoding failed")
	if err != nil {
		return nil, err
	}

	coords := []float64{lon, lat}
	if len(resp.Features) == 0 {
		return &Place{
			Name:        "Unknown location",
			FullName:    "Unknown location",
			Coordinates: coords,
			PlaceType:   []string{},
			Context:     []PlaceContext{},
		}, nil
	}

	f := resp.Features[0]
	return &Place{
		ID:          f.ID,
		Name:        f.Text,
		FullName:    f.PlaceName,
		Coordinates: coords,
		PlaceType:   nonNil(f.PlaceType),
		Context:     nonNilContext(f.Context),
		Relevance:   f.Relevance,
	}, nil
}

func (c *MapboxClient) get(ctx context.Context, path string, params url.Values, failure string) (*mapboxResponse, error) {
	if c.token == "" {
		return nil, fmt.Errorf("%w: Mapbox token not configured", domain.ErrGeolocation)
	}

	params.Set("access_token", c.token)
	params.Set("types", placeTypes)
	endpoint := c.baseURL + "/geocoding/v5/mapbox.places/" + path + ".json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGeolocation, err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.ExternalServiceError{Provider: providerName, Message: transportMessage(err), Err: redact(err)}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, &domain.ExternalServiceError{
			Provider: providerName,
			Message:  fmt.Sprintf("%s: status %d", failure, res.StatusCode),
			Err:      errors.New(strings.TrimSpace(string(body))),
		}
	}

	var out mapboxResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, &domain.ExternalServiceError{Provider: providerName, Message: "malformed response", Err: err}
	}
	return &out, nil
}

func transportMessage(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "Request timeout"
	}
	return "Request error"
}

// redact strips the access token from the request URL carried by err.
func redact(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	u, perr := url.Parse(uerr.URL)
	if perr != nil {
		return &url.Error{Op: uerr.Op, URL: "<unparseable>", Err: uerr.Err}
	}
	q := u.Query()
	if q.Has("access_token") {
		q.Set("access_token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return &url.Error{Op: uerr.Op, URL: u.String(), Err: uerr.Err}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilContext(s []PlaceContext) []PlaceContext {
	if s == nil {
		return []PlaceContext{}
	}
	return s
}
