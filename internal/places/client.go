// Package places is a thin client for the Google Places and Geocoding web
// APIs. Responses are relayed close to the wire format so handlers can pass
// provider payloads through to callers, including the provider's own status
// and error_message on failure.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultPlacesBaseURL  = "https://maps.googleapis.com/maps/api/place"
	defaultGeocodeBaseURL = "https://maps.googleapis.com/maps/api/geocode"

	// StatusOK is the provider's success status.
	StatusOK = "OK"
)

// UpstreamError carries a non-OK provider status straight to the caller.
type UpstreamError struct {
	Status  string
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("places: upstream status %s", e.Status)
	}
	return fmt.Sprintf("places: upstream status %s: %s", e.Status, e.Message)
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (l LatLng) query() string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lng, 'f', -1, 64)
}

type Geometry struct {
	Location LatLng `json:"location"`
}

// Place is one nearby-search result summary.
type Place struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Vicinity         string   `json:"vicinity,omitempty"`
	Geometry         Geometry `json:"geometry"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	PriceLevel       *int     `json:"price_level,omitempty"`
	Types            []string `json:"types"`
}

type SearchResponse struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message,omitempty"`
	Results      []Place `json:"results"`
}

type PlaceDetails struct {
	Name                 string          `json:"name"`
	FormattedAddress     string          `json:"formatted_address,omitempty"`
	Geometry             Geometry        `json:"geometry"`
	Rating               float64         `json:"rating,omitempty"`
	FormattedPhoneNumber string          `json:"formatted_phone_number,omitempty"`
	Website              string          `json:"website,omitempty"`
	PriceLevel           *int            `json:"price_level,omitempty"`
	OpeningHours         json.RawMessage `json:"opening_hours,omitempty"`
	Photos               json.RawMessage `json:"photos,omitempty"`
	Reviews              json.RawMessage `json:"reviews,omitempty"`
}

type DetailsResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Result       PlaceDetails `json:"result"`
}

type GeocodeResult struct {
	FormattedAddress string   `json:"formatted_address"`
	Geometry         Geometry `json:"geometry"`
	PlaceID          string   `json:"place_id"`
}

type GeocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Results      []GeocodeResult `json:"results"`
}

// NearbyRequest describes one nearby-search call. Radius of zero falls back
// to the client default.
type NearbyRequest struct {
	Location LatLng
	Radius   int
	Type     string
	MinPrice *int
	MaxPrice *int
}

type Client struct {
	httpClient     *http.Client
	apiKey         string
	placesBaseURL  string
	geocodeBaseURL string
	defaultRadius  int
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithPlacesBaseURL overrides the Places API base URL.
func WithPlacesBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.placesBaseURL = base
		}
	}
}

// WithGeocodeBaseURL overrides the Geocoding API base URL.
func WithGeocodeBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.geocodeBaseURL = base
		}
	}
}

// WithDefaultRadius overrides the fallback search radius in meters.
func WithDefaultRadius(meters int) Option {
	return func(client *Client) {
		if meters > 0 {
			client.defaultRadius = meters
		}
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		apiKey:         apiKey,
		placesBaseURL:  defaultPlacesBaseURL,
		geocodeBaseURL: defaultGeocodeBaseURL,
		defaultRadius:  5000,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) NearbySearch(ctx context.Context, req NearbyRequest) (*SearchResponse, error) {
	radius := req.Radius
	if radius <= 0 {
		radius = c.defaultRadius
	}

	params := url.Values{}
	params.Set("location", req.Location.query())
	params.Set("radius", strconv.Itoa(radius))
	params.Set("type", req.Type)
	if req.MinPrice != nil {
		params.Set("minprice", strconv.Itoa(*req.MinPrice))
	}
	if req.MaxPrice != nil {
		params.Set("maxprice", strconv.Itoa(*req.MaxPrice))
	}
	params.Set("key", c.apiKey)

	var out SearchResponse
	if err := c.get(ctx, c.placesBaseURL+"/nearbysearch/json", params, &out); err != nil {
		return nil, err
	}
	if out.Status != StatusOK {
		return nil, &UpstreamError{Status: out.Status, Message: out.ErrorMessage}
	}
	return &out, nil
}

func (c *Client) PlaceDetails(ctx context.Context, placeID string) (*DetailsResponse, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "name,formatted_address,geometry,rating,photos,formatted_phone_number,opening_hours,website,price_level,reviews")
	params.Set("key", c.apiKey)

	var out DetailsResponse
	if err := c.get(ctx, c.placesBaseURL+"/details/json", params, &out); err != nil {
		return nil, err
	}
	if out.Status != StatusOK {
		return nil, &UpstreamError{Status: out.Status, Message: out.ErrorMessage}
	}
	return &out, nil
}

func (c *Client) Geocode(ctx context.Context, address string) (*GeocodeResponse, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", c.apiKey)

	var out GeocodeResponse
	if err := c.get(ctx, c.geocodeBaseURL+"/json", params, &out); err != nil {
		return nil, err
	}
	if out.Status != StatusOK {
		return nil, &UpstreamError{Status: out.Status, Message: out.ErrorMessage}
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("places: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places: provider returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("places: decode response: %w", err)
	}
	return nil
}
